package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
)

// Provider supplies the current underlying price for a ticker.
type Provider interface {
	Secondary() Provider
	SpotPrice(ctx context.Context, ticker string) (float64, error)
}

// ErrUnknownTicker is returned when no provider in the chain knows the ticker.
var ErrUnknownTicker = errors.New("unknown ticker")

// NewProvider builds the provider chain named by cfg.Provider. Massive and
// CSV providers fall back to the synthetic provider for tickers they cannot
// resolve.
func NewProvider(cfg config.DataConfig) (Provider, error) {
	synth := NewSyntheticProvider(cfg.Seed)

	switch cfg.Provider {
	case "synthetic", "":
		logger.Infof("synthetic data provider enabled")
		return synth, nil
	case "massive":
		logger.Infof("massive data provider enabled")
		return NewMassiveDataProvider(cfg.APIKey, synth), nil
	case "csv":
		logger.Infof("local csv data provider enabled (dir=%s)", cfg.Dir)
		return NewLocalCSVProvider(cfg.Dir, synth), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.Provider)
	}
}

// normalizeTicker upper-cases and trims a ticker symbol.
func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// fallback delegates to secondary when present, otherwise returns cause.
func fallback(ctx context.Context, secondary Provider, ticker string, cause error) (float64, error) {
	if secondary == nil {
		return 0, cause
	}
	logger.Tracef("delegating spot lookup for %s to secondary provider: %v", ticker, cause)
	return secondary.SpotPrice(ctx, ticker)
}

package data

import (
	"context"
	"fmt"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// massiveDataProvider resolves spot prices from Massive's previous-close
// aggregates endpoint.
type massiveDataProvider struct {
	client *massive.Client

	// secondary is an optional fallback provider.
	secondary Provider
}

// NewMassiveDataProvider constructs a Massive-backed data provider.
//
// Parameters:
//   - apiKey: Massive API key for authentication
//   - secondary: provider consulted when Massive has no data (may be nil)
func NewMassiveDataProvider(apiKey string, secondary Provider) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	return &massiveDataProvider{
		client:    massive.New(apiKey),
		secondary: secondary,
	}
}

// Secondary returns the configured secondary Provider, if any.
func (massiveDataProv *massiveDataProvider) Secondary() Provider {
	return massiveDataProv.secondary
}

// SpotPrice returns the adjusted close of the previous trading day.
//
// Transport errors are returned as-is; an empty result set is delegated to the
// secondary provider when one is configured.
func (massiveDataProv *massiveDataProvider) SpotPrice(ctx context.Context, ticker string) (float64, error) {
	ticker = normalizeTicker(ticker)
	logger.Debugf("massive previous close request: %s", ticker)

	params := models.GetPreviousCloseAggParams{Ticker: ticker}.WithAdjusted(true)

	res, err := massiveDataProv.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		logger.Errorf("massive previous close failed for %s: %v", ticker, err)
		return 0, fmt.Errorf("massive previous close %s: %w", ticker, err)
	}

	if len(res.Results) == 0 || res.Results[0].Close <= 0 {
		return fallback(ctx, massiveDataProv.secondary, ticker, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker))
	}

	spot := res.Results[0].Close
	logger.Tracef("massive spot %s=%.4f", ticker, spot)
	return spot, nil
}

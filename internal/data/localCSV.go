package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-pricer/internal/logger"
)

const spotsFile = "spots.csv"

type spotRow struct {
	Ticker string  `csv:"ticker"`
	Price  float64 `csv:"price"`
}

// localCSVProvider reads spot prices from <dir>/spots.csv (header: ticker,price).
type localCSVProvider struct {
	dir       string
	secondary Provider

	loadOnce sync.Once
	spots    map[string]float64
	loadErr  error
}

// NewLocalCSVProvider convenience constructor.
func NewLocalCSVProvider(dir string, secondary Provider) *localCSVProvider {
	return &localCSVProvider{dir: dir, secondary: secondary}
}

func (localCSVProv *localCSVProvider) Secondary() Provider {
	return localCSVProv.secondary
}

func (localCSVProv *localCSVProvider) SpotPrice(ctx context.Context, ticker string) (float64, error) {
	localCSVProv.loadOnce.Do(localCSVProv.load)
	if localCSVProv.loadErr != nil {
		return fallback(ctx, localCSVProv.secondary, ticker, localCSVProv.loadErr)
	}

	ticker = normalizeTicker(ticker)
	if spot, ok := localCSVProv.spots[ticker]; ok {
		return spot, nil
	}
	return fallback(ctx, localCSVProv.secondary, ticker, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker))
}

// load reads the CSV once and caches it
func (localCSVProv *localCSVProvider) load() {
	path := filepath.Join(localCSVProv.dir, spotsFile)

	f, err := os.Open(path)
	if err != nil {
		logger.Warnf("open spots file: %v", err)
		localCSVProv.loadErr = fmt.Errorf("open spots file: %w", err)
		return
	}
	defer f.Close()

	var rows []spotRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		localCSVProv.loadErr = fmt.Errorf("read %s: %w", path, err)
		return
	}

	localCSVProv.spots = make(map[string]float64, len(rows))
	for _, row := range rows {
		ticker := normalizeTicker(row.Ticker)
		if ticker == "" || row.Price <= 0 {
			logger.Debugf("skipping spot row %+v", row)
			continue
		}
		localCSVProv.spots[ticker] = row.Price
	}
	logger.Debugf("loaded %d spots from %s", len(localCSVProv.spots), path)
}

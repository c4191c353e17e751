package data

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

const syntheticWalkDays = 20

// synthDataProvider generates a deterministic spot per ticker from a seeded
// daily random walk.
type synthDataProvider struct {
	seed      int64
	secondary Provider
}

func NewSyntheticProvider(seed int64) Provider { return &synthDataProvider{seed: seed} }

func (synthDataProv *synthDataProvider) Secondary() Provider {
	return synthDataProv.secondary
}

func (synthDataProv *synthDataProvider) SpotPrice(ctx context.Context, ticker string) (float64, error) {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return 0, fmt.Errorf("%w: empty ticker", ErrUnknownTicker)
	}

	h := fnv.New64a()
	h.Write([]byte(ticker))
	rng := rand.New(rand.NewSource(synthDataProv.seed ^ int64(h.Sum64())))

	price := 100.0 + float64(rng.Intn(200))
	for i := 0; i < syntheticWalkDays; i++ {
		price += rng.NormFloat64() * 0.01 * price
	}
	return math.Round(math.Max(price, 0.01)*100) / 100, nil
}

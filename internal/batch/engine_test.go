package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/report"
)

// stubProvider returns fixed spots per ticker.
type stubProvider struct {
	spots map[string]float64
}

func (p *stubProvider) Secondary() data.Provider { return nil }

func (p *stubProvider) SpotPrice(ctx context.Context, ticker string) (float64, error) {
	if v, ok := p.spots[ticker]; ok {
		return v, nil
	}
	return 0, data.ErrUnknownTicker
}

func TestRunPricesRowsInOrder(t *testing.T) {
	rows := []report.Row{
		{ID: "ref", Spot: "100", Strike: "100", TimeToExpiry: "1", RiskFreeRate: "0.05", Volatility: "0.2"},
		{ID: "otm", Spot: "50", Strike: "60", TimeToExpiry: "0.5", RiskFreeRate: "0.03", Volatility: "0.25"},
		{ID: "bad", Spot: "abc", Strike: "100", TimeToExpiry: "1", RiskFreeRate: "0.05", Volatility: "0.2"},
		{ID: "zero-vol", Spot: "100", Strike: "100", TimeToExpiry: "1", RiskFreeRate: "0.05", Volatility: "0"},
		{Ticker: " spy ", Strike: "400", TimeToExpiry: "0.25", RiskFreeRate: "0.04", Volatility: "0.18"},
		{ID: "missing", Ticker: "NOPE", Strike: "100", TimeToExpiry: "1", RiskFreeRate: "0.05", Volatility: "0.2"},
	}

	m, err := metrics.NewCollector()
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	prov := &stubProvider{spots: map[string]float64{"SPY": 410}}
	e := NewEngine(config.BatchConfig{Workers: 3}, prov, m)

	res, err := e.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected a run id")
	}
	if len(res.Rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(res.Rows))
	}
	if res.Failed != 3 {
		t.Fatalf("expected 3 failed rows, got %d", res.Failed)
	}

	ref := res.Rows[0]
	if ref.ID != "ref" || ref.Call != "10.45" || ref.Put != "5.57" || ref.Error != "" {
		t.Fatalf("unexpected reference row %+v", ref)
	}
	if math.Abs(ref.CallPrice-10.450583572185565) > 1e-9 {
		t.Fatalf("unexpected call price %v", ref.CallPrice)
	}

	otm := res.Rows[1]
	if otm.Call != "0.88" || otm.Put != "9.99" {
		t.Fatalf("unexpected otm row %+v", otm)
	}

	if !strings.Contains(res.Rows[2].Error, "spot") {
		t.Fatalf("expected spot parse error, got %q", res.Rows[2].Error)
	}
	if !strings.Contains(res.Rows[3].Error, "volatility") {
		t.Fatalf("expected volatility error, got %q", res.Rows[3].Error)
	}
	if res.Rows[3].Call != "" || res.Rows[3].CallPrice != 0 {
		t.Fatalf("failed row must carry no price: %+v", res.Rows[3])
	}

	spy := res.Rows[4]
	if spy.ID != "5" || spy.Ticker != "SPY" || spy.Spot != 410 || spy.Error != "" {
		t.Fatalf("unexpected ticker row %+v", spy)
	}
	if spy.CallPrice <= 0 || spy.PutPrice <= 0 {
		t.Fatalf("expected positive prices for ticker row: %+v", spy)
	}

	if !strings.Contains(res.Rows[5].Error, data.ErrUnknownTicker.Error()) {
		t.Fatalf("expected unknown ticker error, got %q", res.Rows[5].Error)
	}

	if got := testutil.ToFloat64(m.PricingCounter().WithLabelValues("batch", metrics.OutcomeOK)); got != 3 {
		t.Fatalf("expected 3 ok observations, got %v", got)
	}
	if got := testutil.ToFloat64(m.PricingCounter().WithLabelValues("batch", metrics.OutcomeInvalid)); got != 3 {
		t.Fatalf("expected 3 invalid observations, got %v", got)
	}
}

func TestRunManyRows(t *testing.T) {
	rows := make([]report.Row, 500)
	for i := range rows {
		rows[i] = report.Row{
			ID:           fmt.Sprintf("r%d", i),
			Spot:         fmt.Sprint(50 + i%100),
			Strike:       "100",
			TimeToExpiry: "1",
			RiskFreeRate: "0.05",
			Volatility:   "0.2",
		}
	}

	res, err := NewEngine(config.BatchConfig{Workers: 8}, nil, nil).Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Failed != 0 {
		t.Fatalf("expected no failures, got %d", res.Failed)
	}
	for i, p := range res.Rows {
		if p.ID != rows[i].ID {
			t.Fatalf("row %d out of order: %s", i, p.ID)
		}
	}
}

func TestRunTickerWithoutProvider(t *testing.T) {
	rows := []report.Row{{ID: "x", Ticker: "AAPL", Strike: "100", TimeToExpiry: "1", RiskFreeRate: "0.05", Volatility: "0.2"}}

	res, err := NewEngine(config.BatchConfig{Workers: 1}, nil, nil).Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Failed != 1 || !strings.Contains(res.Rows[0].Error, "no data provider") {
		t.Fatalf("unexpected result %+v", res.Rows[0])
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []report.Row{{ID: "a", Spot: "100", Strike: "100", TimeToExpiry: "1", RiskFreeRate: "0.05", Volatility: "0.2"}}
	_, err := NewEngine(config.BatchConfig{Workers: 2}, nil, nil).Run(ctx, rows)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// blockingProvider waits for ctx before answering, signalling each lookup on started.
type blockingProvider struct {
	started chan struct{}
}

func (p *blockingProvider) Secondary() data.Provider { return nil }

func (p *blockingProvider) SpotPrice(ctx context.Context, ticker string) (float64, error) {
	p.started <- struct{}{}
	<-ctx.Done()
	return 0, fmt.Errorf("lookup %s: %w", ticker, ctx.Err())
}

func TestRunCancelledDuringSpotLookup(t *testing.T) {
	rows := []report.Row{
		{ID: "a", Ticker: "SPY", Strike: "100", TimeToExpiry: "1", RiskFreeRate: "0.05", Volatility: "0.2"},
		{ID: "b", Ticker: "QQQ", Strike: "100", TimeToExpiry: "1", RiskFreeRate: "0.05", Volatility: "0.2"},
	}
	prov := &blockingProvider{started: make(chan struct{}, len(rows))}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		res, err := NewEngine(config.BatchConfig{Workers: len(rows)}, prov, nil).Run(ctx, rows)
		if res != nil {
			err = fmt.Errorf("expected no result, got %d rows (%d failed): %w", len(res.Rows), res.Failed, err)
		}
		done <- err
	}()

	// every row is in flight before the run is cancelled
	for range rows {
		<-prov.started
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

package batch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/shell"
)

const source = "batch"

// Engine prices batches of requests.
type Engine struct {
	cfg     config.BatchConfig
	prov    data.Provider
	metrics *metrics.Collector
}

// NewEngine wires an engine. prov resolves rows that give a ticker instead
// of a spot; m may be nil.
func NewEngine(cfg config.BatchConfig, prov data.Provider, m *metrics.Collector) *Engine {
	return &Engine{cfg: cfg, prov: prov, metrics: m}
}

// Run prices every row with at most cfg.Workers in flight. A row that fails
// validation or spot lookup is reported in its Error column and does not stop
// the batch; only ctx cancellation aborts the run. Output order matches input.
func (e *Engine) Run(ctx context.Context, rows []report.Row) (*report.Result, error) {
	start := time.Now()
	res := &report.Result{
		RunID:     uuid.NewString(),
		StartedAt: start.UTC(),
		Rows:      make([]report.Priced, len(rows)),
	}
	logger.Infof("batch %s: pricing %d rows with %d workers", res.RunID, len(rows), e.cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.cfg.Workers, 1))

	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := e.priceRow(gctx, i, row)
			if err != nil {
				return err
			}
			res.Rows[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range res.Rows {
		if p.Error != "" {
			res.Failed++
		}
	}
	res.Duration = time.Since(start).String()

	logger.Infof("batch %s: done in %s, %d/%d rows failed", res.RunID, res.Duration, res.Failed, len(rows))
	return res, nil
}

// priceRow prices one row. Row problems are recorded on the returned line;
// the error is non-nil only when ctx ended during a spot lookup.
func (e *Engine) priceRow(ctx context.Context, idx int, row report.Row) (report.Priced, error) {
	out := report.Priced{ID: row.ID, Ticker: strings.ToUpper(strings.TrimSpace(row.Ticker))}
	if out.ID == "" {
		out.ID = strconv.Itoa(idx + 1)
	}

	spot := strings.TrimSpace(row.Spot)
	if spot == "" && out.Ticker != "" {
		if e.prov == nil {
			return e.failed(out, fmt.Errorf("no data provider for ticker %s", out.Ticker)), nil
		}
		v, err := e.prov.SpotPrice(ctx, out.Ticker)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report.Priced{}, ctxErr
			}
			return e.failed(out, fmt.Errorf("spot lookup %s: %w", out.Ticker, err)), nil
		}
		spot = strconv.FormatFloat(v, 'f', -1, 64)
	}

	req, err := shell.ParseRequest([5]string{spot, row.Strike, row.TimeToExpiry, row.RiskFreeRate, row.Volatility})
	if err != nil {
		return e.failed(out, err), nil
	}
	out.Spot, out.Strike, out.TimeToExpiry = req.Spot, req.Strike, req.TimeToExpiry
	out.RiskFreeRate, out.Volatility = req.RiskFreeRate, req.Volatility

	prices, err := pricing.Price(req)
	if err != nil {
		return e.failed(out, err), nil
	}

	out.CallPrice, out.PutPrice = prices.Call, prices.Put
	out.Call, out.Put = shell.Round2(prices.Call), shell.Round2(prices.Put)
	e.observe(metrics.OutcomeOK)
	logger.Tracef("row %s priced call=%s put=%s", out.ID, out.Call, out.Put)
	return out, nil
}

func (e *Engine) failed(out report.Priced, err error) report.Priced {
	logger.Debugf("row %s rejected: %v", out.ID, err)
	out.Error = err.Error()
	e.observe(metrics.OutcomeInvalid)
	return out
}

func (e *Engine) observe(outcome string) {
	if e.metrics != nil {
		e.metrics.ObservePricing(source, outcome)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/contactkeval/option-pricer/internal/batch"
	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/server"
	"github.com/contactkeval/option-pricer/internal/shell"
)

func main() {
	configPath := flag.String("config", "", "path to config file (json, yaml or toml)")
	rest := flag.Bool("rest", false, "run as REST server")
	interactive := flag.Bool("interactive", false, "prompt for inputs on stdin")
	batchPath := flag.String("batch", "", "price every row of a CSV file and write reports")
	ticker := flag.String("ticker", "", "look up the spot price of this ticker when -spot is empty")
	spot := flag.String("spot", "", "stock price")
	strike := flag.String("strike", "", "strike price")
	expiry := flag.String("expiry", "", "time to expiry in years")
	rate := flag.String("rate", "", "risk-free rate as a decimal")
	vol := flag.String("vol", "", "volatility as a decimal")
	kind := flag.String("kind", "both", "call, put or both")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prov, err := data.NewProvider(cfg.Data)
	if err != nil {
		logger.Errorf("data provider: %v", err)
		os.Exit(1)
	}
	logger.Infof("%s provider enabled", cfg.Data.Provider)

	m, err := metrics.NewCollector()
	if err != nil {
		logger.Errorf("metrics: %v", err)
		os.Exit(1)
	}

	switch {
	case *rest:
		err = server.New(cfg.Server, m).Run(ctx)
	case *batchPath != "":
		err = runBatch(ctx, cfg, prov, m, *batchPath)
	case *interactive || (*spot == "" && *ticker == "" && *strike == ""):
		sess := shell.NewSession(os.Stdin, os.Stdout)
		err = sess.Run(ctx)
		sess.Close()
	default:
		err = priceOnce(ctx, os.Stdout, prov, *ticker, [5]string{*spot, *strike, *expiry, *rate, *vol}, *kind)
	}

	if code := exitCode(os.Stdout, err); code != 0 {
		logger.Close()
		os.Exit(code)
	}
}

// exitCode reports err and maps it to a process exit status. Invalid input
// prints the fixed advisory to w; cancellation is a clean exit.
func exitCode(w io.Writer, err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.Is(err, pricing.ErrInvalidInput):
		logger.Debugf("invalid input: %v", err)
		fmt.Fprintln(w, shell.InvalidInputMessage)
	default:
		logger.Errorf("%v", err)
	}
	return 1
}

// priceOnce prices the flag inputs and writes one line per requested kind to w.
func priceOnce(ctx context.Context, w io.Writer, prov data.Provider, ticker string, texts [5]string, kindText string) error {
	if texts[0] == "" && ticker != "" {
		spot, err := prov.SpotPrice(ctx, ticker)
		if err != nil {
			return fmt.Errorf("spot lookup %s: %w", ticker, err)
		}
		logger.Infof("%s spot %.2f", ticker, spot)
		texts[0] = strconv.FormatFloat(spot, 'f', -1, 64)
	}

	req, err := shell.ParseRequest(texts)
	if err != nil {
		return err
	}

	if kindText == "both" {
		res, err := pricing.Price(req)
		if err != nil {
			return err
		}
		for _, line := range shell.Lines(res) {
			fmt.Fprintln(w, line)
		}
		return nil
	}

	kind, err := pricing.ParseKind(kindText)
	if err != nil {
		return err
	}
	price, err := pricing.PriceKind(req, kind)
	if err != nil {
		return err
	}
	if kind == pricing.Call {
		fmt.Fprintln(w, shell.CallLine(price))
	} else {
		fmt.Fprintln(w, shell.PutLine(price))
	}
	return nil
}

func runBatch(ctx context.Context, cfg *config.Config, prov data.Provider, m *metrics.Collector, path string) error {
	start := time.Now()
	rows, err := report.ReadRows(path)
	if err != nil {
		return err
	}

	res, err := batch.NewEngine(cfg.Batch, prov, m).Run(ctx, rows)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	if err := report.Write(res, cfg.Batch.ReportDir); err != nil {
		return err
	}
	logger.Infof("finished in %v, wrote %d rows (%d failed) to %s", time.Since(start), len(res.Rows), res.Failed, cfg.Batch.ReportDir)
	return nil
}

package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
)

func TestReadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.csv")
	body := "id,ticker,spot,strike,time_to_expiry,risk_free_rate,volatility\n" +
		"a,,100,100,1,0.05,0.2\n" +
		"b,SPY,,400,0.25,0.04,0.18\n" +
		"c,,abc,100,1,0.05,0.2\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Spot != "100" || rows[0].Volatility != "0.2" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Ticker != "SPY" || rows[1].Spot != "" {
		t.Fatalf("unexpected ticker row %+v", rows[1])
	}
	// malformed numbers are left for the pricer to reject
	if rows[2].Spot != "abc" {
		t.Fatalf("unexpected third row %+v", rows[2])
	}
}

func TestReadRowsMissingFile(t *testing.T) {
	if _, err := ReadRows(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := &Result{
		RunID:     "run-1",
		StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  "1ms",
		Failed:    1,
		Rows: []Priced{
			{ID: "a", Spot: 100, Strike: 100, TimeToExpiry: 1, RiskFreeRate: 0.05, Volatility: 0.2,
				CallPrice: 10.450583572185565, PutPrice: 5.573526022256971, Call: "10.45", Put: "5.57"},
			{ID: "b", Error: "invalid volatility (0): must be greater than zero"},
		},
	}

	if err := Write(res, dir); err != nil {
		t.Fatalf("write: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, jsonFile))
	if err != nil {
		t.Fatal(err)
	}
	var got Result
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if got.RunID != "run-1" || got.Failed != 1 || len(got.Rows) != 2 || got.Rows[0].Call != "10.45" {
		t.Fatalf("unexpected json report %+v", got)
	}

	f, err := os.Open(filepath.Join(dir, csvFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var priced []Priced
	if err := gocsv.UnmarshalFile(f, &priced); err != nil {
		t.Fatalf("decode csv: %v", err)
	}
	if len(priced) != 2 {
		t.Fatalf("expected 2 csv rows, got %d", len(priced))
	}
	if priced[0].Put != "5.57" || priced[0].PutPrice != 5.573526022256971 {
		t.Fatalf("unexpected csv row %+v", priced[0])
	}
	if priced[1].Error == "" || priced[1].Call != "" {
		t.Fatalf("unexpected failed csv row %+v", priced[1])
	}
}

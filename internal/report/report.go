package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
)

const (
	jsonFile = "prices.json"
	csvFile  = "prices.csv"
)

// Row is one batch input line. Values stay as text so that a malformed cell
// fails only its own row. Spot may be left empty when Ticker is set.
type Row struct {
	ID           string `csv:"id"`
	Ticker       string `csv:"ticker"`
	Spot         string `csv:"spot"`
	Strike       string `csv:"strike"`
	TimeToExpiry string `csv:"time_to_expiry"`
	RiskFreeRate string `csv:"risk_free_rate"`
	Volatility   string `csv:"volatility"`
}

// Priced is one batch output line.
type Priced struct {
	ID           string  `csv:"id" json:"id"`
	Ticker       string  `csv:"ticker" json:"ticker,omitempty"`
	Spot         float64 `csv:"spot" json:"spot"`
	Strike       float64 `csv:"strike" json:"strike"`
	TimeToExpiry float64 `csv:"time_to_expiry" json:"time_to_expiry"`
	RiskFreeRate float64 `csv:"risk_free_rate" json:"risk_free_rate"`
	Volatility   float64 `csv:"volatility" json:"volatility"`
	CallPrice    float64 `csv:"call_price" json:"call_price"`
	PutPrice     float64 `csv:"put_price" json:"put_price"`
	Call         string  `csv:"call" json:"call"`
	Put          string  `csv:"put" json:"put"`
	Error        string  `csv:"error" json:"error,omitempty"`
}

// Result is the outcome of one batch run.
type Result struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Failed    int       `json:"failed"`
	Rows      []Priced  `json:"rows"`
}

// ReadRows loads batch input from a CSV file with a header line.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func WriteJSON(res *Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, jsonFile), b, 0644)
}

func WriteCSV(rows []Priced, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, csvFile))
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

// Write creates outdir if needed and writes both report files.
func Write(res *Result, outdir string) error {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("create report dir %s: %w", outdir, err)
	}
	if err := WriteJSON(res, outdir); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	if err := WriteCSV(res.Rows, outdir); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

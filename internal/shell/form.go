// Package shell is the text front end of the pricer. It owns all display
// state (the five input fields and the result lines) and turns raw text into
// pricing requests; the pricing package itself never sees strings.
package shell

import (
	"strconv"
	"strings"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Field identifies one of the five form inputs.
type Field int

const (
	StockPrice Field = iota
	StrikePrice
	TimeToExpiry
	RiskFreeRate
	Volatility

	numFields
)

var labels = [numFields]string{
	"Stock Price",
	"Strike Price",
	"Time to Expiry (in years)",
	"Risk-Free Rate (in decimal)",
	"Volatility (in decimal)",
}

var fieldNames = [numFields]string{"spot", "strike", "time_to_expiry", "risk_free_rate", "volatility"}

// Label returns the prompt shown for f.
func (f Field) Label() string { return labels[f] }

// Fields lists the inputs in form order.
func Fields() []Field {
	return []Field{StockPrice, StrikePrice, TimeToExpiry, RiskFreeRate, Volatility}
}

// ParseRequest converts the five raw texts into a validated request. Any
// text that is not a number, and any value the pricing engine rejects, is
// reported as a *pricing.InvalidInputError.
func ParseRequest(texts [numFields]string) (pricing.Request, error) {
	var vals [numFields]float64
	for i, text := range texts {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return pricing.Request{}, &pricing.InvalidInputError{Field: fieldNames[i], Value: text, Reason: "not a number"}
		}
		vals[i] = v
	}

	req := pricing.Request{
		Spot:         vals[StockPrice],
		Strike:       vals[StrikePrice],
		TimeToExpiry: vals[TimeToExpiry],
		RiskFreeRate: vals[RiskFreeRate],
		Volatility:   vals[Volatility],
	}
	if err := req.Validate(); err != nil {
		return pricing.Request{}, err
	}
	return req, nil
}

// Form holds the text of each input and what is currently displayed.
type Form struct {
	inputs [numFields]string

	CallText string
	PutText  string
	Message  string
}

// NewForm returns an empty form.
func NewForm() *Form { return &Form{} }

// Set replaces the text of one field.
func (f *Form) Set(field Field, text string) {
	f.inputs[field] = text
}

// Get returns the text of one field.
func (f *Form) Get(field Field) string {
	return f.inputs[field]
}

// Calculate prices the current inputs. On success both price lines are
// replaced and the message cleared. On failure no price is shown: both lines
// are cleared and Message is set to InvalidInputMessage. The returned error
// is the underlying *pricing.InvalidInputError.
func (f *Form) Calculate() error {
	req, err := ParseRequest(f.inputs)
	if err == nil {
		var res pricing.Result
		if res, err = pricing.Price(req); err == nil {
			f.CallText = CallLine(res.Call)
			f.PutText = PutLine(res.Put)
			f.Message = ""
			return nil
		}
	}

	f.CallText, f.PutText = "", ""
	f.Message = InvalidInputMessage
	return err
}

// Display returns the non-empty display lines in form order.
func (f *Form) Display() []string {
	var out []string
	for _, s := range []string{f.CallText, f.PutText, f.Message} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

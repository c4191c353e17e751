package pricing

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// OptionKind selects the option leg.
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// Valid reports whether k is Call or Put.
func (k OptionKind) Valid() bool {
	return k == Call || k == Put
}

// ParseKind maps "call"/"put" (case and surrounding space ignored) to an OptionKind.
func ParseKind(s string) (OptionKind, error) {
	kind := OptionKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", &InvalidInputError{Field: "kind", Value: s, Reason: "must be call or put"}
	}
	return kind, nil
}

// Request carries the five market inputs of a single pricing call.
type Request struct {
	Spot         float64 `json:"spot" validate:"finite,gt=0"`
	Strike       float64 `json:"strike" validate:"finite,gt=0"`
	TimeToExpiry float64 `json:"time_to_expiry" validate:"finite,gt=0"`
	RiskFreeRate float64 `json:"risk_free_rate" validate:"finite"`
	Volatility   float64 `json:"volatility" validate:"finite,gt=0"`
}

// ErrInvalidInput is matched by every *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports the first offending field of a request.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks that every field is finite and that spot, strike, time to
// expiry and volatility are strictly positive. The risk-free rate may take any
// finite value.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &InvalidInputError{Field: fe.Field(), Value: fe.Value(), Reason: reason(fe.Tag())}
	}
	return &InvalidInputError{Field: "request", Value: r, Reason: err.Error()}
}

func reason(tag string) string {
	switch tag {
	case "finite":
		return "must be a finite number"
	case "gt":
		return "must be greater than zero"
	default:
		return "failed " + tag
	}
}

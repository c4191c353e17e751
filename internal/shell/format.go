package shell

import (
	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// InvalidInputMessage is the single advisory shown for any malformed input.
const InvalidInputMessage = "Please enter valid numbers for all fields."

// Round2 renders v with two decimals. The exact binary value of v is
// rounded half to even, so 2.675 (stored as 2.67499...) gives "2.67".
func Round2(v float64) string {
	return decimal.NewFromFloatWithExponent(v, -60).StringFixedBank(2)
}

// CallLine formats the call price for display.
func CallLine(price float64) string {
	return "Call Option Price: " + Round2(price)
}

// PutLine formats the put price for display.
func PutLine(price float64) string {
	return "Put Option Price: " + Round2(price)
}

// Lines formats both prices in display order.
func Lines(res pricing.Result) []string {
	return []string{CallLine(res.Call), PutLine(res.Put)}
}

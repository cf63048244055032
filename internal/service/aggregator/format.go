package aggregator

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is rendered in place of a missing aggregate.
const NotAvailable = "N/A"

var rupeePrinter = message.NewPrinter(language.English)

// FormatRupees renders a whole-rupee amount with thousands separators, or
// NotAvailable when the amount is missing or not a finite number.
func FormatRupees(amount *float64) string {
	if amount == nil || math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return NotAvailable
	}
	return rupeePrinter.Sprintf("₹%d", int64(math.Round(*amount)))
}

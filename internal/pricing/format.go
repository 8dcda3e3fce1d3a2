package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// FormatCurrency renders a rupiah amount with locale-aware thousand grouping
// and no minor units, e.g. 20000 -> "Rp20.000". The same input always yields
// the same string.
func FormatCurrency(amount int64) string {
	return rupiahPrinter.Sprintf("Rp%d", amount)
}

package documents

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatAmount renders a money amount with thousands separators and the
// currency code, e.g. "ZMW 1,234.50". Used on document summaries.
func FormatAmount(currency string, amount float64) string {
	return moneyPrinter.Sprintf("%s %.2f", currency, amount)
}

// Summary is the condensed view returned alongside a document, with amounts
// pre-formatted for display.
type Summary struct {
	DocNumber  string `json:"doc_number"`
	Status     string `json:"status"`
	Subtotal   string `json:"subtotal"`
	TaxTotal   string `json:"tax_total"`
	GrandTotal string `json:"grand_total"`
}

// Summarize builds the display summary of a document.
func Summarize(doc *Document) Summary {
	return Summary{
		DocNumber:  doc.DocNumber,
		Status:     string(doc.Status),
		Subtotal:   FormatAmount(doc.Currency, doc.Subtotal),
		TaxTotal:   FormatAmount(doc.Currency, doc.TaxTotal),
		GrandTotal: FormatAmount(doc.Currency, doc.GrandTotal),
	}
}

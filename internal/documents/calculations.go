package documents

// CalculateLineTotals derives the money amounts of a single line.
func CalculateLineTotals(quantity, unitPrice, discountPercent, taxPercent float64) (discountAmount, taxAmount, lineTotal float64) {
	grossAmount := quantity * unitPrice
	discountAmount = grossAmount * (discountPercent / 100)
	netAmount := grossAmount - discountAmount
	taxAmount = netAmount * (taxPercent / 100)
	lineTotal = netAmount + taxAmount
	return
}

// Totals aggregates document amounts from its lines. Each line's derived
// fields are recomputed so the stored values can never disagree with the
// inputs, regardless of what the client sent.
func Totals(lines []DocumentLine) (subtotal, taxTotal, grandTotal float64) {
	for i := range lines {
		discount, tax, lineTotal := CalculateLineTotals(
			lines[i].Quantity,
			lines[i].UnitPrice,
			lines[i].DiscountPercent,
			lines[i].TaxPercent,
		)
		lines[i].DiscountAmount = discount
		lines[i].TaxAmount = tax
		lines[i].LineTotal = lineTotal

		subtotal += (lines[i].Quantity * lines[i].UnitPrice) - discount
		taxTotal += tax
		grandTotal += lineTotal
	}
	return
}

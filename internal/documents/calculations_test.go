package documents

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateLineTotals(t *testing.T) {
	discount, tax, total := CalculateLineTotals(10, 100, 10, 16)
	assert.Equal(t, 100.0, discount)
	assert.Equal(t, 144.0, tax)
	assert.Equal(t, 1044.0, total)
}

func TestCalculateLineTotalsZeroRates(t *testing.T) {
	discount, tax, total := CalculateLineTotals(3, 50, 0, 0)
	assert.Zero(t, discount)
	assert.Zero(t, tax)
	assert.Equal(t, 150.0, total)
}

func TestTotalsIdentity(t *testing.T) {
	lines := []DocumentLine{
		{Quantity: 2, UnitPrice: 100, DiscountPercent: 5, TaxPercent: 16},
		{Quantity: 1, UnitPrice: 40, TaxPercent: 16},
		{Quantity: 10, UnitPrice: 3.5},
	}
	subtotal, taxTotal, grandTotal := Totals(lines)

	assert.InDelta(t, subtotal+taxTotal, grandTotal, 1e-9)

	// Line amounts are recomputed in place.
	for _, line := range lines {
		net := line.Quantity*line.UnitPrice - line.DiscountAmount
		assert.InDelta(t, net+line.TaxAmount, line.LineTotal, 1e-9)
	}
}

func TestTotalsOrderIndependent(t *testing.T) {
	lines := []DocumentLine{
		{Quantity: 2, UnitPrice: 99.99, DiscountPercent: 2.5, TaxPercent: 16},
		{Quantity: 7, UnitPrice: 12, TaxPercent: 5},
		{Quantity: 1, UnitPrice: 1000, DiscountPercent: 50},
	}
	wantSub, wantTax, wantGrand := Totals(append([]DocumentLine(nil), lines...))

	shuffled := append([]DocumentLine(nil), lines...)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	gotSub, gotTax, gotGrand := Totals(shuffled)

	assert.InDelta(t, wantSub, gotSub, 1e-9)
	assert.InDelta(t, wantTax, gotTax, 1e-9)
	assert.InDelta(t, wantGrand, gotGrand, 1e-9)
}

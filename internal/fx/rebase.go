package fx

// Line is the slice of a document line the rebase cares about: the price
// shown in the document currency and the cached amount in the base currency.
type Line struct {
	ItemCode   string
	UnitPrice  float64
	BaseAmount *float64
}

// Rebase re-expresses line prices under a new document currency.
//
// Each priced line keeps a shadow amount in the base currency. When the
// shadow is present it is reused, so switching A->B->A restores the original
// price instead of compounding rounding from successive divisions. The
// recomputed shadow is always written back for the next switch. Lines
// without an item code are placeholder rows and are left alone.
func Rebase(lines []Line, prevCurrency string, prevRate float64, nextCurrency string, nextRate float64) ([]Line, error) {
	prevBase := IsBase(prevCurrency)
	nextBase := IsBase(nextCurrency)
	if !prevBase {
		if err := ValidateRate(prevRate); err != nil {
			return nil, err
		}
	}
	if !nextBase {
		if err := ValidateRate(nextRate); err != nil {
			return nil, err
		}
	}

	out := make([]Line, len(lines))
	copy(out, lines)
	for i := range out {
		if out[i].ItemCode == "" {
			continue
		}
		base := out[i].UnitPrice
		switch {
		case out[i].BaseAmount != nil:
			base = *out[i].BaseAmount
		case !prevBase:
			base = out[i].UnitPrice * prevRate
		}
		if nextBase {
			out[i].UnitPrice = base
		} else {
			out[i].UnitPrice = base / nextRate
		}
		cached := base
		out[i].BaseAmount = &cached
	}
	return out, nil
}

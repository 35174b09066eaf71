package items

import "time"

// Item is a sellable or purchasable product. Unit price is held in the
// base currency; documents convert at their own exchange rate.
type Item struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UOM         string    `json:"uom"`
	UnitPrice   float64   `json:"unit_price"`
	TaxCode     string    `json:"tax_code"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package taxes

import "time"

// TaxCode couples a jurisdictional classifier with its VAT percentage.
type TaxCode struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Percent     float64   `json:"percent"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package customers

import "time"

// Address is a billing or shipping field set.
type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// IsEmpty reports whether no field of the address is filled.
func (a Address) IsEmpty() bool {
	return a.Line1 == "" && a.Line2 == "" && a.City == "" && a.Country == ""
}

// Customer represents a customer entity.
type Customer struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	TPIN        string    `json:"tpin"`
	Currency    string    `json:"currency"`
	CreditTerms string    `json:"credit_terms"`
	Billing     Address   `json:"billing"`
	Shipping    Address   `json:"shipping"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

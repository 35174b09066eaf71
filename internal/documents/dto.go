package documents

import (
	"time"

	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
)

type CreateDocumentRequest struct {
	Type         DocType            `json:"type" validate:"required"`
	PartyID      int64              `json:"party_id" validate:"required,gt=0"`
	Currency     string             `json:"currency" validate:"required,len=3"`
	ExchangeRate float64            `json:"exchange_rate" validate:"omitempty,gt=0"`
	IssueDate    time.Time          `json:"issue_date" validate:"required"`
	DueDate      *time.Time         `json:"due_date,omitempty"`
	LPONumber    string             `json:"lpo_number,omitempty"`
	Billing      *customers.Address `json:"billing,omitempty"`
	Shipping     *customers.Address `json:"shipping,omitempty"`
	Payment      PaymentInfo        `json:"payment"`
	Terms        string             `json:"terms,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	Lines        []LineRequest      `json:"lines" validate:"required,min=1,dive"`
}

type LineRequest struct {
	ItemCode        string  `json:"item_code" validate:"required"`
	Description     string  `json:"description,omitempty"`
	Quantity        float64 `json:"quantity" validate:"required,gt=0"`
	UOM             string  `json:"uom" validate:"max=20"`
	UnitPrice       float64 `json:"unit_price" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	TaxCode         string  `json:"tax_code,omitempty"`
	TaxPercent      float64 `json:"tax_percent" validate:"gte=0,lte=100"`
	LineOrder       int     `json:"line_order" validate:"gte=0"`
}

type UpdateDocumentRequest struct {
	IssueDate *time.Time         `json:"issue_date,omitempty"`
	DueDate   *time.Time         `json:"due_date,omitempty"`
	LPONumber *string            `json:"lpo_number,omitempty"`
	Billing   *customers.Address `json:"billing,omitempty"`
	Shipping  *customers.Address `json:"shipping,omitempty"`
	Payment   *PaymentInfo       `json:"payment,omitempty"`
	Terms     *string            `json:"terms,omitempty"`
	Notes     *string            `json:"notes,omitempty"`
	Lines     *[]LineRequest     `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type ListDocumentsRequest struct {
	Types    []DocType  `json:"types,omitempty"`
	PartyID  *int64     `json:"party_id,omitempty"`
	Status   *DocStatus `json:"status,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	Search   string     `json:"search,omitempty"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

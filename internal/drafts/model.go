// Package drafts holds the working copy of a document while it is being
// prepared. Drafts live in Redis under a TTL, carry their own line-table
// paging state, and turn into a real document on submit.
package drafts

import (
	"errors"
	"time"

	"github.com/zambezi-erp/zambezi-erp/internal/documents"
	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
)

var (
	ErrNotFound    = errors.New("drafts: draft not found")
	ErrBadLine     = errors.New("drafts: line index out of range")
	ErrEmptyDraft  = errors.New("drafts: draft has no lines to submit")
	ErrTermsStaged = errors.New("drafts: no staged terms")
)

const DefaultPageSize = 10

// Line is one row of the draft's line table. BaseAmount shadows the unit
// price in the base currency so repeated currency switches do not drift.
type Line struct {
	ItemCode        string   `json:"item_code"`
	Description     string   `json:"description,omitempty"`
	Quantity        float64  `json:"quantity"`
	UOM             string   `json:"uom,omitempty"`
	UnitPrice       float64  `json:"unit_price"`
	BaseAmount      *float64 `json:"base_amount,omitempty"`
	DiscountPercent float64  `json:"discount_percent"`
	TaxCode         string   `json:"tax_code,omitempty"`
	TaxPercent      float64  `json:"tax_percent"`
}

// Draft is the mutable working copy of a document.
type Draft struct {
	ID            string                `json:"id"`
	Type          documents.DocType     `json:"type"`
	PartyID       int64                 `json:"party_id"`
	Currency      string                `json:"currency"`
	ExchangeRate  float64               `json:"exchange_rate"`
	RateError     bool                  `json:"rate_error"`
	IssueDate     time.Time             `json:"issue_date"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	LPONumber     string                `json:"lpo_number,omitempty"`
	Billing       customers.Address     `json:"billing"`
	Shipping      customers.Address     `json:"shipping"`
	SameAsBilling bool                  `json:"same_as_billing"`
	ShippingDirty bool                  `json:"shipping_dirty"`
	Payment       documents.PaymentInfo `json:"payment"`
	Terms         map[string]string     `json:"terms,omitempty"`
	StagedTerms   map[string]string     `json:"staged_terms,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Lines         []Line                `json:"lines"`
	PageSize      int                   `json:"page_size"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func (d *Draft) pageSize() int {
	if d.PageSize <= 0 {
		return DefaultPageSize
	}
	return d.PageSize
}

// fxLines projects the draft lines into the slice the rebase works on.
func (d *Draft) fxLines() []fx.Line {
	out := make([]fx.Line, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = fx.Line{ItemCode: l.ItemCode, UnitPrice: l.UnitPrice, BaseAmount: l.BaseAmount}
	}
	return out
}

func (d *Draft) applyFXLines(lines []fx.Line) {
	for i := range d.Lines {
		d.Lines[i].UnitPrice = lines[i].UnitPrice
		d.Lines[i].BaseAmount = lines[i].BaseAmount
	}
}

// LineResult is returned by line mutations; Page is the zero-based page of
// the line table that should be shown after the change.
type LineResult struct {
	Draft *Draft `json:"draft"`
	Page  int    `json:"page"`
}

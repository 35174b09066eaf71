package documents

import (
	"errors"
	"time"

	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
)

// DocType identifies one of the sales or procurement document kinds. All
// kinds share the same engine; earlier systems grew a near-identical copy of
// the form logic per kind and drifted apart.
type DocType string

const (
	TypeQuotation       DocType = "QUOTATION"
	TypeInvoice         DocType = "INVOICE"
	TypeLPOInvoice      DocType = "LPO_INVOICE"
	TypeProformaInvoice DocType = "PROFORMA_INVOICE"
	TypeCreditNote      DocType = "CREDIT_NOTE"
	TypeDebitNote       DocType = "DEBIT_NOTE"
	TypePurchaseOrder   DocType = "PURCHASE_ORDER"
	TypePurchaseInvoice DocType = "PURCHASE_INVOICE"
)

// PartySide tells whether a document type references a customer or a supplier.
type PartySide string

const (
	SideCustomer PartySide = "CUSTOMER"
	SideSupplier PartySide = "SUPPLIER"
)

type DocStatus string

const (
	StatusDraft     DocStatus = "DRAFT"
	StatusSubmitted DocStatus = "SUBMITTED"
	StatusCancelled DocStatus = "CANCELLED"
)

var (
	ErrUnknownType   = errors.New("unknown document type")
	ErrInvalidStatus = errors.New("invalid status transition")
	ErrLPORequired   = errors.New("LPO number is required for LPO invoices")
	ErrBadLPONumber  = errors.New("LPO number must look like LPO-12345")
	ErrInvalidLine   = errors.New("invalid document line")
	ErrNotFound      = errors.New("document not found")
)

var docTypeMeta = map[DocType]struct {
	prefix string
	side   PartySide
}{
	TypeQuotation:       {"QUO", SideCustomer},
	TypeInvoice:         {"INV", SideCustomer},
	TypeLPOInvoice:      {"LPI", SideCustomer},
	TypeProformaInvoice: {"PFI", SideCustomer},
	TypeCreditNote:      {"CRN", SideCustomer},
	TypeDebitNote:       {"DBN", SideCustomer},
	TypePurchaseOrder:   {"PO", SideSupplier},
	TypePurchaseInvoice: {"PIN", SideSupplier},
}

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	_, ok := docTypeMeta[t]
	return ok
}

// Prefix returns the numbering prefix for the type.
func (t DocType) Prefix() string {
	return docTypeMeta[t].prefix
}

// Side returns which party the type references.
func (t DocType) Side() PartySide {
	return docTypeMeta[t].side
}

// SalesTypes lists all customer-side document types.
func SalesTypes() []DocType {
	return []DocType{TypeQuotation, TypeInvoice, TypeLPOInvoice, TypeProformaInvoice, TypeCreditNote, TypeDebitNote}
}

// ProcurementTypes lists all supplier-side document types.
func ProcurementTypes() []DocType {
	return []DocType{TypePurchaseOrder, TypePurchaseInvoice}
}

// PaymentInfo carries free-form settlement details printed on the document.
type PaymentInfo struct {
	Method      string `json:"method,omitempty"`
	Reference   string `json:"reference,omitempty"`
	BankDetails string `json:"bank_details,omitempty"`
}

// Document is a finalized sales or procurement document.
type Document struct {
	ID           int64             `json:"id"`
	DocNumber    string            `json:"doc_number"`
	Type         DocType           `json:"type"`
	PartyID      int64             `json:"party_id"`
	Status       DocStatus         `json:"status"`
	Currency     string            `json:"currency"`
	ExchangeRate float64           `json:"exchange_rate"`
	IssueDate    time.Time         `json:"issue_date"`
	DueDate      *time.Time        `json:"due_date,omitempty"`
	LPONumber    string            `json:"lpo_number,omitempty"`
	Billing      customers.Address `json:"billing"`
	Shipping     customers.Address `json:"shipping"`
	Payment      PaymentInfo       `json:"payment"`
	Terms        string            `json:"terms,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Subtotal     float64           `json:"subtotal"`
	TaxTotal     float64           `json:"tax_total"`
	GrandTotal   float64           `json:"grand_total"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Lines        []DocumentLine    `json:"lines,omitempty"`
}

// DocumentLine is one priced row of a document.
type DocumentLine struct {
	ID              int64   `json:"id"`
	DocumentID      int64   `json:"document_id"`
	ItemCode        string  `json:"item_code"`
	Description     string  `json:"description,omitempty"`
	Quantity        float64 `json:"quantity"`
	UOM             string  `json:"uom"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	TaxCode         string  `json:"tax_code,omitempty"`
	TaxPercent      float64 `json:"tax_percent"`
	TaxAmount       float64 `json:"tax_amount"`
	LineTotal       float64 `json:"line_total"`
	LineOrder       int     `json:"line_order"`
}

// DocumentWithParty joins the party name for list views.
type DocumentWithParty struct {
	Document
	PartyName string `json:"party_name"`
}

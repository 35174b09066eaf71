package documents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
	mdshared "github.com/zambezi-erp/zambezi-erp/internal/masterdata/shared"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/suppliers"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockRepository struct {
	docs     map[int64]*Document
	lines    map[int64][]DocumentLine
	nextID   int64
	counters map[string]int
	lastList ListDocumentsRequest
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		docs:     make(map[int64]*Document),
		lines:    make(map[int64][]DocumentLine),
		counters: make(map[string]int),
		nextID:   1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *doc
	out.Lines = append([]DocumentLine(nil), m.lines[id]...)
	return &out, nil
}

func (m *mockRepository) GetByNumber(ctx context.Context, docNumber string) (*Document, error) {
	for id, doc := range m.docs {
		if doc.DocNumber == docNumber {
			return m.Get(ctx, id)
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, req ListDocumentsRequest) ([]DocumentWithParty, int, error) {
	m.lastList = req
	var out []DocumentWithParty
	for _, doc := range m.docs {
		out = append(out, DocumentWithParty{Document: *doc})
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, doc Document) (int64, error) {
	id := m.nextID
	m.nextID++
	doc.ID = id
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	m.docs[id] = &doc
	return id, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["subtotal"]; ok {
		doc.Subtotal = v.(float64)
	}
	if v, ok := updates["tax_total"]; ok {
		doc.TaxTotal = v.(float64)
	}
	if v, ok := updates["grand_total"]; ok {
		doc.GrandTotal = v.(float64)
	}
	if v, ok := updates["lpo_number"]; ok {
		doc.LPONumber = v.(string)
	}
	if v, ok := updates["notes"]; ok {
		doc.Notes = v.(string)
	}
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status DocStatus) error {
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	return nil
}

func (m *mockRepository) InsertLine(ctx context.Context, line DocumentLine) (int64, error) {
	line.ID = int64(len(m.lines[line.DocumentID]) + 1)
	m.lines[line.DocumentID] = append(m.lines[line.DocumentID], line)
	return line.ID, nil
}

func (m *mockRepository) DeleteLines(ctx context.Context, documentID int64) error {
	delete(m.lines, documentID)
	return nil
}

func (m *mockRepository) NextNumber(ctx context.Context, docType DocType, issueDate time.Time) (string, error) {
	key := fmt.Sprintf("%s-%d", docType, issueDate.Year())
	m.counters[key]++
	return fmt.Sprintf("%s-%d-%05d", docType.Prefix(), issueDate.Year(), m.counters[key]), nil
}

type mockCustomerRepo struct {
	customers map[int64]customers.Customer
}

func (m *mockCustomerRepo) List(ctx context.Context, f mdshared.ListFilters) ([]customers.Customer, int, error) {
	return nil, 0, nil
}

func (m *mockCustomerRepo) Get(ctx context.Context, id int64) (customers.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return customers.Customer{}, mdshared.ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerRepo) GetByCode(ctx context.Context, code string) (customers.Customer, error) {
	return customers.Customer{}, mdshared.ErrNotFound
}

func (m *mockCustomerRepo) Create(ctx context.Context, c customers.Customer) (customers.Customer, error) {
	return c, nil
}

func (m *mockCustomerRepo) Update(ctx context.Context, id int64, c customers.Customer) error {
	return nil
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id int64) error { return nil }

type mockSupplierRepo struct {
	suppliers map[int64]suppliers.Supplier
}

func (m *mockSupplierRepo) List(ctx context.Context, f mdshared.ListFilters) ([]suppliers.Supplier, int, error) {
	return nil, 0, nil
}

func (m *mockSupplierRepo) Get(ctx context.Context, id int64) (suppliers.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return suppliers.Supplier{}, mdshared.ErrNotFound
	}
	return s, nil
}

func (m *mockSupplierRepo) Create(ctx context.Context, s suppliers.Supplier) (suppliers.Supplier, error) {
	return s, nil
}

func (m *mockSupplierRepo) Update(ctx context.Context, id int64, s suppliers.Supplier) error {
	return nil
}

func (m *mockSupplierRepo) Delete(ctx context.Context, id int64) error { return nil }

// ============================================================================
// HELPERS
// ============================================================================

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	customerRepo := &mockCustomerRepo{customers: map[int64]customers.Customer{
		1: {
			ID:   1,
			Code: "CUST-1",
			Name: "Kafue Trading",
			Billing: customers.Address{
				Line1: "12 Cairo Road", City: "Lusaka", Country: "Zambia",
			},
		},
		2: {
			ID:   2,
			Code: "CUST-2",
			Name: "Luangwa Ltd",
			Billing: customers.Address{
				Line1: "1 Main St", City: "Ndola", Country: "Zambia",
			},
			Shipping: customers.Address{
				Line1: "Warehouse 4, Industrial Area", City: "Ndola", Country: "Zambia",
			},
		},
	}}
	supplierRepo := &mockSupplierRepo{suppliers: map[int64]suppliers.Supplier{
		7: {ID: 7, Code: "SUP-7", Name: "Copperbelt Supplies"},
	}}
	return NewService(repo, customerRepo, supplierRepo), repo
}

func validInvoiceRequest() CreateDocumentRequest {
	return CreateDocumentRequest{
		Type:      TypeInvoice,
		PartyID:   1,
		Currency:  "ZMW",
		IssueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []LineRequest{
			{ItemCode: "ITM-1", Quantity: 2, UnitPrice: 100, TaxPercent: 16},
			{ItemCode: "ITM-2", Quantity: 1, UnitPrice: 50, DiscountPercent: 10},
		},
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateComputesTotalsAndNumber(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.Create(context.Background(), validInvoiceRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-00001", doc.DocNumber)
	assert.Equal(t, StatusDraft, doc.Status)
	assert.Equal(t, 1.0, doc.ExchangeRate)
	assert.InDelta(t, 245.0, doc.Subtotal, 1e-9)
	assert.InDelta(t, 32.0, doc.TaxTotal, 1e-9)
	assert.InDelta(t, 277.0, doc.GrandTotal, 1e-9)
	assert.Len(t, doc.Lines, 2)
}

func TestCreateNumbersAreSequentialPerType(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.Create(context.Background(), validInvoiceRequest())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), validInvoiceRequest())
	require.NoError(t, err)

	quoteReq := validInvoiceRequest()
	quoteReq.Type = TypeQuotation
	quote, err := svc.Create(context.Background(), quoteReq)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-00001", first.DocNumber)
	assert.Equal(t, "INV-2026-00002", second.DocNumber)
	assert.Equal(t, "QUO-2026-00001", quote.DocNumber)
}

func TestCreateShippingFallsBackToBilling(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.Create(context.Background(), validInvoiceRequest())
	require.NoError(t, err)
	assert.Equal(t, doc.Billing, doc.Shipping)
	assert.Equal(t, "12 Cairo Road", doc.Shipping.Line1)
}

func TestCreateUsesCustomerShippingWhenPresent(t *testing.T) {
	svc, _ := newTestService()

	req := validInvoiceRequest()
	req.PartyID = 2
	doc, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Warehouse 4, Industrial Area", doc.Shipping.Line1)
	assert.NotEqual(t, doc.Billing, doc.Shipping)
}

func TestCreateLPOInvoiceRequiresNumber(t *testing.T) {
	svc, _ := newTestService()

	req := validInvoiceRequest()
	req.Type = TypeLPOInvoice
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrLPORequired)

	req.LPONumber = "not an lpo"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrBadLPONumber)

	req.LPONumber = "LPO-20260310"
	doc, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "LPO-20260310", doc.LPONumber)
}

func TestCreateRejectsBadLines(t *testing.T) {
	svc, repo := newTestService()

	req := validInvoiceRequest()
	req.Lines[0].Quantity = -5
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidLine)

	req = validInvoiceRequest()
	req.Lines[1].DiscountPercent = 150
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidLine)

	req = validInvoiceRequest()
	req.Lines[0].UnitPrice = -100
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidLine)

	assert.Empty(t, repo.docs, "rejected documents are never stored")
}

func TestUpdateRejectsBadLines(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.Create(context.Background(), validInvoiceRequest())
	require.NoError(t, err)

	badLines := []LineRequest{{ItemCode: "ITM-9", Quantity: 1, UnitPrice: 100, TaxPercent: 130}}
	_, err = svc.Update(context.Background(), doc.ID, UpdateDocumentRequest{Lines: &badLines})
	assert.ErrorIs(t, err, ErrInvalidLine)

	stored, err := svc.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.InDelta(t, 277.0, stored.GrandTotal, 1e-9, "totals keep the last valid lines")
}

func TestCreateForeignCurrencyNeedsValidRate(t *testing.T) {
	svc, _ := newTestService()

	req := validInvoiceRequest()
	req.Currency = "USD"
	req.ExchangeRate = 0
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, fx.ErrBadRate)

	req.ExchangeRate = 20
	doc, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 20.0, doc.ExchangeRate)
}

func TestCreateUnknownCustomer(t *testing.T) {
	svc, _ := newTestService()

	req := validInvoiceRequest()
	req.PartyID = 99
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, mdshared.ErrNotFound)
}

func TestCreatePurchaseOrderVerifiesSupplier(t *testing.T) {
	svc, _ := newTestService()

	req := validInvoiceRequest()
	req.Type = TypePurchaseOrder
	req.PartyID = 7
	doc, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00001", doc.DocNumber)

	req.PartyID = 1
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, mdshared.ErrNotFound)
}

func TestUpdateOnlyDraft(t *testing.T) {
	svc, repo := newTestService()

	doc, err := svc.Create(context.Background(), validInvoiceRequest())
	require.NoError(t, err)

	repo.docs[doc.ID].Status = StatusSubmitted
	notes := "changed"
	_, err = svc.Update(context.Background(), doc.ID, UpdateDocumentRequest{Notes: &notes})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateReplacingLinesRecomputesTotals(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.Create(context.Background(), validInvoiceRequest())
	require.NoError(t, err)

	newLines := []LineRequest{{ItemCode: "ITM-9", Quantity: 1, UnitPrice: 500}}
	updated, err := svc.Update(context.Background(), doc.ID, UpdateDocumentRequest{Lines: &newLines})
	require.NoError(t, err)
	assert.InDelta(t, 500.0, updated.Subtotal, 1e-9)
	assert.InDelta(t, 500.0, updated.GrandTotal, 1e-9)
	assert.Len(t, updated.Lines, 1)
}

func TestSubmitAndCancelTransitions(t *testing.T) {
	svc, _ := newTestService()

	doc, err := svc.Create(context.Background(), validInvoiceRequest())
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, submitted.Status)

	_, err = svc.Submit(context.Background(), doc.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	cancelled, err := svc.Cancel(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), doc.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

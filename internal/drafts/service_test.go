package drafts

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zambezi-erp/zambezi-erp/internal/documents"
	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
	mdshared "github.com/zambezi-erp/zambezi-erp/internal/masterdata/shared"
	"github.com/zambezi-erp/zambezi-erp/internal/terms"
)

type stubRates struct {
	rates    map[string]float64
	err      error
	lookups  int
	onLookup func()
}

func (s *stubRates) Lookup(ctx context.Context, currency string) (fx.Rate, error) {
	s.lookups++
	if s.onLookup != nil {
		s.onLookup()
	}
	if s.err != nil {
		return fx.Rate{}, s.err
	}
	rate, ok := s.rates[currency]
	if !ok {
		return fx.Rate{}, fx.ErrUnknownCurrency
	}
	return fx.Rate{Currency: currency, Rate: rate}, nil
}

type stubCustomers struct {
	customers map[int64]customers.Customer
}

func (s *stubCustomers) Get(ctx context.Context, id int64) (customers.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return customers.Customer{}, mdshared.ErrNotFound
	}
	return c, nil
}

type stubSubmitter struct {
	created []documents.CreateDocumentRequest
	err     error
}

func (s *stubSubmitter) Create(ctx context.Context, req documents.CreateDocumentRequest) (*documents.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, req)
	return &documents.Document{ID: int64(len(s.created)), DocNumber: "INV-2026-00001", Status: documents.StatusDraft}, nil
}

func newTestService(t *testing.T) (*Service, *stubRates, *stubCustomers, *stubSubmitter) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rates := &stubRates{rates: map[string]float64{"USD": 20, "EUR": 25}}
	custs := &stubCustomers{customers: map[int64]customers.Customer{
		1: {
			ID: 1, Name: "Kafue Trading", Currency: "ZMW",
			Billing: customers.Address{Line1: "12 Cairo Road", City: "Lusaka", Country: "Zambia"},
		},
		2: {
			ID: 2, Name: "Luangwa Ltd", Currency: "USD",
			Billing:  customers.Address{Line1: "1 Main St", City: "Ndola", Country: "Zambia"},
			Shipping: customers.Address{Line1: "Warehouse 4", City: "Ndola", Country: "Zambia"},
		},
	}}
	submitter := &stubSubmitter{}
	store := NewStore(rdb, time.Hour)
	return NewService(store, rates, custs, submitter, nil), rates, custs, submitter
}

func newDraft(t *testing.T, svc *Service) *Draft {
	t.Helper()
	draft, err := svc.Create(context.Background(), CreateDraftRequest{Type: documents.TypeInvoice, PartyID: 1})
	require.NoError(t, err)
	return draft
}

func TestCreateSeedsFromCustomer(t *testing.T) {
	svc, rates, _, _ := newTestService(t)

	draft := newDraft(t, svc)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, fx.BaseCurrency, draft.Currency)
	assert.Equal(t, 1.0, draft.ExchangeRate)
	assert.Equal(t, "12 Cairo Road", draft.Billing.Line1)
	assert.Equal(t, draft.Billing, draft.Shipping, "shipping falls back to billing")
	assert.True(t, draft.SameAsBilling)
	assert.Zero(t, rates.lookups, "base currency never fetches a rate")
}

func TestCreateUsesCustomerShippingAndCurrency(t *testing.T) {
	svc, rates, _, _ := newTestService(t)

	draft, err := svc.Create(context.Background(), CreateDraftRequest{Type: documents.TypeInvoice, PartyID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Warehouse 4", draft.Shipping.Line1)
	assert.False(t, draft.SameAsBilling)
	assert.Equal(t, "USD", draft.Currency)
	assert.Equal(t, 20.0, draft.ExchangeRate)
	assert.Equal(t, 1, rates.lookups)
}

func TestCreateUnknownCustomer(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateDraftRequest{Type: documents.TypeInvoice, PartyID: 42})
	assert.ErrorIs(t, err, mdshared.ErrNotFound)
}

func TestGetUnknownDraft(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddLineLandsOnLastPage(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	var result *LineResult
	var err error
	for i := 0; i < 11; i++ {
		result, err = svc.AddLine(context.Background(), draft.ID, Line{ItemCode: "ITM-1", Quantity: 1, UnitPrice: 10})
		require.NoError(t, err)
	}
	assert.Len(t, result.Draft.Lines, 11)
	assert.Equal(t, 1, result.Page, "11th row with page size 10 lands on page 1")
}

func TestRemoveLineClampsPage(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	for i := 0; i < 11; i++ {
		_, err := svc.AddLine(context.Background(), draft.ID, Line{ItemCode: "ITM-1", Quantity: 1, UnitPrice: 10})
		require.NoError(t, err)
	}

	// Removing the only row on the last page clamps back to page 0.
	result, err := svc.RemoveLine(context.Background(), draft.ID, 10)
	require.NoError(t, err)
	assert.Len(t, result.Draft.Lines, 10)
	assert.Equal(t, 0, result.Page)
}

func TestRemoveLineOutOfRange(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	_, err := svc.RemoveLine(context.Background(), draft.ID, 0)
	assert.ErrorIs(t, err, ErrBadLine)
}

func TestSwitchCurrencyRebasesAndRoundTrips(t *testing.T) {
	svc, rates, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	_, err := svc.AddLine(context.Background(), draft.ID, Line{ItemCode: "ITM-1", Quantity: 1, UnitPrice: 100})
	require.NoError(t, err)

	switched, err := svc.SwitchCurrency(context.Background(), draft.ID, "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", switched.Currency)
	assert.Equal(t, 20.0, switched.ExchangeRate)
	assert.InDelta(t, 5.0, switched.Lines[0].UnitPrice, 1e-9)
	require.NotNil(t, switched.Lines[0].BaseAmount)
	assert.InDelta(t, 100.0, *switched.Lines[0].BaseAmount, 1e-9)

	back, err := svc.SwitchCurrency(context.Background(), draft.ID, "ZMW")
	require.NoError(t, err)
	assert.Equal(t, 100.0, back.Lines[0].UnitPrice, "round trip restores the original price exactly")
	assert.Equal(t, 1.0, back.ExchangeRate)
	assert.Equal(t, 1, rates.lookups, "switching to the base currency never fetches")
}

func TestSwitchCurrencyFetchFailureLeavesDraftUntouched(t *testing.T) {
	svc, rates, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	_, err := svc.AddLine(context.Background(), draft.ID, Line{ItemCode: "ITM-1", Quantity: 1, UnitPrice: 100})
	require.NoError(t, err)

	rates.err = errors.New("rates endpoint down")
	_, err = svc.SwitchCurrency(context.Background(), draft.ID, "USD")
	require.Error(t, err)

	stored, err := svc.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.BaseCurrency, stored.Currency)
	assert.Equal(t, 100.0, stored.Lines[0].UnitPrice)
	assert.True(t, stored.RateError, "error flag stays readable on the draft")

	// Next successful switch clears the flag.
	rates.err = nil
	switched, err := svc.SwitchCurrency(context.Background(), draft.ID, "USD")
	require.NoError(t, err)
	assert.False(t, switched.RateError)
}

func TestSwitchCurrencyBadStoredRate(t *testing.T) {
	svc, rates, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	rates.rates["GBP"] = -3
	_, err := svc.SwitchCurrency(context.Background(), draft.ID, "GBP")
	assert.ErrorIs(t, err, fx.ErrBadRate)

	stored, err := svc.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.True(t, stored.RateError)
}

func TestSwitchCurrencySameCurrencyIsNoop(t *testing.T) {
	svc, rates, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	switched, err := svc.SwitchCurrency(context.Background(), draft.ID, "zmw")
	require.NoError(t, err)
	assert.Equal(t, fx.BaseCurrency, switched.Currency)
	assert.Zero(t, rates.lookups)
}

func TestSwitchCurrencyLogsWhenFlagSaveFails(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rates := &stubRates{rates: map[string]float64{}}
	custs := &stubCustomers{customers: map[int64]customers.Customer{
		1: {ID: 1, Name: "Kafue Trading", Currency: "ZMW"},
	}}
	svc := NewService(NewStore(rdb, time.Hour), rates, custs, &stubSubmitter{}, logger)

	draft, err := svc.Create(context.Background(), CreateDraftRequest{Type: documents.TypeInvoice, PartyID: 1})
	require.NoError(t, err)

	// The rate fetch fails while redis is also down, so persisting the
	// error flag fails too. The lookup error still reaches the caller and
	// the failed save is logged rather than dropped.
	rates.err = errors.New("rates endpoint down")
	rates.onLookup = func() { mr.Close() }
	_, err = svc.SwitchCurrency(context.Background(), draft.ID, "USD")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "persist rate error flag failed")
	assert.Contains(t, buf.String(), draft.ID)
}

func TestSameAsBillingMirror(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	// While the mirror is on, billing writes propagate to shipping.
	updated, err := svc.UpdateBilling(context.Background(), draft.ID, customers.Address{Line1: "New Plot 5", City: "Kitwe", Country: "Zambia"})
	require.NoError(t, err)
	assert.Equal(t, "New Plot 5", updated.Shipping.Line1)
	assert.False(t, updated.ShippingDirty)

	// Turning the mirror off freezes shipping.
	_, err = svc.SetSameAsBilling(context.Background(), draft.ID, false)
	require.NoError(t, err)
	updated, err = svc.UpdateBilling(context.Background(), draft.ID, customers.Address{Line1: "Another Rd", City: "Lusaka", Country: "Zambia"})
	require.NoError(t, err)
	assert.Equal(t, "New Plot 5", updated.Shipping.Line1)

	// Turning it back on re-mirrors and clears dirty.
	updated, err = svc.SetSameAsBilling(context.Background(), draft.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Another Rd", updated.Shipping.Line1)
	assert.False(t, updated.ShippingDirty)
}

func TestUpdateShippingSetsDirtyAndBreaksMirror(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	updated, err := svc.UpdateShipping(context.Background(), draft.ID, customers.Address{Line1: "Depot 9", City: "Livingstone", Country: "Zambia"})
	require.NoError(t, err)
	assert.True(t, updated.ShippingDirty)
	assert.False(t, updated.SameAsBilling)

	// A customer reload must not overwrite the edited shipping block.
	reloaded, err := svc.ReloadCustomer(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Depot 9", reloaded.Shipping.Line1)
	assert.Equal(t, "12 Cairo Road", reloaded.Billing.Line1)
}

func TestReloadCustomerResetsCleanShipping(t *testing.T) {
	svc, _, custs, _ := newTestService(t)
	draft := newDraft(t, svc)

	custs.customers[1] = customers.Customer{
		ID: 1, Name: "Kafue Trading", Currency: "ZMW",
		Billing:  customers.Address{Line1: "Relocated 7", City: "Lusaka", Country: "Zambia"},
		Shipping: customers.Address{Line1: "New Depot", City: "Chipata", Country: "Zambia"},
	}

	reloaded, err := svc.ReloadCustomer(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Relocated 7", reloaded.Billing.Line1)
	assert.Equal(t, "New Depot", reloaded.Shipping.Line1)
	assert.False(t, reloaded.SameAsBilling)
}

func TestTermsStageCommitDiscard(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	staged, err := svc.StageTerms(context.Background(), draft.ID, terms.PaymentSection, "Deposit: 40% - Upfront\nBalance: 60% - On delivery")
	require.NoError(t, err)
	assert.NotNil(t, staged.StagedTerms)
	assert.Nil(t, staged.Terms, "staging does not commit")

	committed, err := svc.CommitTerms(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Nil(t, committed.StagedTerms)
	assert.Equal(t, "Deposit: 40% - Upfront\nBalance: 60% - On delivery", committed.Terms[terms.PaymentSection])

	// Staging again and discarding keeps the committed text.
	_, err = svc.StageTerms(context.Background(), draft.ID, terms.PaymentSection, "Deposit: 10% - Upfront")
	require.NoError(t, err)
	discarded, err := svc.DiscardTerms(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Nil(t, discarded.StagedTerms)
	assert.Equal(t, "Deposit: 40% - Upfront\nBalance: 60% - On delivery", discarded.Terms[terms.PaymentSection])
}

func TestCommitTermsRejectsBadPercentSum(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	_, err := svc.StageTerms(context.Background(), draft.ID, terms.PaymentSection, "Deposit: 40% - Upfront")
	require.NoError(t, err)
	_, err = svc.CommitTerms(context.Background(), draft.ID)
	assert.ErrorIs(t, err, terms.ErrBadPercent)

	stored, err := svc.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.StagedTerms, "failed commit keeps the staged draft")
	assert.Nil(t, stored.Terms)
}

func TestCommitTermsWithoutStaging(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	_, err := svc.CommitTerms(context.Background(), draft.ID)
	assert.ErrorIs(t, err, ErrTermsStaged)
}

func TestSubmitCreatesDocumentAndDeletesDraft(t *testing.T) {
	svc, _, _, submitter := newTestService(t)
	draft := newDraft(t, svc)

	_, err := svc.AddLine(context.Background(), draft.ID, Line{ItemCode: "ITM-1", Quantity: 2, UnitPrice: 100})
	require.NoError(t, err)
	// Placeholder rows without an item code are dropped from the payload.
	_, err = svc.AddLine(context.Background(), draft.ID, Line{Quantity: 1})
	require.NoError(t, err)

	doc, err := svc.Submit(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", doc.DocNumber)

	require.Len(t, submitter.created, 1)
	assert.Len(t, submitter.created[0].Lines, 1)
	assert.Equal(t, "ITM-1", submitter.created[0].Lines[0].ItemCode)

	_, err = svc.Get(context.Background(), draft.ID)
	assert.ErrorIs(t, err, ErrNotFound, "draft is deleted after submit")
}

func TestSubmitRejectsBadLines(t *testing.T) {
	svc, _, _, submitter := newTestService(t)
	draft := newDraft(t, svc)

	// The editor tolerates half-typed rows, but submit must not.
	_, err := svc.AddLine(context.Background(), draft.ID, Line{ItemCode: "ITM-1", Quantity: -5, UnitPrice: 100})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), draft.ID)
	assert.ErrorIs(t, err, documents.ErrInvalidLine)
	assert.Empty(t, submitter.created, "nothing reaches storage")

	_, err = svc.Get(context.Background(), draft.ID)
	assert.NoError(t, err, "rejected submit keeps the draft")
}

func TestSubmitEmptyDraft(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	draft := newDraft(t, svc)

	_, err := svc.Submit(context.Background(), draft.ID)
	assert.ErrorIs(t, err, ErrEmptyDraft)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	svc, _, _, submitter := newTestService(t)
	draft := newDraft(t, svc)

	_, err := svc.AddLine(context.Background(), draft.ID, Line{ItemCode: "ITM-1", Quantity: 1, UnitPrice: 10})
	require.NoError(t, err)

	submitter.err = errors.New("storage unavailable")
	_, err = svc.Submit(context.Background(), draft.ID)
	require.Error(t, err)

	_, err = svc.Get(context.Background(), draft.ID)
	assert.NoError(t, err, "failed submit keeps the draft")
}

func TestDraftExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewStore(rdb, time.Minute)

	draft := &Draft{ID: "abc", Type: documents.TypeQuotation}
	require.NoError(t, store.Save(context.Background(), draft))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

package drafts

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zambezi-erp/zambezi-erp/internal/documents"
	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
	"github.com/zambezi-erp/zambezi-erp/internal/shared"
	"github.com/zambezi-erp/zambezi-erp/internal/terms"
)

// RateSource resolves exchange rates for currency switches.
type RateSource interface {
	Lookup(ctx context.Context, currency string) (fx.Rate, error)
}

// Submitter turns a finished draft into a stored document.
type Submitter interface {
	Create(ctx context.Context, req documents.CreateDocumentRequest) (*documents.Document, error)
}

// CustomerSource loads customer records for draft seeding and reloads.
type CustomerSource interface {
	Get(ctx context.Context, id int64) (customers.Customer, error)
}

type Service struct {
	store     *Store
	rates     RateSource
	customers CustomerSource
	submitter Submitter
	logger    *slog.Logger
}

func NewService(store *Store, rates RateSource, customerSource CustomerSource, submitter Submitter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		rates:     rates,
		customers: customerSource,
		submitter: submitter,
		logger:    logger,
	}
}

type CreateDraftRequest struct {
	Type     documents.DocType `json:"type" validate:"required"`
	PartyID  int64             `json:"party_id" validate:"required,gt=0"`
	Currency string            `json:"currency" validate:"omitempty,len=3"`
	PageSize int               `json:"page_size" validate:"gte=0,lte=100"`
}

// Create opens a new draft. Customer-side drafts are seeded from the
// customer record: billing is copied, shipping falls back to billing when
// the customer has no shipping block, and the mirror flag starts on in
// that case.
func (s *Service) Create(ctx context.Context, req CreateDraftRequest) (*Draft, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", documents.ErrUnknownType, req.Type)
	}

	now := time.Now().UTC()
	draft := &Draft{
		ID:        uuid.NewString(),
		Type:      req.Type,
		PartyID:   req.PartyID,
		Currency:  fx.BaseCurrency,
		IssueDate: now,
		PageSize:  req.PageSize,
		Lines:     []Line{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	currency := fx.NormalizeCurrency(req.Currency)
	if req.Type.Side() == documents.SideCustomer {
		customer, err := s.customers.Get(ctx, req.PartyID)
		if err != nil {
			return nil, fmt.Errorf("seed draft from customer: %w", err)
		}
		draft.Billing = customer.Billing
		if customer.Shipping.IsEmpty() {
			draft.Shipping = customer.Billing
			draft.SameAsBilling = true
		} else {
			draft.Shipping = customer.Shipping
		}
		if currency == "" {
			currency = fx.NormalizeCurrency(customer.Currency)
		}
	}
	if currency == "" {
		currency = fx.BaseCurrency
	}

	rate, err := s.resolveRate(ctx, currency)
	if err != nil {
		return nil, err
	}
	draft.Currency = currency
	draft.ExchangeRate = rate

	if err := s.store.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *Service) resolveRate(ctx context.Context, currency string) (float64, error) {
	if fx.IsBase(currency) {
		return 1, nil
	}
	rate, err := s.rates.Lookup(ctx, currency)
	if err != nil {
		return 0, fmt.Errorf("resolve rate for %s: %w", currency, err)
	}
	return rate.Rate, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Draft, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Discard(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

type UpdateHeaderRequest struct {
	IssueDate *time.Time             `json:"issue_date,omitempty"`
	DueDate   *time.Time             `json:"due_date,omitempty"`
	LPONumber *string                `json:"lpo_number,omitempty"`
	Payment   *documents.PaymentInfo `json:"payment,omitempty"`
	Notes     *string                `json:"notes,omitempty"`
}

func (s *Service) UpdateHeader(ctx context.Context, id string, req UpdateHeaderRequest) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		if req.IssueDate != nil {
			d.IssueDate = *req.IssueDate
		}
		if req.DueDate != nil {
			d.DueDate = req.DueDate
		}
		if req.LPONumber != nil {
			if err := documents.ValidateLPONumber(d.Type, *req.LPONumber); err != nil {
				return err
			}
			d.LPONumber = *req.LPONumber
		}
		if req.Payment != nil {
			d.Payment = *req.Payment
		}
		if req.Notes != nil {
			d.Notes = *req.Notes
		}
		return nil
	})
}

// AddLine appends a line and reports the page the new row landed on.
func (s *Service) AddLine(ctx context.Context, id string, line Line) (*LineResult, error) {
	draft, err := s.mutate(ctx, id, func(d *Draft) error {
		d.Lines = append(d.Lines, line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &LineResult{
		Draft: draft,
		Page:  shared.LastPage(len(draft.Lines), draft.pageSize()),
	}, nil
}

// UpdateLine replaces the line at index. An edited unit price invalidates
// the cached base amount; the next currency switch recomputes it.
func (s *Service) UpdateLine(ctx context.Context, id string, index int, line Line) (*LineResult, error) {
	draft, err := s.mutate(ctx, id, func(d *Draft) error {
		if index < 0 || index >= len(d.Lines) {
			return fmt.Errorf("%w: %d", ErrBadLine, index)
		}
		if line.BaseAmount == nil && line.UnitPrice == d.Lines[index].UnitPrice {
			line.BaseAmount = d.Lines[index].BaseAmount
		}
		d.Lines[index] = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &LineResult{Draft: draft, Page: index / draft.pageSize()}, nil
}

// RemoveLine deletes the line at index and clamps the page that was showing
// it to the shrunken table.
func (s *Service) RemoveLine(ctx context.Context, id string, index int) (*LineResult, error) {
	draft, err := s.mutate(ctx, id, func(d *Draft) error {
		if index < 0 || index >= len(d.Lines) {
			return fmt.Errorf("%w: %d", ErrBadLine, index)
		}
		d.Lines = append(d.Lines[:index], d.Lines[index+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	page := shared.ClampPage(index/draft.pageSize(), len(draft.Lines), draft.pageSize())
	return &LineResult{Draft: draft, Page: page}, nil
}

// SetSameAsBilling turns the shipping mirror on or off. Turning it on copies
// billing over shipping and clears the dirty flag; turning it off freezes
// shipping as-is.
func (s *Service) SetSameAsBilling(ctx context.Context, id string, on bool) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		d.SameAsBilling = on
		if on {
			d.Shipping = d.Billing
			d.ShippingDirty = false
		}
		return nil
	})
}

// UpdateBilling writes the billing block; while the mirror is on the
// shipping block follows every billing write.
func (s *Service) UpdateBilling(ctx context.Context, id string, addr customers.Address) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		d.Billing = addr
		if d.SameAsBilling {
			d.Shipping = addr
			d.ShippingDirty = false
		}
		return nil
	})
}

// UpdateShipping writes the shipping block directly, which breaks the
// mirror and marks shipping dirty.
func (s *Service) UpdateShipping(ctx context.Context, id string, addr customers.Address) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		d.Shipping = addr
		d.SameAsBilling = false
		d.ShippingDirty = true
		return nil
	})
}

// ReloadCustomer refreshes the address blocks from the customer record.
// Billing always resets; shipping only resets when the user has not edited
// it, falling back to the refreshed billing when the customer has no
// shipping block.
func (s *Service) ReloadCustomer(ctx context.Context, id string) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		if d.Type.Side() != documents.SideCustomer {
			return nil
		}
		customer, err := s.customers.Get(ctx, d.PartyID)
		if err != nil {
			return fmt.Errorf("reload customer: %w", err)
		}
		d.Billing = customer.Billing
		if d.ShippingDirty {
			return nil
		}
		if customer.Shipping.IsEmpty() {
			d.Shipping = customer.Billing
			d.SameAsBilling = true
		} else {
			d.Shipping = customer.Shipping
			d.SameAsBilling = false
		}
		return nil
	})
}

// SwitchCurrency re-expresses the draft under a new currency. The rate is
// fetched first (never for the base currency, which is implicitly 1); a
// failed fetch or a bad rate leaves prices and currency untouched and sets
// the rate-error flag until the next successful switch.
func (s *Service) SwitchCurrency(ctx context.Context, id string, currency string) (*Draft, error) {
	draft, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := fx.NormalizeCurrency(currency)
	if next == "" {
		return nil, fmt.Errorf("%w: %q", fx.ErrUnknownCurrency, currency)
	}
	if next == draft.Currency {
		return draft, nil
	}

	nextRate, err := s.resolveRate(ctx, next)
	if err != nil {
		s.flagRateError(ctx, draft)
		return nil, err
	}

	rebased, err := fx.Rebase(draft.fxLines(), draft.Currency, draft.ExchangeRate, next, nextRate)
	if err != nil {
		s.flagRateError(ctx, draft)
		return nil, err
	}

	draft.applyFXLines(rebased)
	draft.Currency = next
	draft.ExchangeRate = nextRate
	draft.RateError = false
	draft.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// flagRateError persists the error flag without touching anything else.
// The flag stays readable on the draft until the next successful switch,
// so a failed save is worth knowing about.
func (s *Service) flagRateError(ctx context.Context, draft *Draft) {
	draft.RateError = true
	if err := s.store.Save(ctx, draft); err != nil {
		s.logger.Warn("persist rate error flag failed", "draft_id", draft.ID, "error", err)
	}
}

// StageTerms stages an edit to one terms section without committing it.
// The first staged edit copies the committed sections, seeded from the
// canned templates when the draft has none yet.
func (s *Service) StageTerms(ctx context.Context, id, section, body string) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		if d.StagedTerms == nil {
			d.StagedTerms = make(map[string]string)
			base := d.Terms
			if base == nil {
				for _, t := range terms.Templates() {
					d.StagedTerms[t.Name] = t.Body
				}
			} else {
				for name, text := range base {
					d.StagedTerms[name] = text
				}
			}
		}
		d.StagedTerms[section] = body
		return nil
	})
}

// CommitTerms makes the staged sections the draft's terms. The Payment
// Terms section must parse and its percentages must sum to 100.
func (s *Service) CommitTerms(ctx context.Context, id string) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		if d.StagedTerms == nil {
			return ErrTermsStaged
		}
		if body, ok := d.StagedTerms[terms.PaymentSection]; ok {
			phases, err := terms.ParsePaymentTerms(body)
			if err != nil {
				return err
			}
			if err := terms.ValidatePaymentTerms(phases); err != nil {
				return err
			}
		}
		d.Terms = d.StagedTerms
		d.StagedTerms = nil
		return nil
	})
}

// DiscardTerms drops the staged sections.
func (s *Service) DiscardTerms(ctx context.Context, id string) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		d.StagedTerms = nil
		return nil
	})
}

// Submit turns the draft into a document and deletes it on success.
func (s *Service) Submit(ctx context.Context, id string) (*documents.Document, error) {
	draft, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := draft.toCreateRequest()
	if err != nil {
		return nil, err
	}

	doc, err := s.submitter.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return doc, fmt.Errorf("document %s created but draft cleanup failed: %w", doc.DocNumber, err)
	}
	return doc, nil
}

func (d *Draft) toCreateRequest() (documents.CreateDocumentRequest, error) {
	var lines []documents.LineRequest
	for i, l := range d.Lines {
		if l.ItemCode == "" {
			continue
		}
		lines = append(lines, documents.LineRequest{
			ItemCode:        l.ItemCode,
			Description:     l.Description,
			Quantity:        l.Quantity,
			UOM:             l.UOM,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			TaxCode:         l.TaxCode,
			TaxPercent:      l.TaxPercent,
			LineOrder:       i + 1,
		})
	}
	if len(lines) == 0 {
		return documents.CreateDocumentRequest{}, ErrEmptyDraft
	}
	// The line rules of record apply on the way out of the draft, not while
	// the user is still typing rows into it.
	if err := documents.ValidateLines(lines); err != nil {
		return documents.CreateDocumentRequest{}, err
	}

	billing, shipping := d.Billing, d.Shipping
	return documents.CreateDocumentRequest{
		Type:         d.Type,
		PartyID:      d.PartyID,
		Currency:     d.Currency,
		ExchangeRate: d.ExchangeRate,
		IssueDate:    d.IssueDate,
		DueDate:      d.DueDate,
		LPONumber:    d.LPONumber,
		Billing:      &billing,
		Shipping:     &shipping,
		Payment:      d.Payment,
		Terms:        renderTerms(d.Terms),
		Notes:        d.Notes,
		Lines:        lines,
	}, nil
}

// renderTerms flattens the sections into the document terms text, canned
// sections first, any extra sections after in name order.
func renderTerms(sections map[string]string) string {
	if len(sections) == 0 {
		return ""
	}
	canned := terms.SectionNames()
	seen := make(map[string]bool, len(canned))
	ordered := make([]string, 0, len(sections))
	for _, name := range canned {
		if _, ok := sections[name]; ok {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}
	extra := make([]string, 0)
	for name := range sections {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	ordered = append(ordered, extra...)

	out := ""
	for _, name := range ordered {
		if out != "" {
			out += "\n\n"
		}
		out += name + "\n" + sections[name]
	}
	return out
}

// mutate loads, applies, stamps and saves a draft in one place.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	draft, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	draft.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

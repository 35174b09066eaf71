package documents

import (
	"context"
	"fmt"

	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/customers"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/suppliers"
)

type Service struct {
	repo         Repository
	customerRepo customers.Repository
	supplierRepo suppliers.Repository
}

func NewService(repo Repository, customerRepo customers.Repository, supplierRepo suppliers.Repository) *Service {
	return &Service{
		repo:         repo,
		customerRepo: customerRepo,
		supplierRepo: supplierRepo,
	}
}

func (s *Service) Create(ctx context.Context, req CreateDocumentRequest) (*Document, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
	}
	if err := ValidateLPONumber(req.Type, req.LPONumber); err != nil {
		return nil, err
	}
	if err := ValidateLines(req.Lines); err != nil {
		return nil, err
	}

	req.Currency = fx.NormalizeCurrency(req.Currency)
	if fx.IsBase(req.Currency) {
		req.ExchangeRate = 1
	} else if err := fx.ValidateRate(req.ExchangeRate); err != nil {
		return nil, err
	}

	billing, shipping, err := s.resolveAddresses(ctx, req)
	if err != nil {
		return nil, err
	}

	lines := buildLines(req.Lines)
	subtotal, taxTotal, grandTotal := Totals(lines)

	doc := Document{
		Type:         req.Type,
		PartyID:      req.PartyID,
		Status:       StatusDraft,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
		IssueDate:    req.IssueDate,
		DueDate:      req.DueDate,
		LPONumber:    req.LPONumber,
		Billing:      billing,
		Shipping:     shipping,
		Payment:      req.Payment,
		Terms:        req.Terms,
		Notes:        req.Notes,
		Subtotal:     subtotal,
		TaxTotal:     taxTotal,
		GrandTotal:   grandTotal,
	}

	var docID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx, doc.Type, doc.IssueDate)
		if err != nil {
			return fmt.Errorf("allocate doc number: %w", err)
		}
		doc.DocNumber = number

		id, err := repo.Create(ctx, doc)
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		docID = id

		for _, line := range lines {
			line.DocumentID = docID
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert document line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, docID)
}

// resolveAddresses verifies the party exists and defaults missing address
// blocks from the customer record; shipping falls back to billing.
func (s *Service) resolveAddresses(ctx context.Context, req CreateDocumentRequest) (customers.Address, customers.Address, error) {
	var billing, shipping customers.Address

	switch req.Type.Side() {
	case SideCustomer:
		customer, err := s.customerRepo.Get(ctx, req.PartyID)
		if err != nil {
			return billing, shipping, fmt.Errorf("verify customer: %w", err)
		}
		billing = customer.Billing
		shipping = customer.Shipping
	case SideSupplier:
		if _, err := s.supplierRepo.Get(ctx, req.PartyID); err != nil {
			return billing, shipping, fmt.Errorf("verify supplier: %w", err)
		}
	}

	if req.Billing != nil {
		billing = *req.Billing
	}
	if req.Shipping != nil {
		shipping = *req.Shipping
	}
	if shipping.IsEmpty() {
		shipping = billing
	}
	return billing, shipping, nil
}

func buildLines(reqs []LineRequest) []DocumentLine {
	lines := make([]DocumentLine, 0, len(reqs))
	for i, lr := range reqs {
		line := DocumentLine{
			ItemCode:        lr.ItemCode,
			Description:     lr.Description,
			Quantity:        lr.Quantity,
			UOM:             lr.UOM,
			UnitPrice:       lr.UnitPrice,
			DiscountPercent: lr.DiscountPercent,
			TaxCode:         lr.TaxCode,
			TaxPercent:      lr.TaxPercent,
			LineOrder:       lr.LineOrder,
		}
		if line.LineOrder == 0 {
			line.LineOrder = i + 1
		}
		lines = append(lines, line)
	}
	return lines
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateDocumentRequest) (*Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only DRAFT documents can be updated", ErrInvalidStatus)
	}
	if req.LPONumber != nil {
		if err := ValidateLPONumber(existing.Type, *req.LPONumber); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if req.IssueDate != nil {
		updates["issue_date"] = *req.IssueDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.LPONumber != nil {
		updates["lpo_number"] = *req.LPONumber
	}
	if req.Billing != nil {
		updates["billing_line1"] = req.Billing.Line1
		updates["billing_line2"] = req.Billing.Line2
		updates["billing_city"] = req.Billing.City
		updates["billing_country"] = req.Billing.Country
	}
	if req.Shipping != nil {
		updates["shipping_line1"] = req.Shipping.Line1
		updates["shipping_line2"] = req.Shipping.Line2
		updates["shipping_city"] = req.Shipping.City
		updates["shipping_country"] = req.Shipping.Country
	}
	if req.Payment != nil {
		updates["payment_method"] = req.Payment.Method
		updates["payment_reference"] = req.Payment.Reference
		updates["payment_bank_details"] = req.Payment.BankDetails
	}
	if req.Terms != nil {
		updates["terms"] = *req.Terms
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	var lines []DocumentLine
	if req.Lines != nil && len(*req.Lines) > 0 {
		if err := ValidateLines(*req.Lines); err != nil {
			return nil, err
		}
		lines = buildLines(*req.Lines)
		subtotal, taxTotal, grandTotal := Totals(lines)
		updates["subtotal"] = subtotal
		updates["tax_total"] = taxTotal
		updates["grand_total"] = grandTotal
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return err
			}
		}
		if lines != nil {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return err
			}
			for _, line := range lines {
				line.DocumentID = id
				if _, err := repo.InsertLine(ctx, line); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Submit(ctx context.Context, id int64) (*Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: can only submit DRAFT documents", ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusSubmitted); err != nil {
		return nil, fmt.Errorf("submit document: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id int64) (*Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if existing.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: document already cancelled", ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel document: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, docNumber string) (*Document, error) {
	return s.repo.GetByNumber(ctx, docNumber)
}

func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]DocumentWithParty, int, error) {
	return s.repo.List(ctx, req)
}

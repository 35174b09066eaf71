package taxes

import (
	"context"
	"fmt"
	"strings"

	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]TaxCode, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (TaxCode, error) {
	if id <= 0 {
		return TaxCode{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (TaxCode, error) {
	if strings.TrimSpace(code) == "" {
		return TaxCode{}, shared.ErrRequiredField
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, tax TaxCode) (TaxCode, error) {
	if err := s.validate(tax); err != nil {
		return TaxCode{}, err
	}
	return s.repo.Create(ctx, tax)
}

func (s *Service) Update(ctx context.Context, id int64, tax TaxCode) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(tax); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, tax)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(tax TaxCode) error {
	if strings.TrimSpace(tax.Code) == "" {
		return fmt.Errorf("%w: tax code is required", shared.ErrValidation)
	}
	if tax.Percent < 0 || tax.Percent > 100 {
		return fmt.Errorf("%w: percent must be between 0 and 100", shared.ErrValidation)
	}
	return nil
}

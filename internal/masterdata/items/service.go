package items

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (Item, error) {
	if strings.TrimSpace(code) == "" {
		return Item{}, shared.ErrRequiredField
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) Update(ctx context.Context, id int64, item Item) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(item); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, item)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(item Item) error {
	if strings.TrimSpace(item.Code) == "" {
		return fmt.Errorf("%w: item code is required", shared.ErrValidation)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: item name is required", shared.ErrValidation)
	}
	if item.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price cannot be negative", shared.ErrValidation)
	}
	return nil
}

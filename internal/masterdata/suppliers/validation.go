package suppliers

import (
	"fmt"
	"strings"

	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/shared"
)

func (s *Service) validate(sup *Supplier) error {
	if strings.TrimSpace(sup.Code) == "" {
		return fmt.Errorf("%w: supplier code is required", shared.ErrValidation)
	}
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	if sup.Currency == "" {
		sup.Currency = fx.BaseCurrency
	}
	sup.Currency = fx.NormalizeCurrency(sup.Currency)
	if len(sup.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", shared.ErrValidation)
	}
	return nil
}

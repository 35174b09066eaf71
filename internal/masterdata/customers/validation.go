package customers

import (
	"fmt"
	"strings"

	"github.com/zambezi-erp/zambezi-erp/internal/fx"
	"github.com/zambezi-erp/zambezi-erp/internal/masterdata/shared"
)

func (s *Service) validate(c *Customer) error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("%w: customer code is required", shared.ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}
	if c.Currency == "" {
		c.Currency = fx.BaseCurrency
	}
	c.Currency = fx.NormalizeCurrency(c.Currency)
	if len(c.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", shared.ErrValidation)
	}
	// Customers without an own shipping block ship to their billing address.
	if c.Shipping.IsEmpty() {
		c.Shipping = c.Billing
	}
	return nil
}

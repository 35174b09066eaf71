package documents

import (
	"fmt"
	"regexp"
	"strings"
)

var lpoPattern = regexp.MustCompile(`^LPO-\d{3,}$`)

// ValidateLines enforces the line rules of record: positive quantity,
// non-negative price, and discount/tax percentages within [0,100]. Handlers
// run the same rules via struct tags, but every path into storage goes
// through here.
func ValidateLines(lines []LineRequest) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: document needs at least one line", ErrInvalidLine)
	}
	for i, line := range lines {
		switch {
		case strings.TrimSpace(line.ItemCode) == "":
			return fmt.Errorf("%w: line %d has no item code", ErrInvalidLine, i+1)
		case line.Quantity <= 0:
			return fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidLine, i+1)
		case line.UnitPrice < 0:
			return fmt.Errorf("%w: line %d unit price must not be negative", ErrInvalidLine, i+1)
		case line.DiscountPercent < 0 || line.DiscountPercent > 100:
			return fmt.Errorf("%w: line %d discount must be within 0-100%%", ErrInvalidLine, i+1)
		case line.TaxPercent < 0 || line.TaxPercent > 100:
			return fmt.Errorf("%w: line %d tax must be within 0-100%%", ErrInvalidLine, i+1)
		}
	}
	return nil
}

// ValidateLPONumber enforces the customer-reference format on LPO invoices.
func ValidateLPONumber(docType DocType, lpoNumber string) error {
	lpoNumber = strings.TrimSpace(lpoNumber)
	if docType != TypeLPOInvoice {
		return nil
	}
	if lpoNumber == "" {
		return ErrLPORequired
	}
	if !lpoPattern.MatchString(lpoNumber) {
		return fmt.Errorf("%w: got %q", ErrBadLPONumber, lpoNumber)
	}
	return nil
}

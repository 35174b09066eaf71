package terms

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrBadPhaseLine = errors.New("terms: malformed payment phase line")
	ErrBadPercent   = errors.New("terms: phase percentages must sum to 100")
)

// PaymentPhase is one row of the structured Payment Terms table,
// e.g. "Deposit: 50% - On order confirmation".
type PaymentPhase struct {
	Name      string  `json:"name"`
	Percent   float64 `json:"percent"`
	Condition string  `json:"condition"`
}

var phasePattern = regexp.MustCompile(`^(.+?):\s*([0-9]+(?:\.[0-9]+)?)%\s*-\s*(.+)$`)

// ParsePaymentTerms parses the Payment Terms body, one phase per line.
// Blank lines are skipped.
func ParsePaymentTerms(body string) ([]PaymentPhase, error) {
	var phases []PaymentPhase
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := phasePattern.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrBadPhaseLine, line)
		}
		percent, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadPhaseLine, line)
		}
		phases = append(phases, PaymentPhase{
			Name:      strings.TrimSpace(m[1]),
			Percent:   percent,
			Condition: strings.TrimSpace(m[3]),
		})
	}
	return phases, nil
}

// RenderPaymentTerms renders phases back to the body format ParsePaymentTerms
// accepts, so parse/render round-trips are stable.
func RenderPaymentTerms(phases []PaymentPhase) string {
	lines := make([]string, 0, len(phases))
	for _, p := range phases {
		lines = append(lines, fmt.Sprintf("%s: %s%% - %s", p.Name, formatPercent(p.Percent), p.Condition))
	}
	return strings.Join(lines, "\n")
}

// ValidatePaymentTerms rejects phase sets whose percentages do not sum to 100.
func ValidatePaymentTerms(phases []PaymentPhase) error {
	var sum float64
	for _, p := range phases {
		if p.Percent < 0 {
			return fmt.Errorf("%w: phase %q has negative percentage", ErrBadPercent, p.Name)
		}
		sum += p.Percent
	}
	if math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("%w: got %s%%", ErrBadPercent, formatPercent(sum))
	}
	return nil
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

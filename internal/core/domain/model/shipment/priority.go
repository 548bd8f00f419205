package shipment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sameday/internal/pkg/errs"
)

// Priority is the service tier a customer pays for. Higher tiers compare
// greater and are dispatched first.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityStandard
	PriorityHigh
	PriorityUrgent
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityUnknown:  "UNKNOWN",
		PriorityStandard: "STANDARD",
		PriorityHigh:     "PRIORITY",
		PriorityUrgent:   "URGENT",
	}
}

func ParsePriority(s string) (Priority, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for p, str := range getPriorityStrings() {
		if p != PriorityUnknown && str == name {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a priority", s))
}

func (p Priority) Validate() error {
	if p < PriorityStandard || p > PriorityUrgent {
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "UNKNOWN"
}

// Multiplier is the factor applied to the surcharged cost.
func (p Priority) Multiplier() decimal.Decimal {
	switch p {
	case PriorityHigh:
		return decimal.RequireFromString("1.5")
	case PriorityUrgent:
		return decimal.NewFromInt(2)
	default:
		return decimal.NewFromInt(1)
	}
}

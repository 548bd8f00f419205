package deliverer

import (
	"fmt"
	"strings"

	"sameday/internal/pkg/errs"
)

// Status is a deliverer's availability. Active and Busy are derived from the
// number of shipments being carried; the others are chosen by the deliverer.
type Status int

const (
	Unknown Status = iota
	Available
	Active
	Busy
	OnBreak
	OffDuty
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Available: "AVAILABLE",
		Active:    "ACTIVE",
		Busy:      "BUSY",
		OnBreak:   "ON_BREAK",
		OffDuty:   "OFF_DUTY",
	}
}

func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a deliverer status", s))
}

func (s Status) Validate() error {
	if s < Available || s > OffDuty {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsSelectable reports whether a deliverer may set s by hand.
func (s Status) IsSelectable() bool {
	return s == Available || s == OnBreak || s == OffDuty
}

// IsInService reports whether s belongs to a deliverer who is working.
func (s Status) IsInService() bool {
	return s == Available || s == Active || s == Busy
}

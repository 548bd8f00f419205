package incident

import (
	"fmt"
	"strings"

	"sameday/internal/pkg/errs"
)

// Type classifies what went wrong with a shipment.
type Type int

const (
	TypeUnknown Type = iota
	WrongAddress
	RecipientAbsent
	PackageDamaged
	InaccessibleZone
	ForceMajeure
	Theft
	DelivererUnavailable
	Other
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		TypeUnknown:          "UNKNOWN",
		WrongAddress:         "WRONG_ADDRESS",
		RecipientAbsent:      "RECIPIENT_ABSENT",
		PackageDamaged:       "PACKAGE_DAMAGED",
		InaccessibleZone:     "INACCESSIBLE_ZONE",
		ForceMajeure:         "FORCE_MAJEURE",
		Theft:                "THEFT",
		DelivererUnavailable: "DELIVERER_UNAVAILABLE",
		Other:                "OTHER",
	}
}

// Types lists every valid incident type.
func Types() []Type {
	return []Type{
		WrongAddress, RecipientAbsent, PackageDamaged, InaccessibleZone,
		ForceMajeure, Theft, DelivererUnavailable, Other,
	}
}

func ParseType(s string) (Type, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for t, str := range getTypeStrings() {
		if t != TypeUnknown && str == name {
			return t, nil
		}
	}
	return TypeUnknown, errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not an incident type", s))
}

func (t Type) Validate() error {
	if t < WrongAddress || t > Other {
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%d is not a valid incident type", t))
	}
	return nil
}

func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}

// RequiresReassignment reports whether the current deliverer cannot finish
// the delivery and the shipment must go to someone else.
func (t Type) RequiresReassignment() bool {
	return t == InaccessibleZone || t == DelivererUnavailable
}

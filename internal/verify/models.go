package verify

import "time"

// Outcome is the result of a registry lookup for a CM/L code.
type Outcome string

const (
	OutcomeValid     Outcome = "valid"
	OutcomeExpired   Outcome = "expired"
	OutcomeSuspended Outcome = "suspended"
	OutcomeNotFound  Outcome = "not_found"
)

// IsViolation reports whether the outcome represents a non-compliant product.
// Unregistered codes count: flagging them is exactly what the programme rewards.
func (o Outcome) IsViolation() bool {
	switch o {
	case OutcomeExpired, OutcomeSuspended, OutcomeNotFound:
		return true
	}
	return false
}

// IsValid reports whether the outcome is one of the supported enum values.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeValid, OutcomeExpired, OutcomeSuspended, OutcomeNotFound:
		return true
	}
	return false
}

// Product is a certified product row in the registry.
type Product struct {
	CMLCode      string     `json:"cml_code"`
	ProductName  string     `json:"product_name"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	Status       Outcome    `json:"status"`
}

// Result is what a lookup returns to callers. Unknown codes yield a
// not_found result rather than an error, mirroring how label checks behave
// in the field: the scan itself succeeded.
type Result struct {
	CMLCode      string     `json:"cml_code"`
	ProductName  string     `json:"product_name"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	Status       Outcome    `json:"status"`
}

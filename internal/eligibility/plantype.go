// Package eligibility holds the pure age and plan-bracket rules. Everything
// here is a deterministic function of its inputs: no I/O, no clocks of its
// own, safe for concurrent use.
package eligibility

import (
	dErrors "coreteller/pkg/domain-errors"
)

// PlanType enumerates the savings plan catalog types.
// Invariant: the value must be one of the five supported types. Construct
// via ParsePlanType at trust boundaries; direct casting bypasses validation.
type PlanType string

const (
	PlanChildren PlanType = "Children"
	PlanTeen     PlanType = "Teen"
	PlanAdult    PlanType = "Adult"
	PlanSenior   PlanType = "Senior"
	PlanJoint    PlanType = "Joint"
)

var validPlanTypes = map[PlanType]struct{}{
	PlanChildren: {},
	PlanTeen:     {},
	PlanAdult:    {},
	PlanSenior:   {},
	PlanJoint:    {},
}

// ParsePlanType validates a plan type string.
func ParsePlanType(s string) (PlanType, error) {
	pt := PlanType(s)
	if _, ok := validPlanTypes[pt]; !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown plan type: %s", s)
	}
	return pt, nil
}

func (pt PlanType) String() string { return string(pt) }

// IsJoint reports whether the plan requires two or more holders.
func (pt PlanType) IsJoint() bool { return pt == PlanJoint }

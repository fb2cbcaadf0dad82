package models

import (
	"fmt"

	dErrors "coreteller/pkg/domain-errors"
)

// Field keys for rule violations. These are the wire contract with the
// console forms; each maps to a form field.
const (
	FieldCustomerID      = "customer_id"
	FieldSavingPlanID    = "saving_plan_id"
	FieldInitialDeposit  = "initial_deposit"
	FieldJointHolders    = "joint_holders"
	FieldReason          = "reason"
	FieldNewNIC          = "new_nic"
	FieldAccountID       = "account_id"
	FieldFdPlanID        = "fd_plan_id"
	FieldPrincipalAmount = "principal_amount"
)

// Violations accumulates rule violations across a validation call. Every
// rule is evaluated independently so the operator sees all problems at once
// instead of fixing them one round trip at a time.
type Violations struct {
	list []dErrors.FieldViolation
}

// Add records a violation against a field key.
func (v *Violations) Add(field, format string, args ...any) {
	v.list = append(v.list, dErrors.FieldViolation{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// Empty reports whether every rule passed.
func (v *Violations) Empty() bool { return len(v.list) == 0 }

// List returns the accumulated violations in evaluation order.
func (v *Violations) List() []dErrors.FieldViolation { return v.list }

// AsError converts the set into a validation error, or nil when empty.
func (v *Violations) AsError() error {
	if v.Empty() {
		return nil
	}
	return dErrors.NewValidation(v.list)
}

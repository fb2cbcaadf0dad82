// Package domain holds shared domain primitives: typed identifiers and the
// NIC value type. Construct values via the Parse functions at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "coreteller/pkg/domain-errors"
)

// Typed UUID identifiers. Distinct types make cross-entity mixups a compile
// error instead of a data bug.
type (
	CustomerID     uuid.UUID
	AccountID      uuid.UUID
	SavingsPlanID  uuid.UUID
	FdPlanID       uuid.UUID
	FixedDepositID uuid.UUID
)

func (id CustomerID) String() string     { return uuid.UUID(id).String() }
func (id AccountID) String() string      { return uuid.UUID(id).String() }
func (id SavingsPlanID) String() string  { return uuid.UUID(id).String() }
func (id FdPlanID) String() string       { return uuid.UUID(id).String() }
func (id FixedDepositID) String() string { return uuid.UUID(id).String() }

// Text marshaling so the typed ids serialize as canonical UUID strings in
// JSON payloads and map keys.
func (id CustomerID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id AccountID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id SavingsPlanID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id FdPlanID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id FixedDepositID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *CustomerID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = CustomerID(u)
	return err
}

func (id *AccountID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = AccountID(u)
	return err
}

func (id *SavingsPlanID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = SavingsPlanID(u)
	return err
}

func (id *FdPlanID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = FdPlanID(u)
	return err
}

func (id *FixedDepositID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = FixedDepositID(u)
	return err
}

func (id CustomerID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id AccountID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id SavingsPlanID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id FdPlanID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id FixedDepositID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", what)
	}
	return u, nil
}

func ParseCustomerID(s string) (CustomerID, error) {
	u, err := parseUUID(s, "customer id")
	return CustomerID(u), err
}

func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account id")
	return AccountID(u), err
}

func ParseSavingsPlanID(s string) (SavingsPlanID, error) {
	u, err := parseUUID(s, "saving plan id")
	return SavingsPlanID(u), err
}

func ParseFdPlanID(s string) (FdPlanID, error) {
	u, err := parseUUID(s, "fd plan id")
	return FdPlanID(u), err
}

func ParseFixedDepositID(s string) (FixedDepositID, error) {
	u, err := parseUUID(s, "fixed deposit id")
	return FixedDepositID(u), err
}

func NewCustomerID() CustomerID         { return CustomerID(uuid.New()) }
func NewAccountID() AccountID           { return AccountID(uuid.New()) }
func NewSavingsPlanID() SavingsPlanID   { return SavingsPlanID(uuid.New()) }
func NewFdPlanID() FdPlanID             { return FdPlanID(uuid.New()) }
func NewFixedDepositID() FixedDepositID { return FixedDepositID(uuid.New()) }

package models

import (
	"time"

	"coreteller/internal/eligibility"
	"coreteller/pkg/domain"
)

// Gender as captured at registration.
type Gender string

const (
	GenderFemale Gender = "Female"
	GenderMale   Gender = "Male"
	GenderOther  Gender = "Other"
)

// Customer is a registered bank customer. Immutable once registered, with
// one exception: the NIC is replaced when a Teen account moves to an Adult
// plan and the birth-certificate number gives way to a legally issued NIC.
// Age is always derived from the date of birth, never stored.
type Customer struct {
	ID          domain.CustomerID `json:"customer_id"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	NIC         domain.NIC        `json:"nic"`
	DateOfBirth time.Time         `json:"date_of_birth"`
	Gender      Gender            `json:"gender"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Age derives the customer's whole-year age at the given reference time.
func (c *Customer) Age(asOf time.Time) int {
	return eligibility.Age(c.DateOfBirth, asOf)
}

// FullName renders the display name used in violation messages.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

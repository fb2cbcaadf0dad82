package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Term is a fixed deposit term option, stored as the catalog's display
// string. Unknown values fall back to the 6-month rule in both the maturity
// date and the maturity amount so the two projections always agree.
type Term string

const (
	TermSixMonths  Term = "6 months"
	TermOneYear    Term = "1 year"
	TermThreeYears Term = "3 years"
)

// AddTo returns the maturity date for an open date: plus 6 calendar months,
// 1 calendar year, or 3 calendar years.
func (t Term) AddTo(openDate time.Time) time.Time {
	switch t {
	case TermOneYear:
		return openDate.AddDate(1, 0, 0)
	case TermThreeYears:
		return openDate.AddDate(3, 0, 0)
	default:
		return openDate.AddDate(0, 6, 0)
	}
}

// Years returns the term duration as a fraction of a year for the simple
// interest calculation.
func (t Term) Years() decimal.Decimal {
	switch t {
	case TermOneYear:
		return decimal.NewFromInt(1)
	case TermThreeYears:
		return decimal.NewFromInt(3)
	default:
		return decimal.NewFromFloat(0.5)
	}
}

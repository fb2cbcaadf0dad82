package domain

import (
	"regexp"
	"strings"

	dErrors "coreteller/pkg/domain-errors"
)

// NIC is a National Identity Card / Birth Certificate number.
// Invariant: 12 digits, or 9 digits followed by "V" (normalized uppercase).
type NIC string

var nicPattern = regexp.MustCompile(`^([0-9]{12}|[0-9]{9}V)$`)

// ParseNIC validates NIC syntax and normalizes the trailing letter to
// uppercase. Lookups and rule evaluation assume this has already run.
func ParseNIC(s string) (NIC, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if !nicPattern.MatchString(normalized) {
		return "", dErrors.New(dErrors.CodeInvalidInput,
			"NIC must be 12 digits or 9 digits followed by V")
	}
	return NIC(normalized), nil
}

func (n NIC) String() string { return string(n) }

func (n NIC) IsZero() bool { return n == "" }

package eligibility

import "time"

// Age returns whole years elapsed between dob and asOf. A birthday falling
// exactly on asOf counts as reached: the month/day tie-break does not
// decrement.
func Age(dob, asOf time.Time) int {
	years := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() ||
		(asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		years--
	}
	return years
}

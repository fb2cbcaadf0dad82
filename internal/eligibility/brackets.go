package eligibility

// Age thresholds for the single-holder plan brackets. Joint has its own
// per-holder floor but is never a bracket.
const (
	seniorMinAge = 60
	adultMinAge  = 18
	teenMinAge   = 12

	// JointHolderMinAge is the floor every holder of a joint account must
	// meet, primary and joint holders alike.
	JointHolderMinAge = 18

	// FDMinAge is the floor for opening a fixed deposit.
	FDMinAge = 18
)

// BracketForAge maps an age to its single-holder plan bracket. Evaluated in
// fixed priority order; never returns Joint.
func BracketForAge(age int) PlanType {
	switch {
	case age >= seniorMinAge:
		return PlanSenior
	case age >= adultMinAge:
		return PlanAdult
	case age >= teenMinAge:
		return PlanTeen
	default:
		return PlanChildren
	}
}

// MinimumAgeForPlan returns the minimum primary-holder age for a plan type.
// Unknown types fall back to the adult floor.
func MinimumAgeForPlan(pt PlanType) int {
	switch pt {
	case PlanSenior:
		return seniorMinAge
	case PlanJoint:
		return JointHolderMinAge
	case PlanChildren:
		return 0
	case PlanTeen:
		return teenMinAge
	default:
		return adultMinAge
	}
}

// EligiblePlansForAge returns the plan types a single customer of the given
// age may open: their bracket, plus Joint once they are an adult.
func EligiblePlansForAge(age int) []PlanType {
	plans := []PlanType{BracketForAge(age)}
	if age >= JointHolderMinAge {
		plans = append(plans, PlanJoint)
	}
	return plans
}

package enums

import "fmt"

// PlanTier is the pricing level of an order.
type PlanTier string

const (
	PlanTierStandard PlanTier = "standard"
	PlanTierPremium  PlanTier = "premium"
)

var validPlanTiers = []PlanTier{
	PlanTierStandard,
	PlanTierPremium,
}

// String implements fmt.Stringer.
func (p PlanTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanTier.
func (p PlanTier) IsValid() bool {
	for _, candidate := range validPlanTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresReview reports whether orders on this tier go through admin QA.
func (p PlanTier) RequiresReview() bool {
	return p == PlanTierPremium
}

// ParsePlanTier converts raw input into a PlanTier.
func ParsePlanTier(value string) (PlanTier, error) {
	for _, candidate := range validPlanTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan tier %q", value)
}

// PlanTierForAmount derives the tier from the order amount in minor units.
// Amounts at or above the threshold are premium.
func PlanTierForAmount(amountCents, thresholdCents int64) PlanTier {
	if amountCents >= thresholdCents {
		return PlanTierPremium
	}
	return PlanTierStandard
}

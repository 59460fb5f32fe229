package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// Plan is one purchasable tier. Amounts are minor units; DisplayPrice is the
// formatted major-unit string clients render.
type Plan struct {
	Tier         enums.PlanTier `json:"tier"`
	AmountCents  int64          `json:"amount_cents"`
	Currency     enums.Currency `json:"currency"`
	DisplayPrice string         `json:"display_price"`
}

// Catalog maps plan tiers to their configured prices.
type Catalog struct {
	plans map[enums.PlanTier]Plan
}

// NewCatalog builds the plan catalog from configuration.
func NewCatalog(cfg config.PlansConfig) Catalog {
	currency := enums.Currency(cfg.Currency)
	if !currency.IsValid() {
		currency = enums.CurrencyUSD
	}
	return Catalog{
		plans: map[enums.PlanTier]Plan{
			enums.PlanTierStandard: {
				Tier:         enums.PlanTierStandard,
				AmountCents:  cfg.StandardPriceCents,
				Currency:     currency,
				DisplayPrice: displayPrice(cfg.StandardPriceCents),
			},
			enums.PlanTierPremium: {
				Tier:         enums.PlanTierPremium,
				AmountCents:  cfg.PremiumPriceCents,
				Currency:     currency,
				DisplayPrice: displayPrice(cfg.PremiumPriceCents),
			},
		},
	}
}

// Plan returns the catalog entry for a tier.
func (c Catalog) Plan(tier enums.PlanTier) (Plan, bool) {
	plan, ok := c.plans[tier]
	return plan, ok
}

func displayPrice(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

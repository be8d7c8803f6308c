package shared

// Role names recognised by the brand access guard.
const (
	RoleAdmin    = "admin"
	RoleSupplier = "supplier"
	RoleAnalyst  = "analyst"
)

// Subscription tiers stored on brand_subscriptions.tier.
const (
	TierStandard = "standard"
	TierPremium  = "premium"
)

package model

// Plan is the entitlement tier of an identity.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Claims holds the authenticated identity facts derived from a request's
// bearer credential plus the entitlement resolved from the identity provider.
type Claims struct {
	UserID string
	Plan   Plan
}

// IsPremium reports whether the identity is on the premium plan.
func (c *Claims) IsPremium() bool {
	return c.Plan == PlanPremium
}

// Package identity talks to the external identity provider.
// The provider owns accounts and entitlements; this service only reads the
// plan attached to an authenticated user.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/quickai/quickai/internal/model"
)

// Client queries the identity provider's management API.
type Client struct {
	http        *resty.Client
	premiumPlan string
}

// Config holds identity client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	// PremiumPlan is the entitlement name that marks an identity as premium.
	PremiumPlan string
	Timeout     time.Duration
}

// New creates a new identity provider client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &Client{
		http:        client,
		premiumPlan: cfg.PremiumPlan,
	}
}

// entitlementsResponse is the provider's entitlement listing.
type entitlementsResponse struct {
	Plans []string `json:"plans"`
}

// ResolvePlan returns the plan for a user by checking the provider's
// entitlements. Premium only when the configured plan name is present;
// any other answer, including an unknown user, resolves to free.
func (c *Client) ResolvePlan(ctx context.Context, userID string) (model.Plan, error) {
	var out entitlementsResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetPathParam("id", userID).
		Get("/v1/users/{id}/entitlements")
	if err != nil {
		return "", fmt.Errorf("entitlement lookup failed: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return model.PlanFree, nil
	}
	if resp.IsError() {
		return "", fmt.Errorf("entitlement lookup returned status %d", resp.StatusCode())
	}

	for _, plan := range out.Plans {
		if plan == c.premiumPlan {
			return model.PlanPremium, nil
		}
	}

	return model.PlanFree, nil
}

package entitlement

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// CheckoutResult is what the mock payment flow hands back to the client.
type CheckoutResult struct {
	SessionID string `json:"session_id"`
	Plan      Plan   `json:"plan"`
	Token     string `json:"token"`
}

// MockCheckout simulates a completed purchase and mints the entitlement
// token a real payment webhook would produce.
func MockCheckout(issuer *Issuer, userID, planID string) (*CheckoutResult, error) {
	plan, err := PlanByID(planID)
	if err != nil {
		return nil, err
	}
	token, err := issuer.Mint(userID, planID)
	if err != nil {
		return nil, eris.Wrap(err, "entitlement: mock checkout")
	}
	return &CheckoutResult{
		SessionID: "mock_" + uuid.NewString(),
		Plan:      *plan,
		Token:     token,
	}, nil
}

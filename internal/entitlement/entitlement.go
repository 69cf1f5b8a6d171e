// Package entitlement gates premium features. A mock checkout mints a signed
// token carrying the purchased plan; verification of that token is the only
// authorization this system does. Real payments are out of scope.
package entitlement

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// Plan identifiers.
const (
	PlanFree    = "free"
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// Plan describes a purchasable subscription.
type Plan struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PriceUSD float64 `json:"price_usd"`
	Interval string  `json:"interval"`
}

// Plans lists the purchasable premium plans.
var Plans = []Plan{
	{ID: PlanMonthly, Name: "GymPulse Premium Monthly", PriceUSD: 4.99, Interval: "month"},
	{ID: PlanYearly, Name: "GymPulse Premium Yearly", PriceUSD: 49.99, Interval: "year"},
}

// PlanByID looks up a purchasable plan.
func PlanByID(id string) (*Plan, error) {
	for i := range Plans {
		if Plans[i].ID == id {
			return &Plans[i], nil
		}
	}
	return nil, eris.Errorf("entitlement: unknown plan %q", id)
}

// Claims is the token payload.
type Claims struct {
	UserID string `json:"uid"`
	Plan   string `json:"plan"`
	jwt.RegisteredClaims
}

// Premium reports whether the claims grant access to advanced analytics and
// partnership export.
func (c *Claims) Premium() bool {
	return c.Plan == PlanMonthly || c.Plan == PlanYearly
}

// Issuer mints entitlement tokens.
type Issuer struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) { i.ttl = ttl }
}

// WithIssuerNow overrides the clock. Tests use this.
func WithIssuerNow(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.nowFunc = now }
}

// NewIssuer creates an issuer signing with the given HMAC secret.
func NewIssuer(secret []byte, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		secret:  secret,
		ttl:     30 * 24 * time.Hour,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Mint signs a token granting the given plan to the user.
func (i *Issuer) Mint(userID, planID string) (string, error) {
	if _, err := PlanByID(planID); err != nil {
		return "", err
	}
	now := i.nowFunc()
	claims := Claims{
		UserID: userID,
		Plan:   planID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gympulse",
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", eris.Wrap(err, "entitlement: sign token")
	}
	return token, nil
}

// Verifier validates entitlement tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for tokens signed with the given secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses and validates a token, returning its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("gympulse"),
	)
	if err != nil {
		return nil, eris.Wrap(err, "entitlement: verify token")
	}
	return claims, nil
}

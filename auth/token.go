// auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookhive/api/config"
	bookhive_errors "github.com/bookhive/api/errors"
	"github.com/bookhive/api/model"
)

const (
	// ClassAdmin and ClassCore are the two independent token classes. Each
	// has its own secret, issuer, audience and TTLs, so a token signed for
	// one class never verifies under the other.
	ClassAdmin = "admin"
	ClassCore  = "core"

	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// Claims are the claims carried by both access and refresh tokens.
type Claims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid,omitempty"`
	TokenUse  string `json:"use"`
	jwt.RegisteredClaims
}

// Issuer creates and verifies signed tokens for one token class.
// Verification is pure: it needs only the configured secret, no I/O.
type Issuer struct {
	class string
	cfg   config.TokenClassConfiguration
}

// NewIssuer creates an Issuer for the given class. An empty secret is a
// configuration bug that must have been caught at startup; it is rejected
// here as well so a miswired Issuer can never sign forgeable tokens.
func NewIssuer(class string, cfg config.TokenClassConfiguration) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token class %q has no signing secret", class)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token class %q has invalid TTL configuration", class)
	}
	return &Issuer{class: class, cfg: cfg}, nil
}

// Class returns the token class this issuer signs for.
func (i *Issuer) Class() string {
	return i.class
}

// AccessTTL returns the configured access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration {
	return i.cfg.AccessTTL
}

// RefreshTTL returns the configured refresh-token lifetime.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.cfg.RefreshTTL
}

// IssueAccess signs a short-lived stateless access token for the user.
func (i *Issuer) IssueAccess(user *model.User) (string, error) {
	return i.sign(user, tokenUseAccess, "", i.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token embedding the session
// identifier returned by the refresh session store.
func (i *Issuer) IssueRefresh(user *model.User, sessionID string) (string, error) {
	return i.sign(user, tokenUseRefresh, sessionID, i.cfg.RefreshTTL)
}

func (i *Issuer) sign(user *model.User, use, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     user.Email,
		SessionID: sessionID,
		TokenUse:  use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", use, err)
	}
	return signed, nil
}

// VerifyAccess verifies an access token and returns its claims.
func (i *Issuer) VerifyAccess(tokenStr string) (*Claims, error) {
	return i.verify(tokenStr, tokenUseAccess)
}

// VerifyRefresh verifies a refresh token and returns its claims. An access
// token presented here fails: refresh tokens carry a distinct use marker
// and a session identifier.
func (i *Issuer) VerifyRefresh(tokenStr string) (*Claims, error) {
	claims, err := i.verify(tokenStr, tokenUseRefresh)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, bookhive_errors.ErrInvalidToken
	}
	return claims, nil
}

func (i *Issuer) verify(tokenStr, expectedUse string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithAudience(i.cfg.Audience),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(i.cfg.Secret), nil
	})
	if err != nil {
		return nil, mapTokenError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, bookhive_errors.ErrInvalidToken
	}
	if claims.TokenUse != expectedUse {
		return nil, bookhive_errors.ErrInvalidToken
	}
	return claims, nil
}

// mapTokenError collapses jwt/v5 parse errors into the local taxonomy so
// callers never switch on library error types.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return bookhive_errors.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenExpired):
		return bookhive_errors.ErrExpiredToken
	default:
		return bookhive_errors.ErrInvalidToken
	}
}

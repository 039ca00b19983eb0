// Package trigger signs and verifies the tokens carried by clear-cache
// trigger links. A link is only honoured when its token verifies against
// the secret kept in the OS keychain.
package trigger

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/services/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer is stamped on every token and required on verification.
	Issuer = "ccev"

	// Query parameters recognised on trigger links.
	ParamClear = "clear-cache-now"
	ParamToken = "_token"

	DefaultTTL = 24 * time.Hour

	leeway     = 30 * time.Second
	secretSize = 32
)

// Claims are the JWT claims of a trigger token. Subject names who may use
// the link.
type Claims struct {
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 trigger tokens.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner returns a Signer for secret.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("trigger: signing secret is empty")
	}
	return &Signer{secret: secret, now: time.Now}, nil
}

// FromStore loads the signing secret from store, generating and saving one
// when none exists yet.
func FromStore(store auth.Store) (*Signer, error) {
	secret, err := store.GetToken(auth.EntryTriggerSecret)
	if errors.Is(err, auth.ErrTokenNotFound) {
		secret, err = GenerateSecret()
		if err != nil {
			return nil, err
		}
		if err := store.SetToken(auth.EntryTriggerSecret, secret); err != nil {
			return nil, fmt.Errorf("trigger: failed to save signing secret: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("trigger: failed to load signing secret: %w", err)
	}
	return NewSigner([]byte(secret))
}

// GenerateSecret returns a random hex-encoded secret.
func GenerateSecret() (string, error) {
	b := make([]byte, secretSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("trigger: failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SetClock replaces the wall clock. Intended for tests.
func (s *Signer) SetClock(now func() time.Time) { s.now = now }

// Issue signs a token for subject that expires after ttl. A zero ttl means
// DefaultTTL.
func (s *Signer) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("trigger: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks raw and returns its claims. Every failure wraps
// domain.ErrUnauthorized.
func (s *Signer) Verify(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("missing token: %w", domain.ErrUnauthorized)
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	return claims, nil
}

// Link appends the trigger parameters to siteURL.
func Link(siteURL, token string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("trigger: invalid site URL %q", siteURL)
	}
	q := u.Query()
	q.Set(ParamClear, "1")
	q.Set(ParamToken, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Strip removes the trigger parameters from u, returning the URL a browser
// should be sent back to.
func Strip(u *url.URL) string {
	clean := *u
	q := clean.Query()
	q.Del(ParamClear)
	q.Del(ParamToken)
	clean.RawQuery = q.Encode()
	return clean.RequestURI()
}

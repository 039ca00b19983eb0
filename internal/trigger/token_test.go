package trigger

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/services/auth"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueVerify_RoundTrip(t *testing.T) {
	s, err := NewSigner([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)
	s.SetClock(fixedClock(now))

	raw, err := s.Issue("admin", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := s.Verify(raw)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "admin" || claims.Issuer != Issuer || claims.ID == "" {
		t.Errorf("claims = %+v", claims.RegisteredClaims)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt.Time, now.Add(time.Hour))
	}
}

func TestVerify_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)
	s, _ := NewSigner([]byte("secret"))
	s.SetClock(fixedClock(now))
	good, _ := s.Issue("admin", time.Minute)

	other, _ := NewSigner([]byte("other"))
	other.SetClock(fixedClock(now))
	forged, _ := other.Issue("admin", time.Minute)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    Issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}}).SignedString([]byte("secret"))

	tests := []struct {
		name  string
		raw   string
		clock time.Time
	}{
		{"empty", "", now},
		{"garbage", "not-a-token", now},
		{"wrong secret", forged, now},
		{"alg none", none, now},
		{"wrong issuer", foreign, now},
		{"expired beyond leeway", good, now.Add(2 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetClock(fixedClock(tt.clock))
			_, err := s.Verify(tt.raw)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("Verify() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestVerify_WithinLeeway(t *testing.T) {
	now := time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)
	s, _ := NewSigner([]byte("secret"))
	s.SetClock(fixedClock(now))
	raw, _ := s.Issue("admin", time.Minute)

	s.SetClock(fixedClock(now.Add(time.Minute + 10*time.Second)))
	if _, err := s.Verify(raw); err != nil {
		t.Errorf("Verify() error = %v, want nil within leeway", err)
	}
}

func TestFromStore_GeneratesOnce(t *testing.T) {
	store := auth.NewMockStore()

	if _, err := FromStore(store); err != nil {
		t.Fatalf("FromStore() error = %v", err)
	}
	first, err := store.GetToken(auth.EntryTriggerSecret)
	if err != nil || len(first) != 2*secretSize {
		t.Fatalf("stored secret = %q, %v", first, err)
	}

	if _, err := FromStore(store); err != nil {
		t.Fatal(err)
	}
	second, _ := store.GetToken(auth.EntryTriggerSecret)
	if first != second {
		t.Error("secret regenerated on second load")
	}
}

func TestNewSigner_EmptySecret(t *testing.T) {
	if _, err := NewSigner(nil); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestLinkAndStrip(t *testing.T) {
	link, err := Link("https://example.com/shop?page=2", "abc")
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse(link)
	if u.Query().Get(ParamClear) != "1" || u.Query().Get(ParamToken) != "abc" {
		t.Errorf("Link() = %s", link)
	}
	if got := Strip(u); got != "/shop?page=2" {
		t.Errorf("Strip() = %q, want /shop?page=2", got)
	}

	if _, err := Link("example.com", "abc"); err == nil {
		t.Error("expected error for URL without scheme")
	}
}

package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p := NewTestTokenProvider()
	claims := map[string]any{
		"uid":   "a1b2c3",
		"email": "mira@example.com",
		"name":  "Mira",
		"lang":  "hi",
	}
	token, err := p.Issue(claims, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("token has %d parts, want 3", len(parts))
	}

	got, err := p.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for k, want := range claims {
		if got[k] != want {
			t.Errorf("claim %q = %v, want %v", k, got[k], want)
		}
	}
	jti := got.String("jti")
	if len(jti) != 32 {
		t.Errorf("jti = %q, want 32 hex chars", jti)
	}
	exp, ok := got["exp"].(float64)
	if !ok {
		t.Fatalf("exp claim missing or not numeric: %v", got["exp"])
	}
	iat, _ := got["iat"].(float64)
	if int64(exp)-int64(iat) != 3600 {
		t.Errorf("exp-iat = %d, want 3600", int64(exp)-int64(iat))
	}
}

func TestTokenProvider_UniqueJTI(t *testing.T) {
	p := NewTestTokenProvider()
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		token, err := p.Issue(map[string]any{"uid": "u"}, time.Hour)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		claims, err := p.Validate(token)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		jti := claims.String("jti")
		if seen[jti] {
			t.Fatalf("duplicate jti %q", jti)
		}
		seen[jti] = true
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	p := NewTestTokenProvider()
	// Sign an already-expired token with the provider's algorithm and secret.
	mc := jwt.MapClaims{
		"uid": "u",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("test-secret-do-not-use-in-production"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := p.Validate(token); err != ErrInvalidToken {
		t.Errorf("Validate expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_MissingExpFailsClosed(t *testing.T) {
	p := NewTestTokenProvider()
	mc := jwt.MapClaims{"uid": "u"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("test-secret-do-not-use-in-production"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := p.Validate(token); err != ErrInvalidToken {
		t.Errorf("token without exp must be invalid, got err = %v", err)
	}
}

func TestTokenProvider_TamperedSignature(t *testing.T) {
	p := NewTestTokenProvider()
	token, err := p.Issue(map[string]any{"uid": "u"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	for i := range sig {
		tampered := append([]byte(nil), sig...)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		if string(tampered) == parts[2] {
			continue
		}
		bad := parts[0] + "." + parts[1] + "." + string(tampered)
		if _, err := p.Validate(bad); err != ErrInvalidToken {
			t.Fatalf("signature byte %d altered: err = %v, want ErrInvalidToken", i, err)
		}
	}
}

func TestTokenProvider_TamperedPayload(t *testing.T) {
	p := NewTestTokenProvider()
	token, err := p.Issue(map[string]any{"uid": "u"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	bad := parts[0] + "." + string(payload) + "." + parts[2]
	if _, err := p.Validate(bad); err != ErrInvalidToken {
		t.Errorf("payload altered: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_WrongPartCount(t *testing.T) {
	p := NewTestTokenProvider()
	valid, err := p.Issue(map[string]any{"uid": "u"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one part", "abc"},
		{"two parts", "abc.def"},
		{"four parts", valid + ".extra"},
		{"garbage base64", "!!.!!.!!"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.Validate(tc.token); err != ErrInvalidToken {
				t.Errorf("Validate(%q): err = %v, want ErrInvalidToken", tc.token, err)
			}
		})
	}
}

func TestTokenProvider_WrongSecret(t *testing.T) {
	p := NewTokenProvider("secret-a")
	other := NewTokenProvider("secret-b")
	token, err := p.Issue(map[string]any{"uid": "u"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Validate(token); err != ErrInvalidToken {
		t.Errorf("Validate with wrong secret: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_RejectsNoneAlgorithm(t *testing.T) {
	p := NewTestTokenProvider()
	mc := jwt.MapClaims{"uid": "u", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, mc).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := p.Validate(token); err != ErrInvalidToken {
		t.Errorf("alg=none token must be invalid, got err = %v", err)
	}
}

func TestTokenProvider_IssueRejectsZeroTTL(t *testing.T) {
	p := NewTestTokenProvider()
	if _, err := p.Issue(map[string]any{"uid": "u"}, 0); err == nil {
		t.Error("Issue with zero ttl should fail")
	}
}

func TestClaims_Helpers(t *testing.T) {
	c := Claims{"uid": "abc", "is_admin": true, "name": "Ravi"}
	if c.Subject() != "abc" {
		t.Errorf("Subject = %q", c.Subject())
	}
	if !c.IsAdmin() {
		t.Error("IsAdmin should be true")
	}
	if c.String("name") != "Ravi" {
		t.Errorf("String(name) = %q", c.String("name"))
	}
	empty := Claims{}
	if empty.Subject() != "" || empty.IsAdmin() || empty.String("x") != "" {
		t.Error("empty claims helpers should return zero values")
	}
}

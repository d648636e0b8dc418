package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or is expired. Callers must not distinguish the sub-reasons
	// in responses.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the validated claim map of a session token.
type Claims map[string]any

// Subject returns the "uid" claim, or "" if absent.
func (c Claims) Subject() string {
	s, _ := c["uid"].(string)
	return s
}

// IsAdmin reports whether the token carries an is_admin=true claim.
func (c Claims) IsAdmin() bool {
	b, _ := c["is_admin"].(bool)
	return b
}

// String returns the named claim as a string, or "" if absent or not a string.
func (c Claims) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// TokenProvider issues and validates stateless session tokens: HS256 JWTs
// signed with a server-held secret. Tokens are wire-compatible with the
// existing clients (base64url header.payload.signature, header
// {"typ":"JWT","alg":"HS256"}, payload with exp/iat and a 32-hex-char jti).
type TokenProvider struct {
	secret []byte
}

// NewTokenProvider returns a TokenProvider signing with the given secret.
// The secret comes from configuration; it is never baked into the code.
func NewTokenProvider(secret string) *TokenProvider {
	return &TokenProvider{secret: []byte(secret)}
}

// Issue builds a signed token carrying the caller's claims plus server-set
// exp (now+ttl, unix seconds), iat (now), and a unique jti per issuance.
// The caller's map is not mutated.
func (p *TokenProvider) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("security: token ttl must be positive")
	}
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	mc := make(jwt.MapClaims, len(claims)+3)
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(ttl).Unix()
	mc["jti"] = jti
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return t.SignedString(p.secret)
}

// Validate verifies the token's HMAC signature before any claim is trusted,
// then checks expiry. A missing exp claim fails closed. Returns the full
// claim map on success; every failure (wrong part count, bad base64, bad
// signature, expired, missing exp) collapses to ErrInvalidToken.
func (p *TokenProvider) Validate(tokenString string) (Claims, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return Claims(mc), nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

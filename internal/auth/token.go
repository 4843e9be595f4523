package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session_token"

// DefaultTokenTTL is the fixed session lifetime. A token's expiry is set at
// issuance and never extended; expiry is the sole invalidation mechanism.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrTokenInvalid covers structural malformation and signature mismatch.
	ErrTokenInvalid = errors.New("auth: token invalid")
	// ErrTokenExpired indicates a well-formed, correctly signed token past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
)

// Claims is the payload carried inside the signed session token. Claims are
// immutable once issued and are never persisted server-side.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// UserID returns the subject as a numeric user ID.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// TokenCodec issues and verifies HMAC-SHA256 signed session tokens. The
// secret is injected once at construction; there is no package-level default
// to fall back to.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec constructs a TokenCodec. An empty secret is a configuration
// error and must abort startup.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("auth: session secret must be configured")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the user with issuedAt = now and
// expiresAt = now + ttl.
func (c *TokenCodec) Issue(user *User) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Email:    user.Email,
		Username: user.Username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature integrity first, then expiry. The signing method is
// pinned to HS256; a token declaring any other algorithm is rejected without
// negotiation. Callers outside the codec treat both error values uniformly as
// "no session".
func (c *TokenCodec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// TTL exposes the configured token lifetime, used for cookie expiry.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

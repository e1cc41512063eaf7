package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingClaims = errors.New("token: id and role are required")
	ErrTokenExpired  = errors.New("token: expired")
	ErrTokenInvalid  = errors.New("token: invalid")
)

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Config is fixed at startup and never mutated afterwards. Access and
// refresh tokens use separate secrets so one leaked key cannot forge the
// other kind.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type Codec struct {
	cfg Config
}

func New(cfg Config) *Codec {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Codec{cfg: cfg}
}

func (c *Codec) RefreshTTL() time.Duration { return c.cfg.RefreshTTL }

func (c *Codec) SignAccess(userID, role string) (string, error) {
	return sign(userID, role, c.cfg.AccessSecret, c.cfg.AccessTTL)
}

func (c *Codec) SignRefresh(userID, role string) (string, error) {
	return sign(userID, role, c.cfg.RefreshSecret, c.cfg.RefreshTTL)
}

func (c *Codec) VerifyAccess(raw string) (*Claims, error) {
	return verify(raw, c.cfg.AccessSecret)
}

func (c *Codec) VerifyRefresh(raw string) (*Claims, error) {
	return verify(raw, c.cfg.RefreshSecret)
}

func sign(userID, role string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" || role == "" {
		return "", ErrMissingClaims
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// verify fails closed: every failure collapses to ErrTokenExpired or
// ErrTokenInvalid so callers can branch without inspecting jwt internals.
func verify(raw string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	t, err := parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !t.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || claims.UserID == "" || claims.Role == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
)

var (
	// ErrTokenInvalid is returned when a token is malformed or its signature does not match.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is returned when a correctly signed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Clock supplies the current time.
type Clock func() time.Time

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	now    Clock
}

// NewTokenManager builds a new manager. A nil clock means time.Now.
func NewTokenManager(secret string, clock Clock) *TokenManager {
	if clock == nil {
		clock = time.Now
	}
	return &TokenManager{secret: []byte(secret), now: clock}
}

// Claims describes JWT payload.
type Claims struct {
	domain.TokenClaims
	jwt.RegisteredClaims
}

// Issue builds and signs a JWT carrying claims that expires after ttl.
func (tm *TokenManager) Issue(claims domain.TokenClaims, ttl time.Duration) (string, error) {
	issuedAt := tm.now()
	payload := &Claims{
		TokenClaims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry of tokenStr and returns its claims.
// Errors wrap ErrTokenExpired or ErrTokenInvalid.
func (tm *TokenManager) Verify(tokenStr string) (*domain.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithTimeFunc(tm.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrTokenInvalid)
	}
	if claims.TokenClaims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject id", ErrTokenInvalid)
	}
	return &claims.TokenClaims, nil
}

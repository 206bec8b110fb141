package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionTTL      = 7 * 24 * time.Hour
	CallbackCodeTTL = 15 * time.Minute

	callbackPurpose = "callback"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type SessionClaims struct {
	ProfileID string `json:"uid"`
	Role      string `json:"role"`
	Purpose   string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// RefreshDue reports whether less than half of the session lifetime is left.
func (claims SessionClaims) RefreshDue(now time.Time) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(now) < SessionTTL/2
}

// CallbackClaims back the one-time sign-in links printed by the admin CLI.
// Binding carries a digest of the password hash at mint time, so any
// password change voids outstanding links.
type CallbackClaims struct {
	ProfileID string `json:"uid"`
	Purpose   string `json:"purpose"`
	Binding   string `json:"bind"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret, now: time.Now}
}

// WithClock swaps the time source; used by tests.
func (issuer *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	return &TokenIssuer{secret: issuer.secret, now: now}
}

func (issuer *TokenIssuer) IssueSession(profileID string, role string) (string, time.Time, error) {
	now := issuer.now()
	expiresAt := now.Add(SessionTTL)
	claims := SessionClaims{
		ProfileID: profileID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expiresAt, nil
}

func (issuer *TokenIssuer) ParseSession(raw string) (SessionClaims, error) {
	claims := SessionClaims{}
	if err := issuer.parse(raw, &claims); err != nil {
		return SessionClaims{}, err
	}
	if claims.ProfileID == "" || claims.Purpose != "" {
		return SessionClaims{}, ErrInvalidToken
	}
	return claims, nil
}

func (issuer *TokenIssuer) IssueCallbackCode(profileID string, passwordHash string) (string, error) {
	now := issuer.now()
	claims := CallbackClaims{
		ProfileID: profileID,
		Purpose:   callbackPurpose,
		Binding:   PasswordBinding(passwordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   profileID,
			ExpiresAt: jwt.NewNumericDate(now.Add(CallbackCodeTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.secret)
	if err != nil {
		return "", fmt.Errorf("sign callback code: %w", err)
	}
	return signed, nil
}

func (issuer *TokenIssuer) ParseCallbackCode(raw string) (CallbackClaims, error) {
	claims := CallbackClaims{}
	if err := issuer.parse(raw, &claims); err != nil {
		return CallbackClaims{}, err
	}
	if claims.Purpose != callbackPurpose || claims.ProfileID == "" || claims.ID == "" {
		return CallbackClaims{}, ErrInvalidToken
	}
	return claims, nil
}

func PasswordBinding(passwordHash string) string {
	digest := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(digest[:8])
}

func (issuer *TokenIssuer) parse(raw string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return issuer.secret, nil
	}, jwt.WithTimeFunc(issuer.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

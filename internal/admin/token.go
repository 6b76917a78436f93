package admin

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rosamendez/emberglow-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// SessionClaims is the typed JWT issued to an allow-listed admin.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	RemoteIP  string `json:"remote_ip"`
	jwt.RegisteredClaims
}

// MintSessionToken issues a short-lived signed JWT for an admin session.
func MintSessionToken(cfg config.AdminConfig, now time.Time, sessionID, remoteIP string) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("admin jwt secret is required")
	}
	if cfg.JWTIssuer == "" {
		return "", fmt.Errorf("admin jwt issuer is required")
	}
	if cfg.SessionTTL <= 0 {
		return "", fmt.Errorf("admin session ttl must be positive")
	}

	claims := SessionClaims{
		SessionID: sessionID,
		RemoteIP:  remoteIP,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.SessionTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing admin jwt: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates the JWT string and returns typed claims.
func ParseSessionToken(cfg config.AdminConfig, tokenString string) (*SessionClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("admin jwt secret is required")
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

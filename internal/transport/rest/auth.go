package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"ReadLater/internal/config"
)

type contextKey string

const userIDKey contextKey = "readlaterUser"

var (
	errMissingToken  = errors.New("missing bearer token")
	errInvalidToken  = errors.New("invalid bearer token")
	errInvalidIssuer = errors.New("invalid issuer")
)

// JWTAuth resolves the caller's user id from an HS256 bearer token. The
// subject claim is the user id.
type JWTAuth struct {
	secret []byte
	issuer string
	logger *slog.Logger
}

// NewJWTAuth builds the middleware. With an empty secret every request is rejected.
func NewJWTAuth(cfg config.AuthConfig, logger *slog.Logger) *JWTAuth {
	if cfg.JWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET not set, API requests will be rejected")
	}
	return &JWTAuth{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, logger: logger}
}

// RequireJWT rejects requests without a valid token.
func (m *JWTAuth) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := m.authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				switch {
				case errors.Is(err, errMissingToken):
					return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
				case errors.Is(err, errInvalidIssuer):
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token issuer")
				default:
					m.logger.Debug("token rejected", "error", err)
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid bearer token")
				}
			}

			ctx := context.WithValue(c.Request().Context(), userIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func (m *JWTAuth) authenticate(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errMissingToken
	}
	if len(m.secret) == 0 {
		return "", fmt.Errorf("%w: secret not configured", errInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errInvalidToken
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return "", errInvalidIssuer
	}
	return claims.Subject, nil
}

// userIDFrom returns the authenticated user id.
func userIDFrom(c echo.Context) string {
	id, _ := c.Request().Context().Value(userIDKey).(string)
	return id
}

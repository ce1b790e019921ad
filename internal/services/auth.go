package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/checkia-backend/internal/platform/ctxutil"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

// AuthService verifies access tokens minted by the external identity provider.
// This service never issues tokens itself.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

// AccessClaims is the subset of the provider's access token we read.
type AccessClaims struct {
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log      *logger.Logger
	secret   []byte
	audience string
	leeway   time.Duration
}

func NewAuthService(log *logger.Logger, jwtSecret, audience string) AuthService {
	return &authService{
		log:      log.With("service", "AuthService"),
		secret:   []byte(jwtSecret),
		audience: strings.TrimSpace(audience),
		leeway:   30 * time.Second,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, ErrNotAuthenticated
	}
	if len(as.secret) == 0 {
		return ctx, errors.New("token verification is not configured")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(as.leeway),
		jwt.WithExpirationRequired(),
	}
	if as.audience != "" {
		opts = append(opts, jwt.WithAudience(as.audience))
	}
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return as.secret, nil
	}, opts...)
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return ctx, errors.New("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return ctx, errors.New("invalid user id in token")
	}
	rd := &ctxutil.RequestData{
		UserID:      userID,
		Email:       strings.TrimSpace(claims.Email),
		DisplayName: displayName(claims),
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func displayName(c *AccessClaims) string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := c.UserMetadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if at := strings.Index(c.Email, "@"); at > 0 {
		return c.Email[:at]
	}
	return ""
}

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quickai/quickai/internal/auth"
	"github.com/quickai/quickai/internal/cache"
	"github.com/quickai/quickai/internal/model"
)

// PlanResolver resolves the entitlement tier for a user.
type PlanResolver interface {
	ResolvePlan(ctx context.Context, userID string) (model.Plan, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	// JWTSecret verifies HS256 bearer tokens issued by the identity provider.
	JWTSecret []byte
	Identity  PlanResolver
	Cache     *cache.Cache
}

// Auth returns a middleware that authenticates requests.
// It verifies the bearer token, resolves the user's plan through the
// identity provider (cached), initializes the free-usage counter for new
// free-plan users, and injects the resulting claims into the context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			userID, err := verifyToken(token, cfg.JWTSecret)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w)
				return
			}

			claims, err := resolveClaims(r.Context(), cfg, userID)
			if err != nil {
				cfg.Logger.Error("claims resolution failed",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveClaims builds Claims for a verified user ID, consulting the cache
// before the identity provider. New free-plan users get a zero usage counter
// written on first sight; the write is idempotent.
func resolveClaims(ctx context.Context, cfg AuthConfig, userID string) (*model.Claims, error) {
	if cached, _ := cfg.Cache.GetClaims(ctx, userID); cached != nil {
		return cached, nil
	}

	plan, err := cfg.Identity.ResolvePlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve plan: %w", err)
	}

	claims := &model.Claims{UserID: userID, Plan: plan}

	if plan == model.PlanFree {
		if err := cfg.Cache.InitUsage(ctx, userID); err != nil {
			return nil, fmt.Errorf("init usage counter: %w", err)
		}
	}

	_ = cfg.Cache.SetClaims(ctx, claims)

	return claims, nil
}

// verifyToken parses and validates an HS256 JWT, returning the subject.
func verifyToken(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("missing subject claim")
	}

	return sub, nil
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"Invalid or missing credentials"}`))
}

// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neighborjob/marketplace/internal/model"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// ViewerKey is the context key for the authenticated viewer.
	ViewerKey ContextKey = "viewer"
)

// Claims represents JWT claims. The subject is the viewer id.
type Claims struct {
	jwt.RegisteredClaims
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// IssueToken signs an HS256 token for viewer valid for ttl.
func IssueToken(secret string, viewer model.Viewer, ttl time.Duration) (string, error) {
	if viewer.ID == "" {
		return "", errors.New("viewer id is required")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:   viewer.Name,
		Avatar: viewer.Avatar,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Auth creates JWT authentication middleware.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil || !token.Valid || claims.Subject == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			viewer := model.Viewer{
				ID:     claims.Subject,
				Name:   claims.Name,
				Avatar: claims.Avatar,
			}

			recordViewer(r.Context(), viewer.ID)

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}

// WithViewer returns a context carrying viewer.
func WithViewer(ctx context.Context, viewer model.Viewer) context.Context {
	return context.WithValue(ctx, ViewerKey, viewer)
}

// GetViewer gets the authenticated viewer from context.
func GetViewer(ctx context.Context) model.Viewer {
	if v, ok := ctx.Value(ViewerKey).(model.Viewer); ok {
		return v
	}
	return model.Viewer{}
}

// GetViewerID gets the authenticated viewer id from context.
func GetViewerID(ctx context.Context) string {
	return GetViewer(ctx).ID
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

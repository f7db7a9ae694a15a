package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neighborjob/marketplace/internal/middleware"
	"github.com/neighborjob/marketplace/internal/model"
)

const testSecret = "test-secret"

func viewerEcho() (http.Handler, *model.Viewer) {
	got := &model.Viewer{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = middleware.GetViewer(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), got
}

func TestAuth_ValidToken(t *testing.T) {
	token, err := middleware.IssueToken(testSecret, model.Viewer{ID: "me", Name: "Alex Rivera", Avatar: "https://example.com/a.png"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	next, got := viewerEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middleware.Auth(testSecret)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got.ID != "me" || got.Name != "Alex Rivera" || got.Avatar != "https://example.com/a.png" {
		t.Errorf("viewer = %+v", *got)
	}
}

func TestAuth_Rejects(t *testing.T) {
	expired, err := middleware.IssueToken(testSecret, model.Viewer{ID: "me"}, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	wrongKey, err := middleware.IssueToken("other-secret", model.Viewer{ID: "me"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{Name: "x"}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not-a-token"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
		{"no subject", "Bearer " + noSubject},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, _ := viewerEcho()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			middleware.Auth(testSecret)(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestIssueToken_RequiresViewerID(t *testing.T) {
	if _, err := middleware.IssueToken(testSecret, model.Viewer{}, time.Hour); err == nil {
		t.Error("expected error for empty viewer id")
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

const testSecret = "test-secret-at-least-32-bytes-long"

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testSecret, "canteen-system", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tm
}

func TestIssueAndVerify(t *testing.T) {
	tm := newTestManager(t)

	token, err := tm.Issue(&models.User{ID: 7, Username: "alice", Email: "alice@example.com", IsStaff: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token.TokenType != "Bearer" || token.ExpiresIn != 3600 {
		t.Errorf("unexpected token response %+v", token)
	}

	principal, err := tm.Verify(token.Access)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if principal.UserID != 7 || principal.Username != "alice" || !principal.IsAdmin() {
		t.Errorf("unexpected principal %+v", principal)
	}
}

func TestVerifyRejects(t *testing.T) {
	tm := newTestManager(t)
	token, err := tm.Issue(&models.User{ID: 1, Username: "bob"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, _ := NewTokenManager("another-secret-of-sufficient-size", "canteen-system", time.Hour)

	expired := newTestManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(&models.User{ID: 1, Username: "bob"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name  string
		tm    *TokenManager
		token string
	}{
		{"garbage", tm, "not-a-jwt"},
		{"wrong secret", other, token.Access},
		{"expired", tm, old.Access},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tm.Verify(tt.token)
			if !apperror.Is(err, apperror.KindUnauthorized) {
				t.Errorf("expected unauthorized error, got %v", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	tm := newTestManager(t)
	log := logger.Discard()

	staff, _ := tm.Issue(&models.User{ID: 1, Username: "admin", IsStaff: true})
	customer, _ := tm.Issue(&models.User{ID: 2, Username: "carol"})

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, found := PrincipalFrom(r.Context()); !found {
			t.Error("principal missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	})
	authenticated := Authenticate(tm, log)(ok)
	admin := Authenticate(tm, log)(RequireCapability(models.CapabilityAdmin, log)(ok))

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		want    int
	}{
		{"missing token", authenticated, "", http.StatusUnauthorized},
		{"wrong scheme", authenticated, "Basic abc", http.StatusUnauthorized},
		{"invalid token", authenticated, "Bearer nope", http.StatusUnauthorized},
		{"customer authenticated", authenticated, "Bearer " + customer.Access, http.StatusNoContent},
		{"customer on admin route", admin, "Bearer " + customer.Access, http.StatusForbidden},
		{"admin on admin route", admin, "Bearer " + staff.Access, http.StatusNoContent},
		{"anonymous on admin route", admin, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

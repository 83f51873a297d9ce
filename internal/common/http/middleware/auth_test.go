package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "duothan/pkg/errors"

	"github.com/gin-gonic/gin"
)

type fakeAuthenticator struct {
	info TeamInfo
	err  error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, raw string) (TeamInfo, error) {
	if f.err != nil {
		return TeamInfo{}, f.err
	}
	if raw == "" {
		return TeamInfo{}, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	return f.info, nil
}

func newAuthTestRouter(auth Authenticator, policy AuthPolicy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(auth, policy), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"team_id": c.GetInt64("team_id")})
	})
	return router
}

func TestAuthMiddlewareAllowsValidToken(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthenticator{info: TeamInfo{ID: 7, Name: "byte-bandits", Role: "team"}}
	router := newAuthTestRouter(auth, AuthPolicy{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthenticator{info: TeamInfo{ID: 7}}
	router := newAuthTestRouter(auth, AuthPolicy{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareEnforcesRoles(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthenticator{info: TeamInfo{ID: 7, Role: "team"}}
	router := newAuthTestRouter(auth, AuthPolicy{Roles: []string{"admin"}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAuthMiddlewarePublicMode(t *testing.T) {
	t.Parallel()

	router := newAuthTestRouter(nil, AuthPolicy{Mode: "public"})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for public route, got %d", w.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		if got := extractBearerToken(tc.header); got != tc.want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

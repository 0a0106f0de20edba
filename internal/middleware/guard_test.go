package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authed(role models.Role) models.Session {
	return models.Session{
		User:            &models.User{ID: "1", Role: role},
		Token:           "tok",
		IsAuthenticated: true,
		State:           models.StateAuthenticated,
	}
}

var anonymous = models.Session{State: models.StateUnauthenticated}

func TestEvaluateScenarios(t *testing.T) {
	paths := DefaultPaths()
	tests := []struct {
		name      string
		sess      models.Session
		allowed   []models.Role
		attempted string
		want      Decision
	}{
		{
			name:      "anonymous admin area goes to admin login",
			sess:      anonymous,
			allowed:   []models.Role{models.RoleAdmin},
			attempted: "/admin/dashboard",
			want:      Decision{Kind: DecisionRedirectLogin, Location: "/admin/login?from=%2Fadmin%2Fdashboard"},
		},
		{
			name:      "anonymous retailer area goes to general login",
			sess:      anonymous,
			allowed:   []models.Role{models.RoleRetailer},
			attempted: "/retailer/dashboard",
			want:      Decision{Kind: DecisionRedirectLogin, Location: "/login?from=%2Fretailer%2Fdashboard"},
		},
		{
			name:      "consumer on retailer route goes to shop",
			sess:      authed(models.RoleConsumer),
			allowed:   []models.Role{models.RoleRetailer},
			attempted: "/retailer/dashboard",
			want:      Decision{Kind: DecisionRedirectLanding, Location: "/consumer/shop"},
		},
		{
			name:      "retailer on retailer route renders",
			sess:      authed(models.RoleRetailer),
			allowed:   []models.Role{models.RoleRetailer},
			attempted: "/retailer/dashboard",
			want:      Decision{Kind: DecisionAllow},
		},
		{
			name:      "loading never redirects",
			sess:      models.Session{IsLoading: true, State: models.StateRestoring},
			allowed:   []models.Role{models.RoleAdmin},
			attempted: "/admin/dashboard",
			want:      Decision{Kind: DecisionLoading},
		},
		{
			name:      "no role set allows any authenticated user",
			sess:      authed(models.RoleWholesaler),
			attempted: "/account",
			want:      Decision{Kind: DecisionAllow},
		},
		{
			name:      "admin prefix must be a path segment",
			sess:      anonymous,
			attempted: "/administrators",
			want:      Decision{Kind: DecisionRedirectLogin, Location: "/login?from=%2Fadministrators"},
		},
		{
			name:      "query string is carried along",
			sess:      anonymous,
			attempted: "/admin?tab=users",
			want:      Decision{Kind: DecisionRedirectLogin, Location: "/admin/login?from=%2Fadmin%3Ftab%3Dusers"},
		},
		{
			name:      "authenticated flag without user is not authenticated",
			sess:      models.Session{IsAuthenticated: true},
			attempted: "/employee/dashboard",
			want:      Decision{Kind: DecisionRedirectLogin, Location: "/login?from=%2Femployee%2Fdashboard"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.sess, tt.allowed, tt.attempted, paths))
		})
	}
}

func TestEvaluateLandingForEveryRole(t *testing.T) {
	paths := DefaultPaths()
	want := map[models.Role]string{
		models.RoleConsumer:   "/consumer/shop",
		models.RoleEmployee:   "/employee/dashboard",
		models.RoleRetailer:   "/retailer/dashboard",
		models.RoleWholesaler: "/wholesaler/dashboard",
		models.RoleAdmin:      "/admin/dashboard",
	}
	for role, landing := range want {
		d := Evaluate(authed(role), []models.Role{"nobody"}, "/x", paths)
		assert.Equal(t, Decision{Kind: DecisionRedirectLanding, Location: landing}, d)
	}
}

func TestUnmappedRolePanics(t *testing.T) {
	paths := DefaultPaths()
	assert.Panics(t, func() {
		Evaluate(authed("auditor"), []models.Role{models.RoleAdmin}, "/admin", paths)
	})
}

func TestNewPathsValidation(t *testing.T) {
	_, err := NewPaths("/login", "/admin/login", "/admin", map[models.Role]string{
		models.RoleConsumer: "/consumer/shop",
	})
	assert.Error(t, err)

	_, err = NewPaths("", "/admin/login", "/admin", DefaultPaths().Landing)
	assert.Error(t, err)
}

type staticSession models.Session

func (s staticSession) Snapshot() models.Session { return models.Session(s) }

func TestRequireSessionMiddleware(t *testing.T) {
	paths := DefaultPaths()
	var seen *models.User
	content := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUser(r)
		w.Write([]byte("dashboard"))
	})

	t.Run("redirects anonymous with from", func(t *testing.T) {
		h := RequireSession(staticSession(anonymous), paths, models.RoleAdmin)(content)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/admin/login", loc.Path)
		assert.Equal(t, "/admin/dashboard", loc.Query().Get("from"))
	})

	t.Run("loading responds without redirect", func(t *testing.T) {
		h := RequireSession(staticSession(models.Session{IsLoading: true}), paths)(content)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/consumer/shop", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.JSONEq(t, `{"status":"loading"}`, rec.Body.String())
	})

	t.Run("allowed role sees content and user", func(t *testing.T) {
		h := RequireSession(staticSession(authed(models.RoleRetailer)), paths, models.RoleRetailer)(content)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/retailer/dashboard", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "dashboard", rec.Body.String())
		require.NotNil(t, seen)
		assert.Equal(t, models.RoleRetailer, seen.Role)
	})

	t.Run("wrong role goes to its landing", func(t *testing.T) {
		h := RequireSession(staticSession(authed(models.RoleConsumer)), paths, models.RoleRetailer)(content)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/retailer/dashboard", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/consumer/shop", rec.Header().Get("Location"))
	})
}

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/models"

	"github.com/gorilla/mux"
)

// Paths are the fixed locations the guard redirects to.
type Paths struct {
	Login      string
	AdminLogin string
	AdminArea  string
	Landing    map[models.Role]string
}

func DefaultPaths() Paths {
	p, err := NewPaths("/login", "/admin/login", "/admin", map[models.Role]string{
		models.RoleConsumer:   "/consumer/shop",
		models.RoleEmployee:   "/employee/dashboard",
		models.RoleRetailer:   "/retailer/dashboard",
		models.RoleWholesaler: "/wholesaler/dashboard",
		models.RoleAdmin:      "/admin/dashboard",
	})
	if err != nil {
		panic(err)
	}
	return p
}

// NewPaths rejects a configuration that leaves any role without a landing
// path.
func NewPaths(login, adminLogin, adminArea string, landing map[models.Role]string) (Paths, error) {
	if login == "" || adminLogin == "" || adminArea == "" {
		return Paths{}, fmt.Errorf("login, admin login and admin area paths are required")
	}
	for _, role := range models.AllRoles {
		if landing[role] == "" {
			return Paths{}, fmt.Errorf("no landing path configured for role %q", role)
		}
	}
	copied := make(map[models.Role]string, len(landing))
	for k, v := range landing {
		copied[k] = v
	}
	return Paths{Login: login, AdminLogin: adminLogin, AdminArea: strings.TrimRight(adminArea, "/"), Landing: copied}, nil
}

// LandingFor panics on an unmapped role: that is a configuration bug, not a
// runtime condition.
func (p Paths) LandingFor(role models.Role) string {
	path, ok := p.Landing[role]
	if !ok {
		panic(fmt.Sprintf("guard: no landing path for role %q", role))
	}
	return path
}

func (p Paths) inAdminArea(path string) bool {
	return path == p.AdminArea || strings.HasPrefix(path, p.AdminArea+"/")
}

// LoginFor returns the login location for an attempted request URI, carrying
// the attempt along as ?from=.
func (p Paths) LoginFor(attempted string) string {
	path, _, _ := strings.Cut(attempted, "?")
	login := p.Login
	if p.inAdminArea(path) {
		login = p.AdminLogin
	}
	return login + "?from=" + url.QueryEscape(attempted)
}

type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionLoading
	DecisionRedirectLogin
	DecisionRedirectLanding
)

type Decision struct {
	Kind     DecisionKind
	Location string
}

// Evaluate decides what a guarded view does for the given session. It has no
// side effects.
func Evaluate(sess models.Session, allowed []models.Role, attempted string, paths Paths) Decision {
	if sess.IsLoading {
		return Decision{Kind: DecisionLoading}
	}
	if !sess.IsAuthenticated || sess.User == nil {
		return Decision{Kind: DecisionRedirectLogin, Location: paths.LoginFor(attempted)}
	}
	if len(allowed) > 0 && !roleIn(sess.User.Role, allowed) {
		return Decision{Kind: DecisionRedirectLanding, Location: paths.LandingFor(sess.User.Role)}
	}
	return Decision{Kind: DecisionAllow}
}

func roleIn(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

type SessionSource interface {
	Snapshot() models.Session
}

// RequireSession gates the wrapped routes on the current session and,
// when allowed is non-empty, on the user's role.
func RequireSession(sessions SessionSource, paths Paths, allowed ...models.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessions.Snapshot()
			d := Evaluate(sess, allowed, r.URL.RequestURI(), paths)

			switch d.Kind {
			case DecisionLoading:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
			case DecisionRedirectLogin, DecisionRedirectLanding:
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
			default:
				ctx := context.WithValue(r.Context(), UserKey, sess.User)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

func GetUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(UserKey).(*models.User)
	return u, ok && u != nil
}

func GetUserRole(r *http.Request) (models.Role, bool) {
	u, ok := GetUser(r)
	if !ok {
		return "", false
	}
	return u.Role, true
}

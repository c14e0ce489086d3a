// Package access decides whether a principal may open an application path.
package access

import (
	"strings"

	"github.com/nurpe/liftcare/internal/model"
)

const (
	LoginPath = "/login"
	RootPath  = "/"
)

// Decision is either Allow or a redirect to Path.
type Decision struct {
	Allow bool   `json:"allow"`
	Path  string `json:"redirect,omitempty"`
}

func Allow() Decision {
	return Decision{Allow: true}
}

func Redirect(path string) Decision {
	return Decision{Path: path}
}

var landing = map[model.Role]string{
	model.RoleCustomer: "/customer",
	model.RoleEmployee: "/employee",
	model.RoleAdmin:    "/admin",
}

// LandingPath is the dashboard a role starts on.
func LandingPath(role model.Role) string {
	if path, ok := landing[role]; ok {
		return path
	}
	return LoginPath
}

// RequiredRole returns the role guarding path, if any.
func RequiredRole(path string) (model.Role, bool) {
	for role, prefix := range landing {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return role, true
		}
	}
	return "", false
}

// Decide applies the route guard:
//   - the root path redirects to the login page
//   - role areas need a signed-in principal, otherwise the login page
//   - a signed-in principal of another role is sent to its own landing path
func Decide(principal model.Principal, path string) Decision {
	path = normalize(path)
	if path == RootPath {
		return Redirect(LoginPath)
	}
	required, guarded := RequiredRole(path)
	if !guarded {
		return Allow()
	}
	if !principal.IsAuthenticated() {
		return Redirect(LoginPath)
	}
	if principal.Role != required {
		return Redirect(LandingPath(principal.Role))
	}
	return Allow()
}

// Permits reports whether role is one of allowed.
func Permits(role model.Role, allowed ...model.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return RootPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = RootPath
		}
	}
	return path
}

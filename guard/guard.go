package guard

import (
	"fmt"
	"net/url"

	"github.com/campusware/course-portal/identity"
)

// LoginPath is the unauthenticated entry point of the portal.
const LoginPath = "/login"

// Requirement declares what a protected route demands. It is attached
// to the route, not computed per request. An empty AllowedRoles set
// admits any authenticated role.
type Requirement struct {
	AllowedRoles []identity.Role
	EnforceSelf  bool
}

// State is the admission outcome for a navigation.
type State int

const (
	Unauthenticated State = iota
	WrongRole
	WrongSelfScope
	Admitted
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case WrongRole:
		return "wrong_role"
	case WrongSelfScope:
		return "wrong_self_scope"
	case Admitted:
		return "admitted"
	}
	return "unknown"
}

// Decision is the guard's verdict for one navigation. RedirectTo is
// empty only when the state is Admitted.
type Decision struct {
	State      State
	RedirectTo string
}

// Evaluate decides whether a navigation is admitted. It is a pure
// function of its inputs; guard outcomes are never surfaced as errors,
// only as redirects.
//
// requested is the originally requested location. It is remembered
// only on the unauthenticated path, so login can return the user
// there. A wrong-role or wrong-scope request is never remembered as a
// post-login destination; those redirect straight to the caller's own
// landing route.
func Evaluate(claims identity.Claims, req Requirement, pathSubjectID *int64, requested string) Decision {
	if claims == nil {
		return Decision{State: Unauthenticated, RedirectTo: loginRedirect(requested)}
	}

	if len(req.AllowedRoles) > 0 && !roleAllowed(claims.Role(), req.AllowedRoles) {
		return Decision{State: WrongRole, RedirectTo: HomePath(claims)}
	}

	if req.EnforceSelf && pathSubjectID != nil {
		if own, ok := identity.SubjectID(claims); ok && own != *pathSubjectID {
			return Decision{State: WrongSelfScope, RedirectTo: HomePath(claims)}
		}
	}

	return Decision{State: Admitted}
}

// HomePath maps claims to their default landing route. The mapping is
// total: every input, including nil claims, yields exactly one
// destination. It is shared by the guard's corrective redirects and by
// the post-login redirect.
func HomePath(claims identity.Claims) string {
	switch v := claims.(type) {
	case identity.Admin:
		return "/admin/dashboard"
	case identity.Instructor:
		return fmt.Sprintf("/instructors/%d/courses", v.InstructorID)
	case identity.Student:
		return fmt.Sprintf("/students/%d/courses", v.StudentID)
	}
	return LoginPath
}

func roleAllowed(role identity.Role, allowed []identity.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func loginRedirect(requested string) string {
	if requested == "" || requested == LoginPath {
		return LoginPath
	}
	return LoginPath + "?from=" + url.QueryEscape(requested)
}

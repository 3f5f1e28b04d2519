package routes

import (
	"strconv"
	"strings"

	"github.com/jrsteele09/go-blog-client/sessions"
)

// Route path constants
// All client routes are defined here so links and guards agree on them
const (
	// Blog
	RouteHome  = "/"
	RoutePost  = "/post/:id"
	RouteWrite = "/write"
	RouteEdit  = "/edit/:id"

	// Profile
	RouteProfile = "/profile"
	RouteProject = "/project/:id"

	// Auth (guests only)
	RouteLogin  = "/login"
	RouteSignup = "/signup"
)

// Access says who may open a route.
type Access int

const (
	AccessPublic    Access = iota
	AccessProtected        // signed-in users only
	AccessGuestOnly        // signed-out users only
)

type Route struct {
	Pattern string
	Access  Access
}

// Table is every route the client knows, in match order.
var Table = []Route{
	{RouteHome, AccessPublic},
	{RoutePost, AccessPublic},
	{RouteWrite, AccessProtected},
	{RouteEdit, AccessProtected},
	{RouteProfile, AccessPublic},
	{RouteProject, AccessPublic},
	{RouteLogin, AccessGuestOnly},
	{RouteSignup, AccessGuestOnly},
}

func PostPath(id int64) string    { return "/post/" + strconv.FormatInt(id, 10) }
func EditPath(id int64) string    { return "/edit/" + strconv.FormatInt(id, 10) }
func ProjectPath(id int64) string { return "/project/" + strconv.FormatInt(id, 10) }

// Match finds the route for path and returns its :params. Paths that match
// nothing belong to the not-found page.
func Match(path string) (Route, map[string]string, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segs := split(path)
	for _, r := range Table {
		if params, ok := matchPattern(split(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return nil, false
			}
			params[p[1:]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// Decision is the outcome of a guard. When Allow is false the user is sent
// to Redirect; From is where they were heading, so a later login can return
// them there.
type Decision struct {
	Allow    bool
	Redirect string
	From     string
}

// Protected sends signed-out users to the login route, remembering route.
func Protected(route string, sess sessions.Session) Decision {
	if sess.IsAuthenticated {
		return Decision{Allow: true}
	}
	return Decision{Redirect: RouteLogin, From: route}
}

// GuestOnly sends signed-in users back to from, or home when from is
// empty or itself a guest-only route.
func GuestOnly(route string, sess sessions.Session, from string) Decision {
	if !sess.IsAuthenticated {
		return Decision{Allow: true}
	}
	target := from
	if r, _, ok := Match(from); from == "" || (ok && r.Access == AccessGuestOnly) {
		target = RouteHome
	}
	return Decision{Redirect: target}
}

// Guard applies the access rule of whatever route path matches. Unknown
// paths are allowed through to the not-found page.
func Guard(path string, sess sessions.Session, from string) Decision {
	r, _, ok := Match(path)
	if !ok {
		return Decision{Allow: true}
	}
	switch r.Access {
	case AccessProtected:
		return Protected(path, sess)
	case AccessGuestOnly:
		return GuestOnly(path, sess, from)
	default:
		return Decision{Allow: true}
	}
}

package auth

import (
	"net/http"
	"regexp"
	"slices"
	"strings"
)

// Route is one unauthenticated path+method entry.
type Route struct {
	pattern *regexp.Regexp
	methods []string
}

// NewRoute anchors pattern so that it must match the whole request path.
func NewRoute(pattern string, methods ...string) Route {
	upper := make([]string, len(methods))
	for i, m := range methods {
		upper[i] = strings.ToUpper(m)
	}
	return Route{pattern: regexp.MustCompile("^" + pattern + "$"), methods: upper}
}

func (r Route) Matches(method, path string) bool {
	return slices.Contains(r.methods, method) && r.pattern.MatchString(path)
}

// AllowList is built once at startup and never mutated afterwards.
type AllowList struct {
	routes []Route
}

func NewAllowList(routes ...Route) AllowList {
	return AllowList{routes: slices.Clone(routes)}
}

// DefaultAllowList returns the public routes of the API mounted at prefix.
func DefaultAllowList(prefix string) AllowList {
	p := regexp.QuoteMeta(strings.TrimRight(prefix, "/"))
	return NewAllowList(
		NewRoute(p+`/products(.*)`, http.MethodGet, http.MethodOptions),
		NewRoute(p+`/categories(.*)`, http.MethodGet, http.MethodOptions),
		NewRoute(p+`/orders`, http.MethodPost, http.MethodOptions),
		NewRoute(p+`/users/login`, http.MethodPost),
		NewRoute(p+`/users/register`, http.MethodPost),
		NewRoute(p+`/users`, http.MethodPost),
		NewRoute(`/healthz`, http.MethodGet),
		NewRoute(`/public/uploads/(.*)`, http.MethodGet, http.MethodHead),
	)
}

func (a AllowList) Allows(method, path string) bool {
	for _, r := range a.routes {
		if r.Matches(method, path) {
			return true
		}
	}
	return false
}

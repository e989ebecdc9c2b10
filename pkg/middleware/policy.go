package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gobwas/glob"
)

type Access int

const (
	// Authenticated routes reject requests without a valid principal.
	Authenticated Access = iota
	// Public routes serve anonymous callers; a valid token still resolves.
	Public
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "authenticated"
}

// RoutePolicy matches requests by method and path pattern. An empty Method
// matches any method. Patterns use '/' as separator: '*' is one segment and
// '**' any number of them.
type RoutePolicy struct {
	Method  string
	Pattern string
	Access  Access
}

// DefaultPolicies is the UniEvent access table. The first match wins and
// anything unlisted requires authentication.
func DefaultPolicies() []RoutePolicy {
	return []RoutePolicy{
		{Method: http.MethodPost, Pattern: "/api/auth/register", Access: Public},
		{Method: http.MethodPost, Pattern: "/api/auth/login", Access: Public},
		{Pattern: "/swagger/**", Access: Public},
		{Pattern: "/api-docs/**", Access: Public},
		{Method: http.MethodGet, Pattern: "/api/posts", Access: Public},
		{Method: http.MethodGet, Pattern: "/api/posts/**", Access: Public},
		{Method: http.MethodGet, Pattern: "/api/users/me", Access: Authenticated},
		{Method: http.MethodGet, Pattern: "/api/users/me/**", Access: Authenticated},
		{Method: http.MethodGet, Pattern: "/api/users/*", Access: Public},
		{Method: http.MethodGet, Pattern: "/health", Access: Public},
		{Method: http.MethodGet, Pattern: "/metrics", Access: Public},
		{Pattern: "**", Access: Authenticated},
	}
}

type compiledPolicy struct {
	method  string
	pattern glob.Glob
	access  Access
}

// Policies is a compiled, ordered RoutePolicy table.
type Policies struct {
	rules []compiledPolicy
}

func NewPolicies(rules []RoutePolicy) (*Policies, error) {
	p := &Policies{rules: make([]compiledPolicy, 0, len(rules))}
	for _, r := range rules {
		g, err := glob.Compile(r.Pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid route pattern %q: %w", r.Pattern, err)
		}
		p.rules = append(p.rules, compiledPolicy{
			method:  strings.ToUpper(r.Method),
			pattern: g,
			access:  r.Access,
		})
	}
	return p, nil
}

func MustPolicies(rules []RoutePolicy) *Policies {
	p, err := NewPolicies(rules)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policies) AccessFor(method, path string) Access {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range p.rules {
		if r.method != "" && r.method != method {
			continue
		}
		if r.pattern.Match(path) {
			return r.access
		}
	}
	return Authenticated
}

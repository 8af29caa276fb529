package router

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Route represents an HTTP route with its handler and metadata.
type Route struct {
	Method      string
	Pattern     string
	Handler     http.Handler
	Middlewares []Middleware
	Params      []string
	Regex       *regexp.Regexp
}

// Router is a small HTTP router that supports pattern matching
// with parameters and middleware.
type Router struct {
	mu         sync.RWMutex
	routes     map[string][]Route
	middleware []Middleware
	notFound   http.Handler
	notAllowed http.Handler
	paramCache map[string]*regexp.Regexp
}

// New creates a new Router instance.
func New() *Router {
	return &Router{
		routes:   make(map[string][]Route),
		notFound: http.NotFoundHandler(),
		notAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}),
		paramCache: make(map[string]*regexp.Regexp),
	}
}

// GET is a shortcut for adding a route with GET method.
func (r *Router) GET(pattern string, handler http.Handler, mw ...Middleware) {
	r.AddRoute(http.MethodGet, pattern, handler, mw...)
}

// POST is a shortcut for adding a route with POST method.
func (r *Router) POST(pattern string, handler http.Handler, mw ...Middleware) {
	r.AddRoute(http.MethodPost, pattern, handler, mw...)
}

// PUT is a shortcut for adding a route with PUT method.
func (r *Router) PUT(pattern string, handler http.Handler, mw ...Middleware) {
	r.AddRoute(http.MethodPut, pattern, handler, mw...)
}

// DELETE is a shortcut for adding a route with DELETE method.
func (r *Router) DELETE(pattern string, handler http.Handler, mw ...Middleware) {
	r.AddRoute(http.MethodDelete, pattern, handler, mw...)
}

// AddRoute adds a new route with the specified method and pattern. Route
// middleware runs inside the global middleware.
func (r *Router) AddRoute(method, pattern string, handler http.Handler, mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	params, re := r.compilePattern(pattern)
	r.routes[method] = append(r.routes[method], Route{
		Method:      method,
		Pattern:     pattern,
		Handler:     handler,
		Middlewares: mw,
		Params:      params,
		Regex:       re,
	})
}

// paramSegment matches a ":name" path segment.
var paramSegment = regexp.MustCompile(`^:([A-Za-z_][A-Za-z0-9_]*)$`)

// compilePattern converts a route pattern to a regex and extracts parameter
// names. Any ":name" segment matches one path segment; a trailing "/*"
// matches the rest of the path into the "wildcard" parameter.
func (r *Router) compilePattern(pattern string) ([]string, *regexp.Regexp) {
	var params []string
	wildcard := strings.HasSuffix(pattern, "/*")
	if wildcard {
		pattern = strings.TrimSuffix(pattern, "/*")
	}

	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if m := paramSegment.FindStringSubmatch(seg); m != nil {
			params = append(params, m[1])
			segments[i] = "(?P<" + m[1] + ">[^/]+)"
			continue
		}
		segments[i] = regexp.QuoteMeta(seg)
	}

	expr := "^" + strings.Join(segments, "/")
	if wildcard {
		params = append(params, "wildcard")
		expr += "(?P<wildcard>/.*)?"
	}
	expr += "$"

	if re, ok := r.paramCache[expr]; ok {
		return params, re
	}
	re := regexp.MustCompile(expr)
	r.paramCache[expr] = re
	return params, re
}

// ServeHTTP implements http.Handler interface. A path that matches a route
// of another method answers 405 with an Allow header, anything else 404.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	middleware := r.middleware
	methodRoutes := r.routes[req.Method]
	notFound, notAllowed := r.notFound, r.notAllowed
	r.mu.RUnlock()

	for _, route := range methodRoutes {
		params := matchRoute(req.URL.Path, route)
		if params == nil {
			continue
		}

		handler := route.Handler
		for i := len(route.Middlewares) - 1; i >= 0; i-- {
			handler = route.Middlewares[i](handler)
		}
		for i := len(middleware) - 1; i >= 0; i-- {
			handler = middleware[i](handler)
		}

		handler.ServeHTTP(w, req.WithContext(WithParams(req.Context(), params)))
		return
	}

	final := notFound
	if allowed := r.allowed(req.URL.Path); len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		final = notAllowed
	}
	for i := len(middleware) - 1; i >= 0; i-- {
		final = middleware[i](final)
	}
	final.ServeHTTP(w, req)
}

// allowed lists the methods with a route matching path.
func (r *Router) allowed(path string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var methods []string
	for method, routes := range r.routes {
		for _, route := range routes {
			if matchRoute(path, route) != nil {
				methods = append(methods, method)
				break
			}
		}
	}
	sort.Strings(methods)
	return methods
}

// matchRoute checks if the URL path matches the route pattern.
func matchRoute(path string, route Route) Params {
	if route.Regex == nil {
		return nil
	}

	matches := route.Regex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}

	params := make(Params)
	for i, name := range route.Regex.SubexpNames() {
		if name != "" && i < len(matches) {
			params[name] = matches[i]
		}
	}
	return params
}

// Use adds a middleware to the router's global middleware chain.
func (r *Router) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middlewares...)
}

// SetNotFoundHandler sets the handler for routes that don't match.
func (r *Router) SetNotFoundHandler(handler http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = handler
}

// SetMethodNotAllowedHandler sets the handler for methods that don't match.
func (r *Router) SetMethodNotAllowedHandler(handler http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notAllowed = handler
}

// Routes returns a copy of all registered routes ordered by pattern.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	var routes []Route
	for _, methodRoutes := range r.routes {
		routes = append(routes, methodRoutes...)
	}
	r.mu.RUnlock()

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

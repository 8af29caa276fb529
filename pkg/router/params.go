package router

import (
	"context"
	"net/http"
)

type paramsKey struct{}

// Params holds URL parameter values extracted from the route pattern.
type Params map[string]string

// Get returns the value of the parameter with the given key.
// Returns an empty string if the parameter doesn't exist.
func (p Params) Get(key string) string {
	return p[key]
}

// Has returns true if the parameter with the given key exists.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// WithParams returns a new context with the given parameters.
func WithParams(ctx context.Context, params Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// ParamsFromContext extracts URL parameters from the context.
func ParamsFromContext(ctx context.Context) (Params, bool) {
	params, ok := ctx.Value(paramsKey{}).(Params)
	return params, ok
}

// Param returns a single URL parameter of the request.
func Param(r *http.Request, key string) string {
	params, _ := ParamsFromContext(r.Context())
	return params.Get(key)
}

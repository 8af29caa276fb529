// Package router provides the HTTP router of the webdesk API with pattern
// matching, middleware support, and URL parameter extraction.
//
// The router supports the following patterns:
//   - Exact match: /api/v1/kinds
//   - Named parameters: /api/v1/sessions/:session
//   - Nested parameters: /api/v1/sessions/:session/windows/:window
//   - Wildcard matching: /static/*
//
// Example usage:
//
//	r := router.New()
//	r.Use(router.RequestIDMiddleware(), router.LoggingMiddleware(log))
//	r.GET("/api/v1/sessions/:session", stateHandler)
//	http.ListenAndServe(":8080", r)
package router

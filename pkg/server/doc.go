// Package server runs the webdesk HTTP server: the JSON API under /api/,
// liveness and readiness probes, and the front-end bundle for every other
// path.
//
// Example usage:
//
//	srv, err := server.New(server.Config{Addr: ":8080", API: apiHandler, StaticDir: "./web"})
//	if err != nil {
//		return err
//	}
//	return srv.Run(ctx)
package server

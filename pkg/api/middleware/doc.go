// Package middleware provides the HTTP middleware of the botgraph API server.
//
// All middleware follows the standard pattern: func(http.Handler) http.Handler.
// Chain applies them outermost first:
//
//	handler := middleware.Chain(mux,
//		middleware.PanicRecovery(logger),
//		middleware.RequestID(),
//		middleware.Logging(logger),
//		middleware.CORS(middleware.DefaultCORSConfig()),
//		middleware.Metrics(registry),
//	)
//
// Metrics reads the matched route pattern from the request the mux saw, so it
// must sit directly around the mux.
package middleware

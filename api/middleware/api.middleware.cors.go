// FilePath: api/middleware/api.middleware.cors.go
package middleware

import "net/http"

// CORS headers sent on every response. Devices and the dashboard call
// the hub from arbitrary origins, so the policy is permissive.
const (
	allowOrigin  = "*"
	allowMethods = "POST, GET, OPTIONS"
	allowHeaders = "Content-Type, Authorization"
)

// CORS sets permissive cross-origin headers and short-circuits
// preflight requests with 200 before they reach the pipeline.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", allowMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

package middleware

import "net/http"

// NewStatusMetricsMiddleware reports the response status code of every
// request to observe. A nil observe disables the middleware.
func NewStatusMetricsMiddleware(observe func(statusCode int)) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if observe == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(rec, r)
			observe(rec.statusCode)
		})
	}
}

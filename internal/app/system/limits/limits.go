// internal/app/system/limits/limits.go
package limits

import "net/http"

// MaxJSONBodySize caps request bodies accepted by the JSON API.
// Oversized bodies make json.Decode fail, which surfaces as a 400.
const MaxJSONBodySize = 1 << 20 // 1 MB

// MaxBody wraps request bodies with http.MaxBytesReader so no handler
// can be fed an unbounded payload.
func MaxBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

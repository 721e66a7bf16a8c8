package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ridKey struct{}

// RequestID tags every request with an id, honoring a caller-supplied
// X-Request-ID so upload/run/export calls from one UI session correlate.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ridKey{}, rid)))
		})
	}
}

func GetRequestID(r *http.Request) string {
	rid, _ := r.Context().Value(ridKey{}).(string)
	return rid
}

package middleware

import (
	"net/http"

	"github.com/0finn0the0human0/springbootTraining/pkg/correlationid"
)

// maxCorrelationIDLen bounds client supplied ids before they reach logs.
const maxCorrelationIDLen = 128

// CorrelationID propagates the X-Correlation-ID header, generating one when the
// client did not send it, and echoes it on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" || len(id) > maxCorrelationIDLen {
				id = correlationid.New()
			}

			w.Header().Set(correlationid.Header, id)
			next.ServeHTTP(w, r.WithContext(correlationid.NewContext(r.Context(), id)))
		})
	}
}

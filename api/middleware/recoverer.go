package middleware

import (
	"net/http"

	"github.com/angelmondragon/tillbook-backend/api/responses"
	pkgerrors "github.com/angelmondragon/tillbook-backend/pkg/errors"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. http.ErrAbortHandler
// is re-raised so net/http can drop the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				switch rec := recover(); rec {
				case nil:
				case http.ErrAbortHandler:
					panic(rec)
				default:
					err := pkgerrors.Newf(pkgerrors.CodeInternal, "panic serving %s %s: %v", r.Method, r.URL.Path, rec)
					responses.WriteError(r.Context(), logg, w, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

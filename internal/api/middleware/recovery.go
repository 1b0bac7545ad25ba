package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/guardline/restoreaudit/internal/pkg/errors"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/pkg/utils"
)

// Recovery converts panics into 500 responses instead of dropped
// connections.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(map[string]interface{}{
						"request_id": GetRequestID(r.Context()),
						"panic":      fmt.Sprintf("%v", rec),
						"stack":      string(debug.Stack()),
					}).Error("Recovered from panic")

					utils.WriteError(w, errors.Internal("Internal server error", nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/demesup/awale/internal/api/apierr"
	"github.com/demesup/awale/internal/middleware"
)

// Recovery creates panic recovery middleware for the status API.
// Panics are answered with a JSON internal error.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With("component", "api"), apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sanilblank/blog-api/internal/shared"
)

// RespondError maps domain errors to envelope responses. Unknown errors are
// logged and reported as 500 without leaking details.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusUnprocessableEntity, Envelope{
			Success: false,
			Message: shared.ErrValidation.Error(),
			Errors:  verr.Fields,
		})
	case errors.Is(err, shared.ErrValidation):
		Failure(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		JSON(w, http.StatusUnprocessableEntity, Envelope{
			Success: false,
			Message: shared.ErrInvalidCredentials.Error(),
			Errors:  map[string][]string{"email": {shared.ErrInvalidCredentials.Error()}},
		})
	case errors.Is(err, shared.ErrNotFound):
		Failure(w, http.StatusNotFound, "Resource not found.")
	case errors.Is(err, shared.ErrForbidden):
		Failure(w, http.StatusForbidden, shared.ErrForbidden.Error())
	case errors.Is(err, shared.ErrUnauthenticated):
		Failure(w, http.StatusUnauthorized, shared.ErrUnauthenticated.Error())
	case errors.Is(err, shared.ErrConflict):
		Failure(w, http.StatusConflict, err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Failure(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

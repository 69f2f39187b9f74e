package handler

import (
	"errors"
	"net/http"

	"dossier/internal/domain"
	"dossier/internal/domain/models/organizer"
	"dossier/internal/httputil"
	svc "dossier/internal/service/organizer"
)

// handleError converts domain errors to HTTP responses. Structural move
// violations map to 400: the drag layer filters them client-side, so a
// rejected move reaching the server is a bad request, never a crash.
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError

	switch {
	case errors.Is(err, organizer.ErrInvalidMove):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, svc.ErrSessionClosed):
		httputil.RespondError(w, http.StatusGone, "organizer session closed")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

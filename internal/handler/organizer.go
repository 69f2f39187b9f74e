package handler

import (
	"log/slog"
	"net/http"

	"dossier/internal/httputil"
	svc "dossier/internal/service/organizer"
)

// OrganizerHandler exposes the submission tree organizer over HTTP.
// Every route is scoped to one submission; the session registry maps
// the (user, submission) pair onto its live actor.
type OrganizerHandler struct {
	registry *svc.Registry
	logger   *slog.Logger
}

// NewOrganizerHandler creates a new organizer handler.
func NewOrganizerHandler(registry *svc.Registry, logger *slog.Logger) *OrganizerHandler {
	return &OrganizerHandler{
		registry: registry,
		logger:   logger,
	}
}

// session resolves the live session for the request, constructing it on
// first mount. Returns nil after writing the error response.
func (h *OrganizerHandler) session(w http.ResponseWriter, r *http.Request) *svc.Session {
	submissionID := r.PathValue("id")
	if submissionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "submission ID is required")
		return nil
	}
	userID := httputil.GetUserID(r)

	session, err := h.registry.Open(r.Context(), userID, submissionID)
	if err != nil {
		handleError(w, err)
		return nil
	}
	return session
}

// GetState handles GET /api/submissions/{id}/organizer.
// Returns the tree view, selection, dirty flag and any live advisory.
func (h *OrganizerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}

	state, err := session.State(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, state)
}

// Move handles POST /api/submissions/{id}/organizer/move.
// The move is committed (or rejected) synchronously; placement guidance
// follows asynchronously over the event feed.
func (h *OrganizerHandler) Move(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}

	var req svc.MoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := session.Move(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, state)
}

// ToggleSelect handles POST /api/submissions/{id}/organizer/selection.
func (h *OrganizerHandler) ToggleSelect(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}

	var req svc.SelectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	selected, selection, err := session.ToggleSelect(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"selected":  selected,
		"selection": selection,
	})
}

// BulkApprove handles POST /api/submissions/{id}/organizer/bulk-approve.
// Responds 202: the batch is submitted and its outcome arrives over the
// event feed (acknowledgement or blocking error), with the individual
// verdicts following from the QC status stream.
func (h *OrganizerHandler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}

	count, err := session.BulkApprove(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusAccepted, map[string]any{
		"submitted": count,
	})
}

// SaveOrder handles POST /api/submissions/{id}/organizer/order.
func (h *OrganizerHandler) SaveOrder(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}

	if err := session.SaveOrder(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAdvisory handles GET /api/submissions/{id}/organizer/advisory.
// Responds 204 when no advisory is live (none requested, expired, or
// superseded by a later move).
func (h *OrganizerHandler) GetAdvisory(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	if session == nil {
		return
	}

	advisory, err := session.Advisory(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if advisory == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, advisory)
}

// Dismiss handles DELETE /api/submissions/{id}/organizer.
// Tears the session and its status subscription down; the next mount
// constructs fresh state from the document source.
func (h *OrganizerHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	submissionID := r.PathValue("id")
	if submissionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "submission ID is required")
		return
	}
	h.registry.Close(httputil.GetUserID(r), submissionID)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (h *OrganizerHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

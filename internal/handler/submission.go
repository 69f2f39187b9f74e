package handler

import (
	"log/slog"
	"net/http"

	"dossier/internal/domain/repositories"
	"dossier/internal/httputil"
)

// SubmissionHandler serves the submission list the organizer is opened
// from.
type SubmissionHandler struct {
	submissions repositories.SubmissionRepository
	logger      *slog.Logger
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(submissions repositories.SubmissionRepository, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		logger:      logger,
	}
}

// List handles GET /api/submissions.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	submissions, err := h.submissions.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list submissions", "error", err)
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"submissions": submissions,
	})
}

// Get handles GET /api/submissions/{id}.
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	submissionID := r.PathValue("id")
	if submissionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "submission ID is required")
		return
	}
	userID := httputil.GetUserID(r)

	submission, err := h.submissions.GetByID(r.Context(), submissionID, userID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, submission)
}

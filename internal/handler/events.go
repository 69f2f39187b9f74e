package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"syscall"

	"github.com/google/uuid"

	"dossier/internal/handler/sse"
	"dossier/internal/httputil"
	svc "dossier/internal/service/organizer"
)

// EventsHandler streams the organizer event feed over SSE: notifications,
// QC status changes, advisory arrivals and tree mutations.
type EventsHandler struct {
	registry *svc.Registry
	sseCfg   *sse.Config
	logger   *slog.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(registry *svc.Registry, sseCfg *sse.Config, logger *slog.Logger) *EventsHandler {
	if sseCfg == nil {
		sseCfg = sse.DefaultConfig()
	}
	return &EventsHandler{
		registry: registry,
		sseCfg:   sseCfg,
		logger:   logger,
	}
}

// Stream handles GET /api/submissions/{id}/organizer/events.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	submissionID := r.PathValue("id")
	if submissionID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "submission ID is required")
		return
	}
	userID := httputil.GetUserID(r)

	session, err := h.registry.Open(r.Context(), userID, submissionID)
	if err != nil {
		handleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	clientID := uuid.New().String()
	events := session.Feed().AddClient(clientID)
	defer session.Feed().RemoveClient(clientID)

	writer := sse.NewWriter(w, flusher)
	keepAlive := sse.NewTickerKeepAlive(h.sseCfg.KeepAliveInterval)
	stopped := keepAlive.Start(writer, h.logger)
	defer keepAlive.Stop()

	h.logger.Debug("event stream opened",
		"submission_id", submissionID,
		"client_id", clientID,
	)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := ev.Encode()
			if err != nil {
				h.logger.Warn("failed to encode event",
					"event_type", ev.Type,
					"error", err,
				)
				continue
			}
			if err := writer.WriteEvent(ev.Type, data); err != nil {
				if !isConnectionClosed(err) {
					h.logger.Warn("failed to write event",
						"client_id", clientID,
						"error", err,
					)
				}
				return
			}
		case <-r.Context().Done():
			h.logger.Debug("event stream closed by client",
				"client_id", clientID,
			)
			return
		case <-stopped:
			return
		}
	}
}

// isConnectionClosed reports whether the error is a routine disconnect
// rather than something worth logging.
func isConnectionClosed(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}

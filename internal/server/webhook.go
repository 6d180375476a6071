package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/priyag/fraudgraph/backend/internal/service"
)

// handleProviderWebhook accepts risk-provider events: user or transaction
// state updates, optionally with asserted links and an incremental
// detection trigger. Link types outside the closed relationship set are
// rejected before anything is written.
func (h *APIHandlers) handleProviderWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var event service.ProviderEvent
	if err := decodeJSON(r, &event); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.IngestProviderEvent(r.Context(), event); err != nil {
		h.writeServiceError(w, err, "process provider event")
		return
	}

	h.logger.Info("provider event processed",
		zap.String("eventType", event.EventType),
		zap.Bool("detectionTriggered", event.TriggerDetection),
	)
	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

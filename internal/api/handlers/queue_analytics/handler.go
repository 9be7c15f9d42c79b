package queue_analytics

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/queueview"
)

const msgAccessDenied = "операция доступна только операторам"

type Handler struct {
	service QueueViewService
	logger  Logger
}

func NewHandler(service QueueViewService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/queue/analytics
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgAccessDenied)
		return
	}

	analytics, err := h.service.Analytics(r.Context(), actor)
	if err != nil {
		switch {
		case errors.Is(err, queueview.ErrAccessDenied):
			h.logger.Warn("GET /queue/analytics - Access denied: user_id=%d", actor.UserID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("GET /queue/analytics - Failed to build analytics: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, analytics)
}

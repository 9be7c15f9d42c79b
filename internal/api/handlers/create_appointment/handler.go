package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/mailer"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректный формат времени приёма, ожидается RFC3339"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceInactive    = "услуга временно приостановлена"
	msgSlotNotFound       = "слот не найден"
	msgSlotFull           = "в выбранном слоте не осталось мест"
	msgSlotMismatch       = "слот не соответствует услуге или времени приёма"
	msgDoubleBooked       = "у вас уже есть активная запись на это время"
	msgInvalidInput       = "некорректные параметры записи"
	msgTokenExhausted     = "не удалось выдать талон, повторите попытку"
)

type Handler struct {
	useCase      CreateAppointmentUseCase
	confirmation ConfirmationSender
	logger       Logger
}

func NewHandler(useCase CreateAppointmentUseCase, confirmation ConfirmationSender, logger Logger) *Handler {
	return &Handler{
		useCase:      useCase,
		confirmation: confirmation,
		logger:       logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgInvalidRequestBody)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor.UserID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse appointment time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrServiceInactive):
			h.logger.Warn("POST /appointments - Service inactive: service_id=%d", req.ServiceID)
			handlers.RespondError(w, http.StatusConflict, msgServiceInactive)

		case errors.Is(err, createAppointment.ErrSlotNotFound):
			h.logger.Warn("POST /appointments - Slot not found: user_id=%d, service_id=%d", actor.UserID, req.ServiceID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createAppointment.ErrSlotFull):
			h.logger.Warn("POST /appointments - Slot full: user_id=%d, service_id=%d", actor.UserID, req.ServiceID)
			handlers.RespondConflict(w, msgSlotFull)

		case errors.Is(err, createAppointment.ErrSlotMismatch):
			h.logger.Warn("POST /appointments - Slot mismatch: user_id=%d, service_id=%d", actor.UserID, req.ServiceID)
			handlers.RespondBadRequest(w, msgSlotMismatch)

		case errors.Is(err, createAppointment.ErrDoubleBooked):
			h.logger.Warn("POST /appointments - Double booking: user_id=%d, service_id=%d", actor.UserID, req.ServiceID)
			handlers.RespondConflict(w, msgDoubleBooked)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: user_id=%d: %v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createAppointment.ErrTokenExhausted):
			h.logger.Error("POST /appointments - Token generation exhausted: user_id=%d", actor.UserID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgTokenExhausted)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: user_id=%d, service_id=%d, error=%v",
				actor.UserID, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Отправляем подтверждение после фиксации записи.
	// Ошибка отправки не влияет на результат запроса
	if req.CitizenEmail != "" {
		go h.sendConfirmation(req, result)
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /appointments - Appointment created: id=%s, token=%s, user_id=%d",
		result.ID, result.TokenCode, actor.UserID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}

func (h *Handler) sendConfirmation(req CreateAppointmentRequest, result *createAppointment.Response) {
	err := h.confirmation.SendConfirmation(mailer.Confirmation{
		Email:                req.CitizenEmail,
		CitizenName:          req.CitizenName,
		TokenCode:            result.TokenCode,
		ServiceName:          result.ServiceName,
		Department:           result.ServiceDepartment,
		AppointmentAt:        result.AppointmentAt,
		PredictedWaitMinutes: result.PredictedWaitMinutes,
	})
	if err != nil {
		h.logger.Error("POST /appointments - Failed to send confirmation for token=%s: %v",
			result.TokenCode, err)
	}
}

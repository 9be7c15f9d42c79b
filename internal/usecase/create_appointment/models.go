package create_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на создание записи.
// SlotID и вырожденный режим по точному времени взаимоисключающие:
// запрос либо резервирует слот, либо проверяет конфликт по (услуга, время).
type Request struct {
	CitizenID     int64
	ServiceID     int64
	SlotID        *int64          // nil = вырожденный режим без учёта вместимости
	AppointmentAt time.Time       // для слота обязано совпадать с его временем
	Priority      domain.Priority // пустое значение = NORMAL
	Notes         *string
}

// Response модель ответа с созданной записью
type Response struct {
	ID                   uuid.UUID
	CitizenID            int64
	ServiceID            int64
	SlotID               *int64
	TokenCode            string
	AppointmentAt        time.Time
	Priority             domain.Priority
	Status               domain.AppointmentStatus
	PredictedWaitMinutes int
	EstimatedCompletion  time.Time

	// Денормализованные данные услуги
	ServiceName       string
	ServiceDepartment string

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func toResponse(a *domain.Appointment) *Response {
	return &Response{
		ID:                   a.ID,
		CitizenID:            a.CitizenID,
		ServiceID:            a.ServiceID,
		SlotID:               a.SlotID,
		TokenCode:            a.TokenCode,
		AppointmentAt:        a.AppointmentAt,
		Priority:             a.Priority,
		Status:               a.Status,
		PredictedWaitMinutes: a.PredictedWaitMinutes,
		EstimatedCompletion:  a.EstimatedCompletionTime(),
		ServiceName:          a.ServiceName,
		ServiceDepartment:    a.ServiceDepartment,
		Notes:                a.Notes,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

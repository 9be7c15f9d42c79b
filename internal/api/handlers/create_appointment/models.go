package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ServiceID     int64   `json:"serviceId"`
	SlotID        *int64  `json:"slotId,omitempty"`
	AppointmentAt string  `json:"appointmentAt"` // "2025-10-15T10:30:00Z"
	Priority      string  `json:"priority,omitempty"`
	Notes         *string `json:"notes,omitempty"`

	// Контакты для письма-подтверждения, запись создаётся и без них
	CitizenName  string `json:"citizenName,omitempty"`
	CitizenEmail string `json:"citizenEmail,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID                   string  `json:"id"`
	CitizenID            int64   `json:"citizenId"`
	ServiceID            int64   `json:"serviceId"`
	SlotID               *int64  `json:"slotId,omitempty"`
	TokenCode            string  `json:"tokenCode"`
	AppointmentAt        string  `json:"appointmentAt"`
	Priority             string  `json:"priority"`
	Status               string  `json:"status"`
	PredictedWaitMinutes int     `json:"predictedWaitMinutes"`
	EstimatedCompletion  string  `json:"estimatedCompletion"`
	ServiceName          string  `json:"serviceName"`
	Department           string  `json:"department"`
	Notes                *string `json:"notes,omitempty"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(citizenID int64) (*createAppointment.Request, error) {
	appointmentAt, err := time.Parse(time.RFC3339, r.AppointmentAt)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		CitizenID:     citizenID,
		ServiceID:     r.ServiceID,
		SlotID:        r.SlotID,
		AppointmentAt: appointmentAt,
		Priority:      domain.Priority(r.Priority),
		Notes:         r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                   resp.ID.String(),
		CitizenID:            resp.CitizenID,
		ServiceID:            resp.ServiceID,
		SlotID:               resp.SlotID,
		TokenCode:            resp.TokenCode,
		AppointmentAt:        resp.AppointmentAt.Format(time.RFC3339),
		Priority:             string(resp.Priority),
		Status:               string(resp.Status),
		PredictedWaitMinutes: resp.PredictedWaitMinutes,
		EstimatedCompletion:  resp.EstimatedCompletion.Format(time.RFC3339),
		ServiceName:          resp.ServiceName,
		Department:           resp.ServiceDepartment,
		Notes:                resp.Notes,
		CreatedAt:            resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            resp.UpdatedAt.Format(time.RFC3339),
	}
}

package get_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

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
	ActualWaitMinutes    *int    `json:"actualWaitMinutes,omitempty"`
	ServiceName          string  `json:"serviceName"`
	Department           string  `json:"department"`
	Notes                *string `json:"notes,omitempty"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

// FromServiceModel конвертирует модель сервиса в HTTP response
func FromServiceModel(a *models.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                   a.ID.String(),
		CitizenID:            a.CitizenID,
		ServiceID:            a.ServiceID,
		SlotID:               a.SlotID,
		TokenCode:            a.TokenCode,
		AppointmentAt:        a.AppointmentAt.Format(time.RFC3339),
		Priority:             string(a.Priority),
		Status:               string(a.Status),
		PredictedWaitMinutes: a.PredictedWaitMinutes,
		ActualWaitMinutes:    a.ActualWaitMinutes,
		ServiceName:          a.ServiceName,
		Department:           a.ServiceDepartment,
		Notes:                a.Notes,
		CreatedAt:            a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            a.UpdatedAt.Format(time.RFC3339),
	}
}

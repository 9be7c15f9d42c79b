package update_status

import (
	"time"

	serviceModels "github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID                   string `json:"id"`
	TokenCode            string `json:"tokenCode"`
	Status               string `json:"status"`
	AppointmentAt        string `json:"appointmentAt"`
	PredictedWaitMinutes int    `json:"predictedWaitMinutes"`
	ActualWaitMinutes    *int   `json:"actualWaitMinutes,omitempty"`
	UpdatedAt            string `json:"updatedAt"`
}

// FromServiceModel конвертирует модель сервиса в HTTP response
func FromServiceModel(a *serviceModels.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                   a.ID.String(),
		TokenCode:            a.TokenCode,
		Status:               string(a.Status),
		AppointmentAt:        a.AppointmentAt.Format(time.RFC3339),
		PredictedWaitMinutes: a.PredictedWaitMinutes,
		ActualWaitMinutes:    a.ActualWaitMinutes,
		UpdatedAt:            a.UpdatedAt.Format(time.RFC3339),
	}
}

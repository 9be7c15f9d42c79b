package list_appointments

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	serviceModels "github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
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

// AppointmentListResponse HTTP response со списком записей
type AppointmentListResponse struct {
	Appointments []*AppointmentResponse `json:"appointments"`
	Total        int                    `json:"total"`
}

// ParseFilter собирает фильтр списка из query-параметров
func ParseFilter(query url.Values) (serviceModels.ListFilter, error) {
	var filter serviceModels.ListFilter

	if raw := query.Get("serviceId"); raw != "" {
		serviceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, err
		}
		filter.ServiceID = &serviceID
	}

	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return filter, err
		}
		filter.Date = &date
	}

	if raw := query.Get("status"); raw != "" {
		status, err := serviceModels.ToDomainStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if query.Get("onlyActive") == "true" {
		filter.OnlyActive = true
	}

	return filter, nil
}

// FromServiceModels конвертирует список моделей сервиса в HTTP response
func FromServiceModels(items []*serviceModels.Appointment) *AppointmentListResponse {
	appointments := make([]*AppointmentResponse, 0, len(items))
	for _, a := range items {
		appointments = append(appointments, &AppointmentResponse{
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
		})
	}
	return &AppointmentListResponse{
		Appointments: appointments,
		Total:        len(appointments),
	}
}

package generate_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	generateSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/generate_slots"
)

// GenerateSlotsRequest HTTP request model.
// Все поля опциональны: пустой запрос продлевает окно по умолчанию
// для всех активных услуг
type GenerateSlotsRequest struct {
	ServiceID       *int64 `json:"serviceId,omitempty"`
	StartDate       string `json:"startDate,omitempty"` // "2025-10-15"
	Days            int    `json:"days,omitempty"`
	OpenHour        int    `json:"openHour,omitempty"`
	CloseHour       int    `json:"closeHour,omitempty"`
	IntervalMinutes int    `json:"intervalMinutes,omitempty"`
	DefaultCapacity int    `json:"defaultCapacity,omitempty"`
}

// ServiceResultResponse результат генерации по одной услуге
type ServiceResultResponse struct {
	ServiceID int64 `json:"serviceId"`
	Created   int64 `json:"created"`
}

// GenerateSlotsResponse HTTP response model
type GenerateSlotsResponse struct {
	Results      []ServiceResultResponse `json:"results"`
	TotalCreated int64                   `json:"totalCreated"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GenerateSlotsRequest) ToUseCaseRequest() (*generateSlots.Request, error) {
	req := &generateSlots.Request{
		ServiceID:       r.ServiceID,
		Days:            r.Days,
		OpenHour:        r.OpenHour,
		CloseHour:       r.CloseHour,
		IntervalMinutes: r.IntervalMinutes,
		DefaultCapacity: r.DefaultCapacity,
	}

	if r.StartDate != "" {
		startDate, err := time.Parse(domain.DateFormat, r.StartDate)
		if err != nil {
			return nil, err
		}
		req.StartDate = startDate
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *generateSlots.Response) *GenerateSlotsResponse {
	results := make([]ServiceResultResponse, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, ServiceResultResponse{
			ServiceID: r.ServiceID,
			Created:   r.Created,
		})
	}
	return &GenerateSlotsResponse{
		Results:      results,
		TotalCreated: resp.TotalCreated,
	}
}

package update_service

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UpdateServiceRequest HTTP request model, все поля опциональны
type UpdateServiceRequest struct {
	AvgServiceMinutes *int    `json:"avgServiceMinutes,omitempty"`
	IsActive          *bool   `json:"isActive,omitempty"`
	Description       *string `json:"description,omitempty"`
}

// ServiceResponse HTTP модель услуги
type ServiceResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Department        string `json:"department"`
	Description       string `json:"description,omitempty"`
	AvgServiceMinutes int    `json:"avgServiceMinutes"`
	IsActive          bool   `json:"isActive"`
}

// ToDomainUpdate конвертирует HTTP запрос в доменную модель обновления
func (r *UpdateServiceRequest) ToDomainUpdate() domain.ServiceUpdate {
	return domain.ServiceUpdate{
		AvgServiceMinutes: r.AvgServiceMinutes,
		IsActive:          r.IsActive,
		Description:       r.Description,
	}
}

// FromDomain конвертирует услугу в HTTP response
func FromDomain(s *domain.Service) *ServiceResponse {
	return &ServiceResponse{
		ID:                s.ID,
		Name:              s.Name,
		Department:        s.Department,
		Description:       s.Description,
		AvgServiceMinutes: s.AvgServiceMinutes,
		IsActive:          s.IsActive,
	}
}

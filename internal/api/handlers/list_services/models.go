package list_services

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ServiceResponse HTTP модель услуги
type ServiceResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Department        string `json:"department"`
	Description       string `json:"description,omitempty"`
	AvgServiceMinutes int    `json:"avgServiceMinutes"`
	IsActive          bool   `json:"isActive"`
}

// ServiceListResponse HTTP response с каталогом услуг
type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
	Total    int               `json:"total"`
}

// FromDomainList конвертирует список услуг в HTTP response
func FromDomainList(items []*domain.Service) *ServiceListResponse {
	services := make([]ServiceResponse, 0, len(items))
	for _, s := range items {
		services = append(services, ServiceResponse{
			ID:                s.ID,
			Name:              s.Name,
			Department:        s.Department,
			Description:       s.Description,
			AvgServiceMinutes: s.AvgServiceMinutes,
			IsActive:          s.IsActive,
		})
	}
	return &ServiceListResponse{
		Services: services,
		Total:    len(services),
	}
}

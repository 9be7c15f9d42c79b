package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Appointment представление записи для внешних слоёв
type Appointment struct {
	ID                   uuid.UUID
	CitizenID            int64
	ServiceID            int64
	SlotID               *int64
	TokenCode            string
	AppointmentAt        time.Time
	Priority             domain.Priority
	Status               domain.AppointmentStatus
	PredictedWaitMinutes int
	ActualWaitMinutes    *int
	ServiceName          string
	ServiceDepartment    string
	Notes                *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ListFilter фильтр списка записей (до применения политики доступа)
type ListFilter struct {
	CitizenID  *int64
	ServiceID  *int64
	Date       *time.Time
	Status     *domain.AppointmentStatus
	OnlyActive bool
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(raw string) (domain.AppointmentStatus, error) {
	status := domain.AppointmentStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status: %s", raw)
	}
	return status, nil
}

// FromDomain конвертирует доменную модель в модель сервиса
func FromDomain(a *domain.Appointment) *Appointment {
	if a == nil {
		return nil
	}
	return &Appointment{
		ID:                   a.ID,
		CitizenID:            a.CitizenID,
		ServiceID:            a.ServiceID,
		SlotID:               a.SlotID,
		TokenCode:            a.TokenCode,
		AppointmentAt:        a.AppointmentAt,
		Priority:             a.Priority,
		Status:               a.Status,
		PredictedWaitMinutes: a.PredictedWaitMinutes,
		ActualWaitMinutes:    a.ActualWaitMinutes,
		ServiceName:          a.ServiceName,
		ServiceDepartment:    a.ServiceDepartment,
		Notes:                a.Notes,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// FromDomainList конвертирует список доменных моделей
func FromDomainList(items []*domain.Appointment) []*Appointment {
	result := make([]*Appointment, 0, len(items))
	for _, a := range items {
		result = append(result, FromDomain(a))
	}
	return result
}

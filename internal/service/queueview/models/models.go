package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// QueueEntry позиция в очереди для публичного табло.
// Гражданин идентифицируется только коротким кодом талона
type QueueEntry struct {
	Position             int             `json:"position"`
	TokenCode            string          `json:"token_code"`
	ServiceName          string          `json:"service_name"`
	Department           string          `json:"department"`
	Priority             domain.Priority `json:"priority"`
	AppointmentAt        time.Time       `json:"appointment_at"`
	PredictedWaitMinutes int             `json:"predicted_wait_minutes"`
}

// QueueStatus проекция текущего состояния очереди
type QueueStatus struct {
	Waiting     []QueueEntry   `json:"waiting"`
	InProgress  []QueueEntry   `json:"in_progress"`
	Counts      map[string]int `json:"counts"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Analytics агрегаты очереди за день для операторов.
// CurrentQueueLength - число активных записей (SCHEDULED + WAITING)
type Analytics struct {
	Date               string             `json:"date"`
	Counts             map[string]int     `json:"counts"`
	AvgPredictedWait   map[string]float64 `json:"avg_predicted_wait_by_priority"`
	CurrentQueueLength int                `json:"current_queue_length"`
	TotalAppointments  int                `json:"total_appointments"`
	CompletedShare     float64            `json:"completed_share"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// EntryFromDomain строит позицию очереди из доменной модели
func EntryFromDomain(a *domain.Appointment, position int) QueueEntry {
	return QueueEntry{
		Position:             position,
		TokenCode:            a.TokenCode,
		ServiceName:          a.ServiceName,
		Department:           a.ServiceDepartment,
		Priority:             a.Priority,
		AppointmentAt:        a.AppointmentAt,
		PredictedWaitMinutes: a.PredictedWaitMinutes,
	}
}

// EntriesFromDomain строит список позиций с нумерацией с единицы
func EntriesFromDomain(items []*domain.Appointment) []QueueEntry {
	entries := make([]QueueEntry, 0, len(items))
	for i, a := range items {
		entries = append(entries, EntryFromDomain(a, i+1))
	}
	return entries
}

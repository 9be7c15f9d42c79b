package queueview

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей для проекции очереди
type AppointmentRepository interface {
	ListByStatus(ctx context.Context, status domain.AppointmentStatus) ([]*domain.Appointment, error)
	CountByStatusOnDate(ctx context.Context, date time.Time) (map[domain.AppointmentStatus]int, error)
	AvgPredictedWaitByPriority(ctx context.Context, date time.Time) (map[domain.Priority]float64, error)
}

// Cache интерфейс кэша проекций очереди
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

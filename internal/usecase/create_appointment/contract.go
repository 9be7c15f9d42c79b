package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/waittime"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	ExistsActiveAt(ctx context.Context, serviceID int64, at time.Time) (bool, error)
	CountActiveOnDate(ctx context.Context, serviceID int64, date time.Time) (int, error)
	CountActiveNearby(ctx context.Context, serviceID int64, at time.Time, window time.Duration) (int, error)
}

// SlotLedger интерфейс реестра слотов. Единственная точка изменения
// счётчиков вместимости.
type SlotLedger interface {
	Reserve(ctx context.Context, slotID, serviceID int64, at time.Time) (*domain.ServiceSlot, error)
	Release(ctx context.Context, slotID int64) error
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// WaitEstimator интерфейс оценки времени ожидания.
// Оценка всегда успешна: ошибки модели поглощаются внутри estimator-а.
type WaitEstimator interface {
	Estimate(ctx context.Context, ec waittime.Context) int
}

// TxManager интерфейс менеджера транзакций.
// Вырожденный режим бронирования использует SERIALIZABLE, чтобы
// проверка конфликта и вставка были атомарны.
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenGenerator интерфейс генерации кода талона
type TokenGenerator interface {
	Generate(length int) (string, error)
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

// Metrics опциональный сборщик доменных метрик бронирования
type Metrics interface {
	IncAppointmentBooked(priority string)
	IncSlotReservation(result string)
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

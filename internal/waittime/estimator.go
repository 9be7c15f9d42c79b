package waittime

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// NearbyWindow окно вокруг целевого времени, в котором считаются
// соседние активные записи для fallback-оценки
const NearbyWindow = time.Hour

// Context входные данные оценки времени ожидания
type Context struct {
	ServiceAvgMinutes  int
	HourOfDay          int
	Weekday            time.Weekday
	QueueLength        int
	ActiveCounters     int
	Priority           domain.Priority
	NearbyAppointments int // активные записи той же услуги в окне ±NearbyWindow
}

// Features фичи внешней функции оценки (контракт обученной модели)
type Features struct {
	Hour              int
	Weekday           int
	ServiceAvgMinutes int
	QueueLength       int
	CountersActive    int
	PriorityLevel     int
}

// Scorer внешняя функция оценки, полученная оффлайн-обучением.
// Может отсутствовать (деплой без модели) - тогда работает только fallback.
type Scorer interface {
	Score(ctx context.Context, features Features) (float64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Metrics опциональный сборщик метрик стратегий оценки
type Metrics interface {
	IncWaitEstimate(strategy string)
}

// Estimator оценивает время ожидания в минутах.
//
// Модельная стратегия - только ускоритель, не зависимость корректности:
// любая ошибка Scorer-а прозрачно переводит оценку на детерминированный
// fallback и никогда не поднимается наружу.
type Estimator struct {
	scorer         Scorer // nil = деплой без модели
	activeCounters int    // число окон обслуживания из конфигурации
	metrics        Metrics
	logger         Logger
}

// New создает estimator. scorer и metrics могут быть nil.
func New(scorer Scorer, activeCounters int, metrics Metrics, logger Logger) *Estimator {
	return &Estimator{
		scorer:         scorer,
		activeCounters: activeCounters,
		metrics:        metrics,
		logger:         logger,
	}
}

// Estimate возвращает прогноз ожидания в минутах (целое, >= 0)
func (e *Estimator) Estimate(ctx context.Context, ec Context) int {
	if ec.ActiveCounters == 0 {
		ec.ActiveCounters = e.activeCounters
	}

	if e.scorer != nil {
		raw, err := e.scorer.Score(ctx, featuresFrom(ec))
		if err == nil {
			e.incStrategy("model")
			return clampModelPrediction(raw, ec.ServiceAvgMinutes)
		}
		e.logger.Warn("waittime: model scoring failed, using fallback: %v", err)
	}

	e.incStrategy("fallback")
	return Fallback(ec)
}

func (e *Estimator) incStrategy(strategy string) {
	if e.metrics != nil {
		e.metrics.IncWaitEstimate(strategy)
	}
}

// clampModelPrediction ограничивает сырой выход модели разумными
// пределами: [max(5, avg/2), avg*10]
func clampModelPrediction(raw float64, serviceAvgMinutes int) int {
	predicted := int(raw)

	minWait := serviceAvgMinutes / 2
	if minWait < 5 {
		minWait = 5
	}
	maxWait := serviceAvgMinutes * 10

	if predicted < minWait {
		return minWait
	}
	if predicted > maxWait {
		return maxWait
	}
	return predicted
}

// Fallback детерминированная эвристика на случай отсутствия или ошибки
// модели: base * max(1, nearby * 0.5) с поправкой на приоритет и
// потолком base * 8. Все вычисления в float, усечение до целых минут -
// только на последнем шаге.
func Fallback(ec Context) int {
	base := float64(ec.ServiceAvgMinutes)

	queueFactor := float64(ec.NearbyAppointments) * 0.5
	if queueFactor < 1 {
		queueFactor = 1
	}
	estimated := base * queueFactor

	switch ec.Priority {
	case domain.PriorityEmergency:
		estimated = estimated / 4
		if estimated < 5 {
			estimated = 5
		}
	case domain.PriorityElderly, domain.PriorityDisabled:
		estimated = estimated / 2
		if estimated < 10 {
			estimated = 10
		}
	}

	if limit := base * 8; estimated > limit {
		estimated = limit
	}

	return int(estimated)
}

func featuresFrom(ec Context) Features {
	return Features{
		Hour:              ec.HourOfDay,
		Weekday:           int(ec.Weekday),
		ServiceAvgMinutes: ec.ServiceAvgMinutes,
		QueueLength:       ec.QueueLength,
		CountersActive:    ec.ActiveCounters,
		PriorityLevel:     ec.Priority.Level(),
	}
}

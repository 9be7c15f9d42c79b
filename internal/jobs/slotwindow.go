package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-AppointmentService/internal/usecase/generate_slots"
)

const jobTimeout = 5 * time.Minute

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SlotWindowJob периодически продлевает скользящее окно слотов.
// Генерация идемпотентна, поэтому повторные запуски безопасны
type SlotWindowJob struct {
	generateSlots *generate_slots.UseCase
	cron          *cron.Cron
	spec          string
	logger        Logger
}

// NewSlotWindowJob создает периодическую задачу генерации слотов
func NewSlotWindowJob(generateSlots *generate_slots.UseCase, spec string, logger Logger) *SlotWindowJob {
	return &SlotWindowJob{
		generateSlots: generateSlots,
		cron:          cron.New(),
		spec:          spec,
		logger:        logger,
	}
}

// Start регистрирует задачу и запускает планировщик
func (j *SlotWindowJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.run); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("slotwindow: job scheduled with spec %q", j.spec)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего запуска
func (j *SlotWindowJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("slotwindow: job stopped")
}

func (j *SlotWindowJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	// Пустой запрос = все активные услуги, окно по умолчанию из конфигурации
	resp, err := j.generateSlots.Execute(ctx, &generate_slots.Request{})
	if err != nil {
		j.logger.Error("slotwindow: generation failed: %v", err)
		return
	}

	j.logger.Info("slotwindow: generated %d slots across %d services",
		resp.TotalCreated, len(resp.Results))
}

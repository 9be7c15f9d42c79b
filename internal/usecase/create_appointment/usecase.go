package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/internal/waittime"
)

// UseCase use case создания записи на приём.
//
// Бронирование двухфазное: сначала атомарное резервирование места в
// слоте (Slot Ledger), затем сохранение записи. Любой сбой после
// успешного резервирования компенсируется освобождением места, чтобы
// счётчики вместимости не разъезжались и частичное состояние не было
// видно другим вызовам.
type UseCase struct {
	appointmentRepo AppointmentRepository
	slotLedger      SlotLedger
	serviceRepo     ServiceRepository
	estimator       WaitEstimator
	tokens          TokenGenerator
	txManager       TxManager
	timeProvider    TimeProvider
	metrics         Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case. metrics может быть nil.
func NewUseCase(
	appointmentRepo AppointmentRepository,
	slotLedger SlotLedger,
	serviceRepo ServiceRepository,
	estimator WaitEstimator,
	tokens TokenGenerator,
	txManager TxManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		slotLedger:      slotLedger,
		serviceRepo:     serviceRepo,
		estimator:       estimator,
		tokens:          tokens,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		metrics:         metrics,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: citizen=%d, service=%d, at=%s, priority=%s, slot=%v",
		req.CitizenID, req.ServiceID, req.AppointmentAt.Format(domain.DateTimeFormat), req.Priority, req.SlotID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}
	if req.AppointmentAt.Before(uc.timeProvider.Now()) {
		uc.logger.Warn("CreateAppointment: appointment datetime %s is in the past",
			req.AppointmentAt.Format(domain.DateTimeFormat))
		return nil, fmt.Errorf("%w: appointment datetime is in the past", ErrInvalidInput)
	}

	// 2. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateAppointment: service id=%d is not active", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 3. Оценка ожидания. Счётчики очереди читаются без блокировок:
	// оценка информационная, лёгкое устаревание допустимо.
	predicted := uc.estimateWait(ctx, service, req)

	// 4. Занимаем место и сохраняем запись.
	// Со слотом - атомарный reserve-or-reject в Slot Ledger с
	// компенсацией при сбое сохранения; без слота - вырожденный
	// конфликт по точному (услуга, время) внутри SERIALIZABLE.
	var created *domain.Appointment
	if req.SlotID == nil {
		created, err = uc.createExclusive(ctx, req, service, predicted)
	} else {
		created, err = uc.createInSlot(ctx, req, service, predicted)
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.IncAppointmentBooked(string(created.Priority))
	}

	uc.logger.Info("CreateAppointment: created appointment id=%s token=%s predicted_wait=%dm",
		created.ID, created.TokenCode, created.PredictedWaitMinutes)

	return toResponse(created), nil
}

// createExclusive сохраняет запись в вырожденном режиме без слота.
// Проверка конфликта по (услуга, время) и вставка выполняются в одной
// SERIALIZABLE транзакции, чтобы два конкурентных запроса не создали
// записи на одно и то же время.
//
// Коллизия кода талона (23505) прерывает транзакцию в PostgreSQL, и
// повторная вставка внутри неё невозможна (25P02), поэтому код
// генерируется до транзакции, а повтор при коллизии перезапускает
// транзакцию целиком.
func (uc *UseCase) createExclusive(ctx context.Context, req *Request, service *domain.Service, predicted int) (*domain.Appointment, error) {
	for attempt := 1; attempt <= domain.TokenCodeMaxAttempts; attempt++ {
		token, err := uc.tokens.Generate(domain.TokenCodeLength)
		if err != nil {
			uc.logger.Error("CreateAppointment: token generation failed: %v", err)
			return nil, fmt.Errorf("%w: token generation failed: %v", ErrInternal, err)
		}

		var created *domain.Appointment
		txErr := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			exists, err := uc.appointmentRepo.ExistsActiveAt(txCtx, req.ServiceID, req.AppointmentAt)
			if err != nil {
				uc.logger.Error("CreateAppointment: conflict check failed: %v", err)
				return fmt.Errorf("%w: conflict check failed: %v", ErrInternal, err)
			}
			if exists {
				uc.logger.Warn("CreateAppointment: double booking for service=%d at=%s",
					req.ServiceID, req.AppointmentAt.Format(domain.DateTimeFormat))
				return ErrDoubleBooked
			}

			created, err = uc.insertAppointment(txCtx, req, service, predicted, token)
			return err
		})
		if txErr == nil {
			return created, nil
		}
		if errors.Is(txErr, appointmentRepo.ErrTokenCollision) {
			uc.logger.Warn("CreateAppointment: token collision on attempt %d, restarting transaction", attempt)
			continue
		}
		return nil, txErr
	}

	uc.logger.Error("CreateAppointment: token attempts exhausted after %d tries", domain.TokenCodeMaxAttempts)
	return nil, ErrTokenExhausted
}

// createInSlot резервирует место в слоте и сохраняет запись.
// Сбой сохранения компенсируется освобождением места.
func (uc *UseCase) createInSlot(ctx context.Context, req *Request, service *domain.Service, predicted int) (*domain.Appointment, error) {
	reservedSlotID, err := uc.reserveSlot(ctx, req)
	if err != nil {
		return nil, err
	}

	created, err := uc.persistAppointment(ctx, req, service, predicted)
	if err != nil {
		uc.compensateReservation(ctx, reservedSlotID)
		return nil, err
	}
	return created, nil
}

// reserveSlot выполняет атомарный reserve-or-reject в Slot Ledger
func (uc *UseCase) reserveSlot(ctx context.Context, req *Request) (int64, error) {
	slot, err := uc.slotLedger.Reserve(ctx, *req.SlotID, req.ServiceID, req.AppointmentAt)
	if err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrSlotFull):
			uc.incReservation("full")
			uc.logger.Warn("CreateAppointment: slot id=%d is full", *req.SlotID)
			return 0, ErrSlotFull
		case errors.Is(err, slotRepo.ErrSlotMismatch):
			uc.incReservation("mismatch")
			uc.logger.Warn("CreateAppointment: stale slot reference id=%d", *req.SlotID)
			return 0, ErrSlotMismatch
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			uc.incReservation("mismatch")
			uc.logger.Warn("CreateAppointment: slot id=%d not found", *req.SlotID)
			return 0, ErrSlotNotFound
		default:
			uc.logger.Error("CreateAppointment: reserve failed for slot id=%d: %v", *req.SlotID, err)
			return 0, fmt.Errorf("%w: reserve failed: %v", ErrInternal, err)
		}
	}

	uc.incReservation("reserved")
	uc.logger.Info("CreateAppointment: reserved slot id=%d (%d/%d)",
		slot.ID, slot.CurrentBookings, slot.MaxCapacity)
	return slot.ID, nil
}

// estimateWait собирает контекст оценки и вызывает estimator.
// Сбои чтения счётчиков очереди деградируют до нулевых значений:
// оценка обязана иметь ограниченный по времени путь отказа и не
// может завалить бронирование.
func (uc *UseCase) estimateWait(ctx context.Context, service *domain.Service, req *Request) int {
	queueLength, err := uc.appointmentRepo.CountActiveOnDate(ctx, req.ServiceID, req.AppointmentAt)
	if err != nil {
		uc.logger.Warn("CreateAppointment: queue length unavailable, assuming 0: %v", err)
		queueLength = 0
	}

	nearby, err := uc.appointmentRepo.CountActiveNearby(ctx, req.ServiceID, req.AppointmentAt, waittime.NearbyWindow)
	if err != nil {
		uc.logger.Warn("CreateAppointment: nearby count unavailable, assuming 0: %v", err)
		nearby = 0
	}

	return uc.estimator.Estimate(ctx, waittime.Context{
		ServiceAvgMinutes:  service.AvgServiceMinutes,
		HourOfDay:          req.AppointmentAt.Hour(),
		Weekday:            req.AppointmentAt.Weekday(),
		QueueLength:        queueLength,
		ActiveCounters:     0, // заполняется estimator-ом из конфигурации
		Priority:           req.Priority,
		NearbyAppointments: nearby,
	})
}

// persistAppointment сохраняет запись, перегенерируя код талона при
// коллизии (optimistic collision check, ограниченное число попыток).
// Используется только слотовым режимом: вне транзакции повторная
// вставка после 23505 допустима
func (uc *UseCase) persistAppointment(ctx context.Context, req *Request, service *domain.Service, predicted int) (*domain.Appointment, error) {
	for attempt := 1; attempt <= domain.TokenCodeMaxAttempts; attempt++ {
		token, err := uc.tokens.Generate(domain.TokenCodeLength)
		if err != nil {
			uc.logger.Error("CreateAppointment: token generation failed: %v", err)
			return nil, fmt.Errorf("%w: token generation failed: %v", ErrInternal, err)
		}

		created, err := uc.insertAppointment(ctx, req, service, predicted, token)
		if err == nil {
			return created, nil
		}
		if errors.Is(err, appointmentRepo.ErrTokenCollision) {
			uc.logger.Warn("CreateAppointment: token collision on attempt %d, regenerating", attempt)
			continue
		}
		return nil, err
	}

	uc.logger.Error("CreateAppointment: token attempts exhausted after %d tries", domain.TokenCodeMaxAttempts)
	return nil, ErrTokenExhausted
}

// insertAppointment выполняет единственную вставку записи с заданным
// кодом талона. Коллизия кода возвращается как есть, остальные ошибки
// заворачиваются в ErrInternal
func (uc *UseCase) insertAppointment(ctx context.Context, req *Request, service *domain.Service, predicted int, token string) (*domain.Appointment, error) {
	appointment := &domain.Appointment{
		ID:                   uuid.New(),
		CitizenID:            req.CitizenID,
		ServiceID:            req.ServiceID,
		SlotID:               req.SlotID,
		TokenCode:            token,
		AppointmentAt:        req.AppointmentAt,
		Priority:             req.Priority,
		Status:               domain.StatusScheduled,
		PredictedWaitMinutes: predicted,
		ServiceName:          service.Name,
		ServiceDepartment:    service.Department,
		Notes:                req.Notes,
	}

	created, err := uc.appointmentRepo.Create(ctx, appointment)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrTokenCollision) {
			return nil, err
		}
		uc.logger.Error("CreateAppointment: failed to persist appointment: %v", err)
		return nil, fmt.Errorf("%w: failed to persist appointment: %v", ErrInternal, err)
	}
	return created, nil
}

// compensateReservation освобождает место в слоте после сбоя сохранения.
// Выполняется и при отменённом контексте запроса: инвариант вместимости
// важнее жизненного цикла запроса.
func (uc *UseCase) compensateReservation(ctx context.Context, slotID int64) {
	if err := uc.slotLedger.Release(context.WithoutCancel(ctx), slotID); err != nil {
		uc.logger.Error("CreateAppointment: compensating release failed for slot id=%d: %v", slotID, err)
		return
	}
	uc.logger.Info("CreateAppointment: released slot id=%d after failed booking", slotID)
}

func (uc *UseCase) incReservation(result string) {
	if uc.metrics != nil {
		uc.metrics.IncSlotReservation(result)
	}
}

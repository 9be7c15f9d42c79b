package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
)

// Request параметры генерации окна слотов.
// Нулевые значения заменяются настройками по умолчанию из конфигурации.
type Request struct {
	ServiceID       *int64    // nil = все активные услуги
	StartDate       time.Time // нулевое время = сегодня
	Days            int
	OpenHour        int
	CloseHour       int
	IntervalMinutes int
	DefaultCapacity int
}

// ServiceResult результат генерации по одной услуге
type ServiceResult struct {
	ServiceID int64
	Created   int64
}

// Response результат генерации окна
type Response struct {
	Results      []ServiceResult
	TotalCreated int64
}

// UseCase use case генерации окна слотов.
//
// Генерация идемпотентна и безопасна при одновременном бронировании:
// реестр только вставляет отсутствующие строки и никогда не
// перезаписывает current_bookings существующих.
type UseCase struct {
	slotLedger    SlotLedger
	serviceRepo   ServiceRepository
	defaultWindow domain.SlotWindow
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotLedger SlotLedger,
	serviceRepo ServiceRepository,
	defaultWindow domain.SlotWindow,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotLedger:    slotLedger,
		serviceRepo:   serviceRepo,
		defaultWindow: defaultWindow,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет генерацию окна слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	window, err := uc.buildWindow(req)
	if err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	services, err := uc.resolveServices(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("GenerateSlots: window start=%s days=%d hours=%02d:00-%02d:00 interval=%dm capacity=%d services=%d",
		window.StartDate.Format(domain.DateFormat), window.Days, window.OpenHour, window.CloseHour,
		window.IntervalMinutes, window.DefaultCapacity, len(services))

	resp := &Response{Results: make([]ServiceResult, 0, len(services))}
	for _, service := range services {
		created, err := uc.slotLedger.GenerateWindow(ctx, service.ID, window)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed for service id=%d: %v", service.ID, err)
			return nil, fmt.Errorf("%w: generate window for service %d: %v", ErrInternal, service.ID, err)
		}

		resp.Results = append(resp.Results, ServiceResult{ServiceID: service.ID, Created: created})
		resp.TotalCreated += created
	}

	uc.logger.Info("GenerateSlots: created %d new slots across %d services", resp.TotalCreated, len(services))
	return resp, nil
}

func (uc *UseCase) buildWindow(req *Request) (domain.SlotWindow, error) {
	window := uc.defaultWindow

	window.StartDate = req.StartDate
	if window.StartDate.IsZero() {
		window.StartDate = uc.timeProvider.Now()
	}
	if req.Days != 0 {
		window.Days = req.Days
	}
	if req.OpenHour != 0 {
		window.OpenHour = req.OpenHour
	}
	if req.CloseHour != 0 {
		window.CloseHour = req.CloseHour
	}
	if req.IntervalMinutes != 0 {
		window.IntervalMinutes = req.IntervalMinutes
	}
	if req.DefaultCapacity != 0 {
		window.DefaultCapacity = req.DefaultCapacity
	}

	if window.Days < domain.MinWindowDays || window.Days > domain.MaxWindowDays {
		return window, fmt.Errorf("%w: days out of range: %d", ErrInvalidInput, window.Days)
	}
	if window.OpenHour < 0 || window.CloseHour > 24 || window.OpenHour >= window.CloseHour {
		return window, fmt.Errorf("%w: invalid working hours %d-%d", ErrInvalidInput, window.OpenHour, window.CloseHour)
	}
	if window.IntervalMinutes < domain.MinIntervalMinutes || window.IntervalMinutes > domain.MaxIntervalMinutes {
		return window, fmt.Errorf("%w: interval out of range: %d", ErrInvalidInput, window.IntervalMinutes)
	}
	if window.DefaultCapacity < domain.MinSlotCapacity || window.DefaultCapacity > domain.MaxSlotCapacity {
		return window, fmt.Errorf("%w: capacity out of range: %d", ErrInvalidInput, window.DefaultCapacity)
	}

	return window, nil
}

func (uc *UseCase) resolveServices(ctx context.Context, serviceID *int64) ([]*domain.Service, error) {
	if serviceID == nil {
		services, err := uc.serviceRepo.ListActive(ctx)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to list active services: %v", err)
			return nil, fmt.Errorf("%w: list active services: %v", ErrInternal, err)
		}
		return services, nil
	}

	service, err := uc.serviceRepo.GetByID(ctx, *serviceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GenerateSlots: service id=%d not found", *serviceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GenerateSlots: failed to get service id=%d: %v", *serviceID, err)
		return nil, fmt.Errorf("%w: get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("GenerateSlots: service id=%d is inactive, skipping window", service.ID)
		return []*domain.Service{}, nil
	}

	return []*domain.Service{service}, nil
}

package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
)

// UseCase сценарий получения доступных слотов услуги на дату
type UseCase struct {
	slotLedger  SlotLedger
	serviceRepo ServiceRepository
	logger      Logger
}

// New создает новый экземпляр use case
func New(slotLedger SlotLedger, serviceRepo ServiceRepository, logger Logger) *UseCase {
	return &UseCase{
		slotLedger:  slotLedger,
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// Execute возвращает слоты услуги на дату, в которых ещё есть места
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: service_id must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	uc.logger.Info("GetAvailableSlots: fetching slots for service=%d, date=%s",
		req.ServiceID, req.Date.Format("2006-01-02"))

	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: repository error for service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: Execute - get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}

	slots, err := uc.slotLedger.ListAvailable(ctx, req.ServiceID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: ledger error for service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: Execute - list slots: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: found %d available slots for service=%d", len(slots), req.ServiceID)
	return toResponse(service, req.Date, slots), nil
}

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
)

// Service сервис каталога услуг
type Service struct {
	serviceRepo ServiceRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(serviceRepo ServiceRepository, logger Logger) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// List возвращает каталог услуг.
// Граждане видят только активные услуги, операторы и администраторы - все
func (s *Service) List(ctx context.Context, actor domain.Actor) ([]*domain.Service, error) {
	var (
		services []*domain.Service
		err      error
	)

	if actor.Role.CanManageQueue() {
		services, err = s.serviceRepo.ListAll(ctx)
	} else {
		services, err = s.serviceRepo.ListActive(ctx)
	}
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return services, nil
}

// GetByID возвращает услугу по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("GetByID: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("GetByID: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return service, nil
}

// Update обновляет параметры услуги.
// Доступно только администраторам
func (s *Service) Update(ctx context.Context, id int64, update domain.ServiceUpdate, actor domain.Actor) (*domain.Service, error) {
	s.logger.Info("Update: updating service id=%d by user=%d", id, actor.UserID)

	if !actor.Role.CanAdministrate() {
		s.logger.Warn("Update: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return nil, ErrAccessDenied
	}

	if update.IsEmpty() {
		s.logger.Warn("Update: empty update for service id=%d", id)
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	if update.AvgServiceMinutes != nil && *update.AvgServiceMinutes <= 0 {
		s.logger.Warn("Update: invalid avg_service_minutes=%d for service id=%d",
			*update.AvgServiceMinutes, id)
		return nil, fmt.Errorf("%w: avg_service_minutes must be positive", ErrInvalidInput)
	}

	if err := s.serviceRepo.Update(ctx, id, update); err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("Update: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("Update: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Update: failed to reload service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - reload error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated service id=%d", id)
	return service, nil
}

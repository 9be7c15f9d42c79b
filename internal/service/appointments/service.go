package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис для работы с записями на приём
type Service struct {
	appointmentRepo AppointmentRepository
	slotLedger      SlotLedger
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	slotLedger SlotLedger,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		slotLedger:      slotLedger,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Гражданин видит только свои записи, оператор и администратор - любые
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, actor domain.Actor) (*models.Appointment, error) {
	s.logger.Info("GetByID: fetching appointment id=%s for user=%d", id, actor.UserID)

	appointment, err := s.getAppointment(ctx, id, "GetByID")
	if err != nil {
		return nil, err
	}

	if !s.canView(appointment, actor) {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%s", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomain(appointment), nil
}

// List получает записи по фильтру
// Гражданину всегда возвращаются только его собственные записи,
// оператор и администратор видят все
func (s *Service) List(ctx context.Context, filter models.ListFilter, actor domain.Actor) ([]*models.Appointment, error) {
	s.logger.Info("List: fetching appointments for user=%d role=%s", actor.UserID, actor.Role)

	repoFilter := appointmentRepo.ListFilter{
		CitizenID:  filter.CitizenID,
		ServiceID:  filter.ServiceID,
		Date:       filter.Date,
		Status:     filter.Status,
		OnlyActive: filter.OnlyActive,
	}

	// Гражданин видит только свои записи независимо от фильтра
	if !actor.Role.CanManageQueue() {
		citizenID := actor.UserID
		repoFilter.CitizenID = &citizenID
	}

	appointments, err := s.appointmentRepo.List(ctx, repoFilter)
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", actor.UserID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d appointments for user=%d", len(appointments), actor.UserID)
	return models.FromDomainList(appointments), nil
}

// Cancel отменяет запись
// Гражданин может отменить только свою запись, оператор - любую.
// При отмене место в слоте освобождается
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor domain.Actor) error {
	s.logger.Info("Cancel: cancelling appointment id=%s by user=%d", id, actor.UserID)

	appointment, err := s.getAppointment(ctx, id, "Cancel")
	if err != nil {
		return err
	}

	if appointment.CitizenID != actor.UserID && !actor.Role.CanManageQueue() {
		s.logger.Warn("Cancel: access denied for user=%d to appointment id=%s", actor.UserID, id)
		return ErrAccessDenied
	}

	if !appointment.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%s cannot be cancelled, status=%s", id, appointment.Status)
		return ErrCannotCancel
	}

	// Условный UPDATE из отменяемых статусов: конкурентная отмена или
	// перевод оператора не приводят к двойному освобождению места
	err = s.appointmentRepo.UpdateStatus(ctx, id, domain.StatusCancelled,
		domain.StatusScheduled, domain.StatusWaiting)
	if err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrStatusConflict):
			s.logger.Warn("Cancel: appointment id=%s already transitioned concurrently", id)
			return ErrCannotCancel
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Warn("Cancel: appointment id=%s not found during cancellation", id)
			return ErrAppointmentNotFound
		default:
			s.logger.Error("Cancel: repository error for appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}
	}

	s.releaseSlot(ctx, appointment, "Cancel")

	s.logger.Info("Cancel: successfully cancelled appointment id=%s", id)
	return nil
}

// Transition переводит запись в новый статус с проверкой допустимых переходов
// Доступно только операторам и администраторам.
// При переводе в IN_PROGRESS фиксируется фактическое время ожидания,
// при отмене - освобождается место в слоте
func (s *Service) Transition(ctx context.Context, id uuid.UUID, newStatus domain.AppointmentStatus, actor domain.Actor) (*models.Appointment, error) {
	s.logger.Info("Transition: moving appointment id=%s to status=%s by user=%d", id, newStatus, actor.UserID)

	if !actor.Role.CanManageQueue() {
		s.logger.Warn("Transition: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return nil, ErrAccessDenied
	}

	if !newStatus.Valid() {
		s.logger.Warn("Transition: invalid status=%s for appointment id=%s", newStatus, id)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	appointment, err := s.getAppointment(ctx, id, "Transition")
	if err != nil {
		return nil, err
	}

	if !appointment.Status.CanTransitionTo(newStatus) {
		s.logger.Warn("Transition: invalid transition %s -> %s for appointment id=%s",
			appointment.Status, newStatus, id)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appointment.Status, newStatus)
	}

	// Compare-and-set по прочитанному статусу: если запись успели
	// перевести конкурентно, проигравший перевод отклоняется
	if err := s.appointmentRepo.UpdateStatus(ctx, id, newStatus, appointment.Status); err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrStatusConflict):
			s.logger.Warn("Transition: appointment id=%s changed concurrently, rejecting %s -> %s",
				id, appointment.Status, newStatus)
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appointment.Status, newStatus)
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Warn("Transition: appointment id=%s not found during update", id)
			return nil, ErrAppointmentNotFound
		default:
			s.logger.Error("Transition: repository error for appointment id=%s: %v", id, err)
			return nil, fmt.Errorf("%w: Transition - repository error: %v", ErrInternal, err)
		}
	}

	switch newStatus {
	case domain.StatusInProgress:
		s.recordActualWait(ctx, appointment)
	case domain.StatusCancelled:
		s.releaseSlot(ctx, appointment, "Transition")
	}

	appointment.Status = newStatus

	s.logger.Info("Transition: appointment id=%s moved to status=%s", id, newStatus)
	return models.FromDomain(appointment), nil
}

// getAppointment получает запись из репозитория с маппингом ошибок
func (s *Service) getAppointment(ctx context.Context, id uuid.UUID, method string) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%s not found", method, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%s: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return appointment, nil
}

// canView проверяет право просмотра записи
func (s *Service) canView(appointment *domain.Appointment, actor domain.Actor) bool {
	if appointment.CitizenID == actor.UserID {
		return true
	}
	return actor.Role.CanManageQueue()
}

// recordActualWait фиксирует фактическое время ожидания при начале приёма.
// Ошибка записи не прерывает переход - статус уже обновлён
func (s *Service) recordActualWait(ctx context.Context, appointment *domain.Appointment) {
	waited := int(s.timeProvider.Now().Sub(appointment.AppointmentAt).Minutes())
	if waited < 0 {
		waited = 0
	}

	if err := s.appointmentRepo.SetActualWait(ctx, appointment.ID, waited); err != nil {
		s.logger.Error("Transition: failed to record actual wait for appointment id=%s: %v",
			appointment.ID, err)
		return
	}

	appointment.ActualWaitMinutes = &waited
}

// releaseSlot освобождает место в слоте после отмены записи.
// Ошибка освобождения логируется, но не прерывает отмену - запись уже отменена
func (s *Service) releaseSlot(ctx context.Context, appointment *domain.Appointment, method string) {
	if appointment.SlotID == nil {
		return
	}

	if err := s.slotLedger.Release(ctx, *appointment.SlotID); err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("%s: slot id=%d not found during release for appointment id=%s",
				method, *appointment.SlotID, appointment.ID)
			return
		}
		s.logger.Error("%s: failed to release slot id=%d for appointment id=%s: %v",
			method, *appointment.SlotID, appointment.ID, err)
	}
}

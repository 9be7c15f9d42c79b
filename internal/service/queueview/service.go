package queueview

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/queueview/models"
)

const (
	cacheKeyStatus    = "queueview:status"
	cacheKeyAnalytics = "queueview:analytics"
)

// Service сервис проекций очереди.
// Проекция строится по запросу и кэшируется в Redis с коротким TTL,
// поэтому табло может отставать от фактического состояния очереди
type Service struct {
	appointmentRepo AppointmentRepository
	cache           Cache
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса очереди
func NewService(
	appointmentRepo AppointmentRepository,
	cache Cache,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		cache:           cache,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Status возвращает текущее состояние очереди для публичного табло.
// Ожидающие отсортированы по времени приёма, граждане показаны кодами талонов
func (s *Service) Status(ctx context.Context) (*models.QueueStatus, error) {
	var cached models.QueueStatus
	if s.readCache(ctx, cacheKeyStatus, &cached) {
		return &cached, nil
	}

	waiting, err := s.appointmentRepo.ListByStatus(ctx, domain.StatusWaiting)
	if err != nil {
		s.logger.Error("Status: failed to list waiting appointments: %v", err)
		return nil, fmt.Errorf("%w: Status - repository error: %v", ErrInternal, err)
	}

	inProgress, err := s.appointmentRepo.ListByStatus(ctx, domain.StatusInProgress)
	if err != nil {
		s.logger.Error("Status: failed to list in-progress appointments: %v", err)
		return nil, fmt.Errorf("%w: Status - repository error: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	counts, err := s.appointmentRepo.CountByStatusOnDate(ctx, now)
	if err != nil {
		s.logger.Error("Status: failed to count appointments by status: %v", err)
		return nil, fmt.Errorf("%w: Status - repository error: %v", ErrInternal, err)
	}

	status := &models.QueueStatus{
		Waiting:     models.EntriesFromDomain(waiting),
		InProgress:  models.EntriesFromDomain(inProgress),
		Counts:      statusCounts(counts),
		GeneratedAt: now,
	}

	s.writeCache(ctx, cacheKeyStatus, status)

	s.logger.Info("Status: built queue projection, waiting=%d, in_progress=%d",
		len(status.Waiting), len(status.InProgress))
	return status, nil
}

// Analytics возвращает агрегаты очереди за текущий день.
// Доступно только операторам и администраторам
func (s *Service) Analytics(ctx context.Context, actor domain.Actor) (*models.Analytics, error) {
	if !actor.Role.CanManageQueue() {
		s.logger.Warn("Analytics: access denied for user=%d role=%s", actor.UserID, actor.Role)
		return nil, ErrAccessDenied
	}

	var cached models.Analytics
	if s.readCache(ctx, cacheKeyAnalytics, &cached) {
		return &cached, nil
	}

	now := s.timeProvider.Now()

	counts, err := s.appointmentRepo.CountByStatusOnDate(ctx, now)
	if err != nil {
		s.logger.Error("Analytics: failed to count appointments by status: %v", err)
		return nil, fmt.Errorf("%w: Analytics - repository error: %v", ErrInternal, err)
	}

	avgWait, err := s.appointmentRepo.AvgPredictedWaitByPriority(ctx, now)
	if err != nil {
		s.logger.Error("Analytics: failed to compute average wait: %v", err)
		return nil, fmt.Errorf("%w: Analytics - repository error: %v", ErrInternal, err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	completedShare := 0.0
	if total > 0 {
		completedShare = float64(counts[domain.StatusCompleted]) / float64(total)
	}

	analytics := &models.Analytics{
		Date:               now.Format(domain.DateFormat),
		Counts:             statusCounts(counts),
		AvgPredictedWait:   priorityAverages(avgWait),
		CurrentQueueLength: counts[domain.StatusScheduled] + counts[domain.StatusWaiting],
		TotalAppointments:  total,
		CompletedShare:     completedShare,
		GeneratedAt:        now,
	}

	s.writeCache(ctx, cacheKeyAnalytics, analytics)

	s.logger.Info("Analytics: built daily aggregates, total=%d", total)
	return analytics, nil
}

// readCache читает проекцию из кэша. Ошибки кэша не фатальны
func (s *Service) readCache(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("queueview: cache read failed for key=%s: %v", key, err)
		return false
	}
	return hit
}

// writeCache сохраняет проекцию в кэш. Ошибки кэша не фатальны
func (s *Service) writeCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("queueview: cache write failed for key=%s: %v", key, err)
	}
}

func statusCounts(counts map[domain.AppointmentStatus]int) map[string]int {
	result := make(map[string]int, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		result[string(status)] = counts[status]
	}
	return result
}

func priorityAverages(avg map[domain.Priority]float64) map[string]float64 {
	result := make(map[string]float64, len(avg))
	for priority, value := range avg {
		result[string(priority)] = value
	}
	return result
}

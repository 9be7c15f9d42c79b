package appointments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type fakeRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*domain.Appointment
	listed       []*domain.Appointment
	lastFilter   *appointmentRepo.ListFilter

	// readGate выравнивает конкурентные чтения: все участники должны
	// прочитать запись до того, как кто-то из них её обновит
	readGate *sync.WaitGroup

	updateErr     error
	actualWaitErr error
	actualWaits   map[uuid.UUID]int
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	f.mu.Lock()
	a, ok := f.appointments[id]
	if !ok {
		f.mu.Unlock()
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *a
	f.mu.Unlock()

	if f.readGate != nil {
		f.readGate.Done()
		f.readGate.Wait()
	}
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, filter appointmentRepo.ListFilter) ([]*domain.Appointment, error) {
	f.lastFilter = &filter
	return f.listed, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.AppointmentStatus, from ...domain.AppointmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if len(from) > 0 {
		matched := false
		for _, s := range from {
			if a.Status == s {
				matched = true
				break
			}
		}
		if !matched {
			return appointmentRepo.ErrStatusConflict
		}
	}
	a.Status = status
	return nil
}

func (f *fakeRepo) SetActualWait(_ context.Context, id uuid.UUID, minutes int) error {
	if f.actualWaitErr != nil {
		return f.actualWaitErr
	}
	if f.actualWaits == nil {
		f.actualWaits = map[uuid.UUID]int{}
	}
	f.actualWaits[id] = minutes
	return nil
}

type fakeLedger struct {
	mu         sync.Mutex
	released   []int64
	releaseErr error
}

func (f *fakeLedger) Release(_ context.Context, slotID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.released = append(f.released, slotID)
	return nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var (
	citizen  = domain.Actor{UserID: 77, Role: domain.RoleCitizen}
	stranger = domain.Actor{UserID: 99, Role: domain.RoleCitizen}
	operator = domain.Actor{UserID: 500, Role: domain.RoleOperator}
)

func newService(repo *fakeRepo, ledger *fakeLedger, now time.Time) *Service {
	return NewService(repo, ledger, fixedTime{now: now}, nopLogger{})
}

func makeAppointment(status domain.AppointmentStatus, slotID *int64) *domain.Appointment {
	return &domain.Appointment{
		ID:            uuid.New(),
		CitizenID:     citizen.UserID,
		ServiceID:     10,
		SlotID:        slotID,
		TokenCode:     "ABCD2345",
		AppointmentAt: time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC),
		Priority:      domain.PriorityNormal,
		Status:        status,
	}
}

func TestGetByID_OwnerSeesAppointment(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	got, err := svc.GetByID(context.Background(), a.ID, citizen)

	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestGetByID_StrangerDenied(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	_, err := svc.GetByID(context.Background(), a.ID, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_OperatorSeesAny(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	_, err := svc.GetByID(context.Background(), a.ID, operator)
	assert.NoError(t, err)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	_, err := svc.GetByID(context.Background(), uuid.New(), operator)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestList_CitizenScopedToOwnAppointments(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeLedger{}, time.Now())

	_, err := svc.List(context.Background(), models.ListFilter{CitizenID: ptr.Ptr(int64(12345))}, citizen)

	require.NoError(t, err)
	// Фильтр по чужому citizen_id перекрывается собственным
	require.NotNil(t, repo.lastFilter.CitizenID)
	assert.Equal(t, citizen.UserID, *repo.lastFilter.CitizenID)
}

func TestList_OperatorKeepsFilter(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeLedger{}, time.Now())

	_, err := svc.List(context.Background(), models.ListFilter{CitizenID: ptr.Ptr(int64(12345))}, operator)

	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.CitizenID)
	assert.Equal(t, int64(12345), *repo.lastFilter.CitizenID)
}

func TestCancel_OwnerReleasesSlot(t *testing.T) {
	slotID := int64(3)
	a := makeAppointment(domain.StatusScheduled, &slotID)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	ledger := &fakeLedger{}
	svc := newService(repo, ledger, time.Now())

	err := svc.Cancel(context.Background(), a.ID, citizen)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, repo.appointments[a.ID].Status)
	assert.Equal(t, []int64{slotID}, ledger.released)
}

func TestCancel_WithoutSlotSkipsRelease(t *testing.T) {
	a := makeAppointment(domain.StatusWaiting, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	ledger := &fakeLedger{}
	svc := newService(repo, ledger, time.Now())

	require.NoError(t, svc.Cancel(context.Background(), a.ID, citizen))
	assert.Empty(t, ledger.released)
}

func TestCancel_StrangerDenied(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	err := svc.Cancel(context.Background(), a.ID, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancel_OperatorCancelsAny(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	assert.NoError(t, svc.Cancel(context.Background(), a.ID, operator))
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{
		domain.StatusInProgress, domain.StatusCompleted, domain.StatusCancelled, domain.StatusNoShow,
	} {
		a := makeAppointment(status, nil)
		repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
		svc := newService(repo, &fakeLedger{}, time.Now())

		err := svc.Cancel(context.Background(), a.ID, operator)
		assert.ErrorIs(t, err, ErrCannotCancel, status)
	}
}

func TestCancel_ReleaseFailureDoesNotFailCancel(t *testing.T) {
	slotID := int64(3)
	a := makeAppointment(domain.StatusScheduled, &slotID)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	ledger := &fakeLedger{releaseErr: errors.New("connection reset")}
	svc := newService(repo, ledger, time.Now())

	// Запись уже отменена, сбой освобождения слота только логируется
	require.NoError(t, svc.Cancel(context.Background(), a.ID, citizen))
	assert.Equal(t, domain.StatusCancelled, repo.appointments[a.ID].Status)
}

func TestCancel_ConcurrentCancelReleasesSlotOnce(t *testing.T) {
	slotID := int64(5)
	a := makeAppointment(domain.StatusScheduled, &slotID)

	gate := &sync.WaitGroup{}
	gate.Add(2)
	repo := &fakeRepo{
		appointments: map[uuid.UUID]*domain.Appointment{a.ID: a},
		readGate:     gate,
	}
	ledger := &fakeLedger{}
	svc := newService(repo, ledger, time.Now())

	// Обе отмены читают SCHEDULED до того, как первая запишет CANCELLED
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- svc.Cancel(context.Background(), a.ID, operator)
		}()
	}
	first, second := <-errs, <-errs

	// Условный UPDATE пропускает ровно одну отмену, вторая получает отказ
	if first == nil {
		assert.ErrorIs(t, second, ErrCannotCancel)
	} else {
		assert.ErrorIs(t, first, ErrCannotCancel)
		assert.NoError(t, second)
	}
	assert.Equal(t, domain.StatusCancelled, repo.appointments[a.ID].Status)
	assert.Equal(t, []int64{slotID}, ledger.released)
}

func TestCancel_LostRaceAgainstOperatorTransition(t *testing.T) {
	slotID := int64(5)
	a := makeAppointment(domain.StatusScheduled, &slotID)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	ledger := &fakeLedger{}
	svc := newService(repo, ledger, time.Now())

	// Запись читается как SCHEDULED, но к моменту UPDATE оператор уже
	// перевёл её в WAITING и дальше в IN_PROGRESS
	repo.updateErr = appointmentRepo.ErrStatusConflict

	err := svc.Cancel(context.Background(), a.ID, citizen)

	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Empty(t, ledger.released)
}

func TestTransition_CitizenDenied(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	_, err := svc.Transition(context.Background(), a.ID, domain.StatusWaiting, citizen)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestTransition_ValidFlow(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	got, err := svc.Transition(context.Background(), a.ID, domain.StatusWaiting, operator)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, got.Status)
	assert.Equal(t, domain.StatusWaiting, repo.appointments[a.ID].Status)
}

func TestTransition_InvalidRejected(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	_, err := svc.Transition(context.Background(), a.ID, domain.StatusCompleted, operator)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusScheduled, repo.appointments[a.ID].Status)
}

func TestTransition_ConcurrentChangeRejected(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	// Между чтением и UPDATE статус записи изменился
	repo.updateErr = appointmentRepo.ErrStatusConflict

	_, err := svc.Transition(context.Background(), a.ID, domain.StatusWaiting, operator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	a := makeAppointment(domain.StatusScheduled, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	svc := newService(repo, &fakeLedger{}, time.Now())

	_, err := svc.Transition(context.Background(), a.ID, "ARCHIVED", operator)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTransition_ToInProgressRecordsActualWait(t *testing.T) {
	a := makeAppointment(domain.StatusWaiting, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	now := a.AppointmentAt.Add(25 * time.Minute)
	svc := newService(repo, &fakeLedger{}, now)

	got, err := svc.Transition(context.Background(), a.ID, domain.StatusInProgress, operator)

	require.NoError(t, err)
	assert.Equal(t, 25, repo.actualWaits[a.ID])
	require.NotNil(t, got.ActualWaitMinutes)
	assert.Equal(t, 25, *got.ActualWaitMinutes)
}

func TestTransition_EarlyStartClampsWaitToZero(t *testing.T) {
	a := makeAppointment(domain.StatusWaiting, nil)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	now := a.AppointmentAt.Add(-10 * time.Minute)
	svc := newService(repo, &fakeLedger{}, now)

	_, err := svc.Transition(context.Background(), a.ID, domain.StatusInProgress, operator)

	require.NoError(t, err)
	assert.Equal(t, 0, repo.actualWaits[a.ID])
}

func TestTransition_ToCancelledReleasesSlot(t *testing.T) {
	slotID := int64(8)
	a := makeAppointment(domain.StatusWaiting, &slotID)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	ledger := &fakeLedger{}
	svc := newService(repo, ledger, time.Now())

	_, err := svc.Transition(context.Background(), a.ID, domain.StatusCancelled, operator)

	require.NoError(t, err)
	assert.Equal(t, []int64{slotID}, ledger.released)
}

func TestTransition_ToNoShowKeepsSlot(t *testing.T) {
	slotID := int64(8)
	a := makeAppointment(domain.StatusWaiting, &slotID)
	repo := &fakeRepo{appointments: map[uuid.UUID]*domain.Appointment{a.ID: a}}
	ledger := &fakeLedger{}
	svc := newService(repo, ledger, time.Now())

	_, err := svc.Transition(context.Background(), a.ID, domain.StatusNoShow, operator)

	require.NoError(t, err)
	// Неявка фиксируется постфактум, время слота уже прошло
	assert.Empty(t, ledger.released)
}

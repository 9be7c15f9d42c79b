package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/internal/waittime"
)

// ---------- фейки ----------

type fakeAppointmentRepo struct {
	mu       sync.Mutex
	created  []*domain.Appointment
	existing map[string]bool // "serviceID@unix" -> активная запись есть

	createErrs  []error // ошибки первых вызовов Create, по порядку
	existsErr   error
	countErr    error
	queueLength int
	nearby      int
}

func (f *fakeAppointmentRepo) key(serviceID int64, at time.Time) string {
	return fmt.Sprintf("%d@%d", serviceID, at.Unix())
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	stored := *a
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.created = append(f.created, &stored)
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[f.key(a.ServiceID, a.AppointmentAt)] = true
	return &stored, nil
}

func (f *fakeAppointmentRepo) ExistsActiveAt(_ context.Context, serviceID int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[f.key(serviceID, at)], nil
}

func (f *fakeAppointmentRepo) CountActiveOnDate(_ context.Context, _ int64, _ time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.queueLength, nil
}

func (f *fakeAppointmentRepo) CountActiveNearby(_ context.Context, _ int64, _ time.Time, _ time.Duration) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.nearby, nil
}

// fakeSlotLedger потокобезопасный реестр слотов в памяти.
// Reserve атомарен под мьютексом, как условный UPDATE в PostgreSQL.
type fakeSlotLedger struct {
	mu       sync.Mutex
	slots    map[int64]*domain.ServiceSlot
	released []int64

	reserveErr error
	releaseErr error
}

func (f *fakeSlotLedger) Reserve(_ context.Context, slotID, serviceID int64, at time.Time) (*domain.ServiceSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.reserveErr != nil {
		return nil, f.reserveErr
	}

	slot, ok := f.slots[slotID]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	if slot.ServiceID != serviceID || !slot.SlotAt.Equal(at) {
		return nil, slotRepo.ErrSlotMismatch
	}
	if slot.CurrentBookings >= slot.MaxCapacity {
		return nil, slotRepo.ErrSlotFull
	}

	slot.CurrentBookings++
	copied := *slot
	return &copied, nil
}

func (f *fakeSlotLedger) Release(_ context.Context, slotID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.releaseErr != nil {
		return f.releaseErr
	}
	if slot, ok := f.slots[slotID]; ok && slot.CurrentBookings > 0 {
		slot.CurrentBookings--
	}
	f.released = append(f.released, slotID)
	return nil
}

type fakeServiceRepo struct {
	service *domain.Service
	err     error
}

func (f *fakeServiceRepo) GetByID(_ context.Context, _ int64) (*domain.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.service, nil
}

type fakeEstimator struct {
	result int
}

func (f *fakeEstimator) Estimate(_ context.Context, _ waittime.Context) int {
	return f.result
}

type fakeTokens struct {
	mu     sync.Mutex
	codes  []string
	serial int
}

func (f *fakeTokens) Generate(length int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.codes) > 0 {
		code := f.codes[0]
		f.codes = f.codes[1:]
		return code, nil
	}
	f.serial++
	return fmt.Sprintf("TOK%05d", f.serial), nil
}

// fakeTxManager выполняет fn в вызывающей горутине без транзакции,
// считая запуски: каждый вызов моделирует отдельную транзакцию
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// ---------- окружение ----------

type env struct {
	appointments *fakeAppointmentRepo
	ledger       *fakeSlotLedger
	services     *fakeServiceRepo
	tx           *fakeTxManager
	uc           *UseCase
}

func newEnv() *env {
	appointments := &fakeAppointmentRepo{nearby: 2}
	ledger := &fakeSlotLedger{slots: map[int64]*domain.ServiceSlot{}}
	services := &fakeServiceRepo{service: &domain.Service{
		ID:                10,
		Name:              "Оформление паспорта",
		Department:        "Паспортный стол",
		AvgServiceMinutes: 20,
		IsActive:          true,
	}}

	tx := &fakeTxManager{}
	uc := NewUseCase(
		appointments,
		ledger,
		services,
		&fakeEstimator{result: 35},
		&fakeTokens{},
		tx,
		nil,
		nopLogger{},
	)
	uc.timeProvider = fixedTime{now: time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)}
	return &env{appointments: appointments, ledger: ledger, services: services, tx: tx, uc: uc}
}

func slotAt() time.Time {
	return time.Date(2025, 10, 15, 10, 30, 0, 0, time.UTC)
}

func (e *env) addSlot(id int64, capacity, booked int) {
	e.ledger.slots[id] = &domain.ServiceSlot{
		ID:              id,
		ServiceID:       10,
		SlotAt:          slotAt(),
		MaxCapacity:     capacity,
		CurrentBookings: booked,
		IsAvailable:     booked < capacity,
	}
}

func slotRequest(slotID int64) *Request {
	return &Request{
		CitizenID:     77,
		ServiceID:     10,
		SlotID:        &slotID,
		AppointmentAt: slotAt(),
		Priority:      domain.PriorityNormal,
	}
}

// ---------- тесты ----------

func TestExecute_BooksSlot(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 3, 0)

	resp, err := e.uc.Execute(context.Background(), slotRequest(1))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, resp.Status)
	assert.Equal(t, 35, resp.PredictedWaitMinutes)
	assert.Len(t, resp.TokenCode, 8)
	assert.Equal(t, "Оформление паспорта", resp.ServiceName)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, 1, e.ledger.slots[1].CurrentBookings)
	require.Len(t, e.appointments.created, 1)
}

func TestExecute_NormalizesEmptyPriority(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 1, 0)

	req := slotRequest(1)
	req.Priority = ""

	resp, err := e.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, domain.PriorityNormal, resp.Priority)
}

func TestExecute_ValidationErrors(t *testing.T) {
	e := newEnv()
	badSlot := int64(-1)

	tests := []struct {
		name string
		req  *Request
	}{
		{name: "zero citizen", req: &Request{ServiceID: 10, AppointmentAt: slotAt()}},
		{name: "zero service", req: &Request{CitizenID: 77, AppointmentAt: slotAt()}},
		{name: "negative slot", req: &Request{CitizenID: 77, ServiceID: 10, SlotID: &badSlot, AppointmentAt: slotAt()}},
		{name: "zero time", req: &Request{CitizenID: 77, ServiceID: 10}},
		{name: "unknown priority", req: &Request{CitizenID: 77, ServiceID: 10, AppointmentAt: slotAt(), Priority: "URGENT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_ServiceNotFound(t *testing.T) {
	e := newEnv()
	e.services.err = serviceRepo.ErrServiceNotFound

	_, err := e.uc.Execute(context.Background(), slotRequest(1))
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_ServiceInactive(t *testing.T) {
	e := newEnv()
	e.services.service.IsActive = false

	_, err := e.uc.Execute(context.Background(), slotRequest(1))
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestExecute_SlotNotFound(t *testing.T) {
	e := newEnv()

	_, err := e.uc.Execute(context.Background(), slotRequest(99))
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_SlotFull(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 2, 2)

	_, err := e.uc.Execute(context.Background(), slotRequest(1))

	assert.ErrorIs(t, err, ErrSlotFull)
	assert.Empty(t, e.appointments.created)
	assert.Equal(t, 2, e.ledger.slots[1].CurrentBookings)
}

func TestExecute_SlotMismatch(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 3, 0)

	req := slotRequest(1)
	req.AppointmentAt = slotAt().Add(30 * time.Minute)

	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotMismatch)
}

func TestExecute_DegenerateMode_Books(t *testing.T) {
	e := newEnv()

	req := slotRequest(0)
	req.SlotID = nil

	resp, err := e.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Nil(t, resp.SlotID)
	require.Len(t, e.appointments.created, 1)
}

func TestExecute_DegenerateMode_DoubleBooked(t *testing.T) {
	e := newEnv()

	req := slotRequest(0)
	req.SlotID = nil

	_, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	_, err = e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDoubleBooked)
	assert.Len(t, e.appointments.created, 1)
}

func TestExecute_RejectsPastDatetime(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 3, 0)

	req := slotRequest(1)
	req.AppointmentAt = time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)

	_, err := e.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, e.ledger.slots[1].CurrentBookings)
	assert.Empty(t, e.appointments.created)
}

func TestExecute_DegenerateMode_TokenCollisionRestartsTransaction(t *testing.T) {
	e := newEnv()
	e.appointments.createErrs = []error{
		appointmentRepo.ErrTokenCollision,
		appointmentRepo.ErrTokenCollision,
	}

	req := slotRequest(0)
	req.SlotID = nil

	resp, err := e.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.TokenCode)
	// Каждая попытка с новым кодом - отдельная транзакция: после 23505
	// PostgreSQL не выполнит повторную вставку внутри прерванной
	assert.Equal(t, 3, e.tx.calls)
	require.Len(t, e.appointments.created, 1)
}

func TestExecute_DegenerateMode_TokenExhausted(t *testing.T) {
	e := newEnv()

	errs := make([]error, domain.TokenCodeMaxAttempts)
	for i := range errs {
		errs[i] = appointmentRepo.ErrTokenCollision
	}
	e.appointments.createErrs = errs

	req := slotRequest(0)
	req.SlotID = nil

	_, err := e.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrTokenExhausted)
	assert.Equal(t, domain.TokenCodeMaxAttempts, e.tx.calls)
	assert.Empty(t, e.appointments.created)
}

func TestExecute_CompensatesReservationOnPersistFailure(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 3, 0)
	e.appointments.createErrs = []error{errors.New("connection reset")}

	_, err := e.uc.Execute(context.Background(), slotRequest(1))

	assert.ErrorIs(t, err, ErrInternal)
	// Место освобождено компенсирующим Release
	assert.Equal(t, 0, e.ledger.slots[1].CurrentBookings)
	assert.Equal(t, []int64{1}, e.ledger.released)
}

func TestExecute_RetriesTokenCollision(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 3, 0)
	e.appointments.createErrs = []error{
		appointmentRepo.ErrTokenCollision,
		appointmentRepo.ErrTokenCollision,
	}

	resp, err := e.uc.Execute(context.Background(), slotRequest(1))

	require.NoError(t, err)
	assert.NotEmpty(t, resp.TokenCode)
	require.Len(t, e.appointments.created, 1)
}

func TestExecute_TokenExhausted(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 3, 0)

	errs := make([]error, domain.TokenCodeMaxAttempts)
	for i := range errs {
		errs[i] = appointmentRepo.ErrTokenCollision
	}
	e.appointments.createErrs = errs

	_, err := e.uc.Execute(context.Background(), slotRequest(1))

	assert.ErrorIs(t, err, ErrTokenExhausted)
	// Компенсация выполняется и при исчерпании попыток
	assert.Equal(t, 0, e.ledger.slots[1].CurrentBookings)
}

func TestExecute_EstimateSurvivesCountErrors(t *testing.T) {
	e := newEnv()
	e.addSlot(1, 3, 0)
	e.appointments.countErr = errors.New("timeout")

	resp, err := e.uc.Execute(context.Background(), slotRequest(1))

	require.NoError(t, err)
	assert.Equal(t, 35, resp.PredictedWaitMinutes)
}

// Вместимость слота не превышается при конкурентных бронированиях:
// из N параллельных запросов на слот с capacity местами успешны ровно capacity
func TestExecute_ConcurrentBookingsRespectCapacity(t *testing.T) {
	const attempts = 20
	const capacity = 3

	e := newEnv()
	e.addSlot(1, capacity, 0)

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(citizen int64) {
			defer wg.Done()
			req := slotRequest(1)
			req.CitizenID = citizen
			_, err := e.uc.Execute(context.Background(), req)
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	succeeded, full := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, attempts-capacity, full)
	assert.Equal(t, capacity, e.ledger.slots[1].CurrentBookings)
	assert.Len(t, e.appointments.created, capacity)
}

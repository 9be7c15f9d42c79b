package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// pgUniqueViolation код PostgreSQL нарушения уникальности
const pgUniqueViolation = "23505"

var appointmentColumns = []string{
	"id",
	"citizen_id",
	"service_id",
	"slot_id",
	"token_code",
	"appointment_at",
	"priority",
	"status",
	"predicted_wait_minutes",
	"actual_wait_minutes",
	"service_name",
	"service_department",
	"notes",
	"created_at",
	"updated_at",
}

// ListFilter фильтр для выборки записей
type ListFilter struct {
	CitizenID  *int64                    // только записи гражданина
	ServiceID  *int64                    // только записи на услугу
	Date       *time.Time                // только записи на дату
	Status     *domain.AppointmentStatus // только записи в статусе
	OnlyActive bool                      // исключить терминальные статусы
}

// Repository репозиторий записей на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую запись.
// Нарушение уникальности token_code возвращается как ErrTokenCollision,
// чтобы вызывающая сторона перегенерировала код (optimistic collision check).
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"id",
			"citizen_id",
			"service_id",
			"slot_id",
			"token_code",
			"appointment_at",
			"priority",
			"status",
			"predicted_wait_minutes",
			"service_name",
			"service_department",
			"notes",
		).
		Values(
			a.ID,
			a.CitizenID,
			a.ServiceID,
			a.SlotID,
			a.TokenCode,
			a.AppointmentAt,
			a.Priority,
			a.Status,
			a.PredictedWaitMinutes,
			a.ServiceName,
			a.ServiceDepartment,
			a.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		if isTokenUniqueViolation(err) {
			return nil, ErrTokenCollision
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return a, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}
	return a, nil
}

// List получает записи по фильтру, сначала новые
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		OrderBy("created_at DESC")

	if filter.CitizenID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"citizen_id": *filter.CitizenID})
	}
	if filter.ServiceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *filter.ServiceID})
	}
	if filter.Date != nil {
		dayStart, dayEnd := dayBounds(*filter.Date)
		selectBuilder = selectBuilder.
			Where(squirrel.GtOrEq{"appointment_at": dayStart}).
			Where(squirrel.Lt{"appointment_at": dayEnd})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if filter.OnlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListByStatus получает записи в статусе, отсортированные по времени приёма (ASC).
// Используется Queue View для очереди ожидающих и набора обслуживаемых.
func (r *Repository) ListByStatus(ctx context.Context, status domain.AppointmentStatus) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"status": status}).
		OrderBy("appointment_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByStatus - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStatus - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ExistsActiveAt проверяет наличие активной записи на услугу на точное время.
// Используется в вырожденном режиме бронирования без слота
// (конфликт по точному (service, datetime), фактически вместимость 1).
func (r *Repository) ExistsActiveAt(ctx context.Context, serviceID int64, at time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("appointments").
		Where(squirrel.Eq{
			"service_id":     serviceID,
			"appointment_at": at,
			"status":         statusStrings(domain.ActiveStatuses),
		}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ExistsActiveAt - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActiveAt - scan: %v", ErrScanRow, err)
	}
	return true, nil
}

// CountActiveOnDate считает активные записи на услугу на дату (длина очереди)
func (r *Repository) CountActiveOnDate(ctx context.Context, serviceID int64, date time.Time) (int, error) {
	dayStart, dayEnd := dayBounds(date)
	return r.countActive(ctx, serviceID, dayStart, dayEnd)
}

// CountActiveNearby считает активные записи на услугу в окне ±window
// вокруг целевого времени. Вход оценки времени ожидания (fallback).
func (r *Repository) CountActiveNearby(ctx context.Context, serviceID int64, at time.Time, window time.Duration) (int, error) {
	return r.countActive(ctx, serviceID, at.Add(-window), at.Add(window))
}

func (r *Repository) countActive(ctx context.Context, serviceID int64, from, to time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("appointments").
		Where(squirrel.Eq{
			"service_id": serviceID,
			"status":     statusStrings(domain.ActiveStatuses),
		}).
		Where(squirrel.GtOrEq{"appointment_at": from}).
		Where(squirrel.LtOrEq{"appointment_at": to}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: countActive - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: countActive - scan count: %v", ErrScanRow, err)
	}
	return count, nil
}

// CountByStatusOnDate считает записи на дату в разрезе статусов
func (r *Repository) CountByStatusOnDate(ctx context.Context, date time.Time) (map[domain.AppointmentStatus]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	dayStart, dayEnd := dayBounds(date)

	query, args, err := psqlbuilder.Select("status", "COUNT(*)").
		From("appointments").
		Where(squirrel.GtOrEq{"appointment_at": dayStart}).
		Where(squirrel.Lt{"appointment_at": dayEnd}).
		GroupBy("status").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountByStatusOnDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountByStatusOnDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[domain.AppointmentStatus]int, len(domain.AllStatuses))
	for rows.Next() {
		var status domain.AppointmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: CountByStatusOnDate - scan row: %v", ErrScanRow, err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountByStatusOnDate - rows error: %v", ErrScanRow, err)
	}
	return counts, nil
}

// AvgPredictedWaitByPriority считает среднее прогнозное ожидание на дату
// в разрезе классов приоритета
func (r *Repository) AvgPredictedWaitByPriority(ctx context.Context, date time.Time) (map[domain.Priority]float64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	dayStart, dayEnd := dayBounds(date)

	query, args, err := psqlbuilder.Select("priority", "AVG(predicted_wait_minutes)").
		From("appointments").
		Where(squirrel.GtOrEq{"appointment_at": dayStart}).
		Where(squirrel.Lt{"appointment_at": dayEnd}).
		GroupBy("priority").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: AvgPredictedWaitByPriority - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: AvgPredictedWaitByPriority - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	avgs := make(map[domain.Priority]float64, len(domain.AllPriorities))
	for rows.Next() {
		var priority domain.Priority
		var avg sql.NullFloat64
		if err := rows.Scan(&priority, &avg); err != nil {
			return nil, fmt.Errorf("%w: AvgPredictedWaitByPriority - scan row: %v", ErrScanRow, err)
		}
		avgs[priority] = avg.Float64
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: AvgPredictedWaitByPriority - rows error: %v", ErrScanRow, err)
	}
	return avgs, nil
}

// UpdateStatus переводит запись в новый статус условным UPDATE
// (compare-and-set по текущему статусу, как условный инкремент в Slot
// Ledger). Валидность перехода проверяется на уровне сервиса, но гонку
// двух конкурентных переводов разрешает именно guard: проигравший
// получает ErrStatusConflict и запись не меняет.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus, from ...domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	if len(from) > 0 {
		builder = builder.Where(squirrel.Eq{"status": from})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		if len(from) > 0 {
			return ErrStatusConflict
		}
		return ErrAppointmentNotFound
	}
	return nil
}

// SetActualWait записывает фактическое время ожидания (в минутах).
// Заполняется оператором при взятии талона в работу; сырьё для
// последующего переобучения модели.
func (r *Repository) SetActualWait(ctx context.Context, id uuid.UUID, minutes int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("actual_wait_minutes", minutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetActualWait - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "SetActualWait")
}

func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, query string, args []interface{}, method string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.CitizenID,
		&a.ServiceID,
		&a.SlotID,
		&a.TokenCode,
		&a.AppointmentAt,
		&a.Priority,
		&a.Status,
		&a.PredictedWaitMinutes,
		&a.ActualWaitMinutes,
		&a.ServiceName,
		&a.ServiceDepartment,
		&a.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}
	return appointments, nil
}

func isTokenUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation &&
			strings.Contains(pqErr.Constraint, "token_code")
	}
	return false
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return dayStart, dayStart.AddDate(0, 0, 1)
}

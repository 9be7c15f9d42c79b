package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var slotColumns = []string{
	"id",
	"service_id",
	"slot_at",
	"max_capacity",
	"current_bookings",
	"is_available",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов. Единственный компонент, которому
// разрешено изменять счётчики бронирований.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Reserve атомарно занимает одно место в слоте.
//
// Проверка вместимости и инкремент выполняются одним условным UPDATE:
// WHERE current_bookings < max_capacity гарантирует, что два
// конкурентных запроса на последнее место не пройдут оба. Наивный
// read-then-write здесь недопустим.
//
// serviceID и at сверяются с данными слота, чтобы отсечь устаревшие
// клиентские ссылки на слот (ErrSlotMismatch).
func (r *Repository) Reserve(ctx context.Context, slotID, serviceID int64, at time.Time) (*domain.ServiceSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("service_slots").
		Set("current_bookings", squirrel.Expr("current_bookings + 1")).
		Set("is_available", squirrel.Expr("current_bookings + 1 < max_capacity")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":         slotID,
			"service_id": serviceID,
			"slot_at":    at,
		}).
		Where(squirrel.Expr("current_bookings < max_capacity")).
		Suffix("RETURNING " + joinColumns(slotColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - build update query: %v", ErrBuildQuery, err)
	}

	var s domain.ServiceSlot
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.ServiceID,
		&s.SlotAt,
		&s.MaxCapacity,
		&s.CurrentBookings,
		&s.IsAvailable,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		// UPDATE не затронул строк: слот отсутствует, заполнен
		// или ссылка клиента устарела. Классифицируем отдельным чтением.
		return nil, r.classifyReserveFailure(ctx, slotID, serviceID, at)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - scan slot: %v", ErrScanRow, err)
	}

	return &s, nil
}

// classifyReserveFailure определяет причину отказа в резервировании
func (r *Repository) classifyReserveFailure(ctx context.Context, slotID, serviceID int64, at time.Time) error {
	s, err := r.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return ErrSlotNotFound
		}
		return err
	}

	if s.ServiceID != serviceID || !s.SlotAt.Equal(at) {
		return ErrSlotMismatch
	}
	return ErrSlotFull
}

// Release освобождает одно место в слоте (компенсация при отмене записи
// или при сбое бронирования после успешного резервирования).
// Счётчик не опускается ниже нуля, флаг доступности восстанавливается.
func (r *Repository) Release(ctx context.Context, slotID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("service_slots").
		Set("current_bookings", squirrel.Expr("GREATEST(current_bookings - 1, 0)")).
		Set("is_available", squirrel.Expr("GREATEST(current_bookings - 1, 0) < max_capacity")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slotID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Release - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ServiceSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("service_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.ServiceSlot
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.ServiceID,
		&s.SlotAt,
		&s.MaxCapacity,
		&s.CurrentBookings,
		&s.IsAvailable,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return &s, nil
}

// ListAvailable получает доступные слоты услуги на дату,
// отсортированные по времени (ASC)
func (r *Repository) ListAvailable(ctx context.Context, serviceID int64, date time.Time) ([]*domain.ServiceSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("service_slots").
		Where(squirrel.Eq{"service_id": serviceID, "is_available": true}).
		Where(squirrel.GtOrEq{"slot_at": dayStart}).
		Where(squirrel.Lt{"slot_at": dayEnd}).
		OrderBy("slot_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListAvailable - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSlots(rows)
}

// GenerateWindow идемпотентно создает слоты услуги на окно window.
// Повторный запуск не создает дубликатов и не трогает существующие
// строки (current_bookings и is_available сохраняются):
// ON CONFLICT (service_id, slot_at) DO NOTHING.
// Возвращает число реально созданных слотов.
func (r *Repository) GenerateWindow(ctx context.Context, serviceID int64, window domain.SlotWindow) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	times := window.SlotTimes()
	if len(times) == 0 {
		return 0, nil
	}

	builder := psqlbuilder.Insert("service_slots").
		Columns("service_id", "slot_at", "max_capacity", "current_bookings", "is_available")

	for _, t := range times {
		builder = builder.Values(serviceID, t, window.DefaultCapacity, 0, true)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (service_id, slot_at) DO NOTHING").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: GenerateWindow - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: GenerateWindow - execute insert: %v", ErrExecQuery, err)
	}

	created, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: GenerateWindow - get rows affected: %v", ErrExecQuery, err)
	}

	return created, nil
}

// scanSlots сканирует результаты запроса в слайс слотов
func (r *Repository) scanSlots(rows *sql.Rows) ([]*domain.ServiceSlot, error) {
	slots := make([]*domain.ServiceSlot, 0)

	for rows.Next() {
		var s domain.ServiceSlot
		err := rows.Scan(
			&s.ID,
			&s.ServiceID,
			&s.SlotAt,
			&s.MaxCapacity,
			&s.CurrentBookings,
			&s.IsAvailable,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrTokenCollision возвращается при нарушении уникальности кода талона.
	// Вызывающая сторона перегенерирует код и повторяет вставку.
	ErrTokenCollision = errors.New("appointment.repository: token code collision")

	// ErrStatusConflict возвращается, когда условный UPDATE статуса не
	// нашёл запись в ожидаемом исходном статусе: конкурентный перевод
	// успел раньше
	ErrStatusConflict = errors.New("appointment.repository: status conflict")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)

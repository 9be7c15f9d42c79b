package appointments

import "errors"

var (
	// ErrAppointmentNotFound запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrAccessDenied недостаточно прав для операции
	ErrAccessDenied = errors.New("access denied")
	// ErrCannotCancel запись нельзя отменить в текущем статусе
	ErrCannotCancel = errors.New("appointment cannot be cancelled")
	// ErrInvalidTransition недопустимый переход статуса
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = errors.New("internal error")
)

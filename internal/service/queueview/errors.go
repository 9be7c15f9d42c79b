package queueview

import "errors"

var (
	// ErrAccessDenied недостаточно прав для операции
	ErrAccessDenied = errors.New("access denied")
	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = errors.New("internal error")
)

package create_appointment

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrServiceInactive возвращается при попытке записи на деактивированную услугу
	ErrServiceInactive = errors.New("create_appointment: service is not active")

	// ErrSlotNotFound возвращается, когда указанный слот не существует
	ErrSlotNotFound = errors.New("create_appointment: slot not found")

	// ErrSlotFull возвращается, когда вместимость слота исчерпана.
	// Пользователь может повторить запрос с другим слотом.
	ErrSlotFull = errors.New("create_appointment: slot is full")

	// ErrSlotMismatch возвращается, когда услуга/время клиента не
	// совпадают с данными слота (устаревшая ссылка, нужен повторный
	// запрос доступности)
	ErrSlotMismatch = errors.New("create_appointment: slot reference is stale")

	// ErrDoubleBooked возвращается в вырожденном режиме без слота,
	// когда на точное (услуга, время) уже есть активная запись
	ErrDoubleBooked = errors.New("create_appointment: time already booked")

	// ErrTokenExhausted возвращается при исчерпании попыток генерации
	// уникального кода талона. Практически недостижимо при данном
	// алфавите; трактуется как внутренняя ошибка.
	ErrTokenExhausted = errors.New("create_appointment: token generation exhausted")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)

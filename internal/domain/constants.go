package domain

// Default slot window generation values
const (
	DefaultWindowDays      = 30
	DefaultOpenHour        = 8
	DefaultCloseHour       = 17
	DefaultIntervalMinutes = 30
	DefaultSlotCapacity    = 1
)

// Business validation constants
const (
	MinSlotCapacity    = 1
	MaxSlotCapacity    = 100
	MinWindowDays      = 1
	MaxWindowDays      = 365
	MinIntervalMinutes = 5
	MaxIntervalMinutes = 480
	MaxNotesLength     = 500
)

// Token code constants
const (
	// TokenCodeLength is the length of the human-readable appointment code
	TokenCodeLength = 8

	// TokenCodeMaxAttempts bounds the collision-retry loop. With a
	// 32-character alphabet and 8 positions exhaustion is practically
	// unreachable and treated as an internal failure.
	TokenCodeMaxAttempts = 10
)

// Time format constants
const (
	DateFormat     = "2006-01-02"          // YYYY-MM-DD
	DateTimeFormat = "2006-01-02 15:04"    // YYYY-MM-DD HH:MM
)

// ActiveStatuses список статусов, при которых запись занимает место в очереди.
// Используется при подсчёте длины очереди и соседних записей для оценки ожидания.
var ActiveStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusWaiting,
	StatusInProgress,
}

// TerminalStatuses список конечных статусов записи
var TerminalStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// AllStatuses перечисляет все статусы жизненного цикла (для агрегатов по статусам)
var AllStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusWaiting,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// AllPriorities перечисляет все классы приоритета (для агрегатов по приоритетам)
var AllPriorities = []Priority{
	PriorityNormal,
	PriorityElderly,
	PriorityDisabled,
	PriorityEmergency,
}

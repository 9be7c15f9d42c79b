package domain

import (
	"time"

	"github.com/google/uuid"
)

// Priority represents the priority class of an appointment
type Priority string

const (
	PriorityNormal    Priority = "NORMAL"
	PriorityElderly   Priority = "ELDERLY"
	PriorityDisabled  Priority = "DISABLED"
	PriorityEmergency Priority = "EMERGENCY"
)

// Valid returns true if the priority is one of the known classes
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityElderly, PriorityDisabled, PriorityEmergency:
		return true
	}
	return false
}

// Level returns the numeric priority level used as a model feature
// (NORMAL=1, ELDERLY=2, DISABLED=3, EMERGENCY=4)
func (p Priority) Level() int {
	switch p {
	case PriorityElderly:
		return 2
	case PriorityDisabled:
		return 3
	case PriorityEmergency:
		return 4
	default:
		return 1
	}
}

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusWaiting    AppointmentStatus = "WAITING"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
)

// Valid returns true if the status is one of the known lifecycle states
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusWaiting, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed from the status
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// allowedTransitions describes the appointment state machine.
// Transitions are append-only: forward to the adjacent state, or sideways
// to CANCELLED / NO_SHOW while the appointment has not been taken in.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusWaiting, StatusCancelled, StatusNoShow},
	StatusWaiting:    {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
}

// CanTransitionTo returns true if the state machine permits moving
// from the current status to next
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment represents a single citizen booking
type Appointment struct {
	ID            uuid.UUID
	CitizenID     int64
	ServiceID     int64
	SlotID        *int64 // nil for degraded bookings without slot capacity tracking
	TokenCode     string
	AppointmentAt time.Time
	Priority      Priority
	Status        AppointmentStatus

	PredictedWaitMinutes int
	ActualWaitMinutes    *int

	// Denormalized data for history
	ServiceName       string
	ServiceDepartment string

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment still occupies a place in the queue
func (a *Appointment) IsActive() bool {
	return !a.Status.IsTerminal()
}

// CanBeCancelled returns true if the appointment can still be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusScheduled || a.Status == StatusWaiting
}

// EstimatedCompletionTime returns the scheduled time shifted by the predicted wait
func (a *Appointment) EstimatedCompletionTime() time.Time {
	return a.AppointmentAt.Add(time.Duration(a.PredictedWaitMinutes) * time.Minute)
}

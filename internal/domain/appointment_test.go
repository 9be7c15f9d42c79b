package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{StatusScheduled, StatusWaiting, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusScheduled, StatusInProgress, false},
		{StatusScheduled, StatusCompleted, false},

		{StatusWaiting, StatusInProgress, true},
		{StatusWaiting, StatusCancelled, true},
		{StatusWaiting, StatusNoShow, true},
		{StatusWaiting, StatusScheduled, false},
		{StatusWaiting, StatusCompleted, false},

		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusInProgress, StatusNoShow, false},
		{StatusInProgress, StatusWaiting, false},

		{StatusCompleted, StatusScheduled, false},
		{StatusCancelled, StatusWaiting, false},
		{StatusNoShow, StatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusScheduled.IsTerminal())
	assert.False(t, StatusWaiting.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
}

func TestPriority_Level(t *testing.T) {
	assert.Equal(t, 1, PriorityNormal.Level())
	assert.Equal(t, 2, PriorityElderly.Level())
	assert.Equal(t, 3, PriorityDisabled.Level())
	assert.Equal(t, 4, PriorityEmergency.Level())
	assert.Equal(t, 1, Priority("UNKNOWN").Level())
}

func TestPriority_Valid(t *testing.T) {
	for _, p := range AllPriorities {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, Priority("URGENT").Valid())
	assert.False(t, Priority("").Valid())
}

func TestAppointment_CanBeCancelled(t *testing.T) {
	tests := []struct {
		status AppointmentStatus
		want   bool
	}{
		{StatusScheduled, true},
		{StatusWaiting, true},
		{StatusInProgress, false},
		{StatusCompleted, false},
		{StatusCancelled, false},
		{StatusNoShow, false},
	}

	for _, tt := range tests {
		a := &Appointment{Status: tt.status}
		assert.Equal(t, tt.want, a.CanBeCancelled(), tt.status)
	}
}

func TestAppointment_EstimatedCompletionTime(t *testing.T) {
	at := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	a := &Appointment{AppointmentAt: at, PredictedWaitMinutes: 25}

	assert.Equal(t, at.Add(25*time.Minute), a.EstimatedCompletionTime())
}

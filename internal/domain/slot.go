package domain

import "time"

// ServiceSlot represents a fixed point in time for a service with a
// finite concurrent-booking capacity
type ServiceSlot struct {
	ID              int64
	ServiceID       int64
	SlotAt          time.Time
	MaxCapacity     int
	CurrentBookings int
	IsAvailable     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsFull returns true if the slot has no remaining capacity
func (s *ServiceSlot) IsFull() bool {
	return s.CurrentBookings >= s.MaxCapacity
}

// FreeSpots returns the number of remaining places in the slot
func (s *ServiceSlot) FreeSpots() int {
	free := s.MaxCapacity - s.CurrentBookings
	if free < 0 {
		return 0
	}
	return free
}

// SlotWindow describes a rolling window of slots to generate for a service.
// Generation is idempotent: existing (service, datetime) rows are left
// untouched, including their booking counts.
type SlotWindow struct {
	StartDate       time.Time
	Days            int
	OpenHour        int
	CloseHour       int
	IntervalMinutes int
	DefaultCapacity int
}

// SlotTimes expands the window into the full list of slot timestamps
func (w SlotWindow) SlotTimes() []time.Time {
	times := make([]time.Time, 0, w.Days*(w.CloseHour-w.OpenHour)*60/w.IntervalMinutes)
	day := time.Date(w.StartDate.Year(), w.StartDate.Month(), w.StartDate.Day(), 0, 0, 0, 0, w.StartDate.Location())
	for d := 0; d < w.Days; d++ {
		open := day.AddDate(0, 0, d).Add(time.Duration(w.OpenHour) * time.Hour)
		closeAt := day.AddDate(0, 0, d).Add(time.Duration(w.CloseHour) * time.Hour)
		for t := open; t.Before(closeAt); t = t.Add(time.Duration(w.IntervalMinutes) * time.Minute) {
			times = append(times, t)
		}
	}
	return times
}

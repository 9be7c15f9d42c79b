package domain

import "time"

// Service represents a bookable offering of the service center
type Service struct {
	ID                int64
	Name              string
	Department        string
	Description       string
	AvgServiceMinutes int
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ServiceUpdate describes the administrative edits allowed on a service.
// Services referenced by appointments are never deleted, only deactivated.
type ServiceUpdate struct {
	AvgServiceMinutes *int
	IsActive          *bool
	Description       *string
}

// IsEmpty returns true if the update changes nothing
func (u ServiceUpdate) IsEmpty() bool {
	return u.AvgServiceMinutes == nil && u.IsActive == nil && u.Description == nil
}

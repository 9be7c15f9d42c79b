package mailer

import "time"

// Confirmation данные письма-подтверждения записи
type Confirmation struct {
	Email                string
	CitizenName          string
	TokenCode            string
	ServiceName          string
	Department           string
	AppointmentAt        time.Time
	PredictedWaitMinutes int
}

package create_appointment

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/integrations/mailer"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

type CreateAppointmentUseCase interface {
	Execute(ctx context.Context, req *createAppointment.Request) (*createAppointment.Response, error)
}

// ConfirmationSender отправляет подтверждение записи после её создания
type ConfirmationSender interface {
	SendConfirmation(c mailer.Confirmation) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

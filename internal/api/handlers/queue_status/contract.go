package queue_status

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/queueview/models"
)

type QueueViewService interface {
	Status(ctx context.Context) (*models.QueueStatus, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

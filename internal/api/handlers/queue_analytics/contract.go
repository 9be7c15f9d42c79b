package queue_analytics

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/queueview/models"
)

type QueueViewService interface {
	Analytics(ctx context.Context, actor domain.Actor) (*models.Analytics, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request параметры запроса доступных слотов
type Request struct {
	ServiceID int64
	Date      time.Time
}

// SlotInfo информация о слоте с оставшейся вместимостью
type SlotInfo struct {
	ID              int64
	SlotAt          time.Time
	MaxCapacity     int
	CurrentBookings int
	FreeSpots       int
}

// Response доступные слоты услуги на дату
type Response struct {
	ServiceID   int64
	ServiceName string
	Date        string
	Slots       []SlotInfo
}

func toResponse(service *domain.Service, date time.Time, slots []*domain.ServiceSlot) *Response {
	items := make([]SlotInfo, 0, len(slots))
	for _, slot := range slots {
		items = append(items, SlotInfo{
			ID:              slot.ID,
			SlotAt:          slot.SlotAt,
			MaxCapacity:     slot.MaxCapacity,
			CurrentBookings: slot.CurrentBookings,
			FreeSpots:       slot.FreeSpots(),
		})
	}
	return &Response{
		ServiceID:   service.ID,
		ServiceName: service.Name,
		Date:        date.Format(domain.DateFormat),
		Slots:       items,
	}
}

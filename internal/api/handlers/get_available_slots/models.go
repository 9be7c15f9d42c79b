package get_available_slots

import (
	"time"

	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель слота
type SlotResponse struct {
	ID              int64  `json:"id"`
	SlotAt          string `json:"slotAt"`
	MaxCapacity     int    `json:"maxCapacity"`
	CurrentBookings int    `json:"currentBookings"`
	FreeSpots       int    `json:"freeSpots"`
}

// AvailableSlotsResponse HTTP response со свободными слотами
type AvailableSlotsResponse struct {
	ServiceID   int64          `json:"serviceId"`
	ServiceName string         `json:"serviceName"`
	Date        string         `json:"date"`
	Slots       []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, SlotResponse{
			ID:              slot.ID,
			SlotAt:          slot.SlotAt.Format(time.RFC3339),
			MaxCapacity:     slot.MaxCapacity,
			CurrentBookings: slot.CurrentBookings,
			FreeSpots:       slot.FreeSpots,
		})
	}
	return &AvailableSlotsResponse{
		ServiceID:   resp.ServiceID,
		ServiceName: resp.ServiceName,
		Date:        resp.Date,
		Slots:       slots,
	}
}

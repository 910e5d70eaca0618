package dto

import (
	"time"

	"github.com/sahasrara-wellness/booking-api/internal/models"
)

type BookingListDTO struct {
	ID            uint      `json:"id"`
	BookingDate   time.Time `json:"booking_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	GuestName     string    `json:"guest_name"`
	GuestPhone    string    `json:"guest_phone"`
	ServiceName   string    `json:"service_name"`
	WorkerName    string    `json:"worker_name"`
	IsManual      bool      `json:"is_manual"`
}

func NewBookingListDTO(b *models.Booking) BookingListDTO {
	return BookingListDTO{
		ID:            b.ID,
		BookingDate:   b.BookingDate,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		GuestName:     b.Guest.Name,
		GuestPhone:    b.Guest.Phone,
		ServiceName:   b.Service.Name,
		WorkerName:    b.Worker.Name,
		IsManual:      b.IsManual,
	}
}

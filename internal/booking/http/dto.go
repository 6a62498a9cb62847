package http

import (
	"time"

	"github.com/nekogravitycat/rental-booking/internal/booking"
	"github.com/nekogravitycat/rental-booking/internal/pkg/money"
	"github.com/nekogravitycat/rental-booking/internal/pkg/request"
)

// maxIdempotencyKeyLen bounds the Idempotency-Key header.
const maxIdempotencyKeyLen = 255

type CreateBookingRequest struct {
	ListingID      string `json:"listing_id" binding:"required,uuid"`
	StartDate      string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" binding:"required,datetime=2006-01-02"`
	NumberOfGuests int    `json:"number_of_guests" binding:"required,min=1"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed rejected cancelled"`
}

// AvailabilityQuery holds query parameters of the availability check.
type AvailabilityQuery struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"required,datetime=2006-01-02"`
	Guests    int    `form:"guests" binding:"omitempty,min=1"`
}

// dates converts the validated date strings to UTC midnights.
func dates(start, end string) (time.Time, time.Time, error) {
	s, err := request.ParseDate("start_date", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := request.ParseDate("end_date", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}

type BookingResponse struct {
	ID             string       `json:"id"`
	ListingID      string       `json:"listing_id"`
	GuestID        string       `json:"guest_id"`
	HostID         string       `json:"host_id"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	Nights         int64        `json:"nights"`
	NumberOfGuests int          `json:"number_of_guests"`
	TotalPrice     money.Amount `json:"total_price"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:             b.ID,
		ListingID:      b.ListingID,
		GuestID:        b.GuestID,
		HostID:         b.HostID,
		StartDate:      b.StartDate.Format(request.DateLayout),
		EndDate:        b.EndDate.Format(request.DateLayout),
		Nights:         b.Stay().Nights(),
		NumberOfGuests: b.NumberOfGuests,
		TotalPrice:     b.TotalPrice,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

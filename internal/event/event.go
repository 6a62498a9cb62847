// Package event publishes booking lifecycle notifications to downstream consumers.
package event

import (
	"context"
	"time"

	"github.com/nekogravitycat/rental-booking/internal/pkg/money"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingConfirmed Type = "booking.confirmed"
	BookingRejected  Type = "booking.rejected"
	BookingCancelled Type = "booking.cancelled"
)

// BookingEvent is the payload emitted after a booking change commits.
type BookingEvent struct {
	Type       Type         `json:"type"`
	BookingID  string       `json:"booking_id"`
	ListingID  string       `json:"listing_id"`
	GuestID    string       `json:"guest_id"`
	HostID     string       `json:"host_id"`
	ActorID    string       `json:"actor_id"`
	Status     string       `json:"status"`
	StartDate  string       `json:"start_date"`
	EndDate    string       `json:"end_date"`
	TotalPrice money.Amount `json:"total_price"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Publisher delivers booking events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e BookingEvent) error
}

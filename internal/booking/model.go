package booking

import (
	"time"

	"github.com/nekogravitycat/rental-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking/internal/pkg/money"
)

var (
	ErrNotFound          = apperror.New(apperror.KindNotFound, "booking not found")
	ErrListingNotFound   = apperror.New(apperror.KindNotFound, "listing not found")
	ErrConflict          = apperror.New(apperror.KindConflict, "listing is already booked for the selected dates")
	ErrPermissionDenied  = apperror.New(apperror.KindForbidden, "permission denied")
	ErrInvalidTransition = apperror.New(apperror.KindInvalidTransition, "booking status does not allow this change")
	ErrTooLate           = apperror.New(apperror.KindTooLate, "booking can no longer be cancelled this close to check-in")

	ErrStartDatePast    = apperror.New(apperror.KindValidation, "start date cannot be in the past")
	ErrInvalidDateRange = apperror.New(apperror.KindValidation, "end date must be after start date")
	ErrTooManyGuests    = apperror.New(apperror.KindValidation, "number of guests exceeds the listing's capacity")
	ErrInvalidGuests    = apperror.New(apperror.KindValidation, "number of guests must be at least 1")
	ErrInvalidStatus    = apperror.New(apperror.KindValidation, "unknown booking status")
	ErrTotalOutOfRange  = apperror.New(apperror.KindValidation, "total price of the stay is too large")

	// errDuplicateIdempotencyKey is returned by the repository when the guest
	// already created a booking with the same key.
	errDuplicateIdempotencyKey = apperror.New(apperror.KindConflict, "idempotency key already used")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

type Booking struct {
	ID             string
	ListingID      string
	GuestID        string
	HostID         string
	StartDate      time.Time // first night, UTC midnight
	EndDate        time.Time // checkout day, exclusive
	NumberOfGuests int
	TotalPrice     money.Amount
	Status         Status
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Stay returns the booked date range.
func (b *Booking) Stay() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// ListingSnapshot is the part of a listing the booking core reads at request time.
type ListingSnapshot struct {
	ID            string
	HostID        string
	PricePerNight money.Amount
	MaxGuests     int
}

// Party selects which side of the bookings a list query returns.
type Party string

const (
	PartyGuest Party = "guest"
	PartyHost  Party = "host"
)

type Filter struct {
	Party    Party
	UserID   string
	Status   Status
	Page     int
	PageSize int
}

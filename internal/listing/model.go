package listing

import (
	"time"

	"github.com/nekogravitycat/rental-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking/internal/pkg/money"
)

var (
	ErrNotFound           = apperror.New(apperror.KindNotFound, "listing not found")
	ErrPermissionDenied   = apperror.New(apperror.KindForbidden, "only the host can modify this listing")
	ErrHasActiveBookings  = apperror.New(apperror.KindConflict, "listing has upcoming bookings")
	ErrInvalidPrice       = apperror.New(apperror.KindValidation, "price must be between 0 and 1000000.00")
	ErrInvalidPriceFilter = apperror.New(apperror.KindValidation, "min_price must not exceed max_price")
)

// MaxPricePerNight keeps any stay total well inside the int64 cent range.
const MaxPricePerNight money.Amount = 1_000_000_00

// ValidPrice reports whether p is an acceptable nightly price.
func ValidPrice(p money.Amount) bool {
	return p >= 0 && p <= MaxPricePerNight
}

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyVilla     PropertyType = "villa"
	PropertyCondo     PropertyType = "condo"
	PropertyStudio    PropertyType = "studio"
)

type Location struct {
	Address   string
	City      string
	State     string
	Country   string
	Latitude  *float64
	Longitude *float64
}

type Listing struct {
	ID            string
	HostID        string
	Title         string
	Description   string
	PricePerNight money.Amount
	MaxGuests     int
	Bedrooms      int
	Bathrooms     int
	PropertyType  PropertyType
	Location      Location
	Amenities     []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter narrows listing searches. Zero values are ignored.
type Filter struct {
	HostID       string
	City         string
	Country      string
	PropertyType PropertyType
	MinPrice     *money.Amount
	MaxPrice     *money.Amount
	Guests       int
	Page         int
	PageSize     int
}

// AuthorizeMutation allows only the listing's host to change it.
func AuthorizeMutation(actorID string, l *Listing) error {
	if actorID == "" || actorID != l.HostID {
		return ErrPermissionDenied
	}
	return nil
}

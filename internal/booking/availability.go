package booking

import (
	"math"
	"time"

	"github.com/nekogravitycat/rental-booking/internal/pkg/clock"
)

// DateRange is a half-open span of calendar dates [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to UTC midnight and checks their order.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: clock.Date(start), End: clock.Date(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, ErrInvalidDateRange
	}
	return r, nil
}

// Nights is the number of nights in the stay, rounding partial days up.
func (r DateRange) Nights() int64 {
	return int64(math.Ceil(r.End.Sub(r.Start).Hours() / 24))
}

// Overlaps reports whether two stays share at least one night.
// Checking out on the day another guest checks in is not an overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// ValidateStay applies the request-level rules that do not need the ledger:
// the stay must not start before today and the party must fit the listing.
func ValidateStay(now time.Time, l ListingSnapshot, stay DateRange, guests int) error {
	if stay.Start.Before(clock.Date(now)) {
		return ErrStartDatePast
	}
	if guests < 1 {
		return ErrInvalidGuests
	}
	if guests > l.MaxGuests {
		return ErrTooManyGuests
	}
	return nil
}

// LeadTime is how long remains between now and check-in.
func LeadTime(now time.Time, b *Booking) time.Duration {
	return b.StartDate.Sub(now)
}

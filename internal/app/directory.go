package app

import (
	"context"
	"errors"

	"github.com/nekogravitycat/rental-booking/internal/booking"
	"github.com/nekogravitycat/rental-booking/internal/listing"
)

// listingDirectory serves booking's view of listings from the listing module.
// It reads past the listing cache so a new booking always captures the
// current nightly price.
type listingDirectory struct {
	listings listing.Service
}

func (d *listingDirectory) Snapshot(ctx context.Context, listingID string) (booking.ListingSnapshot, error) {
	l, err := d.listings.Lookup(ctx, listingID)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return booking.ListingSnapshot{}, booking.ErrListingNotFound
		}
		return booking.ListingSnapshot{}, err
	}
	return booking.ListingSnapshot{
		ID:            l.ID,
		HostID:        l.HostID,
		PricePerNight: l.PricePerNight,
		MaxGuests:     l.MaxGuests,
	}, nil
}

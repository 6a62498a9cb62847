package listing

import (
	"context"
	"log/slog"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/nekogravitycat/rental-booking/internal/pkg/money"
)

type CreateRequest struct {
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
}

// UpdateRequest carries optional changes; nil fields are left untouched.
type UpdateRequest struct {
	Title         *string
	Description   *string
	PricePerNight *money.Amount
	MaxGuests     *int
	Bedrooms      *int
	Bathrooms     *int
	PropertyType  *PropertyType
	Location      *Location
	Amenities     []string
}

// ReservationChecker reports whether a listing still has bookings that have
// not yet started and are not cancelled or rejected.
type ReservationChecker interface {
	HasUpcomingReservations(ctx context.Context, listingID string) (bool, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Listing, error)
	// GetByID may serve a briefly stale copy from the read cache.
	GetByID(ctx context.Context, id string) (*Listing, error)
	// Lookup always reads the store. Booking uses it to snapshot prices.
	Lookup(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context, filter Filter) ([]*Listing, int, error)
	Update(ctx context.Context, id, actorID string, req UpdateRequest) (*Listing, error)
	Delete(ctx context.Context, id, actorID string) error
}

type service struct {
	repo     Repository
	cache    *ccache.Cache[*Listing]
	cacheTTL time.Duration
	bookings ReservationChecker
	log      *slog.Logger
}

type Option func(*service)

// WithCache enables the read-through cache for GetByID. A zero ttl disables it.
func WithCache(ttl time.Duration, maxSize int64) Option {
	return func(s *service) {
		if ttl <= 0 {
			return
		}
		s.cacheTTL = ttl
		s.cache = ccache.New(ccache.Configure[*Listing]().MaxSize(maxSize))
	}
}

// WithReservationChecker blocks deletion of listings that still have upcoming bookings.
func WithReservationChecker(rc ReservationChecker) Option {
	return func(s *service) { s.bookings = rc }
}

func NewService(repo Repository, log *slog.Logger, opts ...Option) Service {
	s := &service{repo: repo, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Listing, error) {
	if !ValidPrice(req.PricePerNight) {
		return nil, ErrInvalidPrice
	}

	l := &Listing{
		HostID:        req.HostID,
		Title:         req.Title,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		PropertyType:  req.PropertyType,
		Location:      req.Location,
		Amenities:     req.Amenities,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "listing created",
		slog.String("listing_id", l.ID),
		slog.String("host_id", l.HostID),
	)
	return l, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Listing, error) {
	if s.cache == nil {
		return s.repo.GetByID(ctx, id)
	}

	item, err := s.cache.Fetch(id, s.cacheTTL, func() (*Listing, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return item.Value(), nil
}

func (s *service) Lookup(ctx context.Context, id string) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Listing, int, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, 0, ErrInvalidPriceFilter
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id, actorID string, req UpdateRequest) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMutation(actorID, l); err != nil {
		return nil, err
	}

	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.PricePerNight != nil {
		if !ValidPrice(*req.PricePerNight) {
			return nil, ErrInvalidPrice
		}
		l.PricePerNight = *req.PricePerNight
	}
	if req.MaxGuests != nil {
		l.MaxGuests = *req.MaxGuests
	}
	if req.Bedrooms != nil {
		l.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		l.Bathrooms = *req.Bathrooms
	}
	if req.PropertyType != nil {
		l.PropertyType = *req.PropertyType
	}
	if req.Location != nil {
		l.Location = *req.Location
	}
	if req.Amenities != nil {
		l.Amenities = req.Amenities
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.invalidate(id)

	s.log.InfoContext(ctx, "listing updated", slog.String("listing_id", id))
	return l, nil
}

func (s *service) Delete(ctx context.Context, id, actorID string) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := AuthorizeMutation(actorID, l); err != nil {
		return err
	}

	if s.bookings != nil {
		busy, err := s.bookings.HasUpcomingReservations(ctx, id)
		if err != nil {
			return err
		}
		if busy {
			return ErrHasActiveBookings
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)

	s.log.InfoContext(ctx, "listing deleted", slog.String("listing_id", id))
	return nil
}

func (s *service) invalidate(id string) {
	if s.cache != nil {
		s.cache.Delete(id)
	}
}

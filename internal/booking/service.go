package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nekogravitycat/rental-booking/internal/event"
	"github.com/nekogravitycat/rental-booking/internal/pkg/clock"
	"github.com/nekogravitycat/rental-booking/internal/pkg/request"
	"github.com/nekogravitycat/rental-booking/internal/pkg/retry"
)

// DefaultCancellationWindow is the minimum lead time before check-in at which
// a booking may still be cancelled.
const DefaultCancellationWindow = 48 * time.Hour

// ListingDirectory resolves the listing data a booking depends on.
// It returns ErrListingNotFound for unknown listings.
type ListingDirectory interface {
	Snapshot(ctx context.Context, listingID string) (ListingSnapshot, error)
}

type AvailabilityRequest struct {
	ListingID      string
	StartDate      time.Time
	EndDate        time.Time
	NumberOfGuests int
}

type CreateRequest struct {
	GuestID        string
	ListingID      string
	StartDate      time.Time
	EndDate        time.Time
	NumberOfGuests int
	IdempotencyKey string
}

type Service interface {
	CheckAvailability(ctx context.Context, req AvailabilityRequest) error
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	ListForGuest(ctx context.Context, guestID string, page, pageSize int) ([]*Booking, int, error)
	ListForHost(ctx context.Context, hostID string, page, pageSize int) ([]*Booking, int, error)
	Get(ctx context.Context, id, requestorID string) (*Booking, error)
	UpdateStatus(ctx context.Context, id, requestorID string, next Status) (*Booking, error)
	Cancel(ctx context.Context, id, requestorID string) (*Booking, error)
	HasUpcomingReservations(ctx context.Context, listingID string) (bool, error)
}

type Options struct {
	CancellationWindow time.Duration
	ReadRetry          retry.Policy
}

type service struct {
	repo      Repository
	listings  ListingDirectory
	publisher event.Publisher
	clock     clock.Clock
	log       *slog.Logger
	window    time.Duration
	readRetry retry.Policy
}

func NewService(
	repo Repository,
	listings ListingDirectory,
	publisher event.Publisher,
	clk clock.Clock,
	log *slog.Logger,
	opts Options,
) Service {
	if opts.CancellationWindow <= 0 {
		opts.CancellationWindow = DefaultCancellationWindow
	}
	if opts.ReadRetry.Attempts == 0 {
		opts.ReadRetry = retry.DefaultPolicy
	}
	return &service{
		repo:      repo,
		listings:  listings,
		publisher: publisher,
		clock:     clk,
		log:       log,
		window:    opts.CancellationWindow,
		readRetry: opts.ReadRetry,
	}
}

func (s *service) snapshot(ctx context.Context, listingID string) (ListingSnapshot, error) {
	return retry.Value(ctx, s.readRetry, func(ctx context.Context) (ListingSnapshot, error) {
		return s.listings.Snapshot(ctx, listingID)
	})
}

func (s *service) load(ctx context.Context, id string) (*Booking, error) {
	return retry.Value(ctx, s.readRetry, func(ctx context.Context) (*Booking, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// prepare runs every availability rule except the ledger lookup.
func (s *service) prepare(ctx context.Context, listingID string, start, end time.Time, guests int) (ListingSnapshot, DateRange, error) {
	stay, err := NewDateRange(start, end)
	if err != nil {
		return ListingSnapshot{}, DateRange{}, err
	}

	l, err := s.snapshot(ctx, listingID)
	if err != nil {
		return ListingSnapshot{}, DateRange{}, err
	}
	if err := ValidateStay(s.clock.Now(), l, stay, guests); err != nil {
		return ListingSnapshot{}, DateRange{}, err
	}
	return l, stay, nil
}

func (s *service) CheckAvailability(ctx context.Context, req AvailabilityRequest) error {
	_, stay, err := s.prepare(ctx, req.ListingID, req.StartDate, req.EndDate, req.NumberOfGuests)
	if err != nil {
		return err
	}

	overlap, err := retry.Value(ctx, s.readRetry, func(ctx context.Context) (bool, error) {
		return s.repo.HasOverlap(ctx, req.ListingID, stay)
	})
	if err != nil {
		return err
	}
	if overlap {
		return ErrConflict
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if req.IdempotencyKey != "" {
		existing, err := s.byIdempotencyKey(ctx, req.GuestID, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	l, stay, err := s.prepare(ctx, req.ListingID, req.StartDate, req.EndDate, req.NumberOfGuests)
	if err != nil {
		return nil, err
	}

	total, err := ComputeTotal(l.PricePerNight, stay)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ListingID:      req.ListingID,
		GuestID:        req.GuestID,
		HostID:         l.HostID,
		StartDate:      stay.Start,
		EndDate:        stay.End,
		NumberOfGuests: req.NumberOfGuests,
		TotalPrice:     total,
		Status:         StatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.repo.CreateIfAvailable(ctx, b); err != nil {
		if errors.Is(err, errDuplicateIdempotencyKey) {
			// A concurrent request with the same key won; hand back its booking.
			return s.byIdempotencyKey(ctx, req.GuestID, req.IdempotencyKey)
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "booking created",
		slog.String("booking_id", b.ID),
		slog.String("listing_id", b.ListingID),
		slog.String("guest_id", b.GuestID),
		slog.Int64("nights", stay.Nights()),
	)
	s.publish(ctx, event.BookingCreated, b, req.GuestID)
	return b, nil
}

func (s *service) byIdempotencyKey(ctx context.Context, guestID, key string) (*Booking, error) {
	return retry.Value(ctx, s.readRetry, func(ctx context.Context) (*Booking, error) {
		return s.repo.GetByIdempotencyKey(ctx, guestID, key)
	})
}

func (s *service) ListForGuest(ctx context.Context, guestID string, page, pageSize int) ([]*Booking, int, error) {
	return s.list(ctx, Filter{Party: PartyGuest, UserID: guestID, Page: page, PageSize: pageSize})
}

func (s *service) ListForHost(ctx context.Context, hostID string, page, pageSize int) ([]*Booking, int, error) {
	return s.list(ctx, Filter{Party: PartyHost, UserID: hostID, Page: page, PageSize: pageSize})
}

func (s *service) list(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	params := request.ListParams{Page: filter.Page, PageSize: filter.PageSize}
	params.Normalize()
	filter.Page, filter.PageSize = params.Page, params.PageSize

	type page struct {
		items []*Booking
		total int
	}
	p, err := retry.Value(ctx, s.readRetry, func(ctx context.Context) (page, error) {
		items, total, err := s.repo.List(ctx, filter)
		return page{items: items, total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return p.items, p.total, nil
}

func (s *service) Get(ctx context.Context, id, requestorID string) (*Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	parties := Parties{GuestID: b.GuestID, HostID: b.HostID}
	if err := parties.Authorize(requestorID, ActionView); err != nil {
		return nil, err
	}
	return b, nil
}

// currentHost prefers the listing's present owner and falls back to the host
// recorded on the booking when the listing no longer exists.
func (s *service) currentHost(ctx context.Context, b *Booking) (string, error) {
	l, err := s.snapshot(ctx, b.ListingID)
	switch {
	case err == nil:
		return l.HostID, nil
	case errors.Is(err, ErrListingNotFound):
		return b.HostID, nil
	default:
		return "", err
	}
}

func (s *service) UpdateStatus(ctx context.Context, id, requestorID string, next Status) (*Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	hostID, err := s.currentHost(ctx, b)
	if err != nil {
		return nil, err
	}
	parties := Parties{GuestID: b.GuestID, HostID: hostID}
	if err := parties.Authorize(requestorID, ActionUpdateStatus); err != nil {
		return nil, err
	}

	if !next.Valid() {
		return nil, ErrInvalidStatus
	}
	if next != StatusConfirmed && next != StatusRejected {
		return nil, ErrInvalidTransition
	}
	if !b.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.TransitionStatus(ctx, id, b.Status, next)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking status updated",
		slog.String("booking_id", id),
		slog.String("from", string(b.Status)),
		slog.String("to", string(next)),
	)
	eventType := event.BookingConfirmed
	if next == StatusRejected {
		eventType = event.BookingRejected
	}
	s.publish(ctx, eventType, updated, requestorID)
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, id, requestorID string) (*Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	hostID, err := s.currentHost(ctx, b)
	if err != nil {
		return nil, err
	}
	parties := Parties{GuestID: b.GuestID, HostID: hostID}
	if err := parties.Authorize(requestorID, ActionCancel); err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(StatusCancelled) {
		return nil, ErrInvalidTransition
	}
	if LeadTime(s.clock.Now(), b) < s.window {
		return nil, ErrTooLate
	}

	updated, err := s.repo.TransitionStatus(ctx, id, b.Status, StatusCancelled)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "booking cancelled",
		slog.String("booking_id", id),
		slog.String("cancelled_by", requestorID),
	)
	s.publish(ctx, event.BookingCancelled, updated, requestorID)
	return updated, nil
}

func (s *service) HasUpcomingReservations(ctx context.Context, listingID string) (bool, error) {
	today := clock.Date(s.clock.Now())
	return retry.Value(ctx, s.readRetry, func(ctx context.Context) (bool, error) {
		return s.repo.HasUpcoming(ctx, listingID, today)
	})
}

// publish emits a lifecycle event. Delivery failures are logged and never
// undo the committed change.
func (s *service) publish(ctx context.Context, t event.Type, b *Booking, actorID string) {
	e := event.BookingEvent{
		Type:       t,
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		GuestID:    b.GuestID,
		HostID:     b.HostID,
		ActorID:    actorID,
		Status:     string(b.Status),
		StartDate:  b.StartDate.Format(request.DateLayout),
		EndDate:    b.EndDate.Format(request.DateLayout),
		TotalPrice: b.TotalPrice,
		OccurredAt: s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "publish booking event failed",
			slog.String("type", string(t)),
			slog.String("booking_id", b.ID),
			slog.Any("err", err),
		)
	}
}

package event

import (
	"context"
	"log/slog"
)

// LogPublisher records events in the application log. It is used when no
// broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, e BookingEvent) error {
	p.log.InfoContext(ctx, "booking event",
		slog.String("type", string(e.Type)),
		slog.String("booking_id", e.BookingID),
		slog.String("listing_id", e.ListingID),
		slog.String("status", e.Status),
	)
	return nil
}

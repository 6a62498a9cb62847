package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	// CreateIfAvailable inserts b unless a pending or confirmed booking of the
	// same listing overlaps its stay. The check and the insert commit as one
	// unit; a lost race surfaces as ErrConflict.
	CreateIfAvailable(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByIdempotencyKey(ctx context.Context, guestID, key string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// HasOverlap checks if any pending or confirmed booking of the listing overlaps stay.
	HasOverlap(ctx context.Context, listingID string, stay DateRange) (bool, error)
	// HasUpcoming checks if the listing has a pending or confirmed booking ending after from.
	HasUpcoming(ctx context.Context, listingID string, from time.Time) (bool, error)

	// TransitionStatus moves a booking from one status to another only if it
	// is still in the expected status. It returns ErrNotFound or
	// ErrInvalidTransition when nothing was updated.
	TransitionStatus(ctx context.Context, id string, from, to Status) (*Booking, error)
}

const (
	idempotencyIndex = "bookings_guest_idempotency_key_idx"
	maxTxAttempts    = 5
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"id", "listing_id", "guest_id", "host_id", "start_date", "end_date",
	"number_of_guests", "total_price", "status", "coalesce(idempotency_key, '')",
	"created_at", "updated_at",
}

func scanTargets(b *Booking) []any {
	return []any{
		&b.ID, &b.ListingID, &b.GuestID, &b.HostID, &b.StartDate, &b.EndDate,
		&b.NumberOfGuests, &b.TotalPrice, &b.Status, &b.IdempotencyKey,
		&b.CreatedAt, &b.UpdatedAt,
	}
}

func (r *pgxRepository) CreateIfAvailable(ctx context.Context, b *Booking) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			return insertIfFree(ctx, tx, b)
		})
		if !isSerializationFailure(err) {
			break
		}
	}
	return classifyCreateError(err)
}

func insertIfFree(ctx context.Context, tx pgx.Tx, b *Booking) error {
	overlap, err := hasOverlap(ctx, tx, b.ListingID, b.Stay())
	if err != nil {
		return err
	}
	if overlap {
		return ErrConflict
	}

	var key any
	if b.IdempotencyKey != "" {
		key = b.IdempotencyKey
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"listing_id", "guest_id", "host_id", "start_date", "end_date",
			"number_of_guests", "total_price", "status", "idempotency_key",
		).
		Values(
			b.ListingID, b.GuestID, b.HostID, b.StartDate, b.EndDate,
			b.NumberOfGuests, int64(b.TotalPrice), string(b.Status), key,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	return tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

// classifyCreateError maps constraint violations to domain errors. A
// serialization failure that survives every attempt means concurrent bookings
// kept claiming the same nights, which callers see as a conflict.
func classifyCreateError(err error) error {
	if err == nil || errors.Is(err, ErrConflict) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return ErrConflict
		case pgerrcode.UniqueViolation:
			if pgErr.ConstraintName == idempotencyIndex {
				return errDuplicateIdempotencyKey
			}
		}
	}
	return fmt.Errorf("create booking failed: %w", err)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetByIdempotencyKey(ctx context.Context, guestID, key string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"guest_id": guestID, "idempotency_key": key})
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	var b Booking
	if err := r.pool.QueryRow(ctx, query, args...).Scan(scanTargets(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	var where squirrel.And
	switch filter.Party {
	case PartyGuest:
		where = append(where, squirrel.Eq{"guest_id": filter.UserID})
	case PartyHost:
		where = append(where, squirrel.Eq{"host_id": filter.UserID})
	default:
		return nil, 0, fmt.Errorf("list bookings: unknown party %q", filter.Party)
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": string(filter.Status)})
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := psql.Select(append(bookingColumns, "count(*) OVER() AS total_count")...).
		From("public.bookings").
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		var b Booking
		if err := rows.Scan(append(scanTargets(&b), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	// the window count is lost when the page is past the last row
	if len(bookings) == 0 && offset > 0 {
		total, err = count(ctx, r.pool, psql.Select("count(*)").From("public.bookings").Where(where), "count bookings")
		if err != nil {
			return nil, 0, err
		}
	}

	return bookings, total, nil
}

func (r *pgxRepository) HasOverlap(ctx context.Context, listingID string, stay DateRange) (bool, error) {
	return hasOverlap(ctx, r.pool, listingID, stay)
}

// hasOverlap uses the half-open rule: existing.start < new.end AND existing.end > new.start.
func hasOverlap(ctx context.Context, q querier, listingID string, stay DateRange) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"listing_id": listingID}).
		Where(squirrel.Eq{"status": blockingStatuses}).
		Where(squirrel.Lt{"start_date": stay.End}).
		Where(squirrel.Gt{"end_date": stay.Start})

	return exists(ctx, q, subQuery, "check overlap")
}

func (r *pgxRepository) HasUpcoming(ctx context.Context, listingID string, from time.Time) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"listing_id": listingID}).
		Where(squirrel.Eq{"status": blockingStatuses}).
		Where(squirrel.Gt{"end_date": from})

	return exists(ctx, r.pool, subQuery, "check upcoming bookings")
}

func exists(ctx context.Context, q querier, subQuery squirrel.SelectBuilder, op string) (bool, error) {
	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build %s query failed: %w", op, err)
	}

	var found bool
	if err := q.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&found); err != nil {
		return false, fmt.Errorf("%s failed: %w", op, err)
	}
	return found, nil
}

func count(ctx context.Context, q querier, query squirrel.SelectBuilder, op string) (int, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s query failed: %w", op, err)
	}

	var n int
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s failed: %w", op, err)
	}
	return n, nil
}

func (r *pgxRepository) TransitionStatus(ctx context.Context, id string, from, to Status) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update booking status query failed: %w", err)
	}

	var b Booking
	err = r.pool.QueryRow(ctx, query, args...).Scan(scanTargets(&b)...)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking status failed: %w", err)
	}

	// Nothing matched: either the booking is gone or its status moved on.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrInvalidTransition
}

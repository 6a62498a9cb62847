package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context, filter Filter) ([]*Listing, int, error)
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var listingColumns = []string{
	"id", "host_id", "title", "description", "price_per_night", "max_guests",
	"bedrooms", "bathrooms", "property_type",
	"address", "city", "state", "country", "latitude", "longitude",
	"amenities", "created_at", "updated_at",
}

func scanTargets(l *Listing) []any {
	return []any{
		&l.ID, &l.HostID, &l.Title, &l.Description, &l.PricePerNight, &l.MaxGuests,
		&l.Bedrooms, &l.Bathrooms, &l.PropertyType,
		&l.Location.Address, &l.Location.City, &l.Location.State, &l.Location.Country,
		&l.Location.Latitude, &l.Location.Longitude,
		&l.Amenities, &l.CreatedAt, &l.UpdatedAt,
	}
}

func (r *pgxRepository) Create(ctx context.Context, l *Listing) error {
	if l.Amenities == nil {
		l.Amenities = []string{}
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.listings").
		Columns(
			"host_id", "title", "description", "price_per_night", "max_guests",
			"bedrooms", "bathrooms", "property_type",
			"address", "city", "state", "country", "latitude", "longitude", "amenities",
		).
		Values(
			l.HostID, l.Title, l.Description, int64(l.PricePerNight), l.MaxGuests,
			l.Bedrooms, l.Bathrooms, string(l.PropertyType),
			l.Location.Address, l.Location.City, l.Location.State, l.Location.Country,
			l.Location.Latitude, l.Location.Longitude, l.Amenities,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create listing query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return fmt.Errorf("create listing failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Listing, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(listingColumns...).
		From("public.listings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get listing query failed: %w", err)
	}

	var l Listing
	if err := r.pool.QueryRow(ctx, query, args...).Scan(scanTargets(&l)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get listing failed: %w", err)
	}
	return &l, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Listing, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	var where squirrel.And

	if filter.HostID != "" {
		where = append(where, squirrel.Eq{"host_id": filter.HostID})
	}
	if filter.City != "" {
		where = append(where, squirrel.ILike{"city": filter.City})
	}
	if filter.Country != "" {
		where = append(where, squirrel.ILike{"country": filter.Country})
	}
	if filter.PropertyType != "" {
		where = append(where, squirrel.Eq{"property_type": string(filter.PropertyType)})
	}
	if filter.MinPrice != nil {
		where = append(where, squirrel.GtOrEq{"price_per_night": int64(*filter.MinPrice)})
	}
	if filter.MaxPrice != nil {
		where = append(where, squirrel.LtOrEq{"price_per_night": int64(*filter.MaxPrice)})
	}
	if filter.Guests > 0 {
		where = append(where, squirrel.GtOrEq{"max_guests": filter.Guests})
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := psql.Select(append(listingColumns, "count(*) OVER() AS total_count")...).
		From("public.listings").
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list listings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings failed: %w", err)
	}
	defer rows.Close()

	var listings []*Listing
	var total int
	for rows.Next() {
		var l Listing
		if err := rows.Scan(append(scanTargets(&l), &total)...); err != nil {
			return nil, 0, fmt.Errorf("scan listing failed: %w", err)
		}
		listings = append(listings, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list listings failed: %w", err)
	}

	// the window count is lost when the page is past the last row
	if len(listings) == 0 && offset > 0 {
		countSQL, countArgs, err := psql.Select("count(*)").From("public.listings").Where(where).ToSql()
		if err != nil {
			return nil, 0, fmt.Errorf("build count listings query failed: %w", err)
		}
		if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count listings failed: %w", err)
		}
	}

	return listings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, l *Listing) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.listings").
		Set("title", l.Title).
		Set("description", l.Description).
		Set("price_per_night", int64(l.PricePerNight)).
		Set("max_guests", l.MaxGuests).
		Set("bedrooms", l.Bedrooms).
		Set("bathrooms", l.Bathrooms).
		Set("property_type", string(l.PropertyType)).
		Set("address", l.Location.Address).
		Set("city", l.Location.City).
		Set("state", l.Location.State).
		Set("country", l.Location.Country).
		Set("latitude", l.Location.Latitude).
		Set("longitude", l.Location.Longitude).
		Set("amenities", l.Amenities).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": l.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update listing query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update listing failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.listings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete listing query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete listing failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

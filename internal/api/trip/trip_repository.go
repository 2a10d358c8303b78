package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripdeck/tripdeck/internal/types"
)

// DBPool is the subset of pgxpool.Pool the repository uses; pgxmock satisfies
// it in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresTripRepo)(nil)

// Repository defines the data access contract for trips and their places.
type Repository interface {
	CreateTrip(ctx context.Context, userID uuid.UUID, name string) (*types.Trip, error)
	GetTrip(ctx context.Context, tripID uuid.UUID) (*types.Trip, error)
	ListTripsByUser(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	UpdateTrip(ctx context.Context, tripID uuid.UUID, name string) (*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error

	AddPlace(ctx context.Context, tripID uuid.UUID, req types.CreatePlaceRequest) (*types.TripPlace, error)
	ListPlacesByTrip(ctx context.Context, tripID uuid.UUID) ([]types.TripPlace, error)
	UpdatePlace(ctx context.Context, tripID, placeID uuid.UUID, params types.UpdatePlaceParams) (*types.TripPlace, error)
	DeletePlace(ctx context.Context, tripID, placeID uuid.UUID) error
}

type PostgresTripRepo struct {
	logger *slog.Logger
	pgpool DBPool
}

func NewPostgresTripRepo(pgpool DBPool, logger *slog.Logger) *PostgresTripRepo {
	return &PostgresTripRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const tripColumns = "id, user_id, name, created_at, updated_at"

func scanTrip(row pgx.Row, t *types.Trip) error {
	return row.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
}

func (r *PostgresTripRepo) CreateTrip(ctx context.Context, userID uuid.UUID, name string) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "CreateTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
	))
	defer span.End()

	query := `
        INSERT INTO trips (user_id, name)
        VALUES ($1, $2)
        RETURNING ` + tripColumns

	var t types.Trip
	if err := scanTrip(r.pgpool.QueryRow(ctx, query, userID, name), &t); err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert trip", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("database error creating trip: %w", err)
	}

	span.SetStatus(codes.Ok, "Trip created")
	return &t, nil
}

func (r *PostgresTripRepo) GetTrip(ctx context.Context, tripID uuid.UUID) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "GetTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
	))
	defer span.End()

	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	var t types.Trip
	err := scanTrip(r.pgpool.QueryRow(ctx, query, tripID), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to fetch trip", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching trip: %w", err)
	}
	return &t, nil
}

func (r *PostgresTripRepo) ListTripsByUser(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "ListTripsByUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
	))
	defer span.End()

	query := `SELECT ` + tripColumns + ` FROM trips WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error listing trips: %w", err)
	}
	defer rows.Close()

	var trips []types.Trip
	for rows.Next() {
		var t types.Trip
		if err := scanTrip(rows, &t); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading trips: %w", err)
	}
	return trips, nil
}

func (r *PostgresTripRepo) UpdateTrip(ctx context.Context, tripID uuid.UUID, name string) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "UpdateTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
	))
	defer span.End()

	query := `
        UPDATE trips SET name = $2, updated_at = now()
        WHERE id = $1
        RETURNING ` + tripColumns

	var t types.Trip
	err := scanTrip(r.pgpool.QueryRow(ctx, query, tripID, name), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error updating trip: %w", err)
	}
	return &t, nil
}

func (r *PostgresTripRepo) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "DeleteTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, tripID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error deleting trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

const placeColumns = "id, trip_id, kind, name, coordinates, address, day, price, status, comments, external_url, created_at, updated_at"

func scanPlace(row pgx.Row, p *types.TripPlace) error {
	return row.Scan(
		&p.ID, &p.TripID, &p.Kind, &p.Name, &p.Coordinates, &p.Address,
		&p.Day, &p.Price, &p.Status, &p.Comments, &p.ExternalURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *PostgresTripRepo) AddPlace(ctx context.Context, tripID uuid.UUID, req types.CreatePlaceRequest) (*types.TripPlace, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "AddPlace", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trip_places"),
	))
	defer span.End()

	if req.Day <= 0 {
		req.Day = 1
	}

	query := `
        INSERT INTO trip_places (trip_id, kind, name, coordinates, address, day, price, status, comments, external_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + placeColumns

	var p types.TripPlace
	err := scanPlace(r.pgpool.QueryRow(ctx, query,
		tripID, req.Kind, req.Name, req.Coordinates, req.Address,
		req.Day, req.Price, req.Status, req.Comments, req.ExternalURL,
	), &p)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert trip place", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("database error creating trip place: %w", err)
	}
	return &p, nil
}

func (r *PostgresTripRepo) ListPlacesByTrip(ctx context.Context, tripID uuid.UUID) ([]types.TripPlace, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "ListPlacesByTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trip_places"),
	))
	defer span.End()

	query := `SELECT ` + placeColumns + ` FROM trip_places WHERE trip_id = $1 ORDER BY day, created_at`

	rows, err := r.pgpool.Query(ctx, query, tripID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error listing trip places: %w", err)
	}
	defer rows.Close()

	var places []types.TripPlace
	for rows.Next() {
		var p types.TripPlace
		if err := scanPlace(rows, &p); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning trip place: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading trip places: %w", err)
	}
	return places, nil
}

// UpdatePlace builds the SET clause from the fields that are present so a
// partial update never clobbers the others. The statement is scoped to the
// trip as well as the place so a place ID from another trip never matches.
func (r *PostgresTripRepo) UpdatePlace(ctx context.Context, tripID, placeID uuid.UUID, params types.UpdatePlaceParams) (*types.TripPlace, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "UpdatePlace", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trip_places"),
	))
	defer span.End()

	sets := []string{"updated_at = now()"}
	args := []any{placeID, tripID}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Coordinates != nil {
		add("coordinates", *params.Coordinates)
	}
	if params.Address != nil {
		add("address", *params.Address)
	}
	if params.Day != nil {
		add("day", *params.Day)
	}
	if params.Price != nil {
		add("price", *params.Price)
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Comments != nil {
		add("comments", *params.Comments)
	}
	if params.ExternalURL != nil {
		add("external_url", *params.ExternalURL)
	}

	query := `UPDATE trip_places SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND trip_id = $2 RETURNING ` + placeColumns

	var p types.TripPlace
	err := scanPlace(r.pgpool.QueryRow(ctx, query, args...), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error updating trip place: %w", err)
	}
	return &p, nil
}

func (r *PostgresTripRepo) DeletePlace(ctx context.Context, tripID, placeID uuid.UUID) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "DeletePlace", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trip_places"),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM trip_places WHERE id = $1 AND trip_id = $2`, placeID, tripID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error deleting trip place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

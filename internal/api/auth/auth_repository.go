package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripdeck/tripdeck/internal/api/trip"
	"github.com/tripdeck/tripdeck/internal/types"
)

var _ Repository = (*PostgresAuthRepo)(nil)

// Repository defines the data access contract for users.
type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool trip.DBPool
}

func NewPostgresAuthRepo(pgpool trip.DBPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, email, passwordHash string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `
        INSERT INTO users (email, password_hash)
        VALUES ($1, $2)
        RETURNING id, email, password_hash, created_at, updated_at`

	var u types.User
	err := r.pgpool.QueryRow(ctx, query, email, passwordHash).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("database error creating user: %w", err)
	}
	return &u, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`

	var u types.User
	err := r.pgpool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &u, nil
}

package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/tripdeck/tripdeck/app/db"
	"github.com/tripdeck/tripdeck/config"
	"github.com/tripdeck/tripdeck/internal/api/auth"
	generativeAI "github.com/tripdeck/tripdeck/internal/api/generative_ai"
	"github.com/tripdeck/tripdeck/internal/api/suggestion"
	"github.com/tripdeck/tripdeck/internal/api/trip"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *slog.Logger
	Pool              *pgxpool.Pool
	AuthHandler       *auth.HandlerImpl
	TripHandler       *trip.HandlerImpl
	SuggestionHandler *suggestion.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	// Repositories
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	tripRepo := trip.NewPostgresTripRepo(pool, logger)

	// Services
	authService := auth.NewServiceImpl(authRepo, logger)
	tripService := trip.NewServiceImpl(tripRepo, logger)

	overpassClient := suggestion.NewOverpassClient(
		cfg.Overpass.URL,
		cfg.Overpass.UserAgent,
		cfg.Overpass.Timeout,
		logger,
	)

	aiClient, err := generativeAI.NewAIClient(ctx, cfg.Gemini.Model)
	if err != nil {
		logger.Error("Failed to initialize AI client", slog.Any("error", err))
		pool.Close()
		return nil, err
	}
	ranker := suggestion.NewGeminiRanker(aiClient, logger)

	suggestionService := suggestion.NewServiceImpl(tripRepo, overpassClient, ranker, cfg.Overpass.CacheTTL, logger)

	// Handlers
	authHandler := auth.NewHandlerImpl(authService, logger)
	tripHandler := trip.NewHandlerImpl(tripService, logger)
	suggestionHandler := suggestion.NewHandlerImpl(suggestionService, logger)

	return &Container{
		Config:            cfg,
		Logger:            logger,
		Pool:              pool,
		AuthHandler:       authHandler,
		TripHandler:       tripHandler,
		SuggestionHandler: suggestionHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}

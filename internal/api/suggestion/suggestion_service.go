package suggestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tripdeck/tripdeck/app/observability/metrics"
	"github.com/tripdeck/tripdeck/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for the suggestion pipeline.
type Service interface {
	GetSuggestions(ctx context.Context, userID, tripID uuid.UUID, req types.SuggestionRequest) ([]types.RankedPlace, error)
	GetTravelTips(ctx context.Context, userID, tripID uuid.UUID) (*types.TravelTips, error)
	SuggestDestinations(ctx context.Context, req types.DestinationRequest) ([]types.DestinationIdea, error)
}

// TripReader is the narrow slice of the trip repository the pipeline needs.
type TripReader interface {
	GetTrip(ctx context.Context, tripID uuid.UUID) (*types.Trip, error)
	ListPlacesByTrip(ctx context.Context, tripID uuid.UUID) ([]types.TripPlace, error)
}

// ServiceImpl runs the suggestion pipeline: build query, fetch candidates,
// dedup against the trip's saved places, rank. Each run is request-scoped and
// holds no shared mutable state beyond the read-only configuration and the
// Overpass response cache.
type ServiceImpl struct {
	logger     *slog.Logger
	trips      TripReader
	fetcher    Fetcher
	ranker     Ranker
	queryCache *cache.Cache
	metrics    *metrics.AppMetrics
}

func NewServiceImpl(trips TripReader, fetcher Fetcher, ranker Ranker, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	// Idempotent; without a configured MeterProvider the instruments are no-ops.
	metrics.InitAppMetrics()
	return &ServiceImpl{
		logger:     logger,
		trips:      trips,
		fetcher:    fetcher,
		ranker:     ranker,
		queryCache: cache.New(cacheTTL, 2*cacheTTL),
		metrics:    metrics.Get(),
	}
}

// requireOwnedTrip loads the trip and checks the caller owns it. Non-owners
// see not-found, matching the trip endpoints.
func (s *ServiceImpl) requireOwnedTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.UserID != userID {
		return types.ErrNotFound
	}
	return nil
}

// GetSuggestions executes the end-to-end pipeline for one request. A failure
// at any stage aborts the whole run with the most specific error available;
// no partial results are returned and no stage is retried.
func (s *ServiceImpl) GetSuggestions(ctx context.Context, userID, tripID uuid.UUID, req types.SuggestionRequest) ([]types.RankedPlace, error) {
	ctx, span := otel.Tracer("SuggestionService").Start(ctx, "GetSuggestions", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
		attribute.String("category", req.Category),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.SuggestionRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("category", req.Category)))
		s.metrics.SuggestionDurationSecs.Record(ctx, time.Since(start).Seconds())
	}()

	l := s.logger.With(slog.String("method", "GetSuggestions"), slog.String("tripID", tripID.String()))

	if err := s.requireOwnedTrip(ctx, userID, tripID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidFilter, err)
	}

	category, err := types.ParseCategory(req.Category)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	query, err := BuildQuery(category, req.Filters, req.Lat, req.Lon, req.Radius)
	if err != nil {
		l.WarnContext(ctx, "Failed to build Overpass query", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	// The Overpass fetch and the saved-places load are independent.
	var (
		result  *types.OverpassResponse
		saved   []types.TripPlace
		g, gctx = errgroup.WithContext(ctx)
	)
	g.Go(func() error {
		var fetchErr error
		result, fetchErr = s.fetchWithCache(gctx, query)
		return fetchErr
	})
	g.Go(func() error {
		var loadErr error
		saved, loadErr = s.trips.ListPlacesByTrip(gctx, tripID)
		if loadErr != nil {
			return fmt.Errorf("failed to load trip places: %w", loadErr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Pipeline stage failed")
		return nil, err
	}

	index, _ := BuildMarkerIndex(saved, s.logger)
	candidates := NormalizeAndFilter(result.Elements, index)
	span.SetAttributes(
		attribute.Int("elements.raw", len(result.Elements)),
		attribute.Int("elements.candidates", len(candidates)),
	)

	if len(candidates) == 0 {
		l.InfoContext(ctx, "No candidates left after normalization and dedup")
		return nil, types.ErrNoCandidates
	}

	ranked, err := s.ranker.RankCandidates(ctx, req, candidates)
	if err != nil {
		s.metrics.RankingErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Ranking failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Ranking failed")
		return nil, err
	}

	l.InfoContext(ctx, "Suggestions ready", slog.Int("count", len(ranked)))
	span.SetStatus(codes.Ok, "Suggestions ready")
	return ranked, nil
}

// GetTravelTips aggregates the trip's saved markers and asks the reasoning
// service for advice. An empty marker list is a valid degenerate input here;
// the model can still give generic advice, unlike the suggestion flow where
// zero candidates would make the ranking call pointless.
func (s *ServiceImpl) GetTravelTips(ctx context.Context, userID, tripID uuid.UUID) (*types.TravelTips, error) {
	ctx, span := otel.Tracer("SuggestionService").Start(ctx, "GetTravelTips", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetTravelTips"), slog.String("tripID", tripID.String()))

	if err := s.requireOwnedTrip(ctx, userID, tripID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	saved, err := s.trips.ListPlacesByTrip(ctx, tripID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load trip places: %w", err)
	}

	_, markers := BuildMarkerIndex(saved, s.logger)

	tips, err := s.ranker.TravelTips(ctx, markers)
	if err != nil {
		l.ErrorContext(ctx, "Tips generation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Tips generation failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Tips ready")
	return tips, nil
}

// SuggestDestinations turns the questionnaire answers into destination
// recommendations. The flow is trip-independent: there is nothing to load or
// dedup against, so it goes straight to the reasoning service.
func (s *ServiceImpl) SuggestDestinations(ctx context.Context, req types.DestinationRequest) ([]types.DestinationIdea, error) {
	ctx, span := otel.Tracer("SuggestionService").Start(ctx, "SuggestDestinations", trace.WithAttributes(
		attribute.String("location", req.Location),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SuggestDestinations"))

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidFilter, err)
	}

	ideas, err := s.ranker.DestinationIdeas(ctx, req)
	if err != nil {
		s.metrics.RankingErrorsTotal.Add(ctx, 1)
		l.ErrorContext(ctx, "Destination generation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Destination generation failed")
		return nil, err
	}

	l.InfoContext(ctx, "Destination ideas ready", slog.Int("count", len(ideas)))
	span.SetStatus(codes.Ok, "Destination ideas ready")
	return ideas, nil
}

// fetchWithCache serves identical queries from a short-lived cache so bursts
// of the same request do not hammer the public interpreter.
func (s *ServiceImpl) fetchWithCache(ctx context.Context, query string) (*types.OverpassResponse, error) {
	if cached, found := s.queryCache.Get(query); found {
		s.metrics.OverpassCacheHitsTotal.Add(ctx, 1)
		return cached.(*types.OverpassResponse), nil
	}
	start := time.Now()
	result, err := s.fetcher.Fetch(ctx, query)
	s.metrics.OverpassFetchDurationSec.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	s.queryCache.SetDefault(query, result)
	return result, nil
}

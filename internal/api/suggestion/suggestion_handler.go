package suggestion

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/tripdeck/tripdeck/app/middleware"
	"github.com/tripdeck/tripdeck/internal/api"
	"github.com/tripdeck/tripdeck/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// requestIdentity pulls the authenticated user and the tripID route param.
func (h *HandlerImpl) requestIdentity(w http.ResponseWriter, r *http.Request) (userID, tripID uuid.UUID, ok bool) {
	userIDStr, found := appMiddleware.GetUserIDFromContext(r.Context())
	if !found || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, uuid.Nil, false
	}
	tripID, err = uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, tripID, true
}

// GetSuggestions handles POST /trips/{tripID}/suggestions.
func (h *HandlerImpl) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SuggestionHandler").Start(r.Context(), "GetSuggestions", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}/suggestions"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetSuggestions"))

	userID, tripID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	var req types.SuggestionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ranked, err := h.service.GetSuggestions(ctx, userID, tripID, req)
	if err != nil {
		h.writeSuggestionError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success":     true,
		"suggestions": ranked,
	})
}

// GetTravelTips handles GET /trips/{tripID}/tips.
func (h *HandlerImpl) GetTravelTips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SuggestionHandler").Start(r.Context(), "GetTravelTips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}/tips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetTravelTips"))

	userID, tripID, ok := h.requestIdentity(w, r)
	if !ok {
		return
	}

	tips, err := h.service.GetTravelTips(ctx, userID, tripID)
	if err != nil {
		h.writeSuggestionError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"tips":    tips,
	})
}

// SuggestDestinations handles POST /destination-ideas. The flow is not tied
// to a trip, so only authentication is required.
func (h *HandlerImpl) SuggestDestinations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SuggestionHandler").Start(r.Context(), "SuggestDestinations", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/destination-ideas"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SuggestDestinations"))

	var req types.DestinationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ideas, err := h.service.SuggestDestinations(ctx, req)
	if err != nil {
		h.writeSuggestionError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success":      true,
		"destinations": ideas,
	})
}

// writeSuggestionError converts the pipeline's error taxonomy into the
// caller-visible status codes: bad input, nothing found, upstream unreachable
// and upstream-returned-garbage are all distinguishable.
func (h *HandlerImpl) writeSuggestionError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	ctx := r.Context()

	var unparsable *types.UnparsableResponseError
	switch {
	case errors.Is(err, types.ErrInvalidFilter):
		l.WarnContext(ctx, "Invalid suggestion filters", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNoCandidates):
		l.InfoContext(ctx, "No suggestion candidates found")
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrNotFound):
		l.InfoContext(ctx, "Trip not found", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
	case errors.Is(err, types.ErrSourceTimeout):
		l.ErrorContext(ctx, "Overpass timeout", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusGatewayTimeout, "Place data source timed out")
	case errors.Is(err, types.ErrSourceUnreachable):
		l.ErrorContext(ctx, "Overpass unreachable", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Place data source unavailable")
	case errors.Is(err, types.ErrMalformedResponse):
		l.ErrorContext(ctx, "Overpass returned malformed data", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Place data source returned malformed data")
	case errors.Is(err, types.ErrRankingUnreachable):
		l.ErrorContext(ctx, "Ranking service unreachable", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Ranking service unavailable")
	case errors.As(err, &unparsable):
		l.ErrorContext(ctx, "Ranking response unparsable", slog.String("raw", unparsable.Raw))
		api.ErrorResponseWithDetail(w, r, http.StatusBadGateway, "Ranking service returned an unusable response", unparsable.Raw)
	default:
		l.ErrorContext(ctx, "Suggestion pipeline failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

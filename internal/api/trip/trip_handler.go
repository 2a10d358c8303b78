package trip

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
	tripService Service
	logger      *slog.Logger
}

func NewHandlerImpl(tripService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		tripService: tripService,
		logger:      logger,
	}
}

// requestIdentity pulls the authenticated user and the tripID route param.
func (h *HandlerImpl) requestIdentity(w http.ResponseWriter, r *http.Request, withTrip bool) (userID, tripID uuid.UUID, ok bool) {
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
	if withTrip {
		tripID, err = uuid.Parse(chi.URLParam(r, "tripID"))
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID format")
			return uuid.Nil, uuid.Nil, false
		}
	}
	return userID, tripID, true
}

func (h *HandlerImpl) writeTripError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	if errors.Is(err, types.ErrNotFound) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		return
	}
	l.ErrorContext(r.Context(), "Trip operation failed", slog.Any("error", err))
	api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
}

func (h *HandlerImpl) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "CreateTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateTrip"))

	userID, _, ok := h.requestIdentity(w, r, false)
	if !ok {
		return
	}

	var req types.CreateTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripService.CreateTrip(ctx, userID, req)
	if err != nil {
		h.writeTripError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

func (h *HandlerImpl) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "ListTrips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListTrips"))

	userID, _, ok := h.requestIdentity(w, r, false)
	if !ok {
		return
	}

	trips, err := h.tripService.ListTrips(ctx, userID)
	if err != nil {
		h.writeTripError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetTrip"))

	userID, tripID, ok := h.requestIdentity(w, r, true)
	if !ok {
		return
	}

	trip, err := h.tripService.GetTrip(ctx, userID, tripID)
	if err != nil {
		h.writeTripError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

func (h *HandlerImpl) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "UpdateTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateTrip"))

	userID, tripID, ok := h.requestIdentity(w, r, true)
	if !ok {
		return
	}

	var req types.UpdateTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripService.UpdateTrip(ctx, userID, tripID, req)
	if err != nil {
		h.writeTripError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

func (h *HandlerImpl) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "DeleteTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteTrip"))

	userID, tripID, ok := h.requestIdentity(w, r, true)
	if !ok {
		return
	}

	if err := h.tripService.DeleteTrip(ctx, userID, tripID); err != nil {
		h.writeTripError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *HandlerImpl) AddPlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "AddPlace", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}/places"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "AddPlace"))

	userID, tripID, ok := h.requestIdentity(w, r, true)
	if !ok {
		return
	}

	var req types.CreatePlaceRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	place, err := h.tripService.AddPlace(ctx, userID, tripID, req)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			h.writeTripError(w, r, l, err)
			return
		}
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, place)
}

func (h *HandlerImpl) ListPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "ListPlaces", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}/places"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListPlaces"))

	userID, tripID, ok := h.requestIdentity(w, r, true)
	if !ok {
		return
	}

	places, err := h.tripService.ListPlaces(ctx, userID, tripID)
	if err != nil {
		h.writeTripError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

func (h *HandlerImpl) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "UpdatePlace", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}/places/{placeID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdatePlace"))

	userID, tripID, ok := h.requestIdentity(w, r, true)
	if !ok {
		return
	}

	placeID, err := uuid.Parse(chi.URLParam(r, "placeID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid place ID format")
		return
	}

	var params types.UpdatePlaceParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	place, err := h.tripService.UpdatePlace(ctx, userID, tripID, placeID, params)
	if err != nil {
		h.writeTripError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, place)
}

func (h *HandlerImpl) DeletePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "DeletePlace", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{tripID}/places/{placeID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeletePlace"))

	userID, tripID, ok := h.requestIdentity(w, r, true)
	if !ok {
		return
	}

	placeID, err := uuid.Parse(chi.URLParam(r, "placeID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid place ID format")
		return
	}

	if err := h.tripService.DeletePlace(ctx, userID, tripID, placeID); err != nil {
		h.writeTripError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

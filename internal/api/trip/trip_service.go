package trip

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tripdeck/tripdeck/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for trip operations.
type Service interface {
	CreateTrip(ctx context.Context, userID uuid.UUID, req types.CreateTripRequest) (*types.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, req types.UpdateTripRequest) (*types.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error

	AddPlace(ctx context.Context, userID, tripID uuid.UUID, req types.CreatePlaceRequest) (*types.TripPlace, error)
	ListPlaces(ctx context.Context, userID, tripID uuid.UUID) ([]types.TripPlace, error)
	UpdatePlace(ctx context.Context, userID, tripID, placeID uuid.UUID, params types.UpdatePlaceParams) (*types.TripPlace, error)
	DeletePlace(ctx context.Context, userID, tripID, placeID uuid.UUID) error
}

type ServiceImpl struct {
	logger   *slog.Logger
	tripRepo Repository
}

func NewServiceImpl(tripRepo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		tripRepo: tripRepo,
	}
}

// requireOwnedTrip loads the trip and checks the caller owns it. Everything
// below a trip goes through this check.
func (s *ServiceImpl) requireOwnedTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	trip, err := s.tripRepo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		// Hide the trip's existence from non-owners
		return nil, types.ErrNotFound
	}
	return trip, nil
}

func (s *ServiceImpl) CreateTrip(ctx context.Context, userID uuid.UUID, req types.CreateTripRequest) (*types.Trip, error) {
	if req.Name == "" {
		req.Name = "New Trip"
	}
	trip, err := s.tripRepo.CreateTrip(ctx, userID, req.Name)
	if err != nil {
		s.logger.Error("failed to create trip", "error", err)
		return nil, err
	}
	return trip, nil
}

func (s *ServiceImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	return s.requireOwnedTrip(ctx, userID, tripID)
}

func (s *ServiceImpl) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	trips, err := s.tripRepo.ListTripsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list trips", "error", err)
		return nil, err
	}
	return trips, nil
}

func (s *ServiceImpl) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, req types.UpdateTripRequest) (*types.Trip, error) {
	if _, err := s.requireOwnedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("trip name must not be empty")
	}
	trip, err := s.tripRepo.UpdateTrip(ctx, tripID, req.Name)
	if err != nil {
		s.logger.Error("failed to update trip", "error", err)
		return nil, err
	}
	return trip, nil
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	if _, err := s.requireOwnedTrip(ctx, userID, tripID); err != nil {
		return err
	}
	if err := s.tripRepo.DeleteTrip(ctx, tripID); err != nil {
		s.logger.Error("failed to delete trip", "error", err)
		return err
	}
	return nil
}

func (s *ServiceImpl) AddPlace(ctx context.Context, userID, tripID uuid.UUID, req types.CreatePlaceRequest) (*types.TripPlace, error) {
	if _, err := s.requireOwnedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	if !types.ValidPlaceKind(req.Kind) {
		return nil, fmt.Errorf("invalid place kind %q", req.Kind)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("place name must not be empty")
	}
	place, err := s.tripRepo.AddPlace(ctx, tripID, req)
	if err != nil {
		s.logger.Error("failed to add place", "error", err)
		return nil, err
	}
	return place, nil
}

func (s *ServiceImpl) ListPlaces(ctx context.Context, userID, tripID uuid.UUID) ([]types.TripPlace, error) {
	if _, err := s.requireOwnedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	places, err := s.tripRepo.ListPlacesByTrip(ctx, tripID)
	if err != nil {
		s.logger.Error("failed to list places", "error", err)
		return nil, err
	}
	return places, nil
}

func (s *ServiceImpl) UpdatePlace(ctx context.Context, userID, tripID, placeID uuid.UUID, params types.UpdatePlaceParams) (*types.TripPlace, error) {
	if _, err := s.requireOwnedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	place, err := s.tripRepo.UpdatePlace(ctx, tripID, placeID, params)
	if err != nil {
		s.logger.Error("failed to update place", "error", err)
		return nil, err
	}
	return place, nil
}

func (s *ServiceImpl) DeletePlace(ctx context.Context, userID, tripID, placeID uuid.UUID) error {
	if _, err := s.requireOwnedTrip(ctx, userID, tripID); err != nil {
		return err
	}
	if err := s.tripRepo.DeletePlace(ctx, tripID, placeID); err != nil {
		s.logger.Error("failed to delete place", "error", err)
		return err
	}
	return nil
}

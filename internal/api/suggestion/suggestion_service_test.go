package suggestion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripdeck/tripdeck/internal/types"
)

// MockTripReader is a mock implementation of the TripReader interface
type MockTripReader struct {
	mock.Mock
}

func (m *MockTripReader) GetTrip(ctx context.Context, tripID uuid.UUID) (*types.Trip, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockTripReader) ListPlacesByTrip(ctx context.Context, tripID uuid.UUID) ([]types.TripPlace, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TripPlace), args.Error(1)
}

// MockFetcher is a mock implementation of the Fetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, query string) (*types.OverpassResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.OverpassResponse), args.Error(1)
}

// MockRanker is a mock implementation of the Ranker interface
type MockRanker struct {
	mock.Mock
}

func (m *MockRanker) RankCandidates(ctx context.Context, req types.SuggestionRequest, candidates []types.SuggestionCandidate) ([]types.RankedPlace, error) {
	args := m.Called(ctx, req, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RankedPlace), args.Error(1)
}

func (m *MockRanker) TravelTips(ctx context.Context, markers []types.ExistingMarker) (*types.TravelTips, error) {
	args := m.Called(ctx, markers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TravelTips), args.Error(1)
}

func (m *MockRanker) DestinationIdeas(ctx context.Context, req types.DestinationRequest) ([]types.DestinationIdea, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.DestinationIdea), args.Error(1)
}

func newTestService(trips *MockTripReader, fetcher *MockFetcher, ranker *MockRanker) *ServiceImpl {
	return NewServiceImpl(trips, fetcher, ranker, time.Minute, discardLogger())
}

// ownedTrip stubs GetTrip so tripID belongs to userID.
func ownedTrip(trips *MockTripReader, userID, tripID uuid.UUID) {
	trips.On("GetTrip", mock.Anything, tripID).Return(&types.Trip{ID: tripID, UserID: userID, Name: "Trip"}, nil)
}

func validRequest() types.SuggestionRequest {
	return types.SuggestionRequest{
		Category: "explore",
		Lat:      52.41,
		Lon:      12.55,
		Radius:   30000,
		Filters:  types.SuggestionFilters{ActivityType: "Outdoor"},
	}
}

func validDestinationRequest() types.DestinationRequest {
	return types.DestinationRequest{
		Location:      "Berlin, Germany",
		Goal:          "Relaxing nature escape",
		Interests:     "hiking, food",
		Length:        "5 days",
		Transport:     "train",
		Season:        "autumn",
		Accommodation: "Mid-range Hotel",
	}
}

func TestGetSuggestions_Success(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	fetcher := new(MockFetcher)
	ranker := new(MockRanker)
	svc := newTestService(trips, fetcher, ranker)

	response := &types.OverpassResponse{Elements: []types.OverpassElement{
		{Type: "node", ID: 1, Lat: floatPtr(52.415), Lon: floatPtr(12.552), Tags: map[string]string{"name": "Lake"}},
		{Type: "way", ID: 2, Center: &types.LatLon{Lat: 52.42, Lon: 12.56}, Tags: map[string]string{"name": "Park"}},
	}}
	ranked := []types.RankedPlace{
		{SuggestionCandidate: types.SuggestionCandidate{ID: 1, Type: "node", Lat: 52.415, Lon: 12.552}, Description: "A lake."},
	}

	ownedTrip(trips, userID, tripID)
	trips.On("ListPlacesByTrip", mock.Anything, tripID).Return([]types.TripPlace{}, nil)
	fetcher.On("Fetch", mock.Anything, mock.AnythingOfType("string")).Return(response, nil)
	ranker.On("RankCandidates", mock.Anything, mock.Anything, mock.MatchedBy(func(c []types.SuggestionCandidate) bool {
		return len(c) == 2
	})).Return(ranked, nil)

	got, err := svc.GetSuggestions(ctx, userID, tripID, validRequest())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A lake.", got[0].Description)

	trips.AssertExpectations(t)
	fetcher.AssertExpectations(t)
	ranker.AssertExpectations(t)
}

func TestGetSuggestions_NonOwnerBlocked(t *testing.T) {
	userID := uuid.New()
	owner := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	fetcher := new(MockFetcher)
	ranker := new(MockRanker)
	svc := newTestService(trips, fetcher, ranker)

	trips.On("GetTrip", mock.Anything, tripID).Return(&types.Trip{ID: tripID, UserID: owner, Name: "Trip"}, nil)

	_, err := svc.GetSuggestions(context.Background(), userID, tripID, validRequest())
	assert.ErrorIs(t, err, types.ErrNotFound)

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	ranker.AssertNotCalled(t, "RankCandidates", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSuggestions_InvalidAnchor(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	svc := newTestService(trips, new(MockFetcher), new(MockRanker))

	ownedTrip(trips, userID, tripID)
	req := validRequest()
	req.Lat = 91

	_, err := svc.GetSuggestions(context.Background(), userID, tripID, req)
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestGetSuggestions_UnknownCategory(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	svc := newTestService(trips, new(MockFetcher), new(MockRanker))

	ownedTrip(trips, userID, tripID)
	req := validRequest()
	req.Category = "shopping"

	_, err := svc.GetSuggestions(context.Background(), userID, tripID, req)
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestGetSuggestions_FetchErrorSkipsRanking(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	fetcher := new(MockFetcher)
	ranker := new(MockRanker)
	svc := newTestService(trips, fetcher, ranker)

	ownedTrip(trips, userID, tripID)
	trips.On("ListPlacesByTrip", mock.Anything, tripID).Return([]types.TripPlace{}, nil).Maybe()
	fetcher.On("Fetch", mock.Anything, mock.AnythingOfType("string")).Return(nil, types.ErrSourceTimeout)

	_, err := svc.GetSuggestions(context.Background(), userID, tripID, validRequest())
	assert.ErrorIs(t, err, types.ErrSourceTimeout)

	ranker.AssertNotCalled(t, "RankCandidates", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSuggestions_DedupExcludesSavedPlace(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	fetcher := new(MockFetcher)
	ranker := new(MockRanker)
	svc := newTestService(trips, fetcher, ranker)

	saved := []types.TripPlace{
		{ID: uuid.New(), Name: "Saved lake", Coordinates: "52.415, 12.552"},
	}
	response := &types.OverpassResponse{Elements: []types.OverpassElement{
		{Type: "node", ID: 1, Lat: floatPtr(52.415), Lon: floatPtr(12.552)},
		{Type: "node", ID: 2, Lat: floatPtr(52.43), Lon: floatPtr(12.57)},
	}}

	ownedTrip(trips, userID, tripID)
	trips.On("ListPlacesByTrip", mock.Anything, tripID).Return(saved, nil)
	fetcher.On("Fetch", mock.Anything, mock.AnythingOfType("string")).Return(response, nil)
	ranker.On("RankCandidates", mock.Anything, mock.Anything, mock.MatchedBy(func(c []types.SuggestionCandidate) bool {
		return len(c) == 1 && c[0].ID == 2
	})).Return([]types.RankedPlace{}, nil)

	_, err := svc.GetSuggestions(context.Background(), userID, tripID, validRequest())
	require.NoError(t, err)
	ranker.AssertExpectations(t)
}

func TestGetSuggestions_NoCandidates(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	fetcher := new(MockFetcher)
	ranker := new(MockRanker)
	svc := newTestService(trips, fetcher, ranker)

	ownedTrip(trips, userID, tripID)
	trips.On("ListPlacesByTrip", mock.Anything, tripID).Return([]types.TripPlace{}, nil)
	fetcher.On("Fetch", mock.Anything, mock.AnythingOfType("string")).Return(&types.OverpassResponse{Elements: []types.OverpassElement{}}, nil)

	_, err := svc.GetSuggestions(context.Background(), userID, tripID, validRequest())
	assert.ErrorIs(t, err, types.ErrNoCandidates)
	ranker.AssertNotCalled(t, "RankCandidates", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSuggestions_CachesRepeatedQueries(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	fetcher := new(MockFetcher)
	ranker := new(MockRanker)
	svc := newTestService(trips, fetcher, ranker)

	response := &types.OverpassResponse{Elements: []types.OverpassElement{
		{Type: "node", ID: 1, Lat: floatPtr(52.415), Lon: floatPtr(12.552)},
	}}

	ownedTrip(trips, userID, tripID)
	trips.On("ListPlacesByTrip", mock.Anything, tripID).Return([]types.TripPlace{}, nil)
	fetcher.On("Fetch", mock.Anything, mock.AnythingOfType("string")).Return(response, nil).Once()
	ranker.On("RankCandidates", mock.Anything, mock.Anything, mock.Anything).Return([]types.RankedPlace{}, nil)

	_, err := svc.GetSuggestions(context.Background(), userID, tripID, validRequest())
	require.NoError(t, err)
	_, err = svc.GetSuggestions(context.Background(), userID, tripID, validRequest())
	require.NoError(t, err)

	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestGetTravelTips_Success(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	ranker := new(MockRanker)
	svc := newTestService(trips, new(MockFetcher), ranker)

	saved := []types.TripPlace{
		{ID: uuid.New(), Name: "Old Mill", Coordinates: "52.414312, 12.551123"},
	}
	tips := &types.TravelTips{Summary: "Plan around the lakes.", Tips: []string{"Carry cash"}}

	ownedTrip(trips, userID, tripID)
	trips.On("ListPlacesByTrip", mock.Anything, tripID).Return(saved, nil)
	ranker.On("TravelTips", mock.Anything, mock.MatchedBy(func(m []types.ExistingMarker) bool {
		return len(m) == 1 && m[0].Name == "Old Mill"
	})).Return(tips, nil)

	got, err := svc.GetTravelTips(context.Background(), userID, tripID)
	require.NoError(t, err)
	assert.Equal(t, "Plan around the lakes.", got.Summary)
}

func TestGetTravelTips_NonOwnerBlocked(t *testing.T) {
	userID := uuid.New()
	owner := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	ranker := new(MockRanker)
	svc := newTestService(trips, new(MockFetcher), ranker)

	trips.On("GetTrip", mock.Anything, tripID).Return(&types.Trip{ID: tripID, UserID: owner, Name: "Trip"}, nil)

	_, err := svc.GetTravelTips(context.Background(), userID, tripID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	trips.AssertNotCalled(t, "ListPlacesByTrip", mock.Anything, mock.Anything)
	ranker.AssertNotCalled(t, "TravelTips", mock.Anything, mock.Anything)
}

func TestGetTravelTips_EmptyMarkersStillValid(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	ranker := new(MockRanker)
	svc := newTestService(trips, new(MockFetcher), ranker)

	ownedTrip(trips, userID, tripID)
	trips.On("ListPlacesByTrip", mock.Anything, tripID).Return([]types.TripPlace{}, nil)
	ranker.On("TravelTips", mock.Anything, mock.MatchedBy(func(m []types.ExistingMarker) bool {
		return len(m) == 0
	})).Return(&types.TravelTips{Summary: "General advice."}, nil)

	got, err := svc.GetTravelTips(context.Background(), userID, tripID)
	require.NoError(t, err)
	assert.Equal(t, "General advice.", got.Summary)
}

func TestGetTravelTips_RankerError(t *testing.T) {
	userID := uuid.New()
	tripID := uuid.New()
	trips := new(MockTripReader)
	ranker := new(MockRanker)
	svc := newTestService(trips, new(MockFetcher), ranker)

	ownedTrip(trips, userID, tripID)
	trips.On("ListPlacesByTrip", mock.Anything, tripID).Return([]types.TripPlace{}, nil)
	ranker.On("TravelTips", mock.Anything, mock.Anything).Return(nil, types.ErrRankingUnreachable)

	_, err := svc.GetTravelTips(context.Background(), userID, tripID)
	assert.ErrorIs(t, err, types.ErrRankingUnreachable)
}

func TestSuggestDestinations_Success(t *testing.T) {
	ranker := new(MockRanker)
	svc := newTestService(new(MockTripReader), new(MockFetcher), ranker)

	ideas := []types.DestinationIdea{
		{Name: "🇯🇵 Kyoto, Japan", Description: "Temples and food.", Highlights: []string{"Fushimi Inari"}},
	}
	ranker.On("DestinationIdeas", mock.Anything, mock.Anything).Return(ideas, nil)

	got, err := svc.SuggestDestinations(context.Background(), validDestinationRequest())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "🇯🇵 Kyoto, Japan", got[0].Name)
}

func TestSuggestDestinations_MissingLocation(t *testing.T) {
	ranker := new(MockRanker)
	svc := newTestService(new(MockTripReader), new(MockFetcher), ranker)

	req := validDestinationRequest()
	req.Location = ""

	_, err := svc.SuggestDestinations(context.Background(), req)
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
	ranker.AssertNotCalled(t, "DestinationIdeas", mock.Anything, mock.Anything)
}

func TestSuggestDestinations_RankerError(t *testing.T) {
	ranker := new(MockRanker)
	svc := newTestService(new(MockTripReader), new(MockFetcher), ranker)

	ranker.On("DestinationIdeas", mock.Anything, mock.Anything).Return(nil, types.ErrRankingUnreachable)

	_, err := svc.SuggestDestinations(context.Background(), validDestinationRequest())
	assert.ErrorIs(t, err, types.ErrRankingUnreachable)
}

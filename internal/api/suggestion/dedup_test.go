package suggestion

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdeck/tripdeck/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(v float64) *float64 { return &v }

func TestKeyFor_SixDecimalRounding(t *testing.T) {
	// Differences beyond the sixth decimal collapse onto the same key.
	assert.Equal(t, KeyFor(52.4143121, 12.5511239), KeyFor(52.4143119, 12.5511241))
	// Differences at the sixth decimal stay distinct.
	assert.NotEqual(t, KeyFor(52.414312, 12.551123), KeyFor(52.414313, 12.551123))
}

func TestBuildMarkerIndex(t *testing.T) {
	places := []types.TripPlace{
		{ID: uuid.New(), Name: "Old Mill", Coordinates: "52.414312, 12.551123"},
		{ID: uuid.New(), Name: "No coords", Coordinates: ""},
		{ID: uuid.New(), Name: "Broken", Coordinates: "not-a-coordinate"},
		{ID: uuid.New(), Name: "Tight", Coordinates: "48.2,16.37"},
	}

	index, markers := BuildMarkerIndex(places, discardLogger())

	require.Len(t, index, 2)
	require.Len(t, markers, 2)
	assert.Contains(t, index, KeyFor(52.414312, 12.551123))
	assert.Contains(t, index, KeyFor(48.2, 16.37))
	assert.Equal(t, "Old Mill", markers[0].Name)
	assert.Equal(t, 52.414312, markers[0].Lat)
	assert.Equal(t, "Tight", markers[1].Name)
}

func TestParseCoordinates(t *testing.T) {
	lat, lon, ok := parseCoordinates("52.414312, 12.551123")
	require.True(t, ok)
	assert.Equal(t, 52.414312, lat)
	assert.Equal(t, 12.551123, lon)

	_, _, ok = parseCoordinates("52.414312")
	assert.False(t, ok)

	_, _, ok = parseCoordinates("abc, def")
	assert.False(t, ok)
}

func TestNormalizeAndFilter_GeometryResolution(t *testing.T) {
	elements := []types.OverpassElement{
		{Type: "node", ID: 1, Lat: floatPtr(52.41), Lon: floatPtr(12.55), Tags: map[string]string{"name": "Node"}},
		{Type: "way", ID: 2, Center: &types.LatLon{Lat: 52.42, Lon: 12.56}, Tags: map[string]string{"name": "Way"}},
		{Type: "relation", ID: 3}, // no coordinate at all, dropped
	}

	candidates := NormalizeAndFilter(elements, map[DedupKey]struct{}{})

	require.Len(t, candidates, 2)
	assert.Equal(t, int64(1), candidates[0].ID)
	assert.Equal(t, 52.41, candidates[0].Lat)
	assert.Equal(t, int64(2), candidates[1].ID)
	assert.Equal(t, 52.42, candidates[1].Lat)
	assert.Equal(t, 12.56, candidates[1].Lon)
}

func TestNormalizeAndFilter_DirectCoordinateWinsOverCenter(t *testing.T) {
	el := types.OverpassElement{
		Type:   "node",
		ID:     7,
		Lat:    floatPtr(10.0),
		Lon:    floatPtr(20.0),
		Center: &types.LatLon{Lat: 99.0, Lon: 99.0},
	}

	candidates := NormalizeAndFilter([]types.OverpassElement{el}, map[DedupKey]struct{}{})

	require.Len(t, candidates, 1)
	assert.Equal(t, 10.0, candidates[0].Lat)
	assert.Equal(t, 20.0, candidates[0].Lon)
}

func TestNormalizeAndFilter_DedupAgainstSavedPlaces(t *testing.T) {
	saved := []types.TripPlace{
		{ID: uuid.New(), Name: "Saved viewpoint", Coordinates: "52.414312, 12.551123"},
	}
	index, _ := BuildMarkerIndex(saved, discardLogger())

	elements := []types.OverpassElement{
		// Same place within rounding tolerance, must be suppressed.
		{Type: "node", ID: 1, Lat: floatPtr(52.4143121), Lon: floatPtr(12.5511229)},
		// A different place nearby survives.
		{Type: "node", ID: 2, Lat: floatPtr(52.415), Lon: floatPtr(12.552)},
	}

	candidates := NormalizeAndFilter(elements, index)

	require.Len(t, candidates, 1)
	assert.Equal(t, int64(2), candidates[0].ID)
}

func TestNormalizeAndFilter_AllDuplicates(t *testing.T) {
	index := map[DedupKey]struct{}{
		KeyFor(52.41, 12.55): {},
	}
	elements := []types.OverpassElement{
		{Type: "node", ID: 1, Lat: floatPtr(52.41), Lon: floatPtr(12.55)},
	}

	candidates := NormalizeAndFilter(elements, index)
	assert.Empty(t, candidates)
}

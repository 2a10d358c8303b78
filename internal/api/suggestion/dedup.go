package suggestion

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/tripdeck/tripdeck/internal/types"
)

// DedupKey is a coordinate pair rounded to 6 decimal places (~0.11 m), enough
// to treat two records at the same rounded coordinate as the same physical
// place regardless of differing names or tags.
type DedupKey struct {
	Lat float64
	Lon float64
}

func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// KeyFor computes the dedup key for a coordinate.
func KeyFor(lat, lon float64) DedupKey {
	return DedupKey{Lat: roundCoord(lat), Lon: roundCoord(lon)}
}

// BuildMarkerIndex derives the dedup set and the marker list from the trip's
// saved places. Places without coordinates are skipped. A coordinate string
// that does not parse as "lat, lon" points at a data-integrity problem, so it
// is logged, but it never aborts the batch: over-suggestion beats silent loss.
func BuildMarkerIndex(places []types.TripPlace, logger *slog.Logger) (map[DedupKey]struct{}, []types.ExistingMarker) {
	index := make(map[DedupKey]struct{}, len(places))
	markers := make([]types.ExistingMarker, 0, len(places))

	for _, place := range places {
		if place.Coordinates == "" {
			continue
		}
		lat, lon, ok := parseCoordinates(place.Coordinates)
		if !ok {
			logger.Warn("Skipping trip place with malformed coordinates",
				slog.String("place_id", place.ID.String()),
				slog.String("coordinates", place.Coordinates),
			)
			continue
		}
		index[KeyFor(lat, lon)] = struct{}{}
		markers = append(markers, types.ExistingMarker{Name: place.Name, Lat: lat, Lon: lon})
	}
	return index, markers
}

// parseCoordinates splits a stored "lat, lon" string once on a comma.
func parseCoordinates(s string) (lat, lon float64, ok bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// NormalizeAndFilter flattens the heterogeneous Overpass geometries into
// uniform candidates and drops records colliding with the dedup set.
// Member/node lists are discarded on the way through: they are bulky and
// nothing downstream needs them. A record with neither a direct coordinate
// nor a center is dropped silently. Output order follows input order but
// carries no guarantee.
func NormalizeAndFilter(elements []types.OverpassElement, seen map[DedupKey]struct{}) []types.SuggestionCandidate {
	candidates := make([]types.SuggestionCandidate, 0, len(elements))

	for _, el := range elements {
		lat, lon, ok := resolveCoordinate(el)
		if !ok {
			continue
		}
		if _, dup := seen[KeyFor(lat, lon)]; dup {
			continue
		}
		candidates = append(candidates, types.SuggestionCandidate{
			ID:   el.ID,
			Type: el.Type,
			Lat:  lat,
			Lon:  lon,
			Tags: el.Tags,
		})
	}
	return candidates
}

// resolveCoordinate prefers the direct lat/lon of nodes and falls back to the
// center that ways and relations carry.
func resolveCoordinate(el types.OverpassElement) (lat, lon float64, ok bool) {
	if el.Lat != nil && el.Lon != nil {
		return *el.Lat, *el.Lon, true
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

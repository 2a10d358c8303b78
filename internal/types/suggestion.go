package types

import (
	"encoding/json"
	"fmt"
)

// Category identifies one of the five suggestion categories.
type Category string

const (
	CategoryExplore       Category = "explore"
	CategoryStay          Category = "stays"
	CategoryEatDrink      Category = "eatDrink"
	CategoryEssentials    Category = "essentials"
	CategoryGettingAround Category = "gettingAround"
)

// ParseCategory maps the request's category string onto the closed Category set.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryExplore, CategoryStay, CategoryEatDrink, CategoryEssentials, CategoryGettingAround:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown category %q: %w", s, ErrInvalidFilter)
	}
}

// SuggestionFilters carries the category-specific answers from the
// questionnaire. Only the fields matching the request's category are read.
type SuggestionFilters struct {
	// explore
	ActivityType string `json:"activityType,omitempty"` // "Indoor" or "Outdoor"
	Friendly     string `json:"friendly,omitempty"`
	// stays
	Styles  []string `json:"style,omitempty"`
	Company []string `json:"company,omitempty"`
	// eatDrink
	Cuisine     string `json:"cuisine,omitempty"`
	DiningStyle string `json:"diningStyle,omitempty"`
	// essentials
	EssentialType string `json:"type,omitempty"`
	// gettingAround
	AroundTypes []string `json:"types,omitempty"`
}

// SuggestionRequest is the inbound body for a suggestion run: an anchor
// point, a radius and the category answers.
type SuggestionRequest struct {
	Category string            `json:"category"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Radius   int               `json:"radius"`
	Filters  SuggestionFilters `json:"filters"`
}

// Validate checks the anchor invariants before any external call is made.
func (r *SuggestionRequest) Validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", r.Lat)
	}
	if r.Lon < -180 || r.Lon > 180 {
		return fmt.Errorf("longitude %f out of range", r.Lon)
	}
	if r.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %d", r.Radius)
	}
	return nil
}

// LatLon is a nested coordinate pair as Overpass reports it for ways and
// relations ("center").
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OverpassElement is one raw record from the Overpass "elements" array.
// Nodes carry lat/lon directly; ways and relations carry a center instead and
// may carry member-node lists that are dropped during normalization.
type OverpassElement struct {
	Type    string            `json:"type"`
	ID      int64             `json:"id"`
	Lat     *float64          `json:"lat,omitempty"`
	Lon     *float64          `json:"lon,omitempty"`
	Center  *LatLon           `json:"center,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
	Nodes   json.RawMessage   `json:"nodes,omitempty"`
	Members json.RawMessage   `json:"members,omitempty"`
}

// OverpassResponse is the top-level Overpass payload.
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
	Remark   string            `json:"remark,omitempty"`
}

// SuggestionCandidate is a normalized POI candidate with the
// direct-or-center coordinate rule already resolved.
type SuggestionCandidate struct {
	ID   int64             `json:"id"`
	Type string            `json:"type"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags,omitempty"`
}

// RankedPlace is a candidate the ranking model selected, carrying the one
// field the model adds.
type RankedPlace struct {
	SuggestionCandidate
	Description string `json:"description"`
}

// ExistingMarker is a place already saved to the trip, used to suppress
// duplicate suggestions.
type ExistingMarker struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// TravelTips is the structured advice returned by the tips flow.
type TravelTips struct {
	Summary     string   `json:"summary"`
	Tips        []string `json:"tips"`
	PackingList []string `json:"packing_list,omitempty"`
}

// DestinationRequest carries the destination-ideas questionnaire answers.
type DestinationRequest struct {
	Location      string `json:"location"`
	Goal          string `json:"goal"`
	Interests     string `json:"interests"`
	Length        string `json:"length"`
	Transport     string `json:"transport"`
	Preferred     string `json:"preferred,omitempty"`
	Avoid         string `json:"avoid,omitempty"`
	Season        string `json:"season"`
	Accommodation string `json:"accommodation"`
}

// Validate rejects a questionnaire without the answers the prompt builds on.
func (r *DestinationRequest) Validate() error {
	if r.Location == "" {
		return fmt.Errorf("location must not be empty")
	}
	if r.Goal == "" && r.Interests == "" {
		return fmt.Errorf("at least one of goal or interests must be given")
	}
	return nil
}

// TravelPracticality is the logistics block of a destination idea.
type TravelPracticality struct {
	BestTimeToVisit string `json:"best_time_to_visit"`
	Distance        string `json:"distance"`
	Transport       string `json:"transport"`
}

// DestinationIdea is one recommended destination from the ideas flow.
type DestinationIdea struct {
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Highlights         []string           `json:"highlights"`
	TravelPracticality TravelPracticality `json:"travel_practicality"`
	OtherTips          string             `json:"other_tips,omitempty"`
}

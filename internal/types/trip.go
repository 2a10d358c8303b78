package types

import (
	"time"

	"github.com/google/uuid"
)

// PlaceKind distinguishes the saved-place categories within a trip.
type PlaceKind string

const (
	PlaceKindExplore       PlaceKind = "explore"
	PlaceKindStay          PlaceKind = "stay"
	PlaceKindEatDrink      PlaceKind = "eat_drink"
	PlaceKindEssentials    PlaceKind = "essentials"
	PlaceKindGettingAround PlaceKind = "getting_around"
)

// ValidPlaceKind reports whether k is one of the known kinds.
func ValidPlaceKind(k PlaceKind) bool {
	switch k {
	case PlaceKindExplore, PlaceKindStay, PlaceKindEatDrink, PlaceKindEssentials, PlaceKindGettingAround:
		return true
	}
	return false
}

type Trip struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TripPlace is a place saved to a trip. Coordinates is stored the way the
// frontend map sends it: "lat, lon" as a single string, possibly empty.
type TripPlace struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	Kind        PlaceKind `json:"kind"`
	Name        string    `json:"name"`
	Coordinates string    `json:"coordinates,omitempty"`
	Address     string    `json:"address,omitempty"`
	Day         int       `json:"day"`
	Price       string    `json:"price,omitempty"`
	Status      string    `json:"status,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateTripRequest struct {
	Name string `json:"name"`
}

type UpdateTripRequest struct {
	Name string `json:"name"`
}

type CreatePlaceRequest struct {
	Kind        PlaceKind `json:"kind"`
	Name        string    `json:"name"`
	Coordinates string    `json:"coordinates,omitempty"`
	Address     string    `json:"address,omitempty"`
	Day         int       `json:"day,omitempty"`
	Price       string    `json:"price,omitempty"`
	Status      string    `json:"status,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
}

// UpdatePlaceParams updates only the fields that are present.
type UpdatePlaceParams struct {
	Name        *string `json:"name,omitempty"`
	Coordinates *string `json:"coordinates,omitempty"`
	Address     *string `json:"address,omitempty"`
	Day         *int    `json:"day,omitempty"`
	Price       *string `json:"price,omitempty"`
	Status      *string `json:"status,omitempty"`
	Comments    *string `json:"comments,omitempty"`
	ExternalURL *string `json:"external_url,omitempty"`
}

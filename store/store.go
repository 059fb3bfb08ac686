// Package store defines the persistence interfaces used by the handlers.
package store

import (
	"context"

	"github.com/NomadCrew/itinerary-builder/types"
)

// ItineraryStore persists generated itineraries.
type ItineraryStore interface {
	// Create inserts it and fills in its ID and CreatedAt.
	Create(ctx context.Context, it *types.Itinerary) error
	GetByID(ctx context.Context, id int64) (*types.Itinerary, error)
	// List returns all itineraries, newest first.
	List(ctx context.Context) ([]*types.Itinerary, error)
}

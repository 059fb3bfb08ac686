package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NomadCrew/itinerary-builder/store"
	"github.com/NomadCrew/itinerary-builder/types"
	"github.com/jackc/pgx/v5"
)

// DBTX is the subset of *pgxpool.Pool the store needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Ensure pgItineraryStore implements store.ItineraryStore.
var _ store.ItineraryStore = (*pgItineraryStore)(nil)

type pgItineraryStore struct {
	db DBTX
}

// NewPgItineraryStore creates a new PostgreSQL itinerary store.
func NewPgItineraryStore(db DBTX) store.ItineraryStore {
	return &pgItineraryStore{db: db}
}

const itineraryColumns = `id, destination, date, weather_data, itinerary_data, created_at`

// Create inserts a new itinerary.
func (s *pgItineraryStore) Create(ctx context.Context, it *types.Itinerary) error {
	query := `INSERT INTO itineraries (destination, date, weather_data, itinerary_data)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`

	date, err := time.Parse(types.DateLayout, it.Date)
	if err != nil {
		return fmt.Errorf("invalid itinerary date %q: %w", it.Date, err)
	}

	var weather any
	if it.WeatherData != nil {
		raw, err := json.Marshal(it.WeatherData)
		if err != nil {
			return fmt.Errorf("failed to encode weather data: %w", err)
		}
		weather = raw
	}

	var plan any
	if len(it.ItineraryData) > 0 {
		plan = []byte(it.ItineraryData)
	}

	err = s.db.QueryRow(ctx, query, it.Destination, date, weather, plan).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create itinerary: %w", err)
	}
	return nil
}

// GetByID retrieves an itinerary by its ID.
func (s *pgItineraryStore) GetByID(ctx context.Context, id int64) (*types.Itinerary, error) {
	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = $1`

	it, err := scanItinerary(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary with id %d not found: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get itinerary by id: %w", err)
	}
	return it, nil
}

// List returns every itinerary ordered by creation time, newest first.
func (s *pgItineraryStore) List(ctx context.Context) ([]*types.Itinerary, error) {
	query := `SELECT ` + itineraryColumns + ` FROM itineraries ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	itineraries := make([]*types.Itinerary, 0)
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		itineraries = append(itineraries, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate itineraries: %w", err)
	}
	return itineraries, nil
}

func scanItinerary(row pgx.Row) (*types.Itinerary, error) {
	var (
		it      types.Itinerary
		date    time.Time
		weather []byte
		plan    []byte
	)
	if err := row.Scan(&it.ID, &it.Destination, &date, &weather, &plan, &it.CreatedAt); err != nil {
		return nil, err
	}

	it.Date = date.Format(types.DateLayout)
	if len(weather) > 0 {
		var w types.WeatherData
		if err := json.Unmarshal(weather, &w); err != nil {
			return nil, fmt.Errorf("failed to decode weather data: %w", err)
		}
		it.WeatherData = &w
	}
	if len(plan) > 0 {
		it.ItineraryData = json.RawMessage(plan)
	}
	return &it, nil
}

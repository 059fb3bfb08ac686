package handlers

import (
	"context"
	"encoding/json"

	"github.com/NomadCrew/itinerary-builder/types"
	"github.com/stretchr/testify/mock"
)

type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) GetWeather(ctx context.Context, city, date string) (*types.WeatherData, error) {
	args := m.Called(ctx, city, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.WeatherData), args.Error(1)
}

type MockItineraryGenerator struct {
	mock.Mock
}

func (m *MockItineraryGenerator) Generate(ctx context.Context, destination, date string, weather *types.WeatherData) (json.RawMessage, error) {
	args := m.Called(ctx, destination, date, weather)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

type MockItineraryStore struct {
	mock.Mock
}

func (m *MockItineraryStore) Create(ctx context.Context, it *types.Itinerary) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockItineraryStore) GetByID(ctx context.Context, id int64) (*types.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockItineraryStore) List(ctx context.Context) ([]*types.Itinerary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Itinerary), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) CheckHealth(ctx context.Context) types.HealthCheck {
	args := m.Called(ctx)
	return args.Get(0).(types.HealthCheck)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/NomadCrew/itinerary-builder/config"
	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/NomadCrew/itinerary-builder/pkg/valueobjects"
	"github.com/NomadCrew/itinerary-builder/types"
)

// WeatherService resolves current conditions for a destination. Open-Meteo is
// the primary provider; OpenWeatherMap is tried when it fails and an API key
// is configured.
type WeatherService struct {
	cfg     config.WeatherConfig
	client  *http.Client
	cache   WeatherCache
	metrics *itineraryMetrics
}

var _ types.WeatherServiceInterface = (*WeatherService)(nil)

// NewWeatherService creates the service. cache may be nil.
func NewWeatherService(cfg config.WeatherConfig, cache WeatherCache) *WeatherService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WeatherService{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		metrics: getMetrics(),
	}
}

// GetWeather returns the current weather for city. The date only scopes the
// cache entry; providers are asked for current conditions.
func (s *WeatherService) GetWeather(ctx context.Context, city, date string) (*types.WeatherData, error) {
	log := logger.GetLogger()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, city, date)
		if err != nil {
			log.Warnw("Weather cache read failed", "city", city, "error", err)
		} else if ok {
			s.metrics.weatherCacheHits.Inc()
			return cached, nil
		}
	}

	weather, err := s.getPrimaryWeather(ctx, city)
	if err != nil {
		if s.cfg.OpenWeatherAPIKey == "" {
			return nil, err
		}
		log.Warnw("Primary weather provider failed, falling back to OpenWeatherMap",
			"city", city,
			"error", err)

		var fallbackErr error
		weather, fallbackErr = s.getOpenWeather(ctx, city)
		if fallbackErr != nil {
			return nil, fmt.Errorf("primary: %v; fallback: %v", err, fallbackErr)
		}
		s.metrics.weatherFallbacks.Inc()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, city, date, weather); err != nil {
			log.Warnw("Weather cache write failed", "city", city, "error", err)
		}
	}
	return weather, nil
}

func (s *WeatherService) getPrimaryWeather(ctx context.Context, city string) (*types.WeatherData, error) {
	point, err := s.getCoordinates(ctx, city)
	if err != nil {
		return nil, err
	}
	return s.getCurrentWeather(ctx, point)
}

// getCoordinates fetches the latitude and longitude for a given city/place name
func (s *WeatherService) getCoordinates(ctx context.Context, city string) (valueobjects.GeoPoint, error) {
	log := logger.GetLogger()

	point, err := s.getPrimaryCoordinates(ctx, city)
	if err == nil {
		return point, nil
	}

	log.Warnw("Primary geocoding failed, falling back to Nominatim",
		"city", city,
		"error", err)

	point, err = s.getNominatimCoordinates(ctx, city)
	if err == nil {
		return point, nil
	}

	log.Errorw("Both geocoding services failed",
		"city", city,
		"error", err)

	return valueobjects.GeoPoint{}, fmt.Errorf("no location found for: %s", city)
}

func (s *WeatherService) getJSON(ctx context.Context, provider, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	// Nominatim's usage policy requires an identifying User-Agent
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	s.metrics.upstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s API error: %s", provider, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *WeatherService) getPrimaryCoordinates(ctx context.Context, city string) (valueobjects.GeoPoint, error) {
	params := url.Values{}
	params.Add("name", city)
	params.Add("count", "1")

	var geoResp struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := s.getJSON(ctx, "geocoding", s.cfg.GeocodingURL+"?"+params.Encode(), &geoResp); err != nil {
		return valueobjects.GeoPoint{}, err
	}
	if len(geoResp.Results) == 0 {
		return valueobjects.GeoPoint{}, fmt.Errorf("no location found for: %s", city)
	}
	return valueobjects.NewGeoPoint(geoResp.Results[0].Latitude, geoResp.Results[0].Longitude)
}

func (s *WeatherService) getNominatimCoordinates(ctx context.Context, city string) (valueobjects.GeoPoint, error) {
	params := url.Values{}
	params.Add("q", city)
	params.Add("format", "json")
	params.Add("limit", "1")

	var nominatimResp []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := s.getJSON(ctx, "nominatim", s.cfg.NominatimURL+"?"+params.Encode(), &nominatimResp); err != nil {
		return valueobjects.GeoPoint{}, err
	}
	if len(nominatimResp) == 0 {
		return valueobjects.GeoPoint{}, fmt.Errorf("no location found for: %s", city)
	}
	return valueobjects.ParseGeoPoint(nominatimResp[0].Lat, nominatimResp[0].Lon)
}

// getCurrentWeather fetches current conditions from Open-Meteo
func (s *WeatherService) getCurrentWeather(ctx context.Context, point valueobjects.GeoPoint) (*types.WeatherData, error) {
	params := url.Values{}
	params.Add("latitude", point.QueryLatitude())
	params.Add("longitude", point.QueryLongitude())
	params.Add("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	params.Add("wind_speed_unit", "ms")

	var forecast struct {
		Current struct {
			Temperature2m      float64 `json:"temperature_2m"`
			RelativeHumidity2m float64 `json:"relative_humidity_2m"`
			WindSpeed10m       float64 `json:"wind_speed_10m"`
			WeatherCode        int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := s.getJSON(ctx, "open-meteo", s.cfg.ForecastURL+"?"+params.Encode(), &forecast); err != nil {
		return nil, err
	}

	condition := describeWeatherCode(forecast.Current.WeatherCode)
	return &types.WeatherData{
		Temperature: forecast.Current.Temperature2m,
		Description: condition.description,
		Main:        condition.main,
		Humidity:    forecast.Current.RelativeHumidity2m,
		WindSpeed:   forecast.Current.WindSpeed10m,
	}, nil
}

// getOpenWeather fetches current conditions from OpenWeatherMap in metric units.
func (s *WeatherService) getOpenWeather(ctx context.Context, city string) (*types.WeatherData, error) {
	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", s.cfg.OpenWeatherAPIKey)
	params.Add("units", "metric")

	var owm struct {
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := s.getJSON(ctx, "openweathermap", s.cfg.OpenWeatherURL+"?"+params.Encode(), &owm); err != nil {
		return nil, err
	}

	weather := &types.WeatherData{
		Temperature: owm.Main.Temp,
		Description: "Unknown",
		Main:        "Unknown",
		Humidity:    owm.Main.Humidity,
		WindSpeed:   owm.Wind.Speed,
	}
	if len(owm.Weather) > 0 {
		if owm.Weather[0].Description != "" {
			weather.Description = owm.Weather[0].Description
		}
		if owm.Weather[0].Main != "" {
			weather.Main = owm.Weather[0].Main
		}
	}
	return weather, nil
}

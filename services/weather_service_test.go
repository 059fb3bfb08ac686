package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NomadCrew/itinerary-builder/config"
	"github.com/NomadCrew/itinerary-builder/types"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWeatherAPI serves the geocoding, Nominatim, forecast and OpenWeatherMap
// endpoints from a single test server.
type fakeWeatherAPI struct {
	geocodeStatus   int
	geocodeResults  string
	nominatimBody   string
	forecastStatus  int
	owmStatus       int
	forecastCalls   atomic.Int32
	owmCalls        atomic.Int32
	lastForecastURL atomic.Value
}

func newFakeWeatherAPI() *fakeWeatherAPI {
	return &fakeWeatherAPI{
		geocodeStatus:  http.StatusOK,
		geocodeResults: `{"results":[{"latitude":38.7167,"longitude":-9.1333}]}`,
		nominatimBody:  `[]`,
		forecastStatus: http.StatusOK,
		owmStatus:      http.StatusOK,
	}
}

func (f *fakeWeatherAPI) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(f.geocodeStatus)
		_, _ = w.Write([]byte(f.geocodeResults))
	})
	mux.HandleFunc("/nominatim", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ItineraryBuilderTest/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(f.nominatimBody))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		f.forecastCalls.Add(1)
		f.lastForecastURL.Store(r.URL.String())
		w.WriteHeader(f.forecastStatus)
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":21.5,"relative_humidity_2m":64,"wind_speed_10m":3.2,"weather_code":61}}`))
	})
	mux.HandleFunc("/owm", func(w http.ResponseWriter, r *http.Request) {
		f.owmCalls.Add(1)
		assert.Equal(t, "owm-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.WriteHeader(f.owmStatus)
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clouds","description":"broken clouds"}],"main":{"temp":18,"humidity":70},"wind":{"speed":5.1}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func weatherConfig(baseURL, owmKey string) config.WeatherConfig {
	return config.WeatherConfig{
		GeocodingURL:      baseURL + "/geocode",
		NominatimURL:      baseURL + "/nominatim",
		ForecastURL:       baseURL + "/forecast",
		OpenWeatherURL:    baseURL + "/owm",
		OpenWeatherAPIKey: owmKey,
		UserAgent:         "ItineraryBuilderTest/1.0",
		TimeoutSeconds:    5,
	}
}

func TestWeatherService_GetWeather_Primary(t *testing.T) {
	api := newFakeWeatherAPI()
	srv := api.start(t)

	svc := NewWeatherService(weatherConfig(srv.URL, ""), nil)
	weather, err := svc.GetWeather(context.Background(), "Lisbon", "2030-06-15")
	require.NoError(t, err)

	assert.Equal(t, &types.WeatherData{
		Temperature: 21.5,
		Description: "slight rain",
		Main:        "Rain",
		Humidity:    64,
		WindSpeed:   3.2,
	}, weather)

	forecastURL := api.lastForecastURL.Load().(string)
	assert.Contains(t, forecastURL, "latitude=38.7167")
	assert.Contains(t, forecastURL, "wind_speed_unit=ms")
}

func TestWeatherService_GetWeather_NominatimFallback(t *testing.T) {
	api := newFakeWeatherAPI()
	api.geocodeResults = `{"results":[]}`
	api.nominatimBody = `[{"lat":"48.8566","lon":"2.3522"}]`
	srv := api.start(t)

	svc := NewWeatherService(weatherConfig(srv.URL, ""), nil)
	weather, err := svc.GetWeather(context.Background(), "Paris", "2030-06-15")
	require.NoError(t, err)
	assert.Equal(t, 21.5, weather.Temperature)
	assert.Contains(t, api.lastForecastURL.Load().(string), "latitude=48.8566")
}

func TestWeatherService_GetWeather_OutOfRangeCoordinatesFallBack(t *testing.T) {
	api := newFakeWeatherAPI()
	api.geocodeResults = `{"results":[{"latitude":123.4,"longitude":2.35}]}`
	api.nominatimBody = `[{"lat":"48.8566","lon":"2.3522"}]`
	srv := api.start(t)

	svc := NewWeatherService(weatherConfig(srv.URL, ""), nil)
	_, err := svc.GetWeather(context.Background(), "Paris", "2030-06-15")
	require.NoError(t, err)
	assert.Contains(t, api.lastForecastURL.Load().(string), "latitude=48.8566")
}

func TestWeatherService_GetWeather_UnknownCityWithoutFallbackKey(t *testing.T) {
	api := newFakeWeatherAPI()
	api.geocodeResults = `{"results":[]}`
	srv := api.start(t)

	svc := NewWeatherService(weatherConfig(srv.URL, ""), nil)
	_, err := svc.GetWeather(context.Background(), "Atlantis", "2030-06-15")
	require.Error(t, err)
	assert.Equal(t, "no location found for: Atlantis", err.Error())
	assert.Zero(t, api.owmCalls.Load())
}

func TestWeatherService_GetWeather_OpenWeatherFallback(t *testing.T) {
	api := newFakeWeatherAPI()
	api.forecastStatus = http.StatusServiceUnavailable
	srv := api.start(t)

	svc := NewWeatherService(weatherConfig(srv.URL, "owm-key"), nil)
	weather, err := svc.GetWeather(context.Background(), "Lisbon", "2030-06-15")
	require.NoError(t, err)

	assert.Equal(t, &types.WeatherData{
		Temperature: 18,
		Description: "broken clouds",
		Main:        "Clouds",
		Humidity:    70,
		WindSpeed:   5.1,
	}, weather)
	assert.Equal(t, int32(1), api.owmCalls.Load())
}

func TestWeatherService_GetWeather_BothProvidersFail(t *testing.T) {
	api := newFakeWeatherAPI()
	api.forecastStatus = http.StatusInternalServerError
	api.owmStatus = http.StatusUnauthorized
	srv := api.start(t)

	svc := NewWeatherService(weatherConfig(srv.URL, "owm-key"), nil)
	_, err := svc.GetWeather(context.Background(), "Lisbon", "2030-06-15")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "primary: open-meteo API error: 500"), err.Error())
	assert.Contains(t, err.Error(), "; fallback: openweathermap API error: 401")
}

func TestWeatherService_GetWeather_UsesCache(t *testing.T) {
	api := newFakeWeatherAPI()
	srv := api.start(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewRedisWeatherCache(client, 30*time.Minute)

	svc := NewWeatherService(weatherConfig(srv.URL, ""), cache)
	first, err := svc.GetWeather(context.Background(), "Lisbon", "2030-06-15")
	require.NoError(t, err)
	second, err := svc.GetWeather(context.Background(), "lisbon ", "2030-06-15")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), api.forecastCalls.Load())

	raw, err := mr.Get("weather:lisbon:2030-06-15")
	require.NoError(t, err)
	var stored types.WeatherData
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "slight rain", stored.Description)
	assert.Equal(t, 30*time.Minute, mr.TTL("weather:lisbon:2030-06-15"))

	_, err = svc.GetWeather(context.Background(), "Lisbon", "2030-06-16")
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.forecastCalls.Load())
}

func TestWeatherService_GetWeather_CacheOutageIsIgnored(t *testing.T) {
	api := newFakeWeatherAPI()
	srv := api.start(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	svc := NewWeatherService(weatherConfig(srv.URL, ""), NewRedisWeatherCache(client, time.Minute))
	weather, err := svc.GetWeather(context.Background(), "Lisbon", "2030-06-15")
	require.NoError(t, err)
	assert.Equal(t, "Rain", weather.Main)
}

func TestDescribeWeatherCode(t *testing.T) {
	assert.Equal(t, weatherCondition{"Clear", "clear sky"}, describeWeatherCode(0))
	assert.Equal(t, weatherCondition{"Thunderstorm", "thunderstorm"}, describeWeatherCode(95))
	assert.Equal(t, weatherCondition{"Unknown", "Unknown"}, describeWeatherCode(42))
}

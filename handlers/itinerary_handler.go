package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/itinerary-builder/errors"
	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/NomadCrew/itinerary-builder/store"
	"github.com/NomadCrew/itinerary-builder/types"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ItineraryHandler serves the itinerary API.
type ItineraryHandler struct {
	weatherService types.WeatherServiceInterface
	generator      types.ItineraryGeneratorInterface
	store          store.ItineraryStore
	validate       *validator.Validate
	now            func() time.Time
}

// NewItineraryHandler creates a new ItineraryHandler with the given dependencies.
func NewItineraryHandler(
	weatherService types.WeatherServiceInterface,
	generator types.ItineraryGeneratorInterface,
	itineraryStore store.ItineraryStore,
) *ItineraryHandler {
	return &ItineraryHandler{
		weatherService: weatherService,
		generator:      generator,
		store:          itineraryStore,
		validate:       newValidator(),
		now:            time.Now,
	}
}

// CreateItineraryHandler godoc
// @Summary Create a weather-aware itinerary
// @Description Looks up the weather at the destination, asks the model for a day plan and stores the result
// @Tags itineraries
// @Accept json
// @Produce json
// @Param request body types.CreateItineraryRequest true "Destination and date"
// @Success 201 {object} types.Itinerary "Generated itinerary"
// @Failure 400 {object} middleware.ErrorResponse "Invalid input data or past date"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Failure 500 {object} middleware.ErrorResponse "Weather or generation failure"
// @Router /itinerary/ [post]
func (h *ItineraryHandler) CreateItineraryHandler(c *gin.Context) {
	log := logger.GetLogger()
	ctx := c.Request.Context()

	var req types.CreateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validationError(err))
		return
	}
	req.Destination = strings.TrimSpace(req.Destination)
	req.Date = strings.TrimSpace(req.Date)
	if err := h.validate.Struct(&req); err != nil {
		_ = c.Error(validationError(err))
		return
	}

	// Already validated as YYYY-MM-DD
	date, _ := time.Parse(types.DateLayout, req.Date)
	today := h.now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		_ = c.Error(apperrors.ValidationFailed("Date must be in the future", req.Date))
		return
	}

	weather, err := h.weatherService.GetWeather(ctx, req.Destination, req.Date)
	if err != nil {
		_ = c.Error(apperrors.ExternalService("Weather service error: "+err.Error(), err))
		return
	}
	if weather == nil {
		_ = c.Error(apperrors.ValidationFailed("Unable to fetch weather data for "+req.Destination, ""))
		return
	}

	plan, err := h.generator.Generate(ctx, req.Destination, req.Date, weather)
	if err != nil {
		_ = c.Error(apperrors.ExternalService("Itinerary generation error: "+err.Error(), err))
		return
	}

	itinerary := &types.Itinerary{
		Destination:   req.Destination,
		Date:          req.Date,
		WeatherData:   weather,
		ItineraryData: plan,
	}
	if err := h.store.Create(ctx, itinerary); err != nil {
		_ = c.Error(apperrors.NewDatabaseError(err))
		return
	}

	log.Infow("Itinerary created",
		"id", itinerary.ID,
		"destination", itinerary.Destination,
		"date", itinerary.Date)
	c.JSON(http.StatusCreated, itinerary)
}

// GetItineraryHandler godoc
// @Summary Get an itinerary
// @Tags itineraries
// @Produce json
// @Param id path int true "Itinerary ID"
// @Success 200 {object} types.Itinerary
// @Failure 404 {object} middleware.ErrorResponse "Itinerary not found"
// @Failure 500 {object} middleware.ErrorResponse
// @Router /itinerary/{id}/ [get]
func (h *ItineraryHandler) GetItineraryHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.NotFound("Itinerary not found"))
		return
	}

	itinerary, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = c.Error(apperrors.NotFound("Itinerary not found"))
			return
		}
		_ = c.Error(apperrors.NewDatabaseError(err))
		return
	}
	c.JSON(http.StatusOK, itinerary)
}

// ListItinerariesHandler godoc
// @Summary List itineraries
// @Description Returns every stored itinerary, newest first
// @Tags itineraries
// @Produce json
// @Success 200 {array} types.Itinerary
// @Failure 500 {object} middleware.ErrorResponse
// @Router /itineraries/ [get]
func (h *ItineraryHandler) ListItinerariesHandler(c *gin.Context) {
	itineraries, err := h.store.List(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.NewDatabaseError(err))
		return
	}
	c.JSON(http.StatusOK, itineraries)
}

package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/NomadCrew/itinerary-builder/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithError(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/test", handler)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/test", nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	t.Run("field validation renders details in field order", func(t *testing.T) {
		w := serveWithError(t, func(c *gin.Context) {
			var fields apperrors.FieldErrors
			fields.Add("destination", "This field is required.")
			fields.Add("date", "This field is required.")
			_ = c.Error(apperrors.ValidationFields("Invalid input data", fields))
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t,
			`{"error":"Invalid input data","details":{"destination":["This field is required."],"date":["This field is required."]}}`,
			w.Body.String())
	})

	t.Run("business rule renders a single error", func(t *testing.T) {
		w := serveWithError(t, func(c *gin.Context) {
			_ = c.Error(apperrors.ValidationFailed("Date must be in the future", ""))
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Date must be in the future"}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		w := serveWithError(t, func(c *gin.Context) {
			_ = c.Error(apperrors.NotFound("Itinerary not found"))
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Itinerary not found"}`, w.Body.String())
	})

	t.Run("wrapped app error keeps its status", func(t *testing.T) {
		w := serveWithError(t, func(c *gin.Context) {
			appErr := apperrors.ExternalService("Weather service error: boom", fmt.Errorf("boom"))
			_ = c.Error(fmt.Errorf("create itinerary: %w", appErr))
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Weather service error: boom"}`, w.Body.String())
	})

	t.Run("rate limit sets Retry-After", func(t *testing.T) {
		w := serveWithError(t, func(c *gin.Context) {
			_ = c.Error(apperrors.RateLimitExceeded("Too many requests", 42))
		})

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "42", w.Header().Get("Retry-After"))
	})

	t.Run("unknown error hides detail outside debug mode", func(t *testing.T) {
		w := serveWithError(t, func(c *gin.Context) {
			_ = c.Error(fmt.Errorf("pq: connection refused"))
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Internal Server Error", body["error"])
		assert.NotContains(t, body, "details")
	})

	t.Run("response already written is left alone", func(t *testing.T) {
		w := serveWithError(t, func(c *gin.Context) {
			c.JSON(http.StatusAccepted, gin.H{"ok": true})
			_ = c.Error(fmt.Errorf("late error"))
		})

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})
}

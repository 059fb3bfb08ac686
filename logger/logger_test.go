package logger

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSensitiveString(t *testing.T) {
	assert.Equal(t, "", MaskSensitiveString("", 4, 4))
	assert.Equal(t, "*****", MaskSensitiveString("short", 4, 4))
	assert.Equal(t, "gsk_...wxyz", MaskSensitiveString("gsk_abcdefghijklmnopqrstuvwxyz", 4, 4))
}

func TestMaskConnectionString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"url with password", "postgres://app:s3cret@db:5432/itineraries?sslmode=disable", "postgres://app:***@db:5432/itineraries?sslmode=disable"},
		{"url without password", "postgres://app@db:5432/itineraries", "postgres://app@db:5432/itineraries"},
		{"not a url", "host=db user=app", "host=db user=app"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskConnectionString(tt.input))
		})
	}
}

func TestFilterSensitiveHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("X-Api-Key", "k")
	h.Set("Content-Type", "application/json")

	got := filterSensitiveHeaders(h)
	assert.Equal(t, "[REDACTED]", got["Authorization"])
	assert.Equal(t, "[REDACTED]", got["X-Api-Key"])
	assert.Equal(t, "application/json", got["Content-Type"])
}

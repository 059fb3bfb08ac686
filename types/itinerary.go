package types

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// DateLayout is the wire format of itinerary dates.
const DateLayout = "2006-01-02"

// Value holds a raw JSON value whose shape is decided by the model that
// produced it. A missing or null value is empty.
type Value []byte

// StringValue returns s encoded as a JSON string value.
func StringValue(s string) Value {
	b, _ := json.Marshal(s)
	return Value(b)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = nil
		return nil
	}
	*v = append((*v)[:0], data...)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// IsEmpty reports whether the value is absent, null or an empty string.
func (v Value) IsEmpty() bool {
	return v.String() == ""
}

// IsTruthy reports whether the value would pass a loose boolean test:
// absent, null, false, zero and the empty string are all false.
func (v Value) IsTruthy() bool {
	raw := bytes.TrimSpace(v)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case '"':
		return v.String() != ""
	case '{', '[', 't':
		return true
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return true
	}
	return f != 0
}

// String renders the value as display text. Strings are unquoted; any other
// JSON value is returned as written.
func (v Value) String() string {
	raw := bytes.TrimSpace(v)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// ValueList is a JSON array of values. A single non-array value decodes as a
// one-item list.
type ValueList []Value

func (l *ValueList) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*l = nil
		return nil
	}
	if raw[0] != '[' {
		*l = ValueList{Value(append([]byte(nil), raw...))}
		return nil
	}
	var items []Value
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// WeatherData is the weather summary attached to an itinerary.
type WeatherData struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Main        string  `json:"main,omitempty"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// DaySegment is one of the morning, afternoon and evening blocks of a plan.
type DaySegment struct {
	Activities     ValueList `json:"activities,omitempty"`
	Food           Value     `json:"food,omitempty"`
	Transportation Value     `json:"transportation,omitempty"`
	EstimatedCost  Value     `json:"estimated_cost,omitempty"`
}

// ItineraryPlan is the structured day plan stored in itinerary_data.
type ItineraryPlan struct {
	Morning            *DaySegment `json:"morning,omitempty"`
	Afternoon          *DaySegment `json:"afternoon,omitempty"`
	Evening            *DaySegment `json:"evening,omitempty"`
	WeatherNotes       Value       `json:"weather_notes,omitempty"`
	TotalEstimatedCost Value       `json:"total_estimated_cost,omitempty"`
	// AIResponse keeps the raw model output when it could not be parsed.
	AIResponse string `json:"ai_response,omitempty"`
}

// Itinerary is a generated plan for one destination and date.
type Itinerary struct {
	ID            int64           `json:"id"`
	Destination   string          `json:"destination"`
	Date          string          `json:"date"`
	WeatherData   *WeatherData    `json:"weather_data,omitempty"`
	ItineraryData json.RawMessage `json:"itinerary_data,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Plan decodes ItineraryData. It returns nil when no plan is attached.
func (i *Itinerary) Plan() (*ItineraryPlan, error) {
	raw := bytes.TrimSpace(i.ItineraryData)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var plan ItineraryPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateItineraryRequest is the body of POST /api/itinerary/.
type CreateItineraryRequest struct {
	Destination string `json:"destination" validate:"required,max=100" example:"Lisbon"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02" example:"2025-06-15"`
}

// WeatherServiceInterface resolves current conditions for a city.
type WeatherServiceInterface interface {
	GetWeather(ctx context.Context, city, date string) (*WeatherData, error)
}

// ItineraryGeneratorInterface produces the itinerary_data document for a trip day.
type ItineraryGeneratorInterface interface {
	Generate(ctx context.Context, destination, date string, weather *WeatherData) (json.RawMessage, error)
}

package docs

// Models in this file only describe payloads for the generated API docs.

// DaySegmentDoc documents one block of itinerary_data.
// @Description Activities, food, transport and cost for part of the day
type DaySegmentDoc struct {
	Activities     []string `json:"activities" example:"Visit the Louvre,Walk along the Seine"`
	Food           string   `json:"food" example:"Croissants at a local bakery"`
	Transportation string   `json:"transportation" example:"Metro"`
	EstimatedCost  string   `json:"estimated_cost" example:"$20-40"`
}

// ItineraryDataDoc documents the itinerary_data document produced by the model.
// @Description Structured day plan
type ItineraryDataDoc struct {
	Morning            *DaySegmentDoc `json:"morning,omitempty"`
	Afternoon          *DaySegmentDoc `json:"afternoon,omitempty"`
	Evening            *DaySegmentDoc `json:"evening,omitempty"`
	WeatherNotes       string         `json:"weather_notes" example:"Pack an umbrella for the afternoon"`
	TotalEstimatedCost string         `json:"total_estimated_cost" example:"$60-120"`
	// Raw model output, present only when it could not be parsed
	AIResponse string `json:"ai_response,omitempty"`
}

// ValidationErrorDoc documents a 400 response carrying per-field messages.
// @Description Field validation failure
type ValidationErrorDoc struct {
	Error   string              `json:"error" example:"Invalid input data"`
	Details map[string][]string `json:"details"`
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NomadCrew/itinerary-builder/config"
	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/NomadCrew/itinerary-builder/types"
	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter is the part of the OpenAI client the generator uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GroqGenerator asks an OpenAI-compatible chat endpoint (Groq by default) for
// a day plan and normalizes the answer to a JSON document.
type GroqGenerator struct {
	api         ChatCompleter
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	metrics     *itineraryMetrics
}

var _ types.ItineraryGeneratorInterface = (*GroqGenerator)(nil)

// NewGroqGenerator builds a generator talking to cfg.BaseURL.
func NewGroqGenerator(cfg config.LLMConfig) *GroqGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewGroqGeneratorWithClient(openai.NewClientWithConfig(clientCfg), cfg)
}

// NewGroqGeneratorWithClient uses api instead of building a client from cfg.
func NewGroqGeneratorWithClient(api ChatCompleter, cfg config.LLMConfig) *GroqGenerator {
	return &GroqGenerator{
		api:         api,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		metrics:     getMetrics(),
	}
}

// Generate returns the itinerary_data document. Unusable model output is
// replaced by a generic plan; only transport and API failures are errors.
func (g *GroqGenerator) Generate(ctx context.Context, destination, date string, weather *types.WeatherData) (json.RawMessage, error) {
	if weather == nil {
		weather = &types.WeatherData{Description: "Unknown"}
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildItineraryPrompt(destination, date, weather)},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok && g.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.api.CreateChatCompletion(ctx, req)
	g.metrics.upstreamDuration.WithLabelValues("llm").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no completion choices")
	}

	data, reason := extractItinerary(resp.Choices[0].Message.Content, weather)
	if reason != "" {
		logger.GetLogger().Warnw("Model output unusable, using fallback itinerary",
			"destination", destination,
			"reason", reason)
		g.metrics.generationFallbacks.WithLabelValues(reason).Inc()
	}
	g.metrics.generated.Inc()
	return data, nil
}

// extractItinerary takes the text between the first '{' and the last '}' of
// content. It returns the fallback plan and a reason when that is not a JSON
// object or does not decode as an ItineraryPlan.
func extractItinerary(content string, weather *types.WeatherData) (json.RawMessage, string) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return fallbackItinerary(weather, ""), "no_json"
	}

	candidate := content[start : end+1]
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return fallbackItinerary(weather, content), "invalid_json"
	}
	var plan types.ItineraryPlan
	if err := json.Unmarshal([]byte(candidate), &plan); err != nil {
		return fallbackItinerary(weather, content), "invalid_shape"
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, []byte(candidate)); err != nil {
		return fallbackItinerary(weather, content), "invalid_json"
	}
	return compacted.Bytes(), ""
}

func fallbackItinerary(weather *types.WeatherData, aiResponse string) json.RawMessage {
	segment := func(activity, meal, cost string) *types.DaySegment {
		return &types.DaySegment{
			Activities:     []types.Value{types.StringValue(activity)},
			Food:           types.StringValue(meal),
			Transportation: types.StringValue("Walking or public transport"),
			EstimatedCost:  types.StringValue(cost),
		}
	}
	plan := types.ItineraryPlan{
		Morning:            segment("Explore local attractions", "Local breakfast recommendation", "$10-20"),
		Afternoon:          segment("Visit museums or landmarks", "Local lunch recommendation", "$15-30"),
		Evening:            segment("Dinner and entertainment", "Local dinner recommendation", "$20-40"),
		WeatherNotes:       types.StringValue("Weather-aware recommendations based on " + weather.Description),
		TotalEstimatedCost: types.StringValue("$45-90"),
		AIResponse:         aiResponse,
	}
	data, _ := json.Marshal(plan)
	return data
}

func buildItineraryPrompt(destination, date string, weather *types.WeatherData) string {
	summary := fmt.Sprintf("Temperature: %s°C, Weather: %s, Humidity: %s%%, Wind Speed: %s m/s",
		formatNumber(weather.Temperature),
		weather.Description,
		formatNumber(weather.Humidity),
		formatNumber(weather.WindSpeed))

	return fmt.Sprintf(`Create a detailed day-wise travel itinerary for %s on %s.

Weather Information: %s

Please provide a comprehensive itinerary that includes:
1. Morning activities (breakfast, sightseeing, etc.)
2. Afternoon activities (lunch, exploration, etc.)
3. Evening activities (dinner, entertainment, etc.)
4. Weather-appropriate recommendations (indoor activities if rainy, outdoor activities if sunny, etc.)
5. Local food recommendations
6. Transportation suggestions
7. Estimated costs for activities and meals

Format the response as a structured JSON with the following structure:
{
    "morning": {
        "activities": ["activity1", "activity2"],
        "food": "recommendation",
        "transportation": "suggestion",
        "estimated_cost": "cost range"
    },
    "afternoon": {
        "activities": ["activity1", "activity2"],
        "food": "recommendation",
        "transportation": "suggestion",
        "estimated_cost": "cost range"
    },
    "evening": {
        "activities": ["activity1", "activity2"],
        "food": "recommendation",
        "transportation": "suggestion",
        "estimated_cost": "cost range"
    },
    "weather_notes": "specific weather-related recommendations",
    "total_estimated_cost": "total cost range for the day"
}

Make sure the itinerary is practical, enjoyable, and takes into account the weather conditions.`,
		destination, date, summary)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/NomadCrew/itinerary-builder/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	displayDateLayout = "Monday, January 2, 2006"
	invalidDate       = "Invalid Date"
	notSpecified      = "Not specified"
)

// FormatDate renders a YYYY-MM-DD (or RFC 3339) date for display.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(types.DateLayout, value); err == nil {
		return t.Format(displayDateLayout)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(displayDateLayout)
	}
	return invalidDate
}

type weatherView struct {
	Temperature string
	Description string
	Humidity    string
	WindSpeed   string
}

type segmentView struct {
	Class          string
	Title          string
	Activities     []string
	Food           string
	Transportation string
	EstimatedCost  string
}

type itineraryView struct {
	Destination   string
	FormattedDate string
	Weather       *weatherView
	HasPlan       bool
	Segments      []segmentView
	WeatherNotes  string
	ShowTotalCost bool
	TotalCost     string
}

// RenderItinerary renders the result panel for an itinerary. A nil
// itinerary renders nothing.
func RenderItinerary(itinerary *types.Itinerary) (template.HTML, error) {
	if itinerary == nil {
		return "", nil
	}

	view, err := newItineraryView(itinerary)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "itinerary.html", view); err != nil {
		return "", fmt.Errorf("render itinerary: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func newItineraryView(itinerary *types.Itinerary) (*itineraryView, error) {
	view := &itineraryView{
		Destination:   itinerary.Destination,
		FormattedDate: FormatDate(itinerary.Date),
	}

	if w := itinerary.WeatherData; w != nil {
		view.Weather = &weatherView{
			Temperature: formatFloat(w.Temperature),
			Description: w.Description,
			Humidity:    formatFloat(w.Humidity),
			WindSpeed:   formatFloat(w.WindSpeed),
		}
	}

	plan, err := itinerary.Plan()
	if err != nil {
		return nil, fmt.Errorf("decode itinerary data: %w", err)
	}
	if plan == nil {
		return view, nil
	}

	view.HasPlan = true
	for _, part := range []struct {
		class, title string
		segment      *types.DaySegment
	}{
		{"morning", "🌅 Morning", plan.Morning},
		{"afternoon", "☀️ Afternoon", plan.Afternoon},
		{"evening", "🌆 Evening", plan.Evening},
	} {
		if part.segment == nil {
			continue
		}
		view.Segments = append(view.Segments, newSegmentView(part.class, part.title, part.segment))
	}

	if plan.WeatherNotes.IsTruthy() {
		view.WeatherNotes = displayText(plan.WeatherNotes)
	}
	if plan.TotalEstimatedCost.IsTruthy() {
		view.ShowTotalCost = true
		view.TotalCost = plan.TotalEstimatedCost.String()
	}
	return view, nil
}

func newSegmentView(class, title string, segment *types.DaySegment) segmentView {
	activities := make([]string, 0, len(segment.Activities))
	for _, a := range segment.Activities {
		activities = append(activities, a.String())
	}
	return segmentView{
		Class:          class,
		Title:          title,
		Activities:     activities,
		Food:           orNotSpecified(segment.Food),
		Transportation: orNotSpecified(segment.Transportation),
		EstimatedCost:  orNotSpecified(segment.EstimatedCost),
	}
}

func orNotSpecified(v types.Value) string {
	if !v.IsTruthy() {
		return notSpecified
	}
	return v.String()
}

// displayText joins the items of an array value; anything else renders as
// Value.String does.
func displayText(v types.Value) string {
	var items []types.Value
	if err := json.Unmarshal(v, &items); err != nil {
		return v.String()
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s := item.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

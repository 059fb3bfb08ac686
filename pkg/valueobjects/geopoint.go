package valueobjects

import (
	"fmt"
	"math"
	"strconv"

	"github.com/NomadCrew/itinerary-builder/errors"
)

// GeoPoint is a validated latitude/longitude pair.
type GeoPoint struct {
	latitude  float64
	longitude float64
}

// NewGeoPoint creates a GeoPoint, rejecting coordinates outside the valid
// ranges.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return GeoPoint{}, err
	}
	return GeoPoint{latitude: lat, longitude: lng}, nil
}

// ParseGeoPoint builds a GeoPoint from decimal strings such as the ones
// Nominatim returns.
func ParseGeoPoint(lat, lng string) (GeoPoint, error) {
	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return GeoPoint{}, errors.ValidationFailed("invalid latitude", lat)
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return GeoPoint{}, errors.ValidationFailed("invalid longitude", lng)
	}
	return NewGeoPoint(latitude, longitude)
}

func (g GeoPoint) Latitude() float64 {
	return g.latitude
}

func (g GeoPoint) Longitude() float64 {
	return g.longitude
}

// QueryLatitude formats the latitude with four decimals (about 11 m).
func (g GeoPoint) QueryLatitude() string {
	return strconv.FormatFloat(g.latitude, 'f', 4, 64)
}

func (g GeoPoint) QueryLongitude() string {
	return strconv.FormatFloat(g.longitude, 'f', 4, 64)
}

func (g GeoPoint) String() string {
	return fmt.Sprintf("(%f, %f)", g.latitude, g.longitude)
}

func validateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return errors.ValidationFailed(
			"invalid latitude",
			fmt.Sprintf("latitude %f is outside valid range [-90, 90]", lat),
		)
	}

	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return errors.ValidationFailed(
			"invalid longitude",
			fmt.Sprintf("longitude %f is outside valid range [-180, 180]", lng),
		)
	}

	return nil
}

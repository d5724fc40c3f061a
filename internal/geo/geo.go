// Package geo holds the distance, interpolation and ETA math used by order tracking.
package geo

import (
	"fmt"
	"math"
	"math/rand/v2"

	"food-ordering/internal/models"
)

const (
	earthRadiusKm = 6371.0

	// DefaultSpeedKmh is the average courier speed used for ETAs
	DefaultSpeedKmh = 30.0

	// driverJitterDegrees bounds the driver start offset on each axis
	driverJitterDegrees = 0.01
)

// CalculateDistance returns the great-circle distance between a and b in kilometers
func CalculateDistance(a, b models.Coordinates) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(1, math.Max(0, h))

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// InterpolateCoordinates returns the point at progress along the straight line
// from start to end. progress is clamped to [0,1].
func InterpolateCoordinates(start, end models.Coordinates, progress float64) models.Coordinates {
	switch {
	case progress <= 0 || math.IsNaN(progress):
		return start
	case progress >= 1:
		return end
	}
	return models.Coordinates{
		Latitude:  start.Latitude + (end.Latitude-start.Latitude)*progress,
		Longitude: start.Longitude + (end.Longitude-start.Longitude)*progress,
	}
}

// CalculateETAMinutes converts a distance into whole minutes at speedKmh.
// A non-positive speed falls back to DefaultSpeedKmh.
func CalculateETAMinutes(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	if distanceKm <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}

// FormatETA renders minutes for the tracking screen
func FormatETA(minutes int) string {
	if minutes <= 0 {
		return "Arriving now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return fmt.Sprintf("%d hr", hours)
	}
	return fmt.Sprintf("%d hr %d min", hours, rest)
}

// RandomDriverStartPosition returns a point jittered around the restaurant.
// rng may be nil, in which case the global source is used.
func RandomDriverStartPosition(restaurant models.Coordinates, rng *rand.Rand) models.Coordinates {
	float := rand.Float64
	if rng != nil {
		float = rng.Float64
	}
	return models.Coordinates{
		Latitude:  restaurant.Latitude + (float()*2-1)*driverJitterDegrees,
		Longitude: restaurant.Longitude + (float()*2-1)*driverJitterDegrees,
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

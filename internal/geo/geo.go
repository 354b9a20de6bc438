package geo

import (
	"fmt"
	"math"
)

const (
	earthRadiusKm = 6371
	avgSpeedKmH   = 30
)

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

type Landmark struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// NearestLandmark picks the landmark closest to (lat, lng) by squared
// Euclidean distance in raw degree space. Good enough at city scale; ties go
// to the first minimum.
func NearestLandmark(lat, lng float64, landmarks []Landmark) Landmark {
	var nearest Landmark
	minDist := math.Inf(1)
	for _, l := range landmarks {
		dLat := l.Lat - lat
		dLng := l.Lng - lng
		dist := dLat*dLat + dLng*dLng
		if dist < minDist {
			minDist = dist
			nearest = l
		}
	}
	return nearest
}

// Landmarks returns the neighborhoods used as map anchors in Recife.
func Landmarks() []Landmark {
	return []Landmark{
		{Name: "Boa Viagem", Lat: -8.1234, Lng: -34.9012},
		{Name: "Casa Forte", Lat: -8.0345, Lng: -34.9123},
		{Name: "Boa Vista", Lat: -8.0623, Lng: -34.8812},
		{Name: "Espinheiro", Lat: -8.0412, Lng: -34.8945},
		{Name: "Graças", Lat: -8.0389, Lng: -34.9034},
		{Name: "Madalena", Lat: -8.0567, Lng: -34.9089},
		{Name: "Imbiribeira", Lat: -8.1089, Lng: -34.9156},
	}
}

// EstimateArrivalLabel converts a distance into the arrival label shown to
// customers, assuming an average urban speed of 30 km/h.
func EstimateArrivalLabel(distanceKm float64) string {
	minutes := distanceKm / avgSpeedKmH * 60
	if minutes < 1 {
		return "Chegando!"
	}
	if minutes < 60 {
		return fmt.Sprintf("~%d min", int(math.Round(minutes)))
	}
	return fmt.Sprintf("~%dh", int(math.Round(minutes/60)))
}

// FormatDistanceLabel renders meters below 1 km, otherwise km to one decimal.
func FormatDistanceLabel(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

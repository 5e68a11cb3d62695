package model

import "time"

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is a cached geocoding result. Lat and Lon are nil when the
// provider could not resolve the address.
type Location struct {
	ID        int64     `json:"id" db:"id"`
	Address   string    `json:"address" db:"address"`
	Lat       *float64  `json:"lat" db:"lat"`
	Lon       *float64  `json:"lon" db:"lon"`
	QueriedAt time.Time `json:"queried_at" db:"queried_at"`
}

// Coordinates returns the stored point, or nil for a cached miss.
func (l *Location) Coordinates() *Coordinates {
	if l.Lat == nil || l.Lon == nil {
		return nil
	}
	return &Coordinates{Lat: *l.Lat, Lon: *l.Lon}
}

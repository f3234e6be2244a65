package domain

import (
	"math"
	"time"
)

type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Valid reports whether c can take part in a distance check. Zero and NaN
// components are treated as a missing fix.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	if c.Lat == 0 || c.Lng == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// LocationPing is one position reported by a wearable. Timestamp is the
// origin time of the fix, CreatedAt the insertion time.
type LocationPing struct {
	ID        string     `json:"id"`
	WatchID   string     `json:"watch_id"`
	Location  Coordinate `json:"location"`
	Timestamp time.Time  `json:"timestamp"`
	CreatedAt time.Time  `json:"created_at"`
}

type LocationQuery struct {
	WatchID string
	Since   *time.Time
}

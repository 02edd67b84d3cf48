package types

import (
	"encoding/json"
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// Location is a GeoJSON point with Indian postal address fields. It is
// persisted as flat columns and serialized as {type, coordinates, ...}.
type Location struct {
	Lng      float64 `gorm:"column:lng"`
	Lat      float64 `gorm:"column:lat"`
	Address  string  `gorm:"column:address"`
	State    string  `gorm:"column:state"`
	District string  `gorm:"column:district"`
	Pincode  string  `gorm:"column:pincode"`
}

type locationJSON struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
	Address     string     `json:"address,omitempty"`
	State       string     `json:"state,omitempty"`
	District    string     `json:"district,omitempty"`
	Pincode     string     `json:"pincode,omitempty"`
}

// DefaultLocation is New Delhi, used when a user registers without one.
func DefaultLocation() Location {
	return Location{
		Lng:      77.1025,
		Lat:      28.7041,
		Address:  "Delhi",
		State:    "Delhi",
		District: "New Delhi",
		Pincode:  "110001",
	}
}

func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationJSON{
		Type:        "Point",
		Coordinates: [2]float64{l.Lng, l.Lat},
		Address:     l.Address,
		State:       l.State,
		District:    l.District,
		Pincode:     l.Pincode,
	})
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var raw locationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != "" && raw.Type != "Point" {
		return fmt.Errorf("location type must be Point")
	}
	*l = Location{
		Lng:      raw.Coordinates[0],
		Lat:      raw.Coordinates[1],
		Address:  raw.Address,
		State:    raw.State,
		District: raw.District,
		Pincode:  raw.Pincode,
	}
	return nil
}

// Validate enforces finite coordinates within longitude and latitude bounds.
func (l Location) Validate() error {
	if !isFinite(l.Lng) || !isFinite(l.Lat) {
		return fmt.Errorf("coordinates must be finite numbers")
	}
	if l.Lng < -180 || l.Lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	return nil
}

// DistanceMeters returns the haversine distance between two points.
func (l Location) DistanceMeters(other Location) float64 {
	lat1 := l.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (other.Lng - l.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// LngRange is an inclusive longitude interval with Min <= Max.
type LngRange struct {
	Min float64
	Max float64
}

// BoundingBox encloses a circle on the lng/lat grid. A box crossing the
// antimeridian is split into two longitude ranges.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	Lng    []LngRange
}

// Contains reports whether p falls inside the box.
func (b BoundingBox) Contains(p Location) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	for _, r := range b.Lng {
		if p.Lng >= r.Min && p.Lng <= r.Max {
			return true
		}
	}
	return false
}

// BoundingBox returns the box enclosing a circle of radius meters around l.
// It is a coarse prefilter for DistanceMeters.
func (l Location) BoundingBox(meters float64) BoundingBox {
	dLat := (meters / earthRadiusMeters) * 180 / math.Pi
	box := BoundingBox{
		MinLat: math.Max(-90, l.Lat-dLat),
		MaxLat: math.Min(90, l.Lat+dLat),
	}

	cosLat := math.Cos(l.Lat * math.Pi / 180)
	dLng := 180.0
	if cosLat > 1e-9 {
		dLng = dLat / cosLat
	}
	// a circle reaching a pole covers every longitude
	if dLng >= 180 || l.Lat+dLat >= 90 || l.Lat-dLat <= -90 {
		box.Lng = []LngRange{{Min: -180, Max: 180}}
		return box
	}

	lo, hi := l.Lng-dLng, l.Lng+dLng
	switch {
	case lo < -180:
		box.Lng = []LngRange{{Min: lo + 360, Max: 180}, {Min: -180, Max: hi}}
	case hi > 180:
		box.Lng = []LngRange{{Min: lo, Max: 180}, {Min: -180, Max: hi - 360}}
	default:
		box.Lng = []LngRange{{Min: lo, Max: hi}}
	}
	return box
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

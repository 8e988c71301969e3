package v1

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidCoordinate marks latitude/longitude values outside the WGS 84 range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// PingRequest is the body of POST /ping.
// Pointer fields let the binder tell a missing value from a legitimate zero.
type PingRequest struct {
	DeviceID  string    `json:"device_id" binding:"required"`
	Latitude  *float64  `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64  `json:"longitude" binding:"required,gte=-180,lte=180"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
	Accuracy  *float64  `json:"accuracy" binding:"required,gt=0"`
}

// PingResponse is returned for an accepted ping.
type PingResponse struct {
	Status           string `json:"status"`
	NextPingInterval int    `json:"next_ping_interval"`
}

// DevicePing is the latest known position of one device. There is no history:
// each accepted ping overwrites the previous one.
type DevicePing struct {
	DeviceID   string    `json:"device_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	ObservedAt time.Time `json:"timestamp"`
}

// Validate checks the ping before any storage I/O.
func (p *DevicePing) Validate() error {
	if p.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	if err := ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
		return err
	}
	if !(p.Accuracy > 0) || math.IsInf(p.Accuracy, 0) {
		return fmt.Errorf("accuracy must be > 0, got %v", p.Accuracy)
	}
	return nil
}

// NearbyDevice is one hit of a radius query. Distance is in meters.
type NearbyDevice struct {
	DeviceID  string  `json:"device_id"`
	Distance  float64 `json:"distance"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbyQuery is bound from GET /nearby and GET /density query strings.
type NearbyQuery struct {
	Latitude  *float64 `form:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `form:"longitude" binding:"required,gte=-180,lte=180"`
	Radius    *float64 `form:"radius" binding:"required,gt=0"`
}

// NearbyResponse lists live devices ordered by ascending distance.
type NearbyResponse struct {
	Count   int            `json:"count"`
	Devices []NearbyDevice `json:"devices"`
}

// DensityResponse reports live device density around a point.
type DensityResponse struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	RadiusMeters  float64 `json:"radius_meters"`
	DeviceCount   int     `json:"device_count"`
	DevicesPerKm2 float64 `json:"devices_per_km2"`
}

// CleanupResponse is returned by POST /cleanup.
type CleanupResponse struct {
	Removed int `json:"removed"`
}

// ValidateCoordinates rejects NaN, infinities and values outside
// latitude [-90, 90] / longitude [-180, 180]. Bounds are inclusive.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, lon)
	}
	return nil
}

// Package geo turns provider records into map coordinates.
//
// Resolution never fails: every rule that cannot produce a coordinate hands
// over to the next one, and the chain ends with a jittered point near the
// viewer's origin so a map always has a pin to draw.
package geo

import (
	"context"
	"fmt"
	"math"
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is finite and inside WGS84 bounds.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// LocationQuery is the input to resolution. Empty strings mean "unknown".
type LocationQuery struct {
	Explicit       *Coordinate
	FullAddress    string
	ZipCode        string
	FallbackOrigin Coordinate
}

// Source records which rule produced a ResolvedLocation.
type Source int

const (
	SourceExplicit Source = iota + 1
	SourceGeocoded
	SourceZipTable
	SourceJittered
)

func (s Source) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourceGeocoded:
		return "geocoded"
	case SourceZipTable:
		return "zip_table"
	case SourceJittered:
		return "jittered"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSource converts the text form back into a Source.
func ParseSource(value string) (Source, error) {
	switch value {
	case "explicit":
		return SourceExplicit, nil
	case "geocoded":
		return SourceGeocoded, nil
	case "zip_table":
		return SourceZipTable, nil
	case "jittered":
		return SourceJittered, nil
	default:
		return 0, fmt.Errorf("unknown location source %q", value)
	}
}

// Precise reports whether the coordinate is worth persisting.
// Jittered points are only placeholders for display.
func (s Source) Precise() bool {
	return s == SourceExplicit || s == SourceGeocoded || s == SourceZipTable
}

// ResolvedLocation is the output of resolution. Lat/Lng are always set.
type ResolvedLocation struct {
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Source         Source  `json:"source"`
	DisplayAddress string  `json:"displayAddress"`
}

// Coordinate returns the resolved point.
func (r ResolvedLocation) Coordinate() Coordinate {
	return Coordinate{Lat: r.Lat, Lng: r.Lng}
}

// GeocodeResult is the single best match returned by a Geocoder.
type GeocodeResult struct {
	Coordinate
	DisplayName string
}

// Geocoder converts free-text addresses into coordinates.
// found=false with a nil error means the service had no match.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (result GeocodeResult, found bool, err error)
}

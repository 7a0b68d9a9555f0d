package domain

import (
	"context"
	"io"
)

// Photo is one uploaded listing image.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PhotoStorage stores listing photos and returns their public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, key string, photo Photo) (string, error)
}

// Address is the postal part of a location used for geocoding.
type Address struct {
	Street     string
	City       string
	State      string
	Country    string
	PostalCode string
}

// Geocoder resolves an address to coordinates. ok is false when the address
// could not be matched.
type Geocoder interface {
	Geocode(ctx context.Context, addr Address) (c Coordinates, ok bool, err error)
}

// GeocodeResult is a cached geocoder answer. Found is false for addresses the
// geocoder could not match.
type GeocodeResult struct {
	Coordinates Coordinates `json:"coordinates"`
	Found       bool        `json:"found"`
}

// GeocodeCache remembers geocoder answers per address. Get returns nil on a
// miss.
type GeocodeCache interface {
	Get(ctx context.Context, addr Address) (*GeocodeResult, error)
	Set(ctx context.Context, addr Address, r GeocodeResult) error
}

package domain

import "time"

// PropertyType enumerates listing kinds.
type PropertyType string

const (
	PropertyTypeRooms     PropertyType = "Rooms"
	PropertyTypeTenement  PropertyType = "Tenement"
	PropertyTypeTownhouse PropertyType = "Townhouse"
	PropertyTypeCottage   PropertyType = "Cottage"
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeVilla     PropertyType = "Villa"
)

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeRooms, PropertyTypeTenement, PropertyTypeTownhouse,
		PropertyTypeCottage, PropertyTypeApartment, PropertyTypeVilla:
		return true
	}
	return false
}

// Coordinates is a WGS84 point as exposed by the API.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Location is the postal address and geographic point of a property.
type Location struct {
	ID          int64       `json:"id"`
	Address     string      `json:"address"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	Country     string      `json:"country"`
	PostalCode  string      `json:"postalCode"`
	Coordinates Coordinates `json:"coordinates"`
}

// Property is a rentable listing.
type Property struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	PricePerMonth     float64      `json:"pricePerMonth"`
	SecurityDeposit   float64      `json:"securityDeposit"`
	ApplicationFee    float64      `json:"applicationFee"`
	PhotoURLs         []string     `json:"photoUrls"`
	Amenities         []string     `json:"amenities"`
	Highlights        []string     `json:"highlights"`
	IsPetsAllowed     bool         `json:"isPetsAllowed"`
	IsParkingIncluded bool         `json:"isParkingIncluded"`
	Beds              int          `json:"beds"`
	Baths             float64      `json:"baths"`
	SquareFeet        int          `json:"squareFeet"`
	PropertyType      PropertyType `json:"propertyType"`
	PostedDate        time.Time    `json:"postedDate"`
	AverageRating     float64      `json:"averageRating"`
	NumberOfReviews   int          `json:"numberOfReviews"`
	LocationID        int64        `json:"locationId"`
	ManagerCognitoID  string       `json:"managerCognitoId"`
	Location          *Location    `json:"location,omitempty"`
	Manager           *Manager     `json:"manager,omitempty"`
}

// PropertySearch holds the optional listing filters. Nil / empty fields are
// not applied.
type PropertySearch struct {
	FavoriteIDs   []int64
	PriceMin      *float64
	PriceMax      *float64
	Beds          *int
	Baths         *float64
	PropertyType  PropertyType
	SquareFeetMin *int
	SquareFeetMax *int
	Amenities     []string
	AvailableFrom *time.Time
	Near          *Coordinates
}

// SearchRadiusKm is the fixed radius used for coordinate searches.
const SearchRadiusKm = 1000.0

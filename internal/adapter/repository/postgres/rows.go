package postgres

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/V4T54L/rentwise/internal/domain"
)

// Column lists use a per-table prefix so joined rows scan into the embedded
// row structs below.

var propertyColumns = []string{
	"p.id AS p_id",
	"p.name AS p_name",
	"p.description AS p_description",
	"p.price_per_month AS p_price_per_month",
	"p.security_deposit AS p_security_deposit",
	"p.application_fee AS p_application_fee",
	"p.photo_urls AS p_photo_urls",
	"p.amenities AS p_amenities",
	"p.highlights AS p_highlights",
	"p.is_pets_allowed AS p_is_pets_allowed",
	"p.is_parking_included AS p_is_parking_included",
	"p.beds AS p_beds",
	"p.baths AS p_baths",
	"p.square_feet AS p_square_feet",
	"p.property_type AS p_property_type",
	"p.posted_date AS p_posted_date",
	"p.average_rating AS p_average_rating",
	"p.number_of_reviews AS p_number_of_reviews",
	"p.location_id AS p_location_id",
	"p.manager_cognito_id AS p_manager_cognito_id",
}

var locationColumns = []string{
	"loc.id AS loc_id",
	"loc.address AS loc_address",
	"loc.city AS loc_city",
	"loc.state AS loc_state",
	"loc.country AS loc_country",
	"loc.postal_code AS loc_postal_code",
	"ST_X(loc.coordinates::geometry) AS loc_longitude",
	"ST_Y(loc.coordinates::geometry) AS loc_latitude",
}

var managerColumns = []string{
	"m.cognito_id AS m_cognito_id",
	"m.name AS m_name",
	"m.email AS m_email",
	"m.phone_number AS m_phone_number",
}

var tenantColumns = []string{
	"t.cognito_id AS t_cognito_id",
	"t.name AS t_name",
	"t.email AS t_email",
	"t.phone_number AS t_phone_number",
}

var leaseColumns = []string{
	"ls.id AS ls_id",
	"ls.start_date AS ls_start_date",
	"ls.end_date AS ls_end_date",
	"ls.rent AS ls_rent",
	"ls.deposit AS ls_deposit",
	"ls.property_id AS ls_property_id",
	"ls.tenant_cognito_id AS ls_tenant_cognito_id",
}

var applicationColumns = []string{
	"a.id AS a_id",
	"a.application_date AS a_application_date",
	"a.status AS a_status",
	"a.property_id AS a_property_id",
	"a.tenant_cognito_id AS a_tenant_cognito_id",
	"a.name AS a_name",
	"a.email AS a_email",
	"a.phone_number AS a_phone_number",
	"a.message AS a_message",
	"a.lease_id AS a_lease_id",
}

// propertyJoins attaches location and manager to "property p".
const propertyJoins = `JOIN location loc ON loc.id = p.location_id
	JOIN manager m ON m.cognito_id = p.manager_cognito_id`

func columns(groups ...[]string) string {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return strings.Join(all, ", ")
}

func concat(groups ...[]string) []string {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

type propertyRow struct {
	ID                int64          `db:"p_id"`
	Name              string         `db:"p_name"`
	Description       string         `db:"p_description"`
	PricePerMonth     float64        `db:"p_price_per_month"`
	SecurityDeposit   float64        `db:"p_security_deposit"`
	ApplicationFee    float64        `db:"p_application_fee"`
	PhotoURLs         pq.StringArray `db:"p_photo_urls"`
	Amenities         pq.StringArray `db:"p_amenities"`
	Highlights        pq.StringArray `db:"p_highlights"`
	IsPetsAllowed     bool           `db:"p_is_pets_allowed"`
	IsParkingIncluded bool           `db:"p_is_parking_included"`
	Beds              int            `db:"p_beds"`
	Baths             float64        `db:"p_baths"`
	SquareFeet        int            `db:"p_square_feet"`
	PropertyType      string         `db:"p_property_type"`
	PostedDate        time.Time      `db:"p_posted_date"`
	AverageRating     float64        `db:"p_average_rating"`
	NumberOfReviews   int            `db:"p_number_of_reviews"`
	LocationID        int64          `db:"p_location_id"`
	ManagerCognitoID  string         `db:"p_manager_cognito_id"`
}

type locationRow struct {
	ID         int64   `db:"loc_id"`
	Address    string  `db:"loc_address"`
	City       string  `db:"loc_city"`
	State      string  `db:"loc_state"`
	Country    string  `db:"loc_country"`
	PostalCode string  `db:"loc_postal_code"`
	Longitude  float64 `db:"loc_longitude"`
	Latitude   float64 `db:"loc_latitude"`
}

type managerRow struct {
	CognitoID   string `db:"m_cognito_id"`
	Name        string `db:"m_name"`
	Email       string `db:"m_email"`
	PhoneNumber string `db:"m_phone_number"`
}

type tenantRow struct {
	CognitoID   string `db:"t_cognito_id"`
	Name        string `db:"t_name"`
	Email       string `db:"t_email"`
	PhoneNumber string `db:"t_phone_number"`
}

type leaseRow struct {
	ID              int64     `db:"ls_id"`
	StartDate       time.Time `db:"ls_start_date"`
	EndDate         time.Time `db:"ls_end_date"`
	Rent            float64   `db:"ls_rent"`
	Deposit         float64   `db:"ls_deposit"`
	PropertyID      int64     `db:"ls_property_id"`
	TenantCognitoID string    `db:"ls_tenant_cognito_id"`
}

type applicationRow struct {
	ID              int64         `db:"a_id"`
	ApplicationDate time.Time     `db:"a_application_date"`
	Status          string        `db:"a_status"`
	PropertyID      int64         `db:"a_property_id"`
	TenantCognitoID string        `db:"a_tenant_cognito_id"`
	Name            string        `db:"a_name"`
	Email           string        `db:"a_email"`
	PhoneNumber     string        `db:"a_phone_number"`
	Message         string        `db:"a_message"`
	LeaseID         sql.NullInt64 `db:"a_lease_id"`
}

// propertyRecord is a property joined with its location and manager.
type propertyRecord struct {
	propertyRow
	locationRow
	managerRow
}

func (r propertyRow) toDomain() domain.Property {
	return domain.Property{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		PricePerMonth:     r.PricePerMonth,
		SecurityDeposit:   r.SecurityDeposit,
		ApplicationFee:    r.ApplicationFee,
		PhotoURLs:         nonNil(r.PhotoURLs),
		Amenities:         nonNil(r.Amenities),
		Highlights:        nonNil(r.Highlights),
		IsPetsAllowed:     r.IsPetsAllowed,
		IsParkingIncluded: r.IsParkingIncluded,
		Beds:              r.Beds,
		Baths:             r.Baths,
		SquareFeet:        r.SquareFeet,
		PropertyType:      domain.PropertyType(r.PropertyType),
		PostedDate:        r.PostedDate,
		AverageRating:     r.AverageRating,
		NumberOfReviews:   r.NumberOfReviews,
		LocationID:        r.LocationID,
		ManagerCognitoID:  r.ManagerCognitoID,
	}
}

func (r locationRow) toDomain() *domain.Location {
	return &domain.Location{
		ID:          r.ID,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Country:     r.Country,
		PostalCode:  r.PostalCode,
		Coordinates: domain.Coordinates{Longitude: r.Longitude, Latitude: r.Latitude},
	}
}

func (r managerRow) toDomain() *domain.Manager {
	return &domain.Manager{CognitoID: r.CognitoID, Name: r.Name, Email: r.Email, PhoneNumber: r.PhoneNumber}
}

func (r tenantRow) toDomain() *domain.Tenant {
	return &domain.Tenant{CognitoID: r.CognitoID, Name: r.Name, Email: r.Email, PhoneNumber: r.PhoneNumber}
}

func (r leaseRow) toDomain() domain.Lease {
	return domain.Lease{
		ID:              r.ID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Rent:            r.Rent,
		Deposit:         r.Deposit,
		PropertyID:      r.PropertyID,
		TenantCognitoID: r.TenantCognitoID,
	}
}

func (r applicationRow) toDomain() domain.Application {
	a := domain.Application{
		ID:              r.ID,
		ApplicationDate: r.ApplicationDate,
		Status:          domain.ApplicationStatus(r.Status),
		PropertyID:      r.PropertyID,
		TenantCognitoID: r.TenantCognitoID,
		Name:            r.Name,
		Email:           r.Email,
		PhoneNumber:     r.PhoneNumber,
		Message:         r.Message,
	}
	if r.LeaseID.Valid {
		id := r.LeaseID.Int64
		a.LeaseID = &id
	}
	return a
}

func (r propertyRecord) toDomain() domain.Property {
	p := r.propertyRow.toDomain()
	p.Location = r.locationRow.toDomain()
	p.Manager = r.managerRow.toDomain()
	return p
}

func propertiesFrom(rows []propertyRecord) []domain.Property {
	out := make([]domain.Property, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

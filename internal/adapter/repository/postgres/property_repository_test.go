package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/rentwise/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestSearchQuery(t *testing.T) {
	t.Run("No filters", func(t *testing.T) {
		query, args, err := searchQuery(domain.PropertySearch{})
		require.NoError(t, err)
		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "FROM property p JOIN location loc")
		assert.Empty(t, args)
	})

	t.Run("All filters", func(t *testing.T) {
		from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		query, args, err := searchQuery(domain.PropertySearch{
			FavoriteIDs:   []int64{1, 2},
			PriceMin:      ptr(500.0),
			PriceMax:      ptr(2000.0),
			Beds:          ptr(2),
			Baths:         ptr(1.5),
			SquareFeetMin: ptr(600),
			SquareFeetMax: ptr(1800),
			PropertyType:  domain.PropertyTypeApartment,
			Amenities:     []string{"Pool", "Gym"},
			AvailableFrom: &from,
			Near:          &domain.Coordinates{Longitude: -122.33, Latitude: 47.61},
		})
		require.NoError(t, err)

		for _, frag := range []string{
			"p.id IN ($1,$2)",
			"p.price_per_month >= $3",
			"p.price_per_month <= $4",
			"p.beds >= $5",
			"p.baths >= $6",
			"p.square_feet >= $7",
			"p.square_feet <= $8",
			"p.property_type = $9",
			"p.amenities @> $10",
			"al.start_date <= $11",
			"ST_DWithin(loc.coordinates::geometry, ST_SetSRID(ST_MakePoint($12, $13), 4326), $14)",
			"ORDER BY p.id",
		} {
			assert.Contains(t, query, frag)
		}
		assert.Equal(t, []any{
			int64(1), int64(2), 500.0, 2000.0, 2, 1.5, 600, 1800, "Apartment",
			pq.Array([]string{"Pool", "Gym"}), from, -122.33, 47.61, 1000.0 / 111.0,
		}, args)
	})

	t.Run("Price range only", func(t *testing.T) {
		preds := searchPredicates(domain.PropertySearch{PriceMin: ptr(100.0), PriceMax: ptr(300.0)})
		assert.Len(t, preds, 2)
	})
}

func TestPropertyRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewPropertyRepository(db)

	cols := aliases(propertyColumns, locationColumns, managerColumns)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(propertyValues(10, "mgr-1")...))

	p, err := repo.FindByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Harbor Loft", p.Name)
	assert.Equal(t, []string{"https://cdn/a.jpg"}, p.PhotoURLs)
	assert.Equal(t, []string{"Pool", "Gym"}, p.Amenities)
	assert.Equal(t, []string{}, p.Highlights)
	assert.Equal(t, domain.PropertyTypeApartment, p.PropertyType)
	require.NotNil(t, p.Location)
	assert.Equal(t, domain.Coordinates{Longitude: -122.33, Latitude: 47.61}, p.Location.Coordinates)
	require.NotNil(t, p.Manager)
	assert.Equal(t, "mgr-1", p.Manager.CognitoID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.FindByID(ctx, 11)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewPropertyRepository(db)

	p := &domain.Property{
		Name:             "Sunset Villa",
		PricePerMonth:    2400,
		PropertyType:     domain.PropertyTypeVilla,
		PostedDate:       posted,
		ManagerCognitoID: "mgr-1",
		Location: &domain.Location{
			Address: "12 Ocean Ave", City: "Santa Monica", State: "CA", Country: "USA", PostalCode: "90401",
			Coordinates: domain.Coordinates{Longitude: -118.49, Latitude: 34.01},
		},
	}

	mock.ExpectQuery(regexp.QuoteMeta("ST_SetSRID(ST_MakePoint($6, $7), 4326)")).
		WithArgs("12 Ocean Ave", "Santa Monica", "CA", "USA", "90401", -118.49, 34.01).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO property")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, int64(7), p.LocationID)
	assert.Equal(t, int64(7), p.Location.ID)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.ErrorIs(t, repo.Create(ctx, &domain.Property{Name: "x"}), domain.ErrValidation)
}

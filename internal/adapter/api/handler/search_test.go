package handler

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/rentwise/internal/domain"
)

func TestParsePropertySearch(t *testing.T) {
	t.Run("All filters", func(t *testing.T) {
		q, _ := url.ParseQuery("favoriteIds=1,2&priceMin=100&priceMax=900.5&beds=2&baths=1.5" +
			"&propertyType=Villa&squareFeetMin=300&squareFeetMax=900&amenities=Pool,Gym" +
			"&availableFrom=2024-06-01&latitude=34.01&longitude=-118.49")

		s, err := ParsePropertySearch(q)
		require.NoError(t, err)

		assert.Equal(t, []int64{1, 2}, s.FavoriteIDs)
		assert.Equal(t, 100.0, *s.PriceMin)
		assert.Equal(t, 900.5, *s.PriceMax)
		assert.Equal(t, 2, *s.Beds)
		assert.Equal(t, 1.5, *s.Baths)
		assert.Equal(t, domain.PropertyTypeVilla, s.PropertyType)
		assert.Equal(t, 300, *s.SquareFeetMin)
		assert.Equal(t, 900, *s.SquareFeetMax)
		assert.Equal(t, []string{"Pool", "Gym"}, s.Amenities)
		assert.True(t, s.AvailableFrom.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, &domain.Coordinates{Longitude: -118.49, Latitude: 34.01}, s.Near)
	})

	t.Run("Any is ignored", func(t *testing.T) {
		q, _ := url.ParseQuery("beds=any&baths=any&propertyType=any&amenities=any&availableFrom=any")
		s, err := ParsePropertySearch(q)
		require.NoError(t, err)
		assert.Equal(t, domain.PropertySearch{}, s)
	})

	t.Run("Unparseable date is ignored", func(t *testing.T) {
		q, _ := url.ParseQuery("availableFrom=next-week")
		s, err := ParsePropertySearch(q)
		require.NoError(t, err)
		assert.Nil(t, s.AvailableFrom)
	})

	errCases := []string{
		"priceMin=cheap",
		"beds=2.5",
		"favoriteIds=1,x",
		"latitude=34.01",
		"longitude=abc&latitude=1",
	}
	for _, raw := range errCases {
		t.Run("Rejects "+raw, func(t *testing.T) {
			q, _ := url.ParseQuery(raw)
			_, err := ParsePropertySearch(q)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Invalid("name", "is required"), 400, "validation"},
		{domain.ErrAlreadyFavorited, 409, "already_favorited"},
		{domain.ErrInvalidTransition, 409, "invalid_transition"},
		{domain.ErrConflict, 409, "conflict"},
		{domain.ErrNotFound, 404, "not_found"},
		{domain.ErrUnauthorized, 401, "unauthorized"},
		{domain.ErrForbidden, 403, "forbidden"},
		{assert.AnError, 500, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, body := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}

	_, body := classify(assert.AnError)
	assert.Equal(t, "internal server error", body.Message)
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/rentwise/internal/adapter/metrics"
	"github.com/V4T54L/rentwise/internal/domain"
)

type fakePhotoStorage struct {
	mu     sync.Mutex
	keys   []string
	failOn string
}

func (f *fakePhotoStorage) Upload(ctx context.Context, key string, photo domain.Photo) (string, error) {
	if f.failOn != "" && photo.Filename == f.failOn {
		return "", errors.New("access denied")
	}
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

type fakeGeocoder struct {
	coords domain.Coordinates
	ok     bool
	err    error
	got    domain.Address
}

func (f *fakeGeocoder) Geocode(ctx context.Context, addr domain.Address) (domain.Coordinates, bool, error) {
	f.got = addr
	return f.coords, f.ok, f.err
}

func validPropertyInput() CreatePropertyInput {
	return CreatePropertyInput{
		Name:             "Sunset Villa",
		PricePerMonth:    2400,
		SecurityDeposit:  1000,
		Beds:             3,
		Baths:            2,
		PropertyType:     domain.PropertyTypeVilla,
		Amenities:        []string{"Pool"},
		ManagerCognitoID: "mgr-1",
		Address: domain.Address{
			Street:     "12 Ocean Ave",
			City:       "Santa Monica",
			State:      "CA",
			Country:    "USA",
			PostalCode: "90401",
		},
	}
}

func TestPropertyUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Uploads photos and geocodes address", func(t *testing.T) {
		store := seedMarketplace(t)
		photos := &fakePhotoStorage{}
		geo := &fakeGeocoder{coords: domain.Coordinates{Longitude: -118.49, Latitude: 34.01}, ok: true}
		m := metrics.New(prometheus.NewRegistry())
		uc := NewPropertyUseCase(store, photos, geo, m, discardLogger())
		uc.now = func() time.Time { return fixedNow }

		p, err := uc.Create(ctx, validPropertyInput(), []domain.Photo{
			{Filename: "front.jpg", ContentType: "image/jpeg", Body: strings.NewReader("a")},
			{Filename: "pool.jpg", ContentType: "image/jpeg", Body: strings.NewReader("b")},
		})
		require.NoError(t, err)

		require.Len(t, p.PhotoURLs, 2)
		assert.True(t, strings.HasSuffix(p.PhotoURLs[0], "-front.jpg"), "urls keep input order")
		assert.True(t, strings.HasSuffix(p.PhotoURLs[1], "-pool.jpg"))
		for _, k := range photos.keys {
			assert.True(t, strings.HasPrefix(k, "properties/"))
		}
		require.NotNil(t, p.Location)
		assert.Equal(t, -118.49, p.Location.Coordinates.Longitude)
		assert.Equal(t, 34.01, p.Location.Coordinates.Latitude)
		assert.Equal(t, "12 Ocean Ave", p.Location.Address)
		assert.Equal(t, "Santa Monica", geo.got.City)
		require.NotNil(t, p.Manager)
		assert.Equal(t, "mgr-1", p.Manager.CognitoID)
		assert.True(t, p.PostedDate.Equal(fixedNow))
		assert.Equal(t, []string{}, p.Highlights)
		assert.Equal(t, 2.0, testutil.ToFloat64(m.PhotoUploads.WithLabelValues("ok")))
	})

	t.Run("Unmatched address stored at origin", func(t *testing.T) {
		uc := NewPropertyUseCase(seedMarketplace(t), &fakePhotoStorage{}, &fakeGeocoder{ok: false}, nil, discardLogger())

		p, err := uc.Create(ctx, validPropertyInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, domain.Coordinates{}, p.Location.Coordinates)
		assert.Empty(t, p.PhotoURLs)
	})

	t.Run("Geocoder failure stored at origin", func(t *testing.T) {
		geo := &fakeGeocoder{coords: domain.Coordinates{Longitude: 1, Latitude: 1}, ok: true, err: errors.New("503")}
		uc := NewPropertyUseCase(seedMarketplace(t), &fakePhotoStorage{}, geo, nil, discardLogger())

		p, err := uc.Create(ctx, validPropertyInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, domain.Coordinates{}, p.Location.Coordinates)
	})

	t.Run("Upload failure stores nothing", func(t *testing.T) {
		store := seedMarketplace(t)
		uc := NewPropertyUseCase(store, &fakePhotoStorage{failOn: "bad.png"}, &fakeGeocoder{}, nil, discardLogger())

		_, err := uc.Create(ctx, validPropertyInput(), []domain.Photo{
			{Filename: "ok.png", Body: strings.NewReader("x")},
			{Filename: "bad.png", Body: strings.NewReader("y")},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.png")
		assert.Equal(t, 0, store.TxRuns)
	})

	t.Run("Unknown manager", func(t *testing.T) {
		in := validPropertyInput()
		in.ManagerCognitoID = "nobody"
		uc := NewPropertyUseCase(seedMarketplace(t), &fakePhotoStorage{}, &fakeGeocoder{}, nil, discardLogger())

		_, err := uc.Create(ctx, in, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Validation", func(t *testing.T) {
		uc := NewPropertyUseCase(seedMarketplace(t), &fakePhotoStorage{}, &fakeGeocoder{}, nil, discardLogger())
		tests := []struct {
			name   string
			mutate func(*CreatePropertyInput)
		}{
			{"Missing name", func(in *CreatePropertyInput) { in.Name = "" }},
			{"Negative price", func(in *CreatePropertyInput) { in.PricePerMonth = -1 }},
			{"Missing type", func(in *CreatePropertyInput) { in.PropertyType = "" }},
			{"Unknown type", func(in *CreatePropertyInput) { in.PropertyType = "Castle" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := validPropertyInput()
				tt.mutate(&in)
				_, err := uc.Create(ctx, in, nil)
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})
}

func TestPropertyUseCase_Lookups(t *testing.T) {
	ctx := context.Background()
	store := seedMarketplace(t)
	uc := NewPropertyUseCase(store, nil, nil, nil, discardLogger())

	t.Run("Get", func(t *testing.T) {
		p, err := uc.Get(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "Harbor Loft", p.Name)

		_, err = uc.Get(ctx, 77)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Search", func(t *testing.T) {
		lo := 1500.0
		props, err := uc.Search(ctx, domain.PropertySearch{PriceMin: &lo})
		require.NoError(t, err)
		assert.Empty(t, props)
	})

	t.Run("Manager listings", func(t *testing.T) {
		props, err := uc.ListByManager(ctx, "mgr-1")
		require.NoError(t, err)
		require.Len(t, props, 1)

		_, err = uc.ListByManager(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Residences", func(t *testing.T) {
		require.NoError(t, store.Properties().AddResident(ctx, 10, "ten-1"))
		props, err := uc.ListResidences(ctx, "ten-1")
		require.NoError(t, err)
		require.Len(t, props, 1)
		assert.Equal(t, int64(10), props[0].ID)

		_, err = uc.ListResidences(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPhotoKey(t *testing.T) {
	k1 := PhotoKey("kitchen.jpg")
	k2 := PhotoKey("kitchen.jpg")
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "properties/"))
	assert.True(t, strings.HasSuffix(k1, "-kitchen.jpg"))

	assert.True(t, strings.HasSuffix(PhotoKey(`C:\Users\me\bath.png`), "-bath.png"))
	assert.True(t, strings.HasSuffix(PhotoKey("../../etc/passwd"), "-passwd"))
}

package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/V4T54L/rentwise/internal/domain"
	"github.com/V4T54L/rentwise/internal/usecase"
)

const (
	photosField = "photos"
	anyValue    = "any"
	// formMemory is how much of a multipart body is buffered in memory
	// before spilling to temporary files.
	formMemory = 8 << 20
)

// PropertyHandler serves listing search, detail and creation.
type PropertyHandler struct {
	uc             *usecase.PropertyUseCase
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(uc *usecase.PropertyUseCase, logger *slog.Logger, maxUploadBytes int64) *PropertyHandler {
	return &PropertyHandler{uc: uc, logger: logger, maxUploadBytes: maxUploadBytes}
}

// Search handles GET /properties.
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	search, err := ParsePropertySearch(r.URL.Query())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	props, err := h.uc.Search(r.Context(), search)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, props)
}

// Get handles GET /properties/{id}.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	p, err := h.uc.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, p)
}

// Create handles the multipart POST /properties. Files are read from the
// "photos" field; list fields are comma separated and booleans are true only
// for the literal "true".
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := principal(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondWithJSON(w, h.logger, http.StatusRequestEntityTooLarge, ErrorResponse{"too_large", "upload too large"})
			return
		}
		respondWithError(w, r, h.logger, domain.Invalid("body", "expected multipart/form-data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	in, err := parsePropertyForm(r.MultipartForm.Value)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	if in.ManagerCognitoID == "" {
		in.ManagerCognitoID = caller.ID
	}
	if in.ManagerCognitoID != caller.ID {
		respondWithError(w, r, h.logger, domain.ErrForbidden)
		return
	}

	photos, closeAll, err := openPhotos(r.MultipartForm.File[photosField])
	defer closeAll()
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	p, err := h.uc.Create(r.Context(), in, photos)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, p)
}

func openPhotos(headers []*multipart.FileHeader) ([]domain.Photo, func(), error) {
	var files []io.Closer
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	photos := make([]domain.Photo, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("open upload %q: %w", fh.Filename, err)
		}
		files = append(files, f)
		photos = append(photos, domain.Photo{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return photos, closeAll, nil
}

// formReader collects the first parse error of a sequence of form reads.
type formReader struct {
	values url.Values
	err    error
}

func (f *formReader) str(key string) string {
	return strings.TrimSpace(f.values.Get(key))
}

func (f *formReader) list(key string) []string {
	raw := f.str(key)
	if raw == "" {
		return []string{}
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (f *formReader) number(key string) float64 {
	raw := f.str(key)
	if raw == "" || f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.err = domain.Invalid(key, "must be a number")
	}
	return v
}

func (f *formReader) integer(key string) int {
	raw := f.str(key)
	if raw == "" || f.err != nil {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		f.err = domain.Invalid(key, "must be an integer")
	}
	return v
}

func parsePropertyForm(values url.Values) (usecase.CreatePropertyInput, error) {
	f := &formReader{values: values}
	in := usecase.CreatePropertyInput{
		Name:              f.str("name"),
		Description:       f.str("description"),
		PricePerMonth:     f.number("pricePerMonth"),
		SecurityDeposit:   f.number("securityDeposit"),
		ApplicationFee:    f.number("applicationFee"),
		Amenities:         f.list("amenities"),
		Highlights:        f.list("highlights"),
		IsPetsAllowed:     f.str("isPetsAllowed") == "true",
		IsParkingIncluded: f.str("isParkingIncluded") == "true",
		Beds:              f.integer("beds"),
		Baths:             f.number("baths"),
		SquareFeet:        f.integer("squareFeet"),
		PropertyType:      domain.PropertyType(f.str("propertyType")),
		ManagerCognitoID:  f.str("managerCognitoId"),
		Address: domain.Address{
			Street:     f.str("address"),
			City:       f.str("city"),
			State:      f.str("state"),
			Country:    f.str("country"),
			PostalCode: f.str("postalCode"),
		},
	}
	return in, f.err
}

// ParsePropertySearch maps listing query parameters onto a PropertySearch.
// Absent parameters and the literal "any" leave a filter unset. Malformed
// numbers are rejected; an unparseable availableFrom is ignored.
func ParsePropertySearch(q url.Values) (domain.PropertySearch, error) {
	var s domain.PropertySearch
	get := func(key string) string {
		v := strings.TrimSpace(q.Get(key))
		if v == anyValue {
			return ""
		}
		return v
	}

	if raw := get("favoriteIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return s, domain.Invalid("favoriteIds", "must be a comma separated list of integers")
			}
			s.FavoriteIDs = append(s.FavoriteIDs, id)
		}
	}

	var err error
	if s.PriceMin, err = optFloat(get("priceMin"), "priceMin"); err != nil {
		return s, err
	}
	if s.PriceMax, err = optFloat(get("priceMax"), "priceMax"); err != nil {
		return s, err
	}
	if s.Beds, err = optInt(get("beds"), "beds"); err != nil {
		return s, err
	}
	if s.Baths, err = optFloat(get("baths"), "baths"); err != nil {
		return s, err
	}
	if s.SquareFeetMin, err = optInt(get("squareFeetMin"), "squareFeetMin"); err != nil {
		return s, err
	}
	if s.SquareFeetMax, err = optInt(get("squareFeetMax"), "squareFeetMax"); err != nil {
		return s, err
	}

	s.PropertyType = domain.PropertyType(get("propertyType"))

	if raw := get("amenities"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				s.Amenities = append(s.Amenities, a)
			}
		}
	}

	if raw := get("availableFrom"); raw != "" {
		if t, ok := parseDate(raw); ok {
			s.AvailableFrom = &t
		}
	}

	lat, err := optFloat(get("latitude"), "latitude")
	if err != nil {
		return s, err
	}
	lng, err := optFloat(get("longitude"), "longitude")
	if err != nil {
		return s, err
	}
	switch {
	case lat != nil && lng != nil:
		s.Near = &domain.Coordinates{Longitude: *lng, Latitude: *lat}
	case lat != nil || lng != nil:
		return s, domain.Invalid("latitude", "latitude and longitude must be given together")
	}

	return s, nil
}

func optFloat(raw, field string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.Invalid(field, "must be a number")
	}
	return &v, nil
}

func optInt(raw, field string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.Invalid(field, "must be an integer")
	}
	return &v, nil
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

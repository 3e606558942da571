package airquality

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// coordinatePattern matches "lat,lon" with optional signs and decimals.
// Anything else is treated as a place name.
var coordinatePattern = regexp.MustCompile(`^-?\d+(\.\d+)?\s*,\s*-?\d+(\.\d+)?$`)

// Resolver turns free-text input into a canonical Location, deduplicated by
// case-insensitive name, creating and backfilling entries as needed.
type Resolver struct {
	provider  Provider
	locations LocationStore
}

// NewResolver creates a Resolver backed by the given provider and store.
func NewResolver(provider Provider, locations LocationStore) *Resolver {
	return &Resolver{provider: provider, locations: locations}
}

// Resolve classifies input as coordinates or a name and resolves it to a
// stored Location. The returned Location always carries coordinates.
func (r *Resolver) Resolve(ctx context.Context, input string) (Location, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Location{}, fmt.Errorf("%w: location is required", ErrValidation)
	}

	if coordinatePattern.MatchString(trimmed) {
		return r.resolveCoordinates(ctx, trimmed)
	}
	return r.resolveName(ctx, trimmed)
}

func (r *Resolver) resolveName(ctx context.Context, name string) (Location, error) {
	if existing, ok := r.locations.FindByName(name); ok {
		resolved := r.EnsureCoordinates(ctx, existing)
		if !resolved.HasCoordinates() {
			return Location{}, fmt.Errorf("%w: %s", ErrMissingCoordinates, resolved.Name)
		}
		return resolved, nil
	}

	results, err := r.provider.Geocode(ctx, name, 1)
	if err != nil {
		return Location{}, upstream(fmt.Errorf("geocode %q: %v", name, err))
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	first := results[0]
	loc := Location{
		ID:        uuid.NewString(),
		Name:      name,
		Country:   first.Country,
		Latitude:  &first.Lat,
		Longitude: &first.Lon,
	}
	// Provider-returned name takes precedence over the caller's spelling.
	if strings.TrimSpace(first.Name) != "" {
		loc.Name = first.Name
	}

	return r.locations.Save(loc), nil
}

func (r *Resolver) resolveCoordinates(ctx context.Context, input string) (Location, error) {
	parts := strings.SplitN(input, ",", 2)
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: bad latitude %q", ErrValidation, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: bad longitude %q", ErrValidation, parts[1])
	}

	results, err := r.provider.ReverseGeocode(ctx, lat, lon, 1)
	if err != nil {
		return Location{}, upstream(fmt.Errorf("reverse geocode %s: %v", input, err))
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("%w: no place at %s", ErrNotFound, input)
	}

	first := results[0]
	name := strings.TrimSpace(first.Name)
	if name == "" {
		name = "Unknown City"
	}

	// An existing entry wins; its coordinates are not overwritten here.
	if existing, ok := r.locations.FindByName(name); ok {
		return existing, nil
	}

	// The caller-supplied coordinates are stored, not the provider's
	// reflowed point for the resolved place.
	loc := Location{
		ID:        uuid.NewString(),
		Name:      name,
		Country:   first.Country,
		Latitude:  &lat,
		Longitude: &lon,
	}
	return r.locations.Save(loc), nil
}

// EnsureCoordinates backfills missing coordinates/country on an existing
// Location. It is best-effort: provider failures and empty results leave the
// Location exactly as it was. A Location that already has coordinates is
// never reset by a failed attempt.
func (r *Resolver) EnsureCoordinates(ctx context.Context, loc Location) Location {
	if loc.HasCoordinates() && loc.Country != "" {
		return loc
	}

	results, err := r.provider.Geocode(ctx, loc.Name, 1)
	if err != nil {
		log.Warn().Err(err).Str("location", loc.Name).Msg("coordinate backfill failed")
		return loc
	}
	if len(results) == 0 {
		log.Warn().Str("location", loc.Name).Msg("coordinate backfill returned no match")
		return loc
	}

	first := results[0]
	loc.Latitude = &first.Lat
	loc.Longitude = &first.Lon
	if strings.TrimSpace(first.Country) != "" {
		loc.Country = first.Country
	}
	if strings.TrimSpace(first.Name) != "" {
		loc.Name = first.Name
	}
	return r.locations.Save(loc)
}

// Package directory holds the static gym reference data the estimation core
// reads: lookups by id, province/city listings, and text search.
package directory

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/model"
)

// ErrGymNotFound is returned when a gym id does not resolve.
var ErrGymNotFound = eris.New("directory: gym not found")

// Directory is an in-memory gym directory. It is immutable after
// construction, so concurrent readers need no locking.
type Directory struct {
	gyms []model.Gym
	byID map[string]*model.Gym
}

// New builds a Directory from a gym list. Later entries with a duplicate id
// are dropped.
func New(gyms []model.Gym) *Directory {
	d := &Directory{byID: make(map[string]*model.Gym, len(gyms))}
	for _, g := range gyms {
		if _, ok := d.byID[g.ID]; ok {
			continue
		}
		d.gyms = append(d.gyms, g)
		d.byID[g.ID] = &d.gyms[len(d.gyms)-1]
	}
	return d
}

// GymByID resolves a gym id. Returns ErrGymNotFound for unknown ids.
func (d *Directory) GymByID(id string) (*model.Gym, error) {
	g, ok := d.byID[id]
	if !ok {
		return nil, eris.Wrapf(ErrGymNotFound, "id %q", id)
	}
	return g, nil
}

// All returns every gym, ordered by province then city then name.
func (d *Directory) All() []model.Gym {
	out := make([]model.Gym, len(d.gyms))
	copy(out, d.gyms)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Province != out[j].Province {
			return out[i].Province < out[j].Province
		}
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Provinces returns the distinct provinces present, sorted.
func (d *Directory) Provinces() []string {
	return d.distinct(func(g model.Gym) string { return g.Province })
}

// CitiesForProvince returns the distinct cities with at least one gym in the
// given province, sorted.
func (d *Directory) CitiesForProvince(province string) []string {
	seen := map[string]struct{}{}
	var cities []string
	for _, g := range d.gyms {
		if g.Province != province {
			continue
		}
		if _, ok := seen[g.City]; ok {
			continue
		}
		seen[g.City] = struct{}{}
		cities = append(cities, g.City)
	}
	sort.Strings(cities)
	return cities
}

// GymsForProvinceAndCity filters gyms by province, and by city when city is
// non-empty.
func (d *Directory) GymsForProvinceAndCity(province, city string) []model.Gym {
	var out []model.Gym
	for _, g := range d.gyms {
		if g.Province != province {
			continue
		}
		if city != "" && g.City != city {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Brands returns the distinct brands present, sorted.
func (d *Directory) Brands() []string {
	return d.distinct(func(g model.Gym) string { return g.Brand })
}

func (d *Directory) distinct(key func(model.Gym) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, g := range d.gyms {
		k := key(g)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

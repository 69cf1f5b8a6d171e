package model

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// DefaultCapacity is assumed for gyms that do not publish a member capacity.
const DefaultCapacity = 100

// Gym is a single gym location from the directory. Directory data is static
// reference data; the estimation core only ever reads it.
type Gym struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Brand       string      `json:"brand" yaml:"brand"`
	City        string      `json:"city" yaml:"city"`
	Address     string      `json:"address,omitempty" yaml:"address,omitempty"`
	Province    string      `json:"province" yaml:"province"`
	Coordinates Coordinates `json:"coordinates" yaml:"coordinates"`
	Capacity    int         `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// EffectiveCapacity returns the gym's capacity, falling back to
// DefaultCapacity when none is recorded.
func (g *Gym) EffectiveCapacity() int {
	if g == nil || g.Capacity <= 0 {
		return DefaultCapacity
	}
	return g.Capacity
}

// UnknownGymName is the placeholder label used when a gym id cannot be
// resolved against the directory. Readings degrade to this label instead of
// failing.
const UnknownGymName = "Unknown gym"

package directory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gympulse/pulse-cli/internal/model"
)

// foldTransformer strips diacritics so that "Montréal" matches "montreal".
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

func fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// Search returns gyms whose name, brand, or city contains the query,
// case- and diacritic-insensitively. An empty query matches nothing.
func (d *Directory) Search(query string) []model.Gym {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []model.Gym
	for _, g := range d.gyms {
		if strings.Contains(fold(g.Name), q) ||
			strings.Contains(fold(g.Brand), q) ||
			strings.Contains(fold(g.City), q) {
			out = append(out, g)
		}
	}
	return out
}

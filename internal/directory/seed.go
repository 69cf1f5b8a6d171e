package directory

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/gympulse/pulse-cli/internal/model"
)

//go:embed quebec.yaml
var quebecSeed []byte

type seedFile struct {
	Gyms []model.Gym `yaml:"gyms"`
}

// LoadSeed returns the embedded Quebec gym directory.
func LoadSeed() (*Directory, error) {
	return parseSeed(quebecSeed)
}

// LoadFile builds a Directory from a YAML gym list on disk.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "directory: read %s", path)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) (*Directory, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "directory: parse seed")
	}
	if len(f.Gyms) == 0 {
		return nil, eris.New("directory: seed contains no gyms")
	}
	for i, g := range f.Gyms {
		if g.ID == "" || g.Name == "" {
			return nil, eris.Errorf("directory: seed gym %d missing id or name", i)
		}
	}
	return New(f.Gyms), nil
}

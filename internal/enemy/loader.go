package enemy

import (
	"fmt"
	"os"

	"github.com/driftvale/tilerealm/server/internal/logger"
	"gopkg.in/yaml.v3"
)

// templatesFile is the on-disk structure of the enemies YAML file.
type templatesFile struct {
	Enemies map[string]Template `yaml:"enemies"`
}

// LoadCatalogFromYAML loads enemy templates from a YAML file.
func LoadCatalogFromYAML(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read enemies file: %w", err)
	}

	var file templatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse enemies YAML: %w", err)
	}

	templates := make(map[string]Template, len(file.Enemies))
	for key, def := range file.Enemies {
		def.Key = key

		// Auto-correct inverted or missing level ranges
		if def.MinLevel < 1 {
			def.MinLevel = 1
		}
		if def.MaxLevel < def.MinLevel {
			logger.Warning("Enemy template auto-correction applied",
				"enemy", key,
				"issue", "max_level below min_level",
				"action", "set max_level to min_level")
			def.MaxLevel = def.MinLevel
		}
		if def.SpawnWeight < 0 {
			def.SpawnWeight = 0
		}
		if def.BaseHP <= 0 {
			return nil, fmt.Errorf("enemy template %q has non-positive base_hp", key)
		}

		templates[key] = def
	}

	logger.Info("Enemy templates loaded", "path", filename, "count", len(templates))
	return NewCatalog(templates), nil
}

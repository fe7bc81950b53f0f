package maps

import (
	"fmt"
	"os"

	"github.com/driftvale/tilerealm/server/internal/logger"
	"gopkg.in/yaml.v3"
)

// mapsFile is the on-disk structure of the maps YAML file.
type mapsFile struct {
	Maps map[string]*Definition `yaml:"maps"`
}

// LoadTableFromYAML loads map definitions from a YAML file.
func LoadTableFromYAML(filename string) (*Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read maps file: %w", err)
	}

	var file mapsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse maps YAML: %w", err)
	}

	for id, def := range file.Maps {
		def.ID = id
		if def.Width <= 0 || def.Height <= 0 {
			return nil, fmt.Errorf("map %q has non-positive dimensions", id)
		}
		if def.TileSize <= 0 {
			def.TileSize = DefaultTileSize
		}
		if def.TargetPopulation > 0 && len(def.Spawns) == 0 {
			logger.Warning("Map has a target population but no spawn table",
				"map", id,
				"target", def.TargetPopulation)
		}
		if def.SpawnLevelMin < 1 {
			def.SpawnLevelMin = 1
		}
		if def.SpawnLevelMax < def.SpawnLevelMin {
			def.SpawnLevelMax = def.SpawnLevelMin
		}
	}

	logger.Info("Map definitions loaded", "path", filename, "count", len(file.Maps))
	return NewTable(file.Maps), nil
}

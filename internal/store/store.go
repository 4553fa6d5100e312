// Package store loads and saves the reference data of the geocoding step:
// the historical region mapping and the GeoNames lookup cache.
package store

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/tering/internal/logging"

	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultRegions []byte

// RegionMapping maps a historical region name to its modern name. A nil
// value marks a name known to carry no place information.
type RegionMapping map[string]*string

// Modern returns the modern name for region. known is false when region is
// not in the mapping at all.
func (m RegionMapping) Modern(region string) (name string, known bool) {
	modern, ok := m[region]
	if !ok {
		return "", false
	}
	if modern == nil {
		return "", true
	}
	return *modern, true
}

// RegionStore locates and reads the region mapping.
type RegionStore struct {
	RegionsFile string
	logger      logging.Logger
}

// NewRegionStore creates a store. An empty regionsFile selects the built-in
// mapping.
func NewRegionStore(regionsFile string, logger logging.Logger) *RegionStore {
	if logger == nil {
		logger = logging.Nop()
	}
	return &RegionStore{RegionsFile: regionsFile, logger: logger}
}

// FindConfigFile looks for filename as given, then under ./config and
// ./data, then under ~/.config/tering.
func (s *RegionStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("data", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "tering", filename))
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadRegionMappings reads the configured mapping file, or the built-in
// mapping when none is configured.
func (s *RegionStore) LoadRegionMappings() (RegionMapping, error) {
	data := defaultRegions
	source := "built-in"
	if s.RegionsFile != "" {
		path, err := s.FindConfigFile(s.RegionsFile)
		if err != nil {
			return nil, fmt.Errorf("region mapping file not found: %s", s.RegionsFile)
		}
		data, err = os.ReadFile(path) // #nosec G304 -- configured path
		if err != nil {
			return nil, fmt.Errorf("error reading region mapping file: %w", err)
		}
		source = path
	}

	var mapping RegionMapping
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("error parsing region mapping %s: %w", source, err)
	}
	if mapping == nil {
		mapping = RegionMapping{}
	}
	s.logger.Debug("Loaded region mappings",
		logging.F(logging.FieldFile, source),
		logging.F(logging.FieldCount, len(mapping)))
	return mapping, nil
}

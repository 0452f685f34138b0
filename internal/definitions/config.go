package definitions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigParse indicates an unreadable or malformed config file.
var ErrConfigParse = errors.New("config parse error")

// ConfigFile is the on-disk schema for asset type configuration, shared by
// LoadConfig, ExportConfig and the embedded defaults.
type ConfigFile struct {
	AssetTypes []AssetType `yaml:"asset_types" json:"asset_types"`
}

// LoadConfig reads descriptors from a JSON or YAML file (selected by
// extension) and registers them. The load is atomic: every entry is
// validated before any entry is registered, so a bad file leaves the
// registry untouched.
func (r *Registry) LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	var cfg ConfigFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrConfigParse, ext)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	staged := make([]AssetType, len(cfg.AssetTypes))
	for i, at := range cfg.AssetTypes {
		if err := at.compile(); err != nil {
			return fmt.Errorf("asset_types[%d]: %w", i, err)
		}
		staged[i] = at
	}

	for _, at := range staged {
		r.insert(at)
	}
	return nil
}

// ExportConfig writes all registered descriptors, in listing order, to a
// JSON or YAML file in the same schema consumed by LoadConfig.
func (r *Registry) ExportConfig(path string) error {
	cfg := ConfigFile{AssetTypes: make([]AssetType, 0, len(r.order))}
	for _, key := range r.order {
		cfg.AssetTypes = append(cfg.AssetTypes, r.types[key])
	}

	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(&cfg, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(&cfg)
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrConfigParse, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize asset types: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

package definitions

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidDescriptor indicates a descriptor with missing fields or an
	// unusable asset name pattern.
	ErrInvalidDescriptor = errors.New("invalid asset type descriptor")

	// ErrUnknownAssetType indicates a lookup for an unregistered asset type.
	ErrUnknownAssetType = errors.New("unknown asset type")
)

// AssetType describes how to manage IAM bindings on one class of cloud
// resource. AssetNamePattern must contain at least one capturing group; the
// groups extract the identifiers needed to address the resource.
type AssetType struct {
	AssetType        string `yaml:"asset_type" json:"asset_type"`
	ServiceName      string `yaml:"service_name" json:"service_name"`
	Version          string `yaml:"version" json:"version"`
	Method           string `yaml:"method" json:"method"`
	ResourceType     string `yaml:"resource_type" json:"resource_type"`
	AssetNamePattern string `yaml:"asset_name_pattern" json:"asset_name_pattern"`

	pattern *regexp.Regexp
}

// Pattern returns the compiled, fully anchored asset name pattern.
func (a AssetType) Pattern() *regexp.Regexp {
	return a.pattern
}

// compile validates the descriptor fields and compiles the anchored pattern.
func (a *AssetType) compile() error {
	if a.AssetType == "" || a.ServiceName == "" || a.Version == "" ||
		a.Method == "" || a.ResourceType == "" || a.AssetNamePattern == "" {
		return fmt.Errorf("%w: %q: all descriptor fields are required", ErrInvalidDescriptor, a.AssetType)
	}

	re, err := regexp.Compile(`\A(?:` + a.AssetNamePattern + `)\z`)
	if err != nil {
		return fmt.Errorf("%w: %q: invalid asset_name_pattern: %v", ErrInvalidDescriptor, a.AssetType, err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("%w: %q: asset_name_pattern needs at least one capturing group", ErrInvalidDescriptor, a.AssetType)
	}

	a.pattern = re
	return nil
}

//go:embed defaults.yaml
var embeddedDefaults []byte

// Registry maps asset type keys to descriptors. It is populated with the
// embedded defaults at construction and is read-only during batch
// processing.
type Registry struct {
	order []string
	types map[string]AssetType
}

// NewRegistry returns a registry containing the built-in asset types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]AssetType)}

	var cfg ConfigFile
	if err := yaml.Unmarshal(embeddedDefaults, &cfg); err != nil {
		panic(fmt.Sprintf("definitions: embedded defaults are malformed: %v", err))
	}
	for _, at := range cfg.AssetTypes {
		if err := r.Register(at); err != nil {
			panic(fmt.Sprintf("definitions: embedded default %q is invalid: %v", at.AssetType, err))
		}
	}
	return r
}

// Register validates the descriptor and inserts it, overwriting any existing
// descriptor with the same asset type key. An overwritten key keeps its
// position in the listing order.
func (r *Registry) Register(at AssetType) error {
	if err := at.compile(); err != nil {
		return err
	}
	r.insert(at)
	return nil
}

func (r *Registry) insert(at AssetType) {
	if _, exists := r.types[at.AssetType]; !exists {
		r.order = append(r.order, at.AssetType)
	}
	r.types[at.AssetType] = at
}

// Lookup returns the descriptor registered for the given asset type key.
func (r *Registry) Lookup(assetType string) (AssetType, error) {
	at, ok := r.types[assetType]
	if !ok {
		return AssetType{}, fmt.Errorf("%w: %q", ErrUnknownAssetType, assetType)
	}
	return at, nil
}

// List returns the registered asset type keys in registration order.
func (r *Registry) List() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

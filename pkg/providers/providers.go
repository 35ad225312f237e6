package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package providers contains pluggable news provider configs (YAML/JSON) and adapters.

// Provider describes one configured news API or feed.
type Provider struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	SourceURL string `json:"source_url" yaml:"source_url"`
	Enabled   *bool  `json:"enabled" yaml:"enabled"`

	// APIKey is a literal key; APIKeyEnv names the environment variable holding it.
	APIKey      string `json:"api_key" yaml:"api_key"`
	APIKeyEnv   string `json:"api_key_env" yaml:"api_key_env"`
	APIKeyParam string `json:"api_key_param" yaml:"api_key_param"`

	// Params are static query parameters sent with every request.
	Params map[string]string `json:"params" yaml:"params"`

	// RegionParam receives RegionValues[region]; an empty mapped value omits the parameter.
	RegionParam  string            `json:"region_param" yaml:"region_param"`
	RegionValues map[string]string `json:"region_values" yaml:"region_values"`

	// FromParam / ToParam carry the optional date range, formatted with DateLayout.
	FromParam  string `json:"from_param" yaml:"from_param"`
	ToParam    string `json:"to_param" yaml:"to_param"`
	DateLayout string `json:"date_layout" yaml:"date_layout"`

	Config map[string]any `json:"config" yaml:"config"`
}

type registryFile struct {
	Providers []Provider `json:"providers" yaml:"providers"`
}

// Registry holds the providers loaded from a config file.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	idx       map[string]Provider
}

// NewRegistry builds a registry from in-memory provider definitions.
func NewRegistry(list []Provider) (*Registry, error) {
	reg := &Registry{
		providers: make([]Provider, 0, len(list)),
		idx:       make(map[string]Provider, len(list)),
	}
	for i := range list {
		p := sanitizeProvider(list[i])
		if err := validateProvider(p); err != nil {
			return nil, fmt.Errorf("provider[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate provider id %q", p.ID)
		}
		reg.providers = append(reg.providers, p)
		reg.idx[p.ID] = p
	}
	return reg, nil
}

// LoadRegistry loads the provider registry from a YAML/JSON file.
// A file with an empty providers list is valid and yields an empty registry.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("providers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open providers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	parsed, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Providers)
}

// All returns a copy of every loaded provider.
func (r *Registry) All() []Provider {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Enabled returns providers that are not explicitly disabled.
func (r *Registry) Enabled() []Provider {
	all := r.All()
	out := make([]Provider, 0, len(all))
	for _, p := range all {
		if p.EnabledValue() {
			out = append(out, p)
		}
	}
	return out
}

// ByID returns the provider entry for the given id, if loaded.
func (r *Registry) ByID(id string) (Provider, bool) {
	if r == nil {
		return Provider{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Provider{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("providers file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var reg registryFile
	if err := fn(data, &reg); err != nil {
		return registryFile{}, fmt.Errorf("decode %s providers: %w", name, err)
	}
	return reg, nil
}

func sanitizeProvider(p Provider) Provider {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.SourceURL = strings.TrimSpace(p.SourceURL)
	p.APIKey = strings.TrimSpace(p.APIKey)
	p.APIKeyEnv = strings.TrimSpace(p.APIKeyEnv)
	p.APIKeyParam = strings.TrimSpace(p.APIKeyParam)
	p.RegionParam = strings.TrimSpace(p.RegionParam)
	p.FromParam = strings.TrimSpace(p.FromParam)
	p.ToParam = strings.TrimSpace(p.ToParam)
	p.DateLayout = strings.TrimSpace(p.DateLayout)

	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Config == nil {
		p.Config = map[string]any{}
	}
	if p.Enabled == nil {
		def := true
		p.Enabled = &def
	}
	p.Params = trimMap(p.Params, false)
	p.RegionValues = trimMap(p.RegionValues, true)

	return p
}

// trimMap trims keys and values; keepEmpty retains blank values (used to map a region to "omit").
func trimMap(in map[string]string, keepEmpty bool) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := strings.ToLower(strings.TrimSpace(k))
		val := strings.TrimSpace(v)
		if key == "" || (!keepEmpty && val == "") {
			continue
		}
		out[key] = val
	}
	return out
}

func validateProvider(p Provider) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Type == "" {
		return fmt.Errorf("type is required for provider %q", p.ID)
	}
	if p.SourceURL == "" {
		return fmt.Errorf("source_url is required for provider %q", p.ID)
	}
	if p.RegionParam != "" && len(p.RegionValues) == 0 {
		return fmt.Errorf("region_values required when region_param is set for provider %q", p.ID)
	}
	return nil
}

// EnabledValue returns the enabled flag defaulting to true.
func (p Provider) EnabledValue() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

// ResolveAPIKey returns the literal key or the value of the configured environment variable.
func (p Provider) ResolveAPIKey() string {
	if p.APIKey != "" {
		return p.APIKey
	}
	if p.APIKeyEnv != "" {
		return strings.TrimSpace(os.Getenv(p.APIKeyEnv))
	}
	return ""
}

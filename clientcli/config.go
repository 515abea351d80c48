package clientcli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:5709"

// Profile holds the credentials and default bucket for one account.
type Profile struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	KeyID    string `yaml:"key_id,omitempty"`
	Key      string `yaml:"key,omitempty"`
	BucketID string `yaml:"bucket_id,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
}

// ConfigFile holds the full config file structure with multiple profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// index returns the position of the named profile, or -1.
func (c *ConfigFile) index(name string) int {
	return slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Name == name })
}

func profileNotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetProfile returns the named profile, or the default one when name is empty.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if name == "" {
		return c.GetDefaultProfile()
	}
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	i := c.index(name)
	if i < 0 {
		return nil, profileNotFound(name)
	}
	return &c.Profiles[i], nil
}

// GetDefaultProfile returns the profile marked default, falling back to the first one.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	if i := slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Default }); i >= 0 {
		return &c.Profiles[i], nil
	}
	return &c.Profiles[0], nil
}

// AddProfile appends p. It fails with ErrProfileExists when the name is taken.
func (c *ConfigFile) AddProfile(p Profile) error {
	if c.index(p.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces the profile with the same name.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	i := c.index(p.Name)
	if i < 0 {
		return profileNotFound(p.Name)
	}
	c.Profiles[i] = p
	return nil
}

// RemoveProfile deletes the named profile.
func (c *ConfigFile) RemoveProfile(name string) error {
	i := c.index(name)
	if i < 0 {
		return profileNotFound(name)
	}
	c.Profiles = slices.Delete(c.Profiles, i, i+1)
	return nil
}

// SetDefault marks name as the only default profile.
func (c *ConfigFile) SetDefault(name string) error {
	target := c.index(name)
	if target < 0 {
		return profileNotFound(name)
	}
	for i := range c.Profiles {
		c.Profiles[i].Default = i == target
	}
	return nil
}

// ProfileNames lists profile names in file order.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Save writes the profiles as YAML to path, creating its directory with
// owner-only permissions.
func (c *ConfigFile) Save(path string) error {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	return nil
}

// LoadConfigFile reads a profile file written by Save.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- user supplied profile path
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	cfg := &ConfigFile{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("load profiles: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfigPath returns the default config file path (~/.b2files/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".b2files", "config.yaml")
}

// Config holds resolved client configuration for a single account.
// This is what the Client uses after profile resolution.
type Config struct {
	Endpoint string
	KeyID    string
	Key      string
	BucketID string
}

// WithDefaults returns a copy of the config with default values applied.
// If Endpoint is empty, it defaults to DefaultEndpoint.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// ValidateWithAuth checks that the application key is set.
func (c *Config) ValidateWithAuth() error {
	if c.KeyID == "" {
		return ErrKeyIDRequired
	}
	if c.Key == "" {
		return ErrKeyRequired
	}
	return nil
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint: p.Endpoint,
		KeyID:    p.KeyID,
		Key:      p.Key,
		BucketID: p.BucketID,
	}
}

// ConfigFromEnv loads config from B2_* environment variables.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: os.Getenv("B2_ENDPOINT"),
		KeyID:    os.Getenv("B2_APPLICATION_KEY_ID"),
		Key:      os.Getenv("B2_APPLICATION_KEY"),
		BucketID: os.Getenv("B2_BUCKET_ID"),
	}
}

// ProfileFromEnv returns the profile name from the B2_PROFILE environment variable.
func ProfileFromEnv() string {
	return os.Getenv("B2_PROFILE")
}

// ConfigPathFromEnv returns the config file path from the B2_CONFIG environment variable.
func ConfigPathFromEnv() string {
	return os.Getenv("B2_CONFIG")
}

// MergeConfig layers configs left to right. A non-empty field in a later
// config replaces the earlier value; empty fields are skipped.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		override(&result.Endpoint, cfg.Endpoint)
		override(&result.KeyID, cfg.KeyID)
		override(&result.Key, cfg.Key)
		override(&result.BucketID, cfg.BucketID)
	}
	return result
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

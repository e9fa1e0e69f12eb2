package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/seqops/virsam/internal/paths"
	"gopkg.in/yaml.v3"
)

// Config represents the virsam configuration
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Endpoints   EndpointsConfig   `yaml:"endpoints"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Journal     JournalConfig     `yaml:"journal"`
}

// CredentialsConfig holds the Webin submission account. Values may
// reference environment variables with ${VAR} syntax; they are expanded
// on load and never written back to disk.
type CredentialsConfig struct {
	Account  string `yaml:"account" envconfig:"VIRSAM_ACCOUNT"`
	Password string `yaml:"password" envconfig:"VIRSAM_PASSWORD"`
}

// EndpointsConfig contains the archive endpoints
type EndpointsConfig struct {
	Browser        string `yaml:"browser" envconfig:"VIRSAM_BROWSER_URL"`             // read-only metadata API
	Submit         string `yaml:"submit" envconfig:"VIRSAM_SUBMIT_URL"`               // production drop box
	TestSubmit     string `yaml:"test_submit" envconfig:"VIRSAM_TEST_SUBMIT_URL"`     // test drop box
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"VIRSAM_TIMEOUT_SECONDS"` // per-request HTTP timeout
}

// DefaultsConfig contains per-document defaults
type DefaultsConfig struct {
	Checklist  string `yaml:"checklist" envconfig:"VIRSAM_CHECKLIST"`     // fallback checklist accession
	CenterName string `yaml:"center_name" envconfig:"VIRSAM_CENTER_NAME"` // submitting center
}

// JournalConfig contains submission journal settings
type JournalConfig struct {
	Path string `yaml:"path" envconfig:"VIRSAM_JOURNAL_PATH"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoints: EndpointsConfig{
			Browser:        "https://www.ebi.ac.uk/ena/browser/api/xml",
			Submit:         "https://www.ebi.ac.uk/ena/submit/drop-box/submit/",
			TestSubmit:     "https://wwwdev.ebi.ac.uk/ena/submit/drop-box/submit/",
			TimeoutSeconds: 60,
		},
		Defaults: DefaultsConfig{
			Checklist: "ERC000011",
		},
		Journal: JournalConfig{
			Path: paths.GetJournalPath(),
		},
	}
}

// Load loads configuration from a file, applying environment variable
// overrides on top. Precedence: defaults < file < environment.
func Load(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Apply env overrides to defaults even without a file
		if err := envconfig.Process("", config); err != nil {
			return nil, fmt.Errorf("failed to process environment overrides: %w", err)
		}
		config.expand()
		return config, nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment overrides win over the file
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	config.expand()
	return config, nil
}

// expand resolves ~ and ${VAR} references in path and credential values.
func (c *Config) expand() {
	c.Journal.Path = expandPath(os.ExpandEnv(c.Journal.Path))
	c.Credentials.Account = os.ExpandEnv(c.Credentials.Account)
	c.Credentials.Password = os.ExpandEnv(c.Credentials.Password)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Config may hold credentials; keep it private to the owner.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("VIRSAM_CONFIG"); path != "" {
		return path
	}

	// Check current directory
	if _, err := os.Stat("virsam.yaml"); err == nil {
		return "virsam.yaml"
	}

	// Use default location
	p := paths.GetPaths()
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// SubmitURL returns the drop-box endpoint for the requested target.
func (c *Config) SubmitURL(production bool) string {
	if production {
		return c.Endpoints.Submit
	}
	return c.Endpoints.TestSubmit
}

// HasCredentials reports whether a Webin account is configured.
func (c *Config) HasCredentials() bool {
	return c.Credentials.Account != "" && c.Credentials.Password != ""
}

// EnsureDirectories creates necessary directories
func (c *Config) EnsureDirectories() error {
	// First ensure base directories using paths package
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	if dir := filepath.Dir(c.Journal.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}

	return path
}

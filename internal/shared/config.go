package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Source      ProjectConfig   `toml:"source"`
	Destination ProjectConfig   `toml:"destination"`
	Migration   MigrationConfig `toml:"migration"`
	Database    DatabaseConfig  `toml:"database"`
	Server      ServerConfig    `toml:"server"`
	Version     VersionConfig   `toml:"version"`
}

// ProjectConfig contains connection parameters for one hosted project (source or destination).
type ProjectConfig struct {
	ProjectID       string `toml:"project_id"`
	CredentialsFile string `toml:"credentials_file"`
	Collection      string `toml:"collection"`
}

// MigrationConfig contains account migration settings.
type MigrationConfig struct {
	SkipDuplicates           bool    `toml:"skip_duplicates"`
	DefaultPassword          string  `toml:"default_password"`
	RollbackOnProfileFailure bool    `toml:"rollback_on_profile_failure"`
	RateLimit                float64 `toml:"rate_limit"`
	ReportDir                string  `toml:"report_dir"`
}

// DatabaseConfig contains settings for the local run ledger.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings for the version endpoint.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// VersionConfig is the release descriptor served by the version endpoint.
// It is updated by hand after each mobile release.
type VersionConfig struct {
	Version     string   `toml:"version"`
	BuildNumber int      `toml:"build_number"`
	Message     string   `toml:"message"`
	ForceUpdate bool     `toml:"force_update"`
	Features    []string `toml:"features"`
	ReleaseDate string   `toml:"release_date"`
	DownloadURL string   `toml:"download_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig], so an omitted
// skip_duplicates still means true.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate reports configuration values that cannot drive a run.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Source),
		validation.Field(&c.Destination),
		validation.Field(&c.Migration),
		validation.Field(&c.Server),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks that the project names a collection to read from or write to.
func (p ProjectConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Collection, validation.Required),
	)
}

// Validate checks the migration settings. The temporary password must satisfy the
// destination auth service's six character minimum.
func (m MigrationConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.DefaultPassword, validation.Required, validation.Length(6, 0)),
		validation.Field(&m.RateLimit, validation.Min(0.0)),
	)
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Min(0), validation.Max(65535)),
	)
}

// RequireProjects checks that both source and destination projects are configured.
func (c *Config) RequireProjects() error {
	if c.Source.ProjectID == "" {
		return fmt.Errorf("%w: source.project_id is not set", ErrMissingCredentials)
	}
	if c.Destination.ProjectID == "" {
		return fmt.Errorf("%w: destination.project_id is not set", ErrMissingCredentials)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notebook/internal/notelist"
	"github.com/starford/notebook/internal/richtext"
)

// EnvPrefix prefixes every environment override, e.g. NOTEBOOK_SQLITE_PATH.
const EnvPrefix = "NOTEBOOK_"

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app" envPrefix:"APP_"`
	SQLite SQLiteConfig      `yaml:"sqlite" envPrefix:"SQLITE_"`
	Auth   AuthConfig        `yaml:"auth" envPrefix:"AUTH_"`
	List   ListConfig        `yaml:"list" envPrefix:"LIST_"`
	Editor EditorConfig      `yaml:"editor" envPrefix:"EDITOR_"`
	Vault  VaultConfig       `yaml:"vault" envPrefix:"VAULT_"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.List.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	return c.Vault.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level      `yaml:"log_level" env:"LOG_LEVEL"`
	HTTP      HTTPConfig      `yaml:"http" envPrefix:"HTTP_"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.RateLimit.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// RateLimitConfig limits API requests per client. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"RPS"`
	Burst int     `yaml:"burst" env:"BURST"`
}

// Enabled reports whether requests are limited.
func (c *RateLimitConfig) Enabled() bool {
	return c.RPS > 0
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RPS, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(0), validation.When(c.RPS > 0, validation.Required)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"MODE"`
	Token string `yaml:"token" env:"TOKEN"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ListConfig controls how the note list is grouped and searched.
type ListConfig struct {
	DayLayout      string        `yaml:"day_layout" env:"DAY_LAYOUT"`
	Timezone       string        `yaml:"timezone" env:"TIMEZONE"`
	SearchDebounce time.Duration `yaml:"search_debounce" env:"SEARCH_DEBOUNCE"`
}

// Location resolves Timezone. Empty or "Local" means the system zone.
func (c *ListConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate validates the list configuration.
func (c *ListConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DayLayout, validation.Required),
		validation.Field(&c.Timezone, validation.By(func(any) error {
			_, err := c.Location()
			return err
		})),
		validation.Field(&c.SearchDebounce, validation.Min(time.Duration(0)), validation.Max(10*time.Second)),
	)
}

// EditorConfig holds the font sizes used for title styling.
type EditorConfig struct {
	BaseSize  float64 `yaml:"base_size" env:"BASE_SIZE"`
	TitleSize float64 `yaml:"title_size" env:"TITLE_SIZE"`
}

// Theme converts the sizes to a richtext.Theme.
func (c *EditorConfig) Theme() richtext.Theme {
	return richtext.Theme{BaseSize: c.BaseSize, TitleSize: c.TitleSize}
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseSize, validation.Required, validation.Min(1.0)),
		validation.Field(&c.TitleSize, validation.Required, validation.Min(c.BaseSize)),
	)
}

// VaultConfig holds the Markdown export and inbox directories.
type VaultConfig struct {
	ExportDir    string `yaml:"export_dir" env:"EXPORT_DIR"`
	InboxDir     string `yaml:"inbox_dir" env:"INBOX_DIR"`
	InboxPattern string `yaml:"inbox_pattern" env:"INBOX_PATTERN"`
	Watch        bool   `yaml:"watch" env:"WATCH"`
	// Mirror keeps ExportDir in step with the store while serving.
	Mirror bool `yaml:"mirror" env:"MIRROR"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ExportDir, validation.Required),
		validation.Field(&c.InboxPattern, validation.Required, validation.By(func(any) error {
			if !doublestar.ValidatePattern(c.InboxPattern) {
				return errors.New("invalid glob pattern")
			}
			return nil
		})),
		validation.Field(&c.InboxDir, validation.When(c.Watch, validation.Required)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			RateLimit: RateLimitConfig{
				RPS:   20,
				Burst: 40,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./notebook.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		List: ListConfig{
			DayLayout:      notelist.DefaultDayLayout,
			Timezone:       "Local",
			SearchDebounce: notelist.DefaultSearchDebounce,
		},
		Editor: EditorConfig{
			BaseSize:  richtext.DefaultTheme().BaseSize,
			TitleSize: richtext.DefaultTheme().TitleSize,
		},
		Vault: VaultConfig{
			ExportDir:    "./export",
			InboxDir:     "./inbox",
			InboxPattern: "**/*.md",
		},
	}
}

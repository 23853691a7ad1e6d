package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"tunneld/internal/cache"
	"tunneld/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Paths in the config must be absolute: the daemon runs with / as its
	// working directory under a service manager.
	if err := validate.RegisterValidation("abspath", validateAbsPath); err != nil {
		panic(fmt.Sprintf("failed to register abspath validator: %v", err))
	}
}

func validateAbsPath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	return path == "" || filepath.IsAbs(path)
}

// SearchPaths are tried in order when no explicit --config flag is given.
var SearchPaths = []string{
	"/etc/tunneld/config.json",
	"~/.config/tunneld.json",
	"~/.tunneld.json",
}

type Select string

const (
	SelectFastest   Select = "fastest"
	SelectRandom    Select = "random"
	SelectLeastLoad Select = "least-load"
)

type Filters struct {
	Tier     string   `json:"tier" validate:"oneof=free premium all"`
	MaxLoad  int      `json:"max_load" validate:"min=0,max=100"`
	Country  string   `json:"country" validate:"omitempty,len=2,uppercase"`
	Features []string `json:"features" validate:"dive,oneof=secure-core tor p2p streaming ipv6"`
}

// FeatureMask folds the configured feature names into a domain bitmask.
func (f Filters) FeatureMask() domain.Features {
	var mask domain.Features
	for _, name := range f.Features {
		switch name {
		case "secure-core":
			mask |= domain.FeatureSecureCore
		case "tor":
			mask |= domain.FeatureTor
		case "p2p":
			mask |= domain.FeatureP2P
		case "streaming":
			mask |= domain.FeatureStreaming
		case "ipv6":
			mask |= domain.FeatureIPv6
		}
	}
	return mask
}

type Killswitch struct {
	Enable bool `json:"enable"`
	// CustomRules are appended verbatim after the generated rules.
	CustomRules []string `json:"custom_rules"`
}

type Config struct {
	CacheDir             string          `json:"cache_dir" validate:"required,abspath"`
	MaxCacheAgeDays      int             `json:"max_cache_age_days" validate:"min=0"`
	APIBaseURL           string          `json:"api_base_url" validate:"required,url"`
	AutostartDefault     bool            `json:"autostart_default"`
	DefaultSelect        Select          `json:"default_select" validate:"oneof=fastest random least-load"`
	DefaultCriteria      Filters         `json:"default_criteria"`
	DefaultProtocol      domain.Protocol `json:"default_protocol"`
	CredentialsPath      string          `json:"credentials_path" validate:"abspath"`
	UpdateResolvConfPath string          `json:"update_resolv_conf_path" validate:"abspath"`
	Killswitch           Killswitch      `json:"killswitch"`
	MetricsAddr          string          `json:"metrics_addr"`
	ReadinessTimeoutSecs int             `json:"readiness_timeout_seconds" validate:"min=0"`
}

func Default() *Config {
	return &Config{
		CacheDir:        cache.DefaultDir,
		MaxCacheAgeDays: 3,
		APIBaseURL:      "https://api.protonmail.ch",
		DefaultSelect:   SelectFastest,
		DefaultCriteria: Filters{
			Tier:     "premium",
			MaxLoad:  90,
			Features: []string{"p2p", "streaming"},
		},
		DefaultProtocol:      domain.UDP,
		Killswitch:           Killswitch{},
		ReadinessTimeoutSecs: 60,
	}
}

// Load reads the configuration from path, or from the first existing search
// path when path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}

	for _, candidate := range SearchPaths {
		resolved := expandHome(candidate)
		if _, err := os.Stat(resolved); err != nil {
			continue
		}
		return loadFile(resolved)
	}

	return Default(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, formatValidationErrors(validationErrors)
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// WriteDefault renders the default configuration to path.
func WriteDefault(path string) error {
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", err.Field(), err.Tag()))
	}
	return fmt.Errorf("validation errors: %v", msgs)
}

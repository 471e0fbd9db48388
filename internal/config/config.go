// Package config provides configuration management for xcboot.
//
// Two distinct things live here. Settings are the tool's own knobs (log
// level, command timeout, template selection) loaded through viper from
// flags, XCBOOT_* environment variables and an optional .xcboot.yml. The
// project documents are the layered pair the installer materializes into a
// target project: .xcboot/config.yml (system) overridden per key by
// .xcboot/config.local.yml (user), backed by built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the resolved tool settings.
type Settings struct {
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Template    string        `mapstructure:"template"`
	TemplateDir string        `mapstructure:"template_dir"`
}

// Setting keys shared between flag bindings and Load.
const (
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyTimeout     = "timeout"
	KeyTemplate    = "template"
	KeyTemplateDir = "template_dir"
)

// DefaultTemplate is the artifact set used when --template is not given.
const DefaultTemplate = "default"

// Load reads Settings from the global viper instance.
func Load() (*Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads Settings from v, applying defaults for unset values.
func LoadFrom(v *viper.Viper) (*Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}
	if settings.LogFormat == "" {
		settings.LogFormat = "text"
	}
	if settings.Timeout == 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.Template == "" {
		settings.Template = DefaultTemplate
	}

	if err := validateSettings(&settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &settings, nil
}

// validateSettings validates configuration values for correctness
func validateSettings(s *Settings) error {
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q must be text or json", s.LogFormat)
	}

	if s.Timeout < 0 {
		return fmt.Errorf("timeout %s must not be negative", s.Timeout)
	}

	if strings.ContainsAny(s.Template, `/\ `) {
		return fmt.Errorf("template name %q must be a bare name", s.Template)
	}

	return nil
}

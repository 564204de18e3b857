// Package config loads jv settings from defaults, a json config file
// and JV_ environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileName is the config file looked up in the working directory
// when no explicit path is given.
const FileName = "jv.json"

const envPrefix = "JV_"

// Configuration represents the jv command settings.
type Configuration struct {
	Draft         int    `koanf:"draft" validate:"oneof=4 6 7 2019 2020"`
	AssertFormat  bool   `koanf:"assert_format"`
	AssertContent bool   `koanf:"assert_content"`
	Strict        bool   `koanf:"strict"`
	Regexp        string `koanf:"regexp" validate:"oneof=go ecma"`
	Output        string `koanf:"output" validate:"oneof=simple flag basic detailed"`
	Lang          string `koanf:"lang" validate:"required,bcp47_language_tag"`
	LogLevel      string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFile       string `koanf:"log_file"`
	OTLPEndpoint  string `koanf:"otlp_endpoint" validate:"omitempty,hostname_port"`
	Insecure      bool   `koanf:"insecure"`
	Timeout       int    `koanf:"timeout" validate:"min=1,max=600"` // seconds, for http loading
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]any {
	return map[string]any{
		"draft":          2020,
		"assert_format":  false,
		"assert_content": false,
		"strict":         false,
		"regexp":         "go",
		"output":         "simple",
		"lang":           "en",
		"log_level":      "warn",
		"log_file":       "",
		"otlp_endpoint":  "",
		"insecure":       false,
		"timeout":        15,
	}
}

// Load loads configuration. path names the config file; when empty,
// FileName is used if it exists in the working directory.
// Priority: Environment variables > Config file > Defaults
func Load(path string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values, also after command line overrides.
func (cfg *Configuration) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// envTransform converts environment variable names to config keys
// Example: JV_ASSERT_FORMAT -> assert_format
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

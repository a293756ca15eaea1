// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the application configuration from viper and
// validates it. Precedence follows viper: flags bound by the caller, then
// RESEARCH_CRAWLER_* environment variables, then the config file, then the
// defaults registered by SetDefaults.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-crawler/internal/aggregate"
	"github.com/pdiddy/research-crawler/internal/awards"
	"github.com/pdiddy/research-crawler/pkg/types"
)

// EnvPrefix prefixes every environment variable, e.g.
// RESEARCH_CRAWLER_LOOKUP_BASE_URL for lookup.base_url.
const EnvPrefix = "RESEARCH_CRAWLER"

// Defaults for every key, also used for env binding.
var defaults = map[string]any{
	"lookup.base_url":            awards.DefaultBaseURL,
	"lookup.timeout":             30 * time.Second,
	"lookup.user_agent":          "research-crawler/0.1",
	"lookup.max_retries":         3,
	"lookup.requests_per_second": 2.0,
	"lookup.burst":               4,
	"session.lookup_timeout":     30 * time.Second,
	"window.years":               []int{},
	"window.start":               114,
	"window.size":                5,
	"window.relative":            false,
	"window.calendar":            string(types.CalendarROC),
	"log.level":                  "info",
	"log.format":                 "text",
	"stub.addr":                  "127.0.0.1:8000",
	"stub.fixtures":              "",
	"stub.delay":                 time.Duration(0),
}

// SetDefaults registers the default of every key on v and binds the
// environment with EnvPrefix, mapping "." in keys to "_".
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into an AppConfig and validates it. A blank base URL is
// treated as unset. The window settings are checked by resolving them
// against now.
func Load(v *viper.Viper, now time.Time) (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	cfg.Lookup.BaseURL = strings.TrimSpace(cfg.Lookup.BaseURL)
	if cfg.Lookup.BaseURL == "" {
		cfg.Lookup.BaseURL = awards.DefaultBaseURL
	}
	cfg.Window.Calendar = types.Calendar(strings.ToLower(string(cfg.Window.Calendar)))

	if err := newValidator().validate(cfg); err != nil {
		return cfg, err
	}
	if _, err := aggregate.ResolveWindow(cfg.Window, now); err != nil {
		return cfg, fmt.Errorf("invalid configuration: window: %w", err)
	}
	return cfg, nil
}

// ValidationError lists every invalid field, keyed by its dotted config key.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

type configValidator struct {
	v *validator.Validate
}

func newValidator() *configValidator {
	v := validator.New()

	// Report fields by their config key.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &configValidator{v: v}
}

func (cv *configValidator) validate(cfg types.AppConfig) error {
	err := cv.v.Struct(cfg)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[configKey(e.Namespace())] = friendlyMessage(e)
	}
	return &ValidationError{Fields: fields}
}

// configKey turns a validator namespace such as "AppConfig.lookup.HTTPConfig.timeout"
// into the config key "lookup.timeout".
func configKey(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 {
		parts = parts[1:]
	}
	out := parts[:0]
	for _, p := range parts {
		if p == "HTTPConfig" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "is invalid"
	}
}

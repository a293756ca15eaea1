// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-crawler/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LookupConfig holds settings for the award lookup client.
type LookupConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the root of the award lookup service (default http://localhost:8000).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// MaxRetries is the number of retries on HTTP 429 and 503 (default 3).
	// Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RequestsPerSecond caps outbound lookups (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`

	// Burst is the number of lookups allowed back to back (default 4).
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst" validate:"gte=1"`
}

// SessionConfig holds settings for the query session controller.
type SessionConfig struct {
	// LookupTimeout bounds a single submitted lookup, retries included (default 30s).
	LookupTimeout time.Duration `json:"lookup_timeout" yaml:"lookup_timeout" mapstructure:"lookup_timeout" validate:"gt=0"`
}

// Calendar selects how a relative window derives its newest year from the clock.
type Calendar string

const (
	// CalendarROC counts years from 1912 (Gregorian year minus 1911), as
	// NSTC award records do.
	CalendarROC       Calendar = "roc"
	CalendarGregorian Calendar = "gregorian"
)

// WindowConfig selects the award years shown as separate groups.
// Years, when set, is used as is. Otherwise the window is Size consecutive
// years counting down from Start, or from the current year when Relative is set.
type WindowConfig struct {
	Years    []int    `json:"years,omitempty" yaml:"years,omitempty" mapstructure:"years"`
	Start    int      `json:"start" yaml:"start" mapstructure:"start"`
	Size     int      `json:"size" yaml:"size" mapstructure:"size" validate:"gte=1,lte=50"`
	Relative bool     `json:"relative" yaml:"relative" mapstructure:"relative"`
	Calendar Calendar `json:"calendar" yaml:"calendar" mapstructure:"calendar" validate:"oneof=roc gregorian"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=text json"`
}

// StubConfig holds settings for the local stub award service.
type StubConfig struct {
	// Addr is the listen address (default 127.0.0.1:8000).
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`

	// Fixtures is the path of a YAML file holding a list of award records.
	Fixtures string `json:"fixtures" yaml:"fixtures" mapstructure:"fixtures"`

	// Delay is added before every award response, for exercising slow lookups.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay" validate:"gte=0"`
}

// AppConfig groups the configuration of every component.
type AppConfig struct {
	Lookup  LookupConfig  `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	Session SessionConfig `json:"session" yaml:"session" mapstructure:"session"`
	Window  WindowConfig  `json:"window" yaml:"window" mapstructure:"window"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Stub    StubConfig    `json:"stub" yaml:"stub" mapstructure:"stub"`
}

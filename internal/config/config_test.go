// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-crawler/internal/awards"
	"github.com/pdiddy/research-crawler/pkg/types"
)

var now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(), now)
	require.NoError(t, err)

	assert.Equal(t, awards.DefaultBaseURL, cfg.Lookup.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 3, cfg.Lookup.MaxRetries)
	assert.Equal(t, 2.0, cfg.Lookup.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Lookup.Burst)
	assert.Equal(t, 30*time.Second, cfg.Session.LookupTimeout)
	assert.Equal(t, 114, cfg.Window.Start)
	assert.Equal(t, 5, cfg.Window.Size)
	assert.False(t, cfg.Window.Relative)
	assert.Equal(t, types.CalendarROC, cfg.Window.Calendar)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:8000", cfg.Stub.Addr)
}

func TestLoad_BaseURLFromEnv(t *testing.T) {
	t.Setenv("RESEARCH_CRAWLER_LOOKUP_BASE_URL", "http://awards.internal:9000")

	cfg, err := Load(newViper(), now)
	require.NoError(t, err)
	assert.Equal(t, "http://awards.internal:9000", cfg.Lookup.BaseURL)
}

func TestLoad_BlankBaseURLFallsBack(t *testing.T) {
	t.Setenv("RESEARCH_CRAWLER_LOOKUP_BASE_URL", "   ")

	cfg, err := Load(newViper(), now)
	require.NoError(t, err)
	assert.Equal(t, awards.DefaultBaseURL, cfg.Lookup.BaseURL)
}

func TestLoad_ZeroRetriesKept(t *testing.T) {
	t.Setenv("RESEARCH_CRAWLER_LOOKUP_MAX_RETRIES", "0")

	cfg, err := Load(newViper(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Lookup.MaxRetries)
}

func TestLoad_EnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("RESEARCH_CRAWLER_WINDOW_START", "113")
	t.Setenv("RESEARCH_CRAWLER_SESSION_LOOKUP_TIMEOUT", "5s")
	t.Setenv("RESEARCH_CRAWLER_LOG_LEVEL", "debug")

	cfg, err := Load(newViper(), now)
	require.NoError(t, err)
	assert.Equal(t, 113, cfg.Window.Start)
	assert.Equal(t, 5*time.Second, cfg.Session.LookupTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_CalendarIsCaseInsensitive(t *testing.T) {
	v := newViper()
	v.Set("window.calendar", "Gregorian")
	v.Set("window.relative", true)

	cfg, err := Load(v, now)
	require.NoError(t, err)
	assert.Equal(t, types.CalendarGregorian, cfg.Window.Calendar)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantKey string
	}{
		{"bad url", "lookup.base_url", "not a url", "lookup.base_url"},
		{"zero window", "window.size", 0, "window.size"},
		{"huge window", "window.size", 51, "window.size"},
		{"unknown calendar", "window.calendar", "julian", "window.calendar"},
		{"bad log level", "log.level", "loud", "log.level"},
		{"bad log format", "log.format", "xml", "log.format"},
		{"negative retries", "lookup.max_retries", -1, "lookup.max_retries"},
		{"zero rate", "lookup.requests_per_second", 0, "lookup.requests_per_second"},
		{"negative timeout", "lookup.timeout", "-1s", "lookup.timeout"},
		{"zero session timeout", "session.lookup_timeout", "0s", "session.lookup_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := Load(v, now)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tt.wantKey)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestLoad_ExplicitYearsMustDescend(t *testing.T) {
	v := newViper()
	v.Set("window.years", []int{110, 111, 112})

	_, err := Load(v, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly descending")
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"window.size":     "must be greater than or equal to 1",
		"lookup.base_url": "must be a valid URL",
	}}
	assert.Equal(t,
		"invalid configuration: lookup.base_url must be a valid URL; window.size must be greater than or equal to 1",
		err.Error())
}

func TestConfigKey(t *testing.T) {
	assert.Equal(t, "lookup.timeout", configKey("AppConfig.lookup.HTTPConfig.timeout"))
	assert.Equal(t, "window.size", configKey("AppConfig.window.size"))
}

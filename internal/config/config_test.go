package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(v *viper.Viper)
		expectError bool
		check       func(t *testing.T, s *Settings)
	}{
		{
			name:  "defaults",
			setup: func(v *viper.Viper) {},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "info", s.LogLevel)
				assert.Equal(t, "text", s.LogFormat)
				assert.Equal(t, 30*time.Second, s.Timeout)
				assert.Equal(t, DefaultTemplate, s.Template)
			},
		},
		{
			name: "explicit values",
			setup: func(v *viper.Viper) {
				v.Set(KeyLogLevel, "debug")
				v.Set(KeyLogFormat, "json")
				v.Set(KeyTimeout, "5s")
				v.Set(KeyTemplate, "spm")
				v.Set(KeyTemplateDir, "./templates")
			},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "debug", s.LogLevel)
				assert.Equal(t, "json", s.LogFormat)
				assert.Equal(t, 5*time.Second, s.Timeout)
				assert.Equal(t, "spm", s.Template)
				assert.Equal(t, "./templates", s.TemplateDir)
			},
		},
		{
			name: "invalid log format",
			setup: func(v *viper.Viper) {
				v.Set(KeyLogFormat, "xml")
			},
			expectError: true,
		},
		{
			name: "template with path separator",
			setup: func(v *viper.Viper) {
				v.Set(KeyTemplate, "../evil")
			},
			expectError: true,
		},
		{
			name: "unparseable timeout",
			setup: func(v *viper.Viper) {
				v.Set(KeyTimeout, "soon")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setup(v)

			settings, err := LoadFrom(v)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, settings)
				return
			}
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestLoadUsesGlobalViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set(KeyLogLevel, "warn")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", settings.LogLevel)
}

func TestDocumentPaths(t *testing.T) {
	assert.Equal(t, "proj/.xcboot/config.yml", filepathToSlash(SystemPath("proj")))
	assert.Equal(t, "proj/.xcboot/config.local.yml", filepathToSlash(UserPath("proj")))
}

package conf

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSettings(t *testing.T) *Settings {
	t.Helper()
	viper.Reset()
	setDefaultConfig()
	settings := &Settings{}
	require.NoError(t, viper.Unmarshal(settings))
	return settings
}

func TestDefaults(t *testing.T) {
	settings := defaultSettings(t)

	assert.Equal(t, "BirdSense", settings.Main.Name)
	assert.Equal(t, 30*time.Second, settings.Remote.Timeout)
	assert.Equal(t, 5*time.Second, settings.Remote.ProbeTimeout)
	assert.Equal(t, 3*time.Second, settings.Connectivity.Timeout)
	assert.Equal(t, "google.com", settings.Connectivity.ProbeHost)
	assert.False(t, settings.Telemetry.Enabled)
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults_valid", func(s *Settings) {}, false},
		{"zero_remote_timeout", func(s *Settings) { s.Remote.Timeout = 0 }, true},
		{"zero_connectivity_timeout", func(s *Settings) { s.Connectivity.Timeout = 0 }, true},
		{"latitude_too_large", func(s *Settings) { s.Inference.Latitude = 91 }, true},
		{"longitude_too_small", func(s *Settings) { s.Inference.Longitude = -181 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := defaultSettings(t)
			tt.mutate(settings)
			err := ValidateSettings(settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveSettings(t *testing.T) {
	settings := defaultSettings(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveSettings(path, settings))

	viper.Reset()
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
	assert.Equal(t, "BirdSense", viper.GetString("main.name"))
}

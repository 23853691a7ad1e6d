package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunneld/internal/domain"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		configJSON  string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name: "valid config",
			configJSON: `{
				"cache_dir": "/etc/tunneld",
				"default_protocol": "tcp",
				"credentials_path": "/etc/tunneld/credentials",
				"killswitch": {
					"enable": true,
					"custom_rules": ["-A OUTPUT -d 192.168.1.0/24 -j ACCEPT"]
				}
			}`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, domain.TCP, cfg.DefaultProtocol)
				assert.Equal(t, "/etc/tunneld/credentials", cfg.CredentialsPath)
				assert.True(t, cfg.Killswitch.Enable)
				assert.Len(t, cfg.Killswitch.CustomRules, 1)
			},
		},
		{
			name:       "defaults fill unspecified fields",
			configJSON: `{"credentials_path": "/root/credentials"}`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/etc/tunneld", cfg.CacheDir)
				assert.Equal(t, 3, cfg.MaxCacheAgeDays)
				assert.Equal(t, SelectFastest, cfg.DefaultSelect)
				assert.Equal(t, domain.UDP, cfg.DefaultProtocol)
				assert.Equal(t, 90, cfg.DefaultCriteria.MaxLoad)
			},
		},
		{
			name:        "relative credentials path",
			configJSON:  `{"credentials_path": "credentials.txt"}`,
			expectError: true,
		},
		{
			name:        "unknown protocol",
			configJSON:  `{"default_protocol": "sctp"}`,
			expectError: true,
		},
		{
			name:        "invalid selection mode",
			configJSON:  `{"default_select": "slowest"}`,
			expectError: true,
		},
		{
			name:        "load out of range",
			configJSON:  `{"default_criteria": {"tier": "all", "max_load": 250}}`,
			expectError: true,
		},
		{
			name:        "lowercase country code",
			configJSON:  `{"default_criteria": {"tier": "all", "country": "nl"}}`,
			expectError: true,
		},
		{
			name:        "malformed json",
			configJSON:  `{`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.configJSON), 0o644))

			cfg, err := Load(configPath)
			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().CacheDir, cfg.CacheDir)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFeatureMask(t *testing.T) {
	filters := Filters{Features: []string{"p2p", "streaming"}}
	mask := filters.FeatureMask()
	assert.True(t, mask.Contains(domain.FeatureP2P))
	assert.True(t, mask.Contains(domain.FeatureStreaming))
	assert.False(t, mask.Contains(domain.FeatureTor))
}

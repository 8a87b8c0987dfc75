package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, 201, cfg.Pipeline.NumberOfLines)
	assert.InDelta(t, 1000.0/360.0, cfg.Pipeline.GroupDelayScaling, 1e-12)
	assert.Equal(t, 200, cfg.Pipeline.BezierSteps)
	assert.Equal(t, 50.0, cfg.Pipeline.CoarseStep)
	assert.Equal(t, 10.0, cfg.Pipeline.FineStep)
	assert.Equal(t, 300.0, cfg.Pipeline.ShiftLimit)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("NUMBER_OF_LINES", "401")
	t.Setenv("STORAGE_BACKEND", "LOCAL")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 401, cfg.Pipeline.NumberOfLines)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage: StorageConfig{Backend: "local"},
			Pipeline: PipelineConfig{
				NumberOfLines:     201,
				GroupDelayScaling: 1,
				BezierSteps:       200,
				CoarseStep:        50,
				FineStep:          10,
				ShiftLimit:        300,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"one line", func(c *Config) { c.Pipeline.NumberOfLines = 1 }, true},
		{"zero scaling", func(c *Config) { c.Pipeline.GroupDelayScaling = 0 }, true},
		{"one bezier step", func(c *Config) { c.Pipeline.BezierSteps = 1 }, true},
		{"negative fine step", func(c *Config) { c.Pipeline.FineStep = -1 }, true},
		{"zero shift limit", func(c *Config) { c.Pipeline.ShiftLimit = 0 }, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "ftp" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

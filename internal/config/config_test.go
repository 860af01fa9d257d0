package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CheckConfig
		wantErr string
	}{
		{name: "pool only", cfg: CheckConfig{Pool: "tank"}},
		{name: "all with thresholds", cfg: CheckConfig{Pool: AllPools, Warning: intPtr(80), Critical: intPtr(90)}},
		{name: "equal thresholds", cfg: CheckConfig{Pool: "tank", Warning: intPtr(85), Critical: intPtr(85)}},
		{name: "zero thresholds", cfg: CheckConfig{Pool: "tank", Warning: intPtr(0), Critical: intPtr(0)}},
		{name: "missing pool", cfg: CheckConfig{}, wantErr: "pool name or ALL is required"},
		{name: "warning only", cfg: CheckConfig{Pool: "tank", Warning: intPtr(80)}, wantErr: "both warning and critical"},
		{name: "critical only", cfg: CheckConfig{Pool: "tank", Critical: intPtr(90)}, wantErr: "both warning and critical"},
		{name: "warning above critical", cfg: CheckConfig{Pool: "tank", Warning: intPtr(90), Critical: intPtr(80)}, wantErr: "must not be higher"},
		{name: "negative", cfg: CheckConfig{Pool: "tank", Warning: intPtr(-1), Critical: intPtr(80)}, wantErr: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestThresholds(t *testing.T) {
	cfg := CheckConfig{Pool: "tank"}
	assert.Nil(t, cfg.Thresholds())

	cfg.Warning, cfg.Critical = intPtr(80), intPtr(90)
	assert.Equal(t, &Thresholds{Warning: 80, Critical: 90}, cfg.Thresholds())
}

func TestSelectsAll(t *testing.T) {
	assert.True(t, (&CheckConfig{Pool: "ALL"}).SelectsAll())
	assert.False(t, (&CheckConfig{Pool: "tank"}).SelectsAll())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check_zpools.yml")
	data := "pool: ALL\nwarning: 80\ncritical: 90\nsoft_fail: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ALL", cfg.Pool)
	assert.Equal(t, 80, *cfg.Warning)
	assert.Equal(t, 90, *cfg.Critical)
	assert.True(t, cfg.SoftFail)
	assert.Equal(t, "zpool", cfg.ZpoolPath, "defaults survive partial files")
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.True(t, errors.Is(err, ErrInvalid))

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("warning: [80"), 0o644))
	_, err = Load(path)
	assert.True(t, errors.Is(err, ErrInvalid))
}

// FILE: logship/src/internal/config/config_test.go
package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"logship/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	cfg := defaults()
	require.NoError(t, cfg.Resolve())

	assert.Equal(t, "$^", cfg.IgnorePattern)
	assert.Equal(t, `.*_CloudTrail_.*\.json.gz$`, cfg.CloudTrailPattern)
	assert.Equal(t, 1.5, cfg.BatchSizeFactor)
	assert.Empty(t, cfg.Attributes)
	assert.NotNil(t, cfg.Attributes)
	assert.Equal(t, int64(5), cfg.Delivery.MaxRetries)
	assert.Equal(t, int64(25), cfg.Delivery.MaxConcurrentRequests)
	assert.Equal(t, time.Second, cfg.InitialBackoff())
	assert.Equal(t, int64(1000*1024*3/2), cfg.BatchThreshold())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestResolve_EmptyValuesFallBack(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Resolve())

	assert.Equal(t, "$^", cfg.IgnorePattern)
	assert.Equal(t, core.BatchSizeFactor, cfg.BatchSizeFactor)
	assert.Equal(t, int64(core.MaxFileSize), cfg.Source.MaxFileSize)
	assert.Equal(t, int64(core.MaxPayloadSize), cfg.Delivery.MaxPayloadSize)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "logship", cfg.Metrics.Namespace)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
}

func TestResolve_AdditionalAttributes(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr bool
	}{
		{"Object", `{"env":"prod","team":"core"}`, map[string]any{"env": "prod", "team": "core"}, false},
		{"Empty", `{}`, map[string]any{}, false},
		{"Array", `["a"]`, nil, true},
		{"Scalar", `42`, nil, true},
		{"Null", `null`, nil, true},
		{"Garbage", `{not json`, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaults()
			cfg.AdditionalAttributes = tc.raw
			err := cfg.Resolve()
			if tc.wantErr {
				var cfgErr *core.ConfigurationError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, "additional_attributes", cfgErr.Key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.Attributes)
		})
	}
}

func TestResolve_InvalidPattern(t *testing.T) {
	cfg := defaults()
	cfg.IgnorePattern = "["
	err := cfg.Resolve()

	var cfgErr *core.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "s3_ignore_pattern", cfgErr.Key)
}

func TestResolve_DebugForcesLevel(t *testing.T) {
	cfg := defaults()
	cfg.DebugEnabled = true
	require.NoError(t, cfg.Resolve())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestResolve_InvalidLogging(t *testing.T) {
	cfg := defaults()
	cfg.Logging.Output = "file"
	assert.Error(t, cfg.Resolve())
}

func TestIngestEndpoint(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		override string
		expected string
	}{
		{"US", "abc123", "", core.USLoggingIngestHost},
		{"EU", "eu01xx123", "", core.EULoggingIngestHost},
		{"Override", "eu01xx123", "https://example.test/log/v1", "https://example.test/log/v1"},
		{"EmptyKey", "", "", core.USLoggingIngestHost},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.LicenseKey = tc.key
			cfg.Endpoint = tc.override
			assert.Equal(t, tc.expected, cfg.IngestEndpoint())
		})
	}
}

func TestValidateForDelivery(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateForDelivery()

	var cfgErr *core.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "license_key", cfgErr.Key)

	cfg.LicenseKey = "key"
	assert.NoError(t, cfg.ValidateForDelivery())
}

func TestCustomEnvTransform(t *testing.T) {
	assert.Equal(t, "LICENSE_KEY", customEnvTransform("license_key"))
	assert.Equal(t, "DELIVERY_MAX_RETRIES", customEnvTransform("delivery.max_retries"))
	assert.Equal(t, "S3_CLOUD_TRAIL_LOG_PATTERN", customEnvTransform("s3_cloud_trail_log_pattern"))
}

func TestGetConfigPath(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		t.Setenv("LOGSHIP_CONFIG_FILE", "")
		t.Setenv("LOGSHIP_CONFIG_DIR", "")
		assert.Equal(t, "logship.toml", GetConfigPath())
	})

	t.Run("DirAndFile", func(t *testing.T) {
		t.Setenv("LOGSHIP_CONFIG_FILE", "custom.toml")
		t.Setenv("LOGSHIP_CONFIG_DIR", "/etc/logship")
		assert.Equal(t, filepath.Join("/etc/logship", "custom.toml"), GetConfigPath())
	})

	t.Run("AbsoluteFile", func(t *testing.T) {
		t.Setenv("LOGSHIP_CONFIG_FILE", "/opt/logship.toml")
		t.Setenv("LOGSHIP_CONFIG_DIR", "/etc/logship")
		assert.Equal(t, "/opt/logship.toml", GetConfigPath())
	})
}

func TestLoad_Environment(t *testing.T) {
	setEnv := func(t *testing.T, env map[string]string) {
		t.Helper()
		t.Setenv("LOGSHIP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))
		t.Setenv("LOGSHIP_CONFIG_DIR", "")
		for _, k := range []string{"LICENSE_KEY", "LOG_TYPE", "LOGTYPE", "NR_LOGGING_ENDPOINT",
			"DEBUG_ENABLED", "S3_IGNORE_PATTERN", "S3_CLOUD_TRAIL_LOG_PATTERN",
			"BATCH_SIZE_FACTOR", "ADDITIONAL_ATTRIBUTES"} {
			t.Setenv(k, "")
		}
		for k, v := range env {
			t.Setenv(k, v)
		}
	}

	t.Run("HistoricalNames", func(t *testing.T) {
		setEnv(t, map[string]string{
			"LICENSE_KEY":           "eu01xx123",
			"LOGTYPE":               "alb",
			"S3_IGNORE_PATTERN":     `\.tmp$`,
			"BATCH_SIZE_FACTOR":     "2",
			"ADDITIONAL_ATTRIBUTES": `{"env":"prod"}`,
			"DEBUG_ENABLED":         "true",
		})

		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "eu01xx123", cfg.LicenseKey)
		assert.Equal(t, "alb", cfg.LogType)
		assert.Equal(t, core.EULoggingIngestHost, cfg.IngestEndpoint())
		assert.Equal(t, `\.tmp$`, cfg.IgnorePattern)
		assert.Equal(t, 2.0, cfg.BatchSizeFactor)
		assert.Equal(t, map[string]any{"env": "prod"}, cfg.Attributes)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("LogTypeWinsOverAlias", func(t *testing.T) {
		setEnv(t, map[string]string{"LOG_TYPE": "vpc", "LOGTYPE": "alb"})

		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "vpc", cfg.LogType)
	})

	t.Run("EmptyValuesFallBack", func(t *testing.T) {
		setEnv(t, nil)

		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, "$^", cfg.IgnorePattern)
		assert.Equal(t, `.*_CloudTrail_.*\.json.gz$`, cfg.CloudTrailPattern)
		assert.Equal(t, core.BatchSizeFactor, cfg.BatchSizeFactor)
		assert.Empty(t, cfg.Attributes)
		assert.Equal(t, core.USLoggingIngestHost, cfg.IngestEndpoint())
	})

	t.Run("MalformedAttributes", func(t *testing.T) {
		for _, raw := range []string{"[1]", "not json"} {
			setEnv(t, map[string]string{"ADDITIONAL_ATTRIBUTES": raw})

			_, err := Load(nil)
			var cfgErr *core.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "value %q", raw)
			assert.Equal(t, "additional_attributes", cfgErr.Key)
		}
	})
}

func TestSaveToFile_EmptyPath(t *testing.T) {
	assert.Error(t, Default().SaveToFile(""))
}

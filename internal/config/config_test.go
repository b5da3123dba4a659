package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/springbreak/internal/logger"
	"github.com/hammamikhairi/springbreak/internal/navigation"
)

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, EnvLogLevel, EnvSensorURL, EnvSimulate, EnvShakeThreshold, EnvShakeInterval, EnvMapURL)

	c, err := Load(missingFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LogLevel != logger.LevelNormal {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
	if c.ShakeThreshold != 800 || c.ShakeInterval != 100*time.Millisecond {
		t.Errorf("shake = %g/%s, want 800/100ms", c.ShakeThreshold, c.ShakeInterval)
	}
	if c.MapURL != navigation.DefaultURLTemplate {
		t.Errorf("MapURL = %q", c.MapURL)
	}
	if c.SensorURL != "" || c.Simulate {
		t.Errorf("sensor = %q simulate=%v, want none", c.SensorURL, c.Simulate)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "verbose")
	t.Setenv(EnvSensorURL, "ws://10.0.0.5:8080/sensor/connect?type=android.sensor.accelerometer")
	t.Setenv(EnvSimulate, "true")
	t.Setenv(EnvShakeThreshold, "650.5")
	t.Setenv(EnvShakeInterval, "150ms")
	t.Setenv(EnvRecordDuration, "3s")
	t.Setenv(EnvDiskCache, "false")
	t.Setenv("AZURE_SPEECH_KEY", "k")
	t.Setenv("AZURE_SPEECH_REGION", "westeurope")

	c, err := Load(missingFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LogLevel != logger.LevelVerbose {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
	if !c.Simulate || !strings.HasPrefix(c.SensorURL, "ws://10.0.0.5") {
		t.Errorf("sensor = %q simulate=%v", c.SensorURL, c.Simulate)
	}
	if c.ShakeThreshold != 650.5 || c.ShakeInterval != 150*time.Millisecond {
		t.Errorf("shake = %g/%s", c.ShakeThreshold, c.ShakeInterval)
	}
	if c.RecordDuration != 3*time.Second || c.DiskCache {
		t.Errorf("record=%s disk=%v", c.RecordDuration, c.DiskCache)
	}
	if !c.AzureConfigured() {
		t.Error("Azure not configured")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t, EnvClipsDir, EnvVoice)
	path := filepath.Join(t.TempDir(), "test.env")
	body := EnvClipsDir + "=/srv/clips\n" + EnvVoice + "=1\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ClipsDir != "/srv/clips" || !c.Voice {
		t.Errorf("clips=%q voice=%v", c.ClipsDir, c.Voice)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv(EnvSimulate, "sometimes")
	t.Setenv(EnvShakeInterval, "fast")
	t.Setenv(EnvShakeThreshold, "high")

	_, err := Load(missingFile(t))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{EnvSimulate, EnvShakeInterval, EnvShakeThreshold} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.ShakeThreshold = 0 }},
		{"negative interval", func(c *Config) { c.ShakeInterval = -time.Millisecond }},
		{"voice without duration", func(c *Config) { c.Voice, c.RecordDuration = true, 0 }},
		{"template without verb", func(c *Config) { c.MapURL = "https://maps.example.com" }},
		{"http sensor", func(c *Config) { c.SensorURL = "http://10.0.0.5:8080" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

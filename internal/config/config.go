// Package config loads runtime settings from the environment and an
// optional .env file. Command-line flags in cmd/springbreak override them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/springbreak/internal/logger"
	"github.com/hammamikhairi/springbreak/internal/navigation"
	"github.com/hammamikhairi/springbreak/internal/shake"
)

// Env var names.
const (
	EnvLogLevel       = "SPRINGBREAK_LOG_LEVEL"
	EnvLogFile        = "SPRINGBREAK_LOG_FILE"
	EnvSensorURL      = "SPRINGBREAK_SENSOR_URL"
	EnvSimulate       = "SPRINGBREAK_SIMULATE"
	EnvVoice          = "SPRINGBREAK_VOICE"
	EnvWhisperBin     = "SPRINGBREAK_WHISPER_BIN"
	EnvWhisperModel   = "SPRINGBREAK_WHISPER_MODEL"
	EnvRecordDuration = "SPRINGBREAK_RECORD_DURATION"
	EnvClipsDir       = "SPRINGBREAK_CLIPS_DIR"
	EnvCacheDir       = "SPRINGBREAK_CACHE_DIR"
	EnvDiskCache      = "SPRINGBREAK_DISK_CACHE"
	EnvNoAudio        = "SPRINGBREAK_NO_AUDIO"
	EnvMapURL         = "SPRINGBREAK_MAP_URL"
	EnvDesktopNotices = "SPRINGBREAK_DESKTOP_NOTICES"
	EnvShakeThreshold = "SPRINGBREAK_SHAKE_THRESHOLD"
	EnvShakeInterval  = "SPRINGBREAK_SHAKE_INTERVAL"

	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Config holds every runtime setting.
type Config struct {
	LogLevel logger.Level
	LogFile  string // "stderr" logs to the console

	SensorURL string // SensorServer WebSocket endpoint; empty means none
	Simulate  bool   // use the simulated accelerometer instead

	Voice          bool // dictation through whisper-cli
	WhisperBin     string
	WhisperModel   string
	RecordDuration time.Duration

	ClipsDir    string
	CacheDir    string
	DiskCache   bool
	NoAudio     bool
	AzureKey    string
	AzureRegion string

	MapURL         string // printf template with one %s for "lat,lon"
	DesktopNotices bool

	ShakeThreshold float64
	ShakeInterval  time.Duration
}

// DefaultRecordDuration is how long one dictation clip lasts unless
// overridden.
const DefaultRecordDuration = 5 * time.Second

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:       logger.LevelNormal,
		LogFile:        ".springbreak-logs/springbreak.log",
		WhisperBin:     "whisper-cli",
		WhisperModel:   "bin/ggml-small.bin",
		RecordDuration: DefaultRecordDuration,
		ClipsDir:       "clips",
		CacheDir:       ".springbreak-cache",
		DiskCache:      true,
		MapURL:         navigation.DefaultURLTemplate,
		ShakeThreshold: shake.DefaultThreshold,
		ShakeInterval:  shake.DefaultMinInterval,
	}
}

// Load reads the given .env files (".env" when none are named), then
// overlays environment variables on the defaults. Missing .env files are
// not an error; malformed values are.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}

	c := Default()
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = logger.ParseLevel(v)
	}
	str(EnvLogFile, &c.LogFile)
	str(EnvSensorURL, &c.SensorURL)
	boolean(EnvSimulate, &c.Simulate)
	boolean(EnvVoice, &c.Voice)
	str(EnvWhisperBin, &c.WhisperBin)
	str(EnvWhisperModel, &c.WhisperModel)
	duration(EnvRecordDuration, &c.RecordDuration)
	str(EnvClipsDir, &c.ClipsDir)
	str(EnvCacheDir, &c.CacheDir)
	boolean(EnvDiskCache, &c.DiskCache)
	boolean(EnvNoAudio, &c.NoAudio)
	str(EnvAzureSpeechKey, &c.AzureKey)
	str(EnvAzureSpeechRegion, &c.AzureRegion)
	str(EnvMapURL, &c.MapURL)
	boolean(EnvDesktopNotices, &c.DesktopNotices)
	if v, ok := lookup(EnvShakeThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvShakeThreshold, err))
		} else {
			c.ShakeThreshold = f
		}
	}
	duration(EnvShakeInterval, &c.ShakeInterval)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.ShakeThreshold <= 0 {
		errs = append(errs, fmt.Errorf("shake threshold must be positive, got %g", c.ShakeThreshold))
	}
	if c.ShakeInterval < 0 {
		errs = append(errs, fmt.Errorf("shake interval must not be negative, got %s", c.ShakeInterval))
	}
	if c.Voice && c.RecordDuration <= 0 {
		errs = append(errs, fmt.Errorf("record duration must be positive, got %s", c.RecordDuration))
	}
	if strings.Count(c.MapURL, "%s") != 1 {
		errs = append(errs, fmt.Errorf("map url %q needs exactly one %%s", c.MapURL))
	}
	if c.SensorURL != "" && !strings.HasPrefix(c.SensorURL, "ws://") && !strings.HasPrefix(c.SensorURL, "wss://") {
		errs = append(errs, fmt.Errorf("sensor url %q must use ws:// or wss://", c.SensorURL))
	}
	return errors.Join(errs...)
}

// AzureConfigured reports whether greeting synthesis can be used.
func (c Config) AzureConfigured() bool {
	return c.AzureKey != "" && c.AzureRegion != ""
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Package config loads renderer settings from YAML files with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/5urpriser/sysreptor/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidSetting = errors.New("invalid setting")
)

// Setting bounds.
const (
	MinTimeLimitSeconds = 1
	MaxTimeLimitSeconds = 3600
	MinPollIntervalMS   = 10
	MaxPollIntervalMS   = 10000
	MaxWorkers          = 64
)

// Settings holds all renderer configuration.
type Settings struct {
	Rendering RenderingSettings `yaml:"rendering"`
	Queue     QueueSettings     `yaml:"queue"`
}

// RenderingSettings configures render execution.
type RenderingSettings struct {
	// TimeLimitSeconds bounds one render; the orchestrator adds a small
	// grace on top.
	TimeLimitSeconds int `yaml:"timeLimitSeconds"`
	// CompressPDFs enables PDF compression for jobs that allow it.
	CompressPDFs bool `yaml:"compressPdfs"`
	// Workers sizes the renderer pool (0 = auto from GOMAXPROCS).
	Workers int `yaml:"workers"`
}

// QueueSettings configures queued-mode execution.
type QueueSettings struct {
	// Enabled switches rendering from inline to queued mode.
	Enabled bool `yaml:"enabled"`
	// PollIntervalMS is the completion poll interval in milliseconds.
	PollIntervalMS int `yaml:"pollIntervalMs"`
}

// Default returns settings with default values.
func Default() Settings {
	return Settings{
		Rendering: RenderingSettings{TimeLimitSeconds: 300},
		Queue:     QueueSettings{PollIntervalMS: 100},
	}
}

// Load reads settings from a YAML file over the defaults and applies
// environment overrides. An empty path loads defaults plus environment.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
		if err != nil {
			if os.IsNotExist(err) {
				return s, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return s, err
		}
		if err := yamlutil.UnmarshalStrict(data, &s); err != nil {
			return s, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}
	applyEnv(&s)
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Environment variable names.
const (
	EnvTimeLimit    = "REPTOR_RENDERING_TIME_LIMIT"
	EnvCompressPDFs = "REPTOR_COMPRESS_PDFS"
	EnvWorkers      = "REPTOR_WORKERS"
	EnvQueueEnabled = "REPTOR_USE_TASK_QUEUE"
	EnvPollInterval = "REPTOR_POLL_INTERVAL_MS"
)

// applyEnv overrides settings from environment variables. Unparseable
// values are ignored so a bad environment never breaks startup.
func applyEnv(s *Settings) {
	if v, ok := envInt(EnvTimeLimit); ok {
		s.Rendering.TimeLimitSeconds = v
	}
	if v, ok := envBool(EnvCompressPDFs); ok {
		s.Rendering.CompressPDFs = v
	}
	if v, ok := envInt(EnvWorkers); ok {
		s.Rendering.Workers = v
	}
	if v, ok := envBool(EnvQueueEnabled); ok {
		s.Queue.Enabled = v
	}
	if v, ok := envInt(EnvPollInterval); ok {
		s.Queue.PollIntervalMS = v
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// Validate checks that settings are within bounds.
func (s *Settings) Validate() error {
	if s.Rendering.TimeLimitSeconds < MinTimeLimitSeconds || s.Rendering.TimeLimitSeconds > MaxTimeLimitSeconds {
		return fmt.Errorf("%w: rendering.timeLimitSeconds %d (must be between %d and %d)",
			ErrInvalidSetting, s.Rendering.TimeLimitSeconds, MinTimeLimitSeconds, MaxTimeLimitSeconds)
	}
	if s.Rendering.Workers < 0 || s.Rendering.Workers > MaxWorkers {
		return fmt.Errorf("%w: rendering.workers %d (must be between 0 and %d)",
			ErrInvalidSetting, s.Rendering.Workers, MaxWorkers)
	}
	if s.Queue.PollIntervalMS < MinPollIntervalMS || s.Queue.PollIntervalMS > MaxPollIntervalMS {
		return fmt.Errorf("%w: queue.pollIntervalMs %d (must be between %d and %d)",
			ErrInvalidSetting, s.Queue.PollIntervalMS, MinPollIntervalMS, MaxPollIntervalMS)
	}
	return nil
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	s := Default()
	if s.Rendering.TimeLimitSeconds != 300 {
		t.Errorf("TimeLimitSeconds = %d, want 300", s.Rendering.TimeLimitSeconds)
	}
	if s.Queue.PollIntervalMS != 100 {
		t.Errorf("PollIntervalMS = %d, want 100", s.Queue.PollIntervalMS)
	}
	if s.Rendering.CompressPDFs || s.Queue.Enabled {
		t.Error("compression and queue must default to off")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
rendering:
  timeLimitSeconds: 60
  compressPdfs: true
queue:
  enabled: true
  pollIntervalMs: 50
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Rendering.TimeLimitSeconds != 60 || !s.Rendering.CompressPDFs {
		t.Errorf("rendering = %+v", s.Rendering)
	}
	if !s.Queue.Enabled || s.Queue.PollIntervalMS != 50 {
		t.Errorf("queue = %+v", s.Queue)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
rendering:
  compressPdfs: true
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Rendering.TimeLimitSeconds != 300 {
		t.Errorf("TimeLimitSeconds = %d, unset keys must keep defaults", s.Rendering.TimeLimitSeconds)
	}
	if !s.Rendering.CompressPDFs {
		t.Error("set key must override the default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
rendering:
  timLimitSeconds: 60
`)

	_, err := Load(path)
	if !errors.Is(err, ErrConfigParse) {
		t.Errorf("err = %v, want ErrConfigParse for unknown key", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvTimeLimit, "120")
	t.Setenv(EnvCompressPDFs, "true")
	t.Setenv(EnvQueueEnabled, "1")
	t.Setenv(EnvPollInterval, "250")
	t.Setenv(EnvWorkers, "4")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Rendering.TimeLimitSeconds != 120 {
		t.Errorf("TimeLimitSeconds = %d, want 120", s.Rendering.TimeLimitSeconds)
	}
	if !s.Rendering.CompressPDFs || !s.Queue.Enabled {
		t.Errorf("bool overrides not applied: %+v", s)
	}
	if s.Queue.PollIntervalMS != 250 || s.Rendering.Workers != 4 {
		t.Errorf("int overrides not applied: %+v", s)
	}
}

func TestLoadEnvIgnoresUnparseable(t *testing.T) {
	t.Setenv(EnvTimeLimit, "soon")
	t.Setenv(EnvCompressPDFs, "yes please")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Rendering.TimeLimitSeconds != 300 || s.Rendering.CompressPDFs {
		t.Errorf("unparseable env must be ignored: %+v", s.Rendering)
	}
}

func TestValidateBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"time limit too low", func(s *Settings) { s.Rendering.TimeLimitSeconds = 0 }},
		{"time limit too high", func(s *Settings) { s.Rendering.TimeLimitSeconds = 7200 }},
		{"negative workers", func(s *Settings) { s.Rendering.Workers = -1 }},
		{"too many workers", func(s *Settings) { s.Rendering.Workers = 1000 }},
		{"poll interval too low", func(s *Settings) { s.Queue.PollIntervalMS = 1 }},
		{"poll interval too high", func(s *Settings) { s.Queue.PollIntervalMS = 60000 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := Default()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSetting) {
				t.Errorf("err = %v, want ErrInvalidSetting", err)
			}
		})
	}
}

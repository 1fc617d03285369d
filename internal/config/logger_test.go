package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/simp-lee/logger"
)

func boolPtr(b bool) *bool { return &b }

func TestSetupLogger_NilConfig(t *testing.T) {
	_, err := SetupLogger(nil)
	if err == nil || err.Error() != "log config is nil" {
		t.Errorf("SetupLogger(nil) error = %v; want %q", err, "log config is nil")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	} {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want logger.OutputFormat
	}{
		{"text", logger.FormatText},
		{" JSON ", logger.FormatJSON},
		{"pretty", logger.FormatCustom},
	}
	for _, tt := range tests {
		if got := parseFormat(tt.in); got != tt.want {
			t.Errorf("parseFormat(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupLogger_EnablesConfiguredLevel(t *testing.T) {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		log, err := SetupLogger(&LogConfig{Level: level.String(), Format: "text", Color: boolPtr(false)})
		if err != nil {
			t.Fatalf("SetupLogger(%v) error = %v", level, err)
		}

		if !log.Enabled(context.Background(), level) {
			t.Errorf("%v should be enabled", level)
		}
		if level > slog.LevelDebug && log.Enabled(context.Background(), level-1) {
			t.Errorf("below %v should be disabled", level)
		}
		if err := log.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
}

func TestSetupLogger_InstallsDefault(t *testing.T) {
	log, err := SetupLogger(&LogConfig{Level: "warn", Format: "text", Color: boolPtr(false)})
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	defer log.Close()

	if slog.Default().Handler() != log.Handler() {
		t.Error("slog.Default should use the new handler")
	}
}

func TestSetupLogger_WithFile(t *testing.T) {
	log, err := SetupLogger(&LogConfig{
		Level:      "info",
		Format:     "json",
		FilePath:   filepath.Join(t.TempDir(), "clientes.log"),
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	log.Info("cliente creado", slog.Int("id", 7))
	if err := log.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestBuildLoggerOpts(t *testing.T) {
	const file = "/tmp/clientes.log"
	// Level, context middleware, console format and console color.
	const console = 4
	// File path and file format.
	const withFile = console + 2

	tests := []struct {
		name string
		cfg  *LogConfig
		want int
	}{
		{"console text", &LogConfig{Level: "debug", Format: "text"}, console},
		{"console json without color", &LogConfig{Format: "json", Color: boolPtr(false)}, console},
		{"rotation ignored without file", &LogConfig{Format: "text", MaxSizeMB: 50, MaxBackups: 5}, console},
		{"file", &LogConfig{Format: "json", FilePath: file}, withFile},
		{"file with size limit", &LogConfig{FilePath: file, MaxSizeMB: 10}, withFile + 1},
		{"explicit compress false", &LogConfig{FilePath: file, CompressRotated: boolPtr(false)}, withFile + 1},
		{
			"all rotation settings",
			&LogConfig{FilePath: file, MaxSizeMB: 50, RetentionDays: 30, MaxBackups: 5, CompressRotated: boolPtr(true)},
			withFile + 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(BuildLoggerOpts(tt.cfg)); got != tt.want {
				t.Errorf("len(BuildLoggerOpts()) = %d; want %d", got, tt.want)
			}
		})
	}
	if got := BuildLoggerOpts(nil); got != nil {
		t.Errorf("BuildLoggerOpts(nil) = %v; want nil", got)
	}
}

func TestBuildLoggerOpts_AcceptedByLogger(t *testing.T) {
	log, err := logger.New(BuildLoggerOpts(&LogConfig{
		Level: "info", Format: "json", FilePath: filepath.Join(t.TempDir(), "opts.log"),
		MaxSizeMB: 10, RetentionDays: 7, MaxBackups: 3, CompressRotated: boolPtr(true),
	})...)
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}
	if err := log.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

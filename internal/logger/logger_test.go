package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitSetsLevel(t *testing.T) {
	Init(false)
	if Log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Init(false) level = %v, want info", Log.GetLevel())
	}

	Init(true)
	if Log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Init(true) level = %v, want debug", Log.GetLevel())
	}
}

func TestLoggingConfigDefaults(t *testing.T) {
	cfg := &LoggingConfig{}

	if !cfg.IsFileEnabled() {
		t.Error("IsFileEnabled() should default to true")
	}
	if cfg.GetMaxSizeMB() != 50 {
		t.Errorf("GetMaxSizeMB() = %d, want 50", cfg.GetMaxSizeMB())
	}
	if cfg.GetMaxAgeDays() != 7 {
		t.Errorf("GetMaxAgeDays() = %d, want 7", cfg.GetMaxAgeDays())
	}
	if cfg.GetMaxBackups() != 3 {
		t.Errorf("GetMaxBackups() = %d, want 3", cfg.GetMaxBackups())
	}

	disabled := false
	cfg.FileEnabled = &disabled
	if cfg.IsFileEnabled() {
		t.Error("IsFileEnabled() should respect explicit false")
	}
}

func TestInitWithFileCreatesLogFile(t *testing.T) {
	tmpDir := t.TempDir()
	logsDir := filepath.Join(tmpDir, "logs")

	if err := InitWithFile(true, logsDir, &LoggingConfig{}); err != nil {
		t.Fatalf("InitWithFile() error = %v", err)
	}
	defer CloseFileWriter()

	Info().Str("step", "native-packages").Msg("test entry")

	if GetLogFilePath() == "" {
		t.Fatal("GetLogFilePath() should return a path after InitWithFile")
	}
	if _, err := os.Stat(GetLogFilePath()); err != nil {
		t.Errorf("log file should exist: %v", err)
	}
}

func TestInitWithFileDisabled(t *testing.T) {
	disabled := false
	err := InitWithFile(false, t.TempDir(), &LoggingConfig{FileEnabled: &disabled})
	if err != nil {
		t.Fatalf("InitWithFile() error = %v", err)
	}
	if GetLogFilePath() != "" {
		t.Error("GetLogFilePath() should be empty when file logging is disabled")
	}
}

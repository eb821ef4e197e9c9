package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survivor.log")

	l, err := New(path, "debug", "survivor")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	l.Info("wave started", "wave", 2)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{"survivor", "wave started", "wave=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log file missing %q: %s", want, out)
		}
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected log.Level
		wantErr  bool
	}{
		{"debug", log.DebugLevel, false},
		{"info", log.InfoLevel, false},
		{"warn", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New("", tt.level, "")
			if tt.wantErr {
				if err == nil {
					t.Errorf("New(%q) succeeded, expected an error", tt.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) failed: %v", tt.level, err)
			}
			if l.GetLevel() != tt.expected {
				t.Errorf("GetLevel() = %v, expected %v", l.GetLevel(), tt.expected)
			}
		})
	}
}

func TestLevelFiltersFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survivor.log")

	l, err := New(path, "warn", "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	l.Debug("reload started")
	l.Warn("spawn failed")

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "reload started") {
		t.Error("debug entry written at warn level")
	}
	if !strings.Contains(string(data), "spawn failed") {
		t.Error("warn entry missing at warn level")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javanhut/ivaldi-history/history"
)

func tempPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Global:  filepath.Join(dir, "home", ".ivhconfig.yaml"),
		Project: filepath.Join(dir, "proj", ".ivh.yaml"),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(tempPaths(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := map[string]string{
		"history.max_entries":    "1000",
		"history.debounce_delay": "300ms",
		"history.compression":    "false",
		"history.auto_cleanup":   "true",
		"color.ui":               "true",
	}
	for _, key := range Keys {
		got, err := cfg.Get(key)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", key, err)
		}
		if got != want[key] {
			t.Errorf("%s: expected %q, got %q", key, want[key], got)
		}
	}
}

func TestProjectOverridesGlobal(t *testing.T) {
	p := tempPaths(t)
	writeFile(t, p.Global, "history:\n  max_entries: 50\n  compression: true\ncolor:\n  ui: false\n")
	writeFile(t, p.Project, "history:\n  max_entries: 10\n  compression: false\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.History.MaxEntries != 10 {
		t.Errorf("Expected project max_entries 10, got %d", cfg.History.MaxEntries)
	}
	if *cfg.History.Compression {
		t.Error("Project false should override global true")
	}
	if cfg.ColorEnabled() {
		t.Error("Global color.ui=false should survive an unrelated project file")
	}
	if cfg.History.DebounceDelay != "300ms" {
		t.Errorf("Unset keys should keep defaults, got %q", cfg.History.DebounceDelay)
	}
}

func TestLoadMalformed(t *testing.T) {
	p := tempPaths(t)
	writeFile(t, p.Project, "history: [not, a, map")

	if _, err := Load(p); err == nil {
		t.Error("Expected parse error")
	}
}

func TestSetValue(t *testing.T) {
	p := tempPaths(t)

	if err := SetValue(p, "history.debounce_delay", "1s", true); err != nil {
		t.Fatalf("SetValue global failed: %v", err)
	}
	if err := SetValue(p, "history.auto_cleanup", "false", false); err != nil {
		t.Fatalf("SetValue project failed: %v", err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.History.DebounceDelay != "1s" || *cfg.History.AutoCleanup {
		t.Errorf("Unexpected config: %+v", cfg.History)
	}

	data, err := os.ReadFile(p.Project)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "debounce_delay") {
		t.Errorf("Project file should only hold its own keys:\n%s", data)
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		key, value string
	}{
		{"history.max_entries", "0"},
		{"history.max_entries", "many"},
		{"history.debounce_delay", "soon"},
		{"history.compression", "maybe"},
		{"history.unknown", "1"},
		{"nodot", "1"},
	}
	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%s, %s) should fail", tt.key, tt.value)
		}
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Set("history.max_entries", "2")
	cfg.Set("history.debounce_delay", "5ms")
	cfg.Set("history.compression", "true")

	opts, err := cfg.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions failed: %v", err)
	}

	h := history.New[int](opts...)
	got := h.Config()
	if got.MaxEntries != 2 || got.DebounceDelay != 5*time.Millisecond || !got.EnableCompression || !got.AutoCleanup {
		t.Errorf("Unexpected engine config: %+v", got)
	}

	cfg.History.DebounceDelay = "bogus"
	if _, err := cfg.EngineOptions(); err == nil {
		t.Error("Expected error for bad duration")
	}
}

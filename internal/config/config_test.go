package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keshon/zsync/internal/config"
)

func TestLoadDefaults_MissingFileYieldsZeroValue(t *testing.T) {
	d, err := config.LoadDefaults(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatal(err)
	}
	if d.MaxRangesPerRequest != 0 || d.UserAgent != "" {
		t.Fatalf("expected zero-value Defaults, got %+v", d)
	}
}

func TestLoadDefaults_ParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zsync.json")
	const body = `{"maxRangesPerRequest": 8, "userAgent": "custom-agent/1.0"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := config.LoadDefaults(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.MaxRangesPerRequest != 8 || d.UserAgent != "custom-agent/1.0" {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}

func TestUserAgent_FallsBackToDefaultWithoutEnv(t *testing.T) {
	os.Unsetenv("ZSYNC_USER_AGENT")
	if got := config.UserAgent(); got == "" {
		t.Fatal("expected a non-empty default user agent")
	}
}

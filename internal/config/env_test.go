package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("INVADERS_TEST_STR", "hello")
	if got := GetEnv("INVADERS_TEST_STR", "x"); got != "hello" {
		t.Errorf("GetEnv = %q", got)
	}
	if got := GetEnv("INVADERS_TEST_UNSET", "x"); got != "x" {
		t.Errorf("GetEnv fallback = %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("INVADERS_TEST_INT", "42")
	if n, err := GetEnvInt("INVADERS_TEST_INT", 1); err != nil || n != 42 {
		t.Errorf("GetEnvInt = %d, %v", n, err)
	}
	if n, err := GetEnvInt("INVADERS_TEST_UNSET", 7); err != nil || n != 7 {
		t.Errorf("GetEnvInt fallback = %d, %v", n, err)
	}
	t.Setenv("INVADERS_TEST_INT", "many")
	if n, err := GetEnvInt("INVADERS_TEST_INT", 7); err == nil || n != 7 {
		t.Errorf("bad int: n=%d err=%v", n, err)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"0", false, false},
		{"", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Setenv("INVADERS_TEST_BOOL", tt.value)
		got, err := GetEnvBool("INVADERS_TEST_BOOL", true)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("GetEnvBool(%q) = %v, %v", tt.value, got, err)
		}
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("INVADERS_TEST_DUR", "1m30s")
	if d, err := GetEnvDuration("INVADERS_TEST_DUR", time.Second); err != nil || d != 90*time.Second {
		t.Errorf("GetEnvDuration = %v, %v", d, err)
	}
	t.Setenv("INVADERS_TEST_DUR", "soon")
	if _, err := GetEnvDuration("INVADERS_TEST_DUR", time.Second); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("INVADERS_TEST_DOTENV=from-file\nINVADERS_TEST_KEEP=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INVADERS_TEST_KEEP", "env")
	// Registers cleanup so the loaded variable does not leak into other tests.
	t.Setenv("INVADERS_TEST_DOTENV", "")
	os.Unsetenv("INVADERS_TEST_DOTENV")

	loaded, err := LoadDotEnv(path, filepath.Join(dir, "missing.env"))
	if err != nil || !loaded {
		t.Fatalf("LoadDotEnv = %v, %v", loaded, err)
	}
	if got := os.Getenv("INVADERS_TEST_DOTENV"); got != "from-file" {
		t.Errorf("loaded value = %q", got)
	}
	if got := os.Getenv("INVADERS_TEST_KEEP"); got != "env" {
		t.Errorf("existing variable overridden: %q", got)
	}

	loaded, err = LoadDotEnv(filepath.Join(dir, "missing.env"))
	if err != nil || loaded {
		t.Errorf("missing file: loaded=%v err=%v", loaded, err)
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Model string `yaml:"model"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("ANSUZ_TEST_NAME", "studio")
	p := writeConfig(t, "name: ${ANSUZ_TEST_NAME}\nport: 3001\n")

	cfg := sample{Model: "default-model"}
	if err := Load(p, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "studio" || cfg.Port != 3001 || cfg.Model != "default-model" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeConfig(t, "name: x\n")
	err := Load(p, &sample{})
	if err == nil || !strings.Contains(err.Error(), "port is required") {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &sample{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("ANSUZ_SET", "value")
	t.Setenv("ANSUZ_EMPTY", "")

	tests := []struct {
		in, want string
	}{
		{"${ANSUZ_SET}", "value"},
		{"$ANSUZ_SET", "value"},
		{"${ANSUZ_EMPTY:-fallback}", "fallback"},
		{"${ANSUZ_UNSET_XYZ:-http://localhost:8080}", "http://localhost:8080"},
		{"${ANSUZ_SET:-fallback}", "value"},
		{"${ANSUZ_UNSET_XYZ}", ""},
	}
	for _, tt := range tests {
		if got := ExpandEnv(tt.in); got != tt.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

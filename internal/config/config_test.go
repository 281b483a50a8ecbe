package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Oracle.Timeout.Duration != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Oracle.Timeout)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[compile]
entry = "start"

[optimize]
passes = ["fold", "prune"]

[oracle]
engine = "dvm"
timeout = "250ms"
cache = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Compile.Entry != "start" || cfg.Compile.Extension != ".dis" {
		t.Errorf("compile = %+v", cfg.Compile)
	}
	if diff := cmp.Diff([]string{"fold", "prune"}, cfg.Optimize.Passes); diff != "" {
		t.Errorf("passes (-want +got):\n%s", diff)
	}
	if cfg.Optimize.MaxRounds != 64 {
		t.Errorf("max_rounds lost its default: %d", cfg.Optimize.MaxRounds)
	}
	if cfg.Oracle.Engine != EngineDVM || cfg.Oracle.Timeout.Duration != 250*time.Millisecond || !cfg.Oracle.Cache {
		t.Errorf("oracle = %+v", cfg.Oracle)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestEmptyPassListDisablesOptimizer(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "[optimize]\npasses = []\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Optimize.Passes == nil || len(cfg.Optimize.Passes) != 0 {
		t.Errorf("passes = %#v", cfg.Optimize.Passes)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"syntax", "[compile\n", "failed to parse TOML"},
		{"unknown key", "[compile]\nentyr = \"x\"\n", "unknown keys: compile.entyr"},
		{"empty entry", "[compile]\nentry = \"\"\n", "[compile].entry"},
		{"unknown pass", "[optimize]\npasses = [\"fold\", \"dce\"]\n", `unknown pass "dce"`},
		{"engine", "[oracle]\nengine = \"jit\"\n", "[oracle].engine"},
		{"timeout", "[oracle]\ntimeout = \"soon\"\n", "failed to parse TOML"},
		{"rounds", "[optimize]\nmax_rounds = 0\n", "max_rounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[compile]\nentry = \"go\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Discover(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Compile.Entry != "go" {
		t.Errorf("entry = %q", cfg.Compile.Entry)
	}
}

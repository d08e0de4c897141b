package tuning

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"mirror-ca/internal/sims/mirror"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadAndApply(t *testing.T) {
	p := writeFile(t, `
n: 65
mode: priority
mirrored: true
particles:
  spawn_rate: 80
  initial_density: 0.1
annihilation:
  decay: 5
`)
	tu, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"n", "mode", "mirrored", "particles.spawn_rate", "particles.initial_density", "annihilation.decay"}
	if !slices.Equal(tu.Keys(), want) {
		t.Fatalf("Keys() = %v, want %v", tu.Keys(), want)
	}

	cfg := mirror.DefaultConfig()
	if err := tu.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.N != 65 || cfg.Mode != mirror.ModePriority || !cfg.Mirrored {
		t.Fatalf("lattice fields not applied: %+v", cfg)
	}
	if cfg.Params.SpawnRate != 80 || cfg.Params.InitialDensity != 0.1 || cfg.Params.AnnihilationDecay != 5 {
		t.Fatalf("params not applied: %+v", cfg.Params)
	}
	if cfg.Params.Lifespan != 120 || cfg.Params.AnnihilationLife != 255 {
		t.Fatalf("unset params should keep defaults: %+v", cfg.Params)
	}
}

func TestSchemaRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "colour: red\n",
		"rate range":       "particles:\n  spawn_rate: 2000\n",
		"bad mode":         "mode: chaotic\n",
		"fractional n":     "n: 12.5\n",
		"nested unknown":   "annihilation:\n  half_life: 3\n",
		"negative workers": "workers: -1\n",
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); err == nil {
			t.Fatalf("%s: expected schema error", name)
		}
	}
}

func TestEmptyDocumentIsNoOp(t *testing.T) {
	tu, err := Parse([]byte("# nothing here\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg := mirror.DefaultConfig()
	if err := tu.Apply(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg != mirror.DefaultConfig() {
		t.Fatalf("empty tuning changed the config: %+v", cfg)
	}
}

func TestApplyRevalidates(t *testing.T) {
	tu, err := Parse([]byte("n: 64\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := mirror.DefaultConfig()
	if err := tu.Apply(&cfg); !errors.Is(err, mirror.ErrInvalidConfig) {
		t.Fatalf("even n in symmetric mode should fail validation, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	_, err = Load(writeFile(t, "n: [1, 2\n"))
	if err == nil || !strings.Contains(err.Error(), "tuning.yaml") {
		t.Fatalf("parse errors should name the file, got %v", err)
	}
}

func TestLoadRejectsSchemaInvalidFile(t *testing.T) {
	p := writeFile(t, "n: 33\nparticles:\n  spawn_rate: 40\n  lifespan: 0\n")
	_, err := Load(p)
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a schema validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "tuning.yaml") {
		t.Fatalf("validation errors should name the file, got %v", err)
	}

	tu, err := Load(writeFile(t, "n: 33\nseed: 9\n"))
	if err != nil {
		t.Fatalf("valid integers should pass validation: %v", err)
	}
	if tu.Seed == nil || *tu.Seed != 9 {
		t.Fatalf("seed not decoded: %+v", tu)
	}
}

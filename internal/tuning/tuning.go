// Package tuning loads lattice tunables from a YAML file and overlays them
// onto a mirror.Config.
package tuning

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"mirror-ca/internal/sims/mirror"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://mirror-ca.local/schemas/tuning.schema.json"

var schema = jsonschema.MustCompileString(schemaURL, schemaJSON)

// Tuning mirrors the document layout. Unset fields leave the config alone.
type Tuning struct {
	N        *int    `yaml:"n" json:"n,omitempty"`
	Mode     *string `yaml:"mode" json:"mode,omitempty"`
	Seed     *int64  `yaml:"seed" json:"seed,omitempty"`
	Workers  *int    `yaml:"workers" json:"workers,omitempty"`
	Mirrored *bool   `yaml:"mirrored" json:"mirrored,omitempty"`

	Particles    Particles    `yaml:"particles" json:"particles"`
	Annihilation Annihilation `yaml:"annihilation" json:"annihilation"`
}

type Particles struct {
	SpawnRate      *int     `yaml:"spawn_rate" json:"spawn_rate,omitempty"`
	Lifespan       *int     `yaml:"lifespan" json:"lifespan,omitempty"`
	InitialDensity *float64 `yaml:"initial_density" json:"initial_density,omitempty"`
}

type Annihilation struct {
	Life  *int `yaml:"life" json:"life,omitempty"`
	Decay *int `yaml:"decay" json:"decay,omitempty"`
}

// Load reads and validates the tuning file at path.
func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	t, err := Parse(raw)
	if err != nil {
		return Tuning{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse validates raw YAML against the embedded schema and decodes it.
func Parse(raw []byte) (Tuning, error) {
	var t Tuning
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return t, fmt.Errorf("tuning: %w", err)
	}
	if doc == nil {
		return t, nil
	}
	if err := validate(doc); err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning: %w", err)
	}
	return t, nil
}

// validate round-trips the YAML tree through JSON so the validator sees
// json.Number values and string-keyed objects.
func validate(doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

// Apply overlays every set field onto cfg and revalidates it.
func (t Tuning) Apply(cfg *mirror.Config) error {
	if t.N != nil {
		cfg.N = *t.N
	}
	if t.Mode != nil {
		m, err := mirror.ParseMode(*t.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}
	if t.Seed != nil {
		cfg.Seed = *t.Seed
	}
	if t.Workers != nil {
		cfg.Workers = *t.Workers
	}
	if t.Mirrored != nil {
		cfg.Mirrored = *t.Mirrored
	}
	if p := t.Particles; p.SpawnRate != nil {
		cfg.Params.SpawnRate = *p.SpawnRate
	}
	if p := t.Particles; p.Lifespan != nil {
		cfg.Params.Lifespan = *p.Lifespan
	}
	if p := t.Particles; p.InitialDensity != nil {
		cfg.Params.InitialDensity = *p.InitialDensity
	}
	if a := t.Annihilation; a.Life != nil {
		cfg.Params.AnnihilationLife = *a.Life
	}
	if a := t.Annihilation; a.Decay != nil {
		cfg.Params.AnnihilationDecay = *a.Decay
	}
	return cfg.Validate()
}

// Keys lists the fields set in t using their document paths.
func (t Tuning) Keys() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(t.N != nil, "n")
	add(t.Mode != nil, "mode")
	add(t.Seed != nil, "seed")
	add(t.Workers != nil, "workers")
	add(t.Mirrored != nil, "mirrored")
	add(t.Particles.SpawnRate != nil, "particles.spawn_rate")
	add(t.Particles.Lifespan != nil, "particles.lifespan")
	add(t.Particles.InitialDensity != nil, "particles.initial_density")
	add(t.Annihilation.Life != nil, "annihilation.life")
	add(t.Annihilation.Decay != nil, "annihilation.decay")
	return keys
}

func (t Tuning) String() string { return strings.Join(t.Keys(), ",") }

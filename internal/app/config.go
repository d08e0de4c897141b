package app

import (
	"flag"
	"fmt"
	"slices"
	"strings"

	"mirror-ca/internal/core"
	"mirror-ca/internal/lattice"
	"mirror-ca/internal/sims/mirror"
	"mirror-ca/internal/tuning"
)

// EnvPrefix prefixes the environment overrides for every bound flag.
const EnvPrefix = "MIRROR_"

// Config holds the command-line parameters shared by the viewer and runners.
type Config struct {
	Sim      string
	Scale    int
	TPS      int
	Seed     int64
	HUDWidth int
	AutoScan bool
	LogLevel string
	Axis     string
	// Slice is the initial view index; negative centers it.
	Slice int

	N         int
	Workers   int
	SpawnRate int
	Lifespan  int
	Mirrored  bool
	Tuning    string

	explicit map[string]bool
}

// NewConfig returns a Config populated with the viewer defaults.
func NewConfig() *Config {
	d := mirror.DefaultConfig()
	return &Config{
		Sim:       "mirror",
		Scale:     5,
		TPS:       30,
		Seed:      d.Seed,
		HUDWidth:  260,
		AutoScan:  true,
		LogLevel:  "info",
		Axis:      "z",
		Slice:     -1,
		N:         d.N,
		SpawnRate: d.Params.SpawnRate,
		Lifespan:  d.Params.Lifespan,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run (mirror or priority)")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the stats panel in pixels, 0 hides it")
	fs.BoolVar(&c.AutoScan, "autoscan", c.AutoScan, "advance the view slice every few ticks")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")

	fs.IntVar(&c.N, "n", c.N, "lattice side length")
	fs.IntVar(&c.Workers, "workers", c.Workers, "parallel slabs, 0 uses every CPU")
	fs.IntVar(&c.SpawnRate, "spawn-rate", c.SpawnRate, "boundary spawn chance per mille")
	fs.IntVar(&c.Lifespan, "lifespan", c.Lifespan, "particle life in ticks")
	fs.BoolVar(&c.Mirrored, "mirrored", c.Mirrored, "swap the species spawn rows")
	fs.StringVar(&c.Tuning, "tuning", c.Tuning, "optional YAML tuning file applied before flags")
	fs.StringVar(&c.Axis, "axis", c.Axis, "initial view axis: x, y or z")
	fs.IntVar(&c.Slice, "slice", c.Slice, "initial view slice index, -1 centers it")
}

// EnvName maps a flag name to its environment variable.
func EnvName(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// Resolve records which flags were given and fills the rest from the
// environment. Call it after fs.Parse. Command-line values win.
func (c *Config) Resolve(fs *flag.FlagSet, lookup func(string) (string, bool)) error {
	c.explicit = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { c.explicit[f.Name] = true })
	if lookup == nil {
		return nil
	}
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil || c.explicit[f.Name] {
			return
		}
		v, ok := lookup(EnvName(f.Name))
		if !ok {
			return
		}
		if serr := fs.Set(f.Name, v); serr != nil {
			err = fmt.Errorf("%s: %w", EnvName(f.Name), serr)
			return
		}
		c.explicit[f.Name] = true
	})
	return err
}

// Mode maps Sim onto a lattice mode. Registered sim names and mode names
// are both accepted.
func (c *Config) Mode() (mirror.Mode, error) {
	if m, err := mirror.ParseMode(c.Sim); err == nil {
		return m, nil
	}
	// "mirror" is the symmetric sim's registered name.
	if _, ok := core.Lookup(c.Sim); ok {
		return mirror.ModeSymmetric, nil
	}
	return "", fmt.Errorf("unknown sim %q (registered: %s)", c.Sim, strings.Join(simNames(), ", "))
}

func simNames() []string {
	names := make([]string, 0, len(core.Sims()))
	for name := range core.Sims() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ApplyView selects the initial view slice on w.
func (c *Config) ApplyView(w *mirror.World) error {
	axis, err := lattice.ParseAxis(c.Axis)
	if err != nil {
		return err
	}
	index := c.Slice
	if index < 0 {
		index = w.Config().N / 2
	}
	return w.SetView(axis, index)
}

// MirrorConfig layers defaults, the tuning file and explicitly given flags,
// in that order, and validates the result.
func (c *Config) MirrorConfig() (mirror.Config, error) {
	cfg := mirror.DefaultConfig()
	mode, err := c.Mode()
	if err != nil {
		return cfg, err
	}
	cfg.Mode = mode
	if c.Tuning != "" {
		t, err := tuning.Load(c.Tuning)
		if err != nil {
			return cfg, err
		}
		if err := t.Apply(&cfg); err != nil {
			return cfg, err
		}
		if c.set("sim") {
			cfg.Mode = mode
		}
	}
	if c.set("seed") || c.Tuning == "" {
		cfg.Seed = c.Seed
	}
	if c.set("n") || c.Tuning == "" {
		cfg.N = c.N
	}
	if c.set("workers") || c.Tuning == "" {
		cfg.Workers = c.Workers
	}
	if c.set("spawn-rate") || c.Tuning == "" {
		cfg.Params.SpawnRate = c.SpawnRate
	}
	if c.set("lifespan") || c.Tuning == "" {
		cfg.Params.Lifespan = c.Lifespan
	}
	if c.set("mirrored") || c.Tuning == "" {
		cfg.Mirrored = c.Mirrored
	}
	return cfg, cfg.Validate()
}

func (c *Config) set(name string) bool { return c.explicit[name] }

package mirror

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mode selects the conflict-resolution strategy.
type Mode string

const (
	// ModeSymmetric resolves every destination from the previous lattice
	// alone, so slabs can be computed in parallel.
	ModeSymmetric Mode = "symmetric"
	// ModePriority walks cells in ascending linear index and lets the first
	// particle to reach an empty destination keep it.
	ModePriority Mode = "priority"
)

// ParseMode accepts the textual mode names.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeSymmetric), "parallel":
		return ModeSymmetric, nil
	case string(ModePriority), "sequential":
		return ModePriority, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

var (
	ErrInvalidConfig = errors.New("mirror: invalid config")
	ErrAllocation    = errors.New("mirror: lattice allocation failed")
)

// maxCells bounds N^3 so linear indices and counters stay well inside int32.
const maxCells = 1 << 28

// Params holds the particle tunables.
type Params struct {
	// SpawnRate is the per-mille chance a spawn-row cell creates a particle each tick.
	SpawnRate int
	// Lifespan is the life a particle starts with.
	Lifespan int
	// AnnihilationLife is the life of the marker left by a collision.
	AnnihilationLife int
	// AnnihilationDecay is subtracted from a marker's life every tick.
	AnnihilationDecay int
	// InitialDensity is the chance a cell starts occupied in priority mode.
	InitialDensity float64
}

// Config controls the lattice simulation. It is fixed once a World is built.
type Config struct {
	N    int
	Mode Mode

	Seed    int64
	Workers int
	// Mirrored swaps the spawn rows: SpeciesB spawns at y=0 and SpeciesA at y=N-1.
	Mirrored bool

	Params Params
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		N:    129,
		Mode: ModeSymmetric,
		Seed: 1337,
		Params: Params{
			SpawnRate:         40,
			Lifespan:          120,
			AnnihilationLife:  255,
			AnnihilationDecay: 10,
			InitialDensity:    0.05,
		},
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.N < 3 {
		return fmt.Errorf("%w: n=%d, need at least 3", ErrInvalidConfig, c.N)
	}
	if c.N > 1<<10 || c.N*c.N*c.N > maxCells {
		return fmt.Errorf("%w: n=%d is too large", ErrInvalidConfig, c.N)
	}
	switch c.Mode {
	case ModeSymmetric:
		// An even side lets a cell and its wrapped neighbor-of-neighbor coincide.
		if c.N%2 == 0 {
			return fmt.Errorf("%w: symmetric mode needs an odd n, got %d", ErrInvalidConfig, c.N)
		}
	case ModePriority:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	p := c.Params
	if p.SpawnRate < 0 || p.SpawnRate > 1000 {
		return fmt.Errorf("%w: spawn_rate=%d outside [0,1000]", ErrInvalidConfig, p.SpawnRate)
	}
	if p.Lifespan < 1 {
		return fmt.Errorf("%w: lifespan=%d, need at least 1", ErrInvalidConfig, p.Lifespan)
	}
	if p.AnnihilationLife < 1 || p.AnnihilationDecay < 1 {
		return fmt.Errorf("%w: annihilation life/decay must be positive", ErrInvalidConfig)
	}
	if p.InitialDensity < 0 || p.InitialDensity > 1 {
		return fmt.Errorf("%w: initial_density=%g outside [0,1]", ErrInvalidConfig, p.InitialDensity)
	}
	return nil
}

// FromMap populates a Config from a string map (flag-style key/value pairs).
// Unparseable values keep their defaults.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["n"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.N = parsed
		}
	}
	if v, ok := cfg["mode"]; ok {
		if parsed, err := ParseMode(v); err == nil {
			c.Mode = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Workers = parsed
		}
	}
	if v, ok := cfg["mirrored"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Mirrored = parsed
		}
	}
	if v, ok := cfg["spawn_rate"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 1000 {
			c.Params.SpawnRate = parsed
		}
	}
	if v, ok := cfg["lifespan"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Params.Lifespan = parsed
		}
	}
	if v, ok := cfg["annihilation_life"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Params.AnnihilationLife = parsed
		}
	}
	if v, ok := cfg["annihilation_decay"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Params.AnnihilationDecay = parsed
		}
	}
	if v, ok := cfg["initial_density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Params.InitialDensity = parsed
		}
	}
	return c
}

// AnnihilationTicks is the number of ticks a fresh annihilation marker
// survives before it decays to empty.
func (p Params) AnnihilationTicks() int {
	return (p.AnnihilationLife + p.AnnihilationDecay - 1) / p.AnnihilationDecay
}

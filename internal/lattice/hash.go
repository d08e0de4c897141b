package lattice

// Hash mixes three integer coordinates and a tick into a well-distributed
// 32-bit value. It is pure: equal inputs always give equal outputs.
func Hash(a, b, c int, t uint32) uint32 {
	h := uint32(a)*374761393 + uint32(b)*668265263 + uint32(c)*352462463 + t
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// SpawnRoll is the hash consulted on both spawn rows. The second coordinate
// is always zero so the two species see the same odds for a given x, z, tick.
func SpawnRoll(x, z int, tick uint32) uint32 {
	return Hash(x, 0, z, tick)
}

// Spawns reports whether a spawn roll succeeds at a rate given per mille.
func Spawns(roll uint32, ratePerMille int) bool {
	return int(roll%1000) < ratePerMille
}

// Drift thresholds out of 100: below DriftStay the particle keeps its column,
// below DriftPlus it moves to +x, otherwise to -x.
const (
	DriftStay = 40
	DriftPlus = 70
)

// Drift returns the lateral step (0, +1 or -1) a particle takes this tick.
// The decision depends only on the particle id and the tick.
func Drift(id uint32, tick uint32) int {
	r := Hash(int(id), 0, 0, tick) % 100
	switch {
	case r < DriftStay:
		return 0
	case r < DriftPlus:
		return 1
	default:
		return -1
	}
}

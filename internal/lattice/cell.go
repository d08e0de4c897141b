package lattice

// Kind enumerates the states a lattice cell can hold.
type Kind uint8

const (
	Empty Kind = iota
	SpeciesA
	SpeciesB
	Annihilation
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case SpeciesA:
		return "a"
	case SpeciesB:
		return "b"
	case Annihilation:
		return "annihilation"
	default:
		return "unknown"
	}
}

// Opponent returns the opposing species, or Empty for non-species kinds.
func (k Kind) Opponent() Kind {
	switch k {
	case SpeciesA:
		return SpeciesB
	case SpeciesB:
		return SpeciesA
	default:
		return Empty
	}
}

// IsSpecies reports whether k is one of the two particle species.
func (k Kind) IsSpecies() bool { return k == SpeciesA || k == SpeciesB }

// Cell is the atomic unit of lattice state. Life is positive for every
// non-empty kind.
type Cell struct {
	Kind Kind
	Life int32
	ID   uint32
}

// Occupied reports whether the cell holds anything.
func (c Cell) Occupied() bool { return c.Kind != Empty }

// Aged returns the cell after losing the given amount of life. A cell whose
// life drops to zero or below becomes the empty cell.
func (c Cell) Aged(by int32) Cell {
	c.Life -= by
	if c.Life <= 0 {
		return Cell{}
	}
	return c
}

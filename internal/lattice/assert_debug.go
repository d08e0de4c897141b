//go:build latticedebug

package lattice

import "fmt"

func assertY(y, n int) {
	if y < 0 || y >= n {
		panic(fmt.Sprintf("lattice: y=%d outside [0,%d)", y, n))
	}
}

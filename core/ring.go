package core

import (
	"errors"
	"fmt"
)

// DefaultRingSize is the ring size the system was locked against. Deployments
// that predate the lock used 1477; the size is configurable so both remain
// reachable.
const DefaultRingSize = 1466

// phaseStates is the tri-state cycle applied to ring indices: index n carries
// phaseStates[(n-1) mod 3].
var phaseStates = [3]int{1, -1, 0}

var (
	ErrInvalidRingSize = errors.New("invalid ring size")
	ErrIndexOutOfRange = errors.New("ring index out of range")
)

// Ring maps text labels onto a fixed range of integer slots [1, N] and derives
// mirror indices and phases from them. The zero value is not usable; construct
// with NewRing or DefaultRing.
type Ring struct {
	size int
}

// NewRing constructs a ring of the given size. Sizes below 3 cannot host the
// full phase cycle and are rejected.
func NewRing(size int) (Ring, error) {
	if size < 3 {
		return Ring{}, fmt.Errorf("%w: %d (must be at least 3)", ErrInvalidRingSize, size)
	}
	return Ring{size: size}, nil
}

// DefaultRing returns a ring of DefaultRingSize.
func DefaultRing() Ring {
	return Ring{size: DefaultRingSize}
}

// Size returns the ring size N.
func (r Ring) Size() int { return r.size }

// Center returns the ring's midpoint index, rounding up for odd sizes.
func (r Ring) Center() int { return (r.size + 1) / 2 }

// Contains reports whether n is a valid index in [1, N].
func (r Ring) Contains(n int) bool { return n >= 1 && n <= r.size }

// AddressOf deterministically maps a text label to an index in [1, N] by
// summing the label's code points modulo N. Collisions are expected; this is a
// bucket assignment, not an identity scheme.
func (r Ring) AddressOf(label string) int {
	sum := 0
	for _, cp := range label {
		sum += int(cp)
	}
	return 1 + sum%r.size
}

// Mirror reflects an index about the ring's midpoint: N + 1 - n. Applying it
// twice returns the original index.
func (r Ring) Mirror(n int) (int, error) {
	if !r.Contains(n) {
		return 0, r.rangeErr(n)
	}
	return r.size + 1 - n, nil
}

// Phase returns the tri-state phase in {1, -1, 0} for index n.
func (r Ring) Phase(n int) (int, error) {
	if !r.Contains(n) {
		return 0, r.rangeErr(n)
	}
	return phaseStates[(n-1)%3], nil
}

// Distance returns the shortest separation between two indices measured
// around the ring.
func (r Ring) Distance(a, b int) (int, error) {
	if !r.Contains(a) {
		return 0, r.rangeErr(a)
	}
	if !r.Contains(b) {
		return 0, r.rangeErr(b)
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	if wrapped := r.size - d; wrapped < d {
		return wrapped, nil
	}
	return d, nil
}

// Drawer bundles an index with its derived mirror and phase.
type Drawer struct {
	Index  int
	Mirror int
	Phase  int
}

// Drawer resolves index n into its full Drawer record.
func (r Ring) Drawer(n int) (Drawer, error) {
	if !r.Contains(n) {
		return Drawer{}, r.rangeErr(n)
	}
	return Drawer{
		Index:  n,
		Mirror: r.size + 1 - n,
		Phase:  phaseStates[(n-1)%3],
	}, nil
}

func (r Ring) rangeErr(n int) error {
	return fmt.Errorf("%w: %d not in [1, %d]", ErrIndexOutOfRange, n, r.size)
}

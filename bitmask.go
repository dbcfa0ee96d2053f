package wecs

import "math/bits"

// Bitmask is a 256-bit mask tracking component presence. It supports up to
// 256 unique component types.
type Bitmask [4]uint64

// Set sets the bit for the given component id.
func (m *Bitmask) Set(id ComponentID) {
	m[id/64] |= 1 << (id % 64)
}

// Clear clears the bit for the given component id.
func (m *Bitmask) Clear(id ComponentID) {
	m[id/64] &^= 1 << (id % 64)
}

// Has reports whether the bit for the given component id is set.
func (m *Bitmask) Has(id ComponentID) bool {
	return m[id/64]&(1<<(id%64)) != 0
}

// ContainsAll reports whether every bit set in other is also set in m.
// Used to check that all required components are present.
func (m *Bitmask) ContainsAll(other Bitmask) bool {
	return (m[0]&other[0] == other[0]) &&
		(m[1]&other[1] == other[1]) &&
		(m[2]&other[2] == other[2]) &&
		(m[3]&other[3] == other[3])
}

// ContainsAny reports whether any bit set in other is also set in m.
// Used to check whether an excluded component is present.
func (m *Bitmask) ContainsAny(other Bitmask) bool {
	return (m[0]&other[0] != 0) ||
		(m[1]&other[1] != 0) ||
		(m[2]&other[2] != 0) ||
		(m[3]&other[3] != 0)
}

// IsZero reports whether no bits are set.
func (m *Bitmask) IsZero() bool {
	return m[0] == 0 && m[1] == 0 && m[2] == 0 && m[3] == 0
}

// Count returns the number of bits set.
func (m *Bitmask) Count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

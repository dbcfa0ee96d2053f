package wecs

// Entity identifies one object in the world. The ID is an index into the
// world's entity slots; Gen distinguishes successive uses of the same slot so
// that a stale handle to a despawned entity never resolves to its successor.
type Entity struct {
	ID  uint32
	Gen uint32
}

// IsZero reports whether the entity is the zero handle.
func (e Entity) IsZero() bool {
	return e == Entity{}
}

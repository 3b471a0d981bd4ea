// registry.go
package shmring

// NewRegistered allocates a new Ring of the given power-of-two size (>= 2),
// registers it, and returns the Handle and *Ring.
// The underlying ring is identical to one created with New(size).
func NewRegistered(size int) (Handle, *Ring) {
	return New(size)
}

// Register adds an existing Ring to the registry and returns a new Handle.
func Register(r *Ring) Handle {
	if r == nil {
		return 0
	}
	regMu.Lock()
	h := nextHdl
	nextHdl++
	rings[h] = r
	regMu.Unlock()
	return h
}

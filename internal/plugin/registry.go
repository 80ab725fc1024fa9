package plugin

import "sync"

// Registry is the ordered set of live plugin instances the audio engine
// processes each block. Read on every capture callback, written only from
// the control thread; the reader must never block the audio driver, so the
// hot path takes the lock with TryRLock and skips the block on contention.
type Registry struct {
	mu    sync.RWMutex
	items []*Instance
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends an instance. Control thread only; may briefly block readers.
func (r *Registry) Add(p *Instance) {
	r.mu.Lock()
	r.items = append(r.items, p)
	r.mu.Unlock()
}

// Remove takes an instance out of the registry without dropping it.
// Returns true when the instance was present.
func (r *Registry) Remove(p *Instance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.items {
		if item == p {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Snapshot copies the current instance list. Control thread only.
func (r *Registry) Snapshot() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instance, len(r.items))
	copy(out, r.items)
	return out
}

// TryRead acquires the read lock without blocking and returns the live
// slice. The caller must call ReadDone after iterating and must not retain
// the slice. A false return means a writer holds the lock; the audio path
// skips the block instead of waiting.
func (r *Registry) TryRead() ([]*Instance, bool) {
	if !r.mu.TryRLock() {
		return nil, false
	}
	return r.items, true
}

// ReadDone releases the read lock taken by TryRead.
func (r *Registry) ReadDone() {
	r.mu.RUnlock()
}

// DrainAndDrop removes every instance and tears each one down. Control
// thread only.
func (r *Registry) DrainAndDrop() {
	r.mu.Lock()
	items := r.items
	r.items = nil
	r.mu.Unlock()
	for _, p := range items {
		p.Drop()
	}
}

// Package registry is the gateway's concurrent mapping from device ID
// to device record, plus the auxiliary reader-state map that tracks
// whether each device's reader goroutine is running or has exited
// (spec § 3, § 4.4).
package registry

import (
	"sync"

	"github.com/mvberg/serialgw/internal/device"
)

type readerState struct {
	started bool
	exited  bool
}

// Registry is safe for concurrent use. One RWMutex guards both the
// device map and the reader-state map so that, e.g., a Remove and a
// concurrent SetExited can never interleave into an inconsistent view
// (spec § 4.4: "all state operations must be atomic with respect to
// one another").
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*device.Record
	readers map[string]*readerState
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		devices: make(map[string]*device.Record),
		readers: make(map[string]*readerState),
	}
}

// InsertIfAbsent inserts rec under id if no record already exists
// under that id, and reports whether the insert happened. On success
// it also creates a fresh reader-state entry with started=false,
// exited=false; the caller is expected to call SetStarted(id, true)
// once the reader goroutine is actually launched.
func (r *Registry) InsertIfAbsent(id string, rec *device.Record) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[id]; exists {
		return false
	}
	r.devices[id] = rec
	r.readers[id] = &readerState{}
	return true
}

// Remove deletes and returns the record under id, or nil if absent.
// The reader-state entry is left in place (spec § 3: "when a device is
// removed, its reader-state entry may linger until the reader reports
// exited = true").
func (r *Registry) Remove(id string) *device.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.devices[id]
	if !ok {
		return nil
	}
	delete(r.devices, id)
	return rec
}

// Get returns the record under id, or nil if absent.
func (r *Registry) Get(id string) *device.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devices[id]
}

// FindByPort returns the record whose Port equals port, or nil if none
// is registered under that port. Spec § 8 invariant: at most one
// record can ever satisfy this at a time.
func (r *Registry) FindByPort(port string) *device.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.devices {
		if rec.Port == port {
			return rec
		}
	}
	return nil
}

// IDs returns a snapshot of every currently-registered device ID.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}
	return ids
}

// Mappings returns a snapshot of id -> port for every registered
// device, for the interactive surface's "list id-to-port mappings"
// verb (spec § 6).
func (r *Registry) Mappings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.devices))
	for id, rec := range r.devices {
		out[id] = rec.Port
	}
	return out
}

// SetStarted marks the reader for id as running or not. If no
// reader-state entry exists for id, one is created.
func (r *Registry) SetStarted(id string, started bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateLocked(id).started = started
}

// SetExited marks the reader for id as having exited or not. If no
// reader-state entry exists for id, one is created.
func (r *Registry) SetExited(id string, exited bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateLocked(id).exited = exited
}

// IsStarted reports whether the reader for id is currently running.
// Absent entries report false.
func (r *Registry) IsStarted(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.readers[id]
	return ok && st.started
}

// IsExited reports whether the reader for id has exited. An absent
// entry defaults to true, so callers treat "no such reader" as
// "quitted" (spec § 4.4).
func (r *Registry) IsExited(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.readers[id]
	if !ok {
		return true
	}
	return st.exited
}

// AllExited reports whether every reader-state entry currently
// tracked has exited == true.
func (r *Registry) AllExited() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.readers {
		if !st.exited {
			return false
		}
	}
	return true
}

// stateLocked returns (creating if necessary) the reader-state entry
// for id. A created entry starts with exited = true, matching
// IsExited's default for an absent id, so a SetStarted on an id that
// never had a reader does not hold AllExited false. Callers must hold
// r.mu for writing.
func (r *Registry) stateLocked(id string) *readerState {
	st, ok := r.readers[id]
	if !ok {
		st = &readerState{exited: true}
		r.readers[id] = st
	}
	return st
}

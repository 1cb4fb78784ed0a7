package world

import "sync"

// Store is the single owner of the loaded world catalog. Reads are
// synchronous, so an event arriving immediately after Replace always sees the
// new catalog; there is no separate reactive copy to race against.
type Store struct {
	mu          sync.RWMutex
	data        *Data
	subscribers []chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Replace installs a freshly-loaded catalog and notifies subscribers.
func (s *Store) Replace(data *Data) {
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns the current catalog, or nil if none has been loaded.
// Callers must treat the result as read-only.
func (s *Store) Snapshot() *Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// PatchLocationObjects replaces the ground-object id list of one location.
// Reports whether the location exists in the catalog.
func (s *Store) PatchLocationObjects(locationID string, objectIDs []string) bool {
	s.mu.Lock()
	if s.data == nil {
		s.mu.Unlock()
		return false
	}
	loc, ok := s.data.Locations[locationID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	loc.Objects = append([]string(nil), objectIDs...)
	s.data.Locations[locationID] = loc
	s.mu.Unlock()
	s.notify()
	return true
}

// Subscribe returns a channel that receives a signal after each catalog
// change. The channel has a buffer of one; coalesced notifications are fine
// for re-render purposes.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

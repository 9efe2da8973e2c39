package model

import (
	"container/list"
	"fmt"
	"sync"
)

// SnapshotID names an immutable view of a State bound at snapshot() time
// (§3, §4.3).
type SnapshotID string

// snapshotEntry pairs the captured entity-type map with its place in the
// LRU list.
type snapshotEntry struct {
	entities map[string]EntityMap
	elem     *list.Element
}

// SnapshotStore holds immutable snapshots of State, bounded by capacity
// with LRU eviction of the least-recently-touched snapshot not in the
// referenced set (§9 "resource exhaustion": "snapshot store evicts
// oldest by LRU except the currently-referenced set").
type SnapshotStore struct {
	mu         sync.Mutex
	capacity   int
	byID       map[SnapshotID]*snapshotEntry
	lru        *list.List // front = most recently used
	referenced map[SnapshotID]int
	seq        uint64
}

// NewSnapshotStore returns a store holding at most capacity snapshots
// outside the referenced set. capacity <= 0 means unbounded.
func NewSnapshotStore(capacity int) *SnapshotStore {
	return &SnapshotStore{
		capacity:   capacity,
		byID:       map[SnapshotID]*snapshotEntry{},
		lru:        list.New(),
		referenced: map[SnapshotID]int{},
	}
}

// Snapshot captures s's current entity-type maps under a fresh id. Since
// State.Set/Create always replace rather than mutate in place (the
// persistent-structure property of the CoW scheme), the captured map
// reference stays valid even as s continues to evolve.
func (store *SnapshotStore) Snapshot(s *State) SnapshotID {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.seq++
	id := SnapshotID(fmt.Sprintf("snap-%d", store.seq))
	captured := make(map[string]EntityMap, len(s.entities))
	for k, v := range s.entities {
		captured[k] = v
	}
	elem := store.lru.PushFront(id)
	store.byID[id] = &snapshotEntry{entities: captured, elem: elem}
	store.evictLocked()
	return id
}

// Rollback restores s's entity-type maps to the state captured at id
// (§4.3 `rollback(id)`).
func (store *SnapshotStore) Rollback(s *State, id SnapshotID) error {
	store.mu.Lock()
	entry, ok := store.byID[id]
	if ok {
		store.lru.MoveToFront(entry.elem)
	}
	store.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSnapshot, id)
	}
	restored := make(map[string]EntityMap, len(entry.entities))
	for k, v := range entry.entities {
		restored[k] = v
	}
	s.entities = restored
	return nil
}

// Retain marks id as currently-referenced, excluding it from eviction
// until a matching Release.
func (store *SnapshotStore) Retain(id SnapshotID) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.referenced[id]++
}

// Release drops one reference to id, making it eligible for eviction
// again once its reference count reaches zero.
func (store *SnapshotStore) Release(id SnapshotID) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if n := store.referenced[id]; n <= 1 {
		delete(store.referenced, id)
	} else {
		store.referenced[id] = n - 1
	}
}

// evictLocked drops least-recently-used, unreferenced snapshots until
// the store is within capacity. Caller holds store.mu.
func (store *SnapshotStore) evictLocked() {
	if store.capacity <= 0 {
		return
	}
	for len(store.byID) > store.capacity {
		elem := store.lru.Back()
		evicted := false
		for elem != nil {
			id := elem.Value.(SnapshotID)
			if store.referenced[id] > 0 {
				elem = elem.Prev()
				continue
			}
			prev := elem.Prev()
			store.lru.Remove(elem)
			delete(store.byID, id)
			evicted = true
			_ = prev
			break
		}
		if !evicted {
			// every remaining snapshot is referenced; capacity pressure
			// persists until a Release, which is the documented
			// graceful-degradation behavior, not an error.
			return
		}
	}
}

// Len reports how many snapshots are currently retained.
func (store *SnapshotStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.byID)
}

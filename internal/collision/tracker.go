// Package collision tracks xxHash64-derived channel-name ids and detects
// the rare case where two distinct channel names hash to the same id, so
// the TOC indexer (spec.md §4.5) can fall back to storing the names
// themselves rather than silently aliasing two channels.
package collision

import (
	"github.com/igwn/gwframe/errs"
)

// Tracker tracks channel names and detects hash collisions while a TOC (or
// a per-frame channel container) is being built.
type Tracker struct {
	names     map[uint64]string // hash -> name, for collision detection
	namesList []string          // insertion order, for the TOC's name list
	collision bool
}

// NewTracker creates a new, empty collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:     make(map[uint64]string),
		namesList: make([]string, 0),
	}
}

// Track records a channel name under its hash id. It returns
// ErrEmptyChannelName for an empty name and ErrChannelAlreadyStarted if the
// exact same name was already tracked. A different name landing on the same
// hash is not an error: the collision flag is set so the caller knows it
// must fall back to storing names explicitly instead of relying on the hash
// alone.
func (t *Tracker) Track(name string, hash uint64) error {
	if name == "" {
		return errs.ErrEmptyChannelName
	}

	if existing, ok := t.names[hash]; ok {
		if existing == name {
			return errs.ErrChannelAlreadyStarted
		}

		t.collision = true
	}

	t.names[hash] = name
	t.namesList = append(t.namesList, name)

	return nil
}

// HasCollision reports whether two distinct names have hashed to the same id.
func (t *Tracker) HasCollision() bool {
	return t.collision
}

// Names returns the tracked channel names in insertion order.
func (t *Tracker) Names() []string {
	return t.namesList
}

// Count returns the number of tracked channel names.
func (t *Tracker) Count() int {
	return len(t.namesList)
}

// Reset clears all tracked state, retaining the underlying map's capacity.
func (t *Tracker) Reset() {
	for k := range t.names {
		delete(t.names, k)
	}

	t.namesList = t.namesList[:0]
	t.collision = false
}

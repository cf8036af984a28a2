package wire

import (
	"github.com/igwn/gwframe/errs"
)

// refTable implements the instance-id cross-reference resolution from
// spec.md §4.2: a structure written includes a unique id at its start;
// other structures refer to it by id before or after it has appeared. A
// reference to a not-yet-read id is deferred until the producer registers,
// and cycles are permitted because resolution is by callback, not by
// requiring the referent to already be in memory.
type refTable struct {
	byID    map[uint32]any
	pending map[uint32][]func(any)
}

func newRefTable() *refTable {
	return &refTable{
		byID:    make(map[uint32]any),
		pending: make(map[uint32][]func(any)),
	}
}

// Register associates id with obj, firing any callbacks that were waiting
// on it. id of 0 means "no instance", per spec.md §6, and is never
// registered.
func (t *refTable) Register(id uint32, obj any) {
	if id == 0 {
		return
	}

	t.byID[id] = obj

	waiters := t.pending[id]
	delete(t.pending, id)

	for _, cb := range waiters {
		cb(obj)
	}
}

// Resolve calls cb with the object registered under id, immediately if it
// is already known, or later (when Register(id, ...) is eventually called)
// otherwise.
func (t *refTable) Resolve(id uint32, cb func(any)) {
	if id == 0 {
		return
	}

	if obj, ok := t.byID[id]; ok {
		cb(obj)
		return
	}

	t.pending[id] = append(t.pending[id], cb)
}

// Finish reports a BrokenReference for any id that was referenced but never
// registered by the time the stream reached end-of-file.
func (t *refTable) Finish() error {
	for id := range t.pending {
		return &errs.BrokenReference{InstanceID: id}
	}

	return nil
}

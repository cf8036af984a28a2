// Package registry implements the type registry (spec.md's C1): it binds
// each on-disk structure name to a class id and a field-descriptor list, and
// to a constructor the binary stream calls while reading. The registry is
// built once at process start (by the frame package's init) and is
// immutable and safe for concurrent read thereafter, matching the
// single-writer-many-readers discipline the rest of this module assumes.
package registry

import (
	"fmt"
	"sync"

	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
)

// Field describes one named, typed member of a structure, in the grammar
// spec.md §4.1 uses for self-describing metadata: a bare type name
// ("INT_4U"), a pointer-reference ("PTR_STRUCT(name)"), an optional leading
// "*" for a length-prefixed string, and an optional "[n]" or "[expr]" array
// suffix.
type Field struct {
	Name    string
	Type    string
	Comment string
}

// Constructor builds a zero-value instance of a registered structure kind,
// ready for the stream to populate field by field while reading.
type Constructor func() any

// Entry is one registered structure kind.
type Entry struct {
	Name        string
	ClassID     format.ClassID
	Description []Field
	New         Constructor
}

// Registry maps structure names and class ids to their Entry. Create one
// with New; the zero value has nil maps and Register panics on it.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*Entry
	byClass map[format.ClassID]*Entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byName:  make(map[string]*Entry),
		byClass: make(map[format.ClassID]*Entry),
	}
}

// Register binds name and classId to a constructor and field description.
// Registering the same name or class id twice is an error: the registry is
// meant to be populated once, at init time, not mutated at runtime.
func (r *Registry) Register(name string, classID format.ClassID, description []Field, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateName, name)
	}

	if _, ok := r.byClass[classID]; ok {
		return fmt.Errorf("%w: %d", errs.ErrDuplicateClassID, classID)
	}

	entry := &Entry{Name: name, ClassID: classID, Description: description, New: ctor}
	r.byName[name] = entry
	r.byClass[classID] = entry

	return nil
}

// LookupByName returns the entry registered under name.
func (r *Registry) LookupByName(name string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: name %q", errs.ErrUnknownClassID, name)
	}

	return entry, nil
}

// LookupById returns the entry registered under classID.
func (r *Registry) LookupById(classID format.ClassID) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byClass[classID]
	if !ok {
		return nil, fmt.Errorf("%w: classId %d", errs.ErrUnknownClassID, classID)
	}

	return entry, nil
}

// Describe returns entry's field descriptor list, the metadata a reader of
// an unknown version streams out in order to skip the structure safely.
func Describe(entry *Entry) []Field {
	return entry.Description
}

// Default is the process-wide registry every structure kind in package
// frame registers itself into at init time.
var Default = New()

// MustRegister registers into Default and panics on failure, for use from
// init functions where a duplicate registration is a programming error that
// should fail fast at process start rather than surface as a runtime error
// deep in a read path.
func MustRegister(name string, classID format.ClassID, description []Field, ctor Constructor) {
	if err := Default.Register(name, classID, description, ctor); err != nil {
		panic(err)
	}
}

package frame

import (
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
)

// mustRegister binds name and classID into the shared registry, for use
// from each structure file's init function.
func mustRegister(name string, classID format.ClassID, description []registry.Field, ctor registry.Constructor) {
	registry.MustRegister(name, classID, description, ctor)
}

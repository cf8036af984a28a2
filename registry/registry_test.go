package registry

import (
	"testing"

	"github.com/igwn/gwframe/errs"
	"github.com/igwn/gwframe/format"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	desc := []Field{{Name: "run", Type: "INT_4S"}, {Name: "frame", Type: "INT_4U"}}

	require.NoError(t, r.Register("FrameH", format.ClassFrameH, desc, func() any { return struct{}{} }))

	byName, err := r.LookupByName("FrameH")
	require.NoError(t, err)
	require.Equal(t, format.ClassFrameH, byName.ClassID)
	require.Equal(t, desc, Describe(byName))

	byID, err := r.LookupById(format.ClassFrameH)
	require.NoError(t, err)
	require.Same(t, byName, byID)
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("FrameH", format.ClassFrameH, nil, func() any { return nil }))
	require.ErrorIs(t, r.Register("FrameH", format.ClassFrVect, nil, func() any { return nil }), errs.ErrDuplicateName)
}

func TestRegistry_DuplicateClassID(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("FrameH", format.ClassFrameH, nil, func() any { return nil }))
	require.ErrorIs(t, r.Register("FrVect", format.ClassFrameH, nil, func() any { return nil }), errs.ErrDuplicateClassID)
}

func TestRegistry_UnknownLookups(t *testing.T) {
	r := New()
	_, err := r.LookupByName("FrVect")
	require.ErrorIs(t, err, errs.ErrUnknownClassID)

	_, err = r.LookupById(format.ClassFrVect)
	require.ErrorIs(t, err, errs.ErrUnknownClassID)
}

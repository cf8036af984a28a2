package frame

import (
	"testing"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/wire"
	"github.com/stretchr/testify/require"
)

func TestTable_WriteReadRoundTrip(t *testing.T) {
	tbl := &Table{
		InstanceID:  1,
		Name:        "segments",
		Comment:     "veto segments",
		NRow:        3,
		ColumnNames: []string{"start", "end", "flag"},
		Columns: []wire.Handle[*Vect]{
			wire.HandleFromID[*Vect](10),
			wire.HandleFromID[*Vect](11),
			wire.HandleFromID[*Vect](12),
		},
	}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteTable(w, tbl))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, format.ClassFrTable, rec.ClassID)

	got, err := ReadTable(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, tbl.Name, got.Name)
	require.Equal(t, tbl.NRow, got.NRow)
	require.Equal(t, tbl.ColumnNames, got.ColumnNames)
	require.Equal(t, tbl.Columns, got.Columns)
}

func TestTable_EmptyColumns(t *testing.T) {
	tbl := &Table{Name: "empty", NRow: 0}

	sb := &seekBuffer{}
	w := wire.NewWriter(sb)
	w.SetEngine(endian.GetBigEndianEngine())
	require.NoError(t, WriteTable(w, tbl))

	r := wire.NewReader(newReadSeeker(sb.data))
	r.SetEngine(endian.GetBigEndianEngine())
	rec, err := r.ReadRecord()
	require.NoError(t, err)

	got, err := ReadTable(rec.Payload, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Empty(t, got.ColumnNames)
	require.Empty(t, got.Columns)
}

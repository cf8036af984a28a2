package frame

import (
	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/format"
	"github.com/igwn/gwframe/registry"
	"github.com/igwn/gwframe/wire"
)

// Table is a generic named-column data table (spec.md §3 "tables"): a
// row count, a named column list, and one owned vector per column.
type Table struct {
	InstanceID uint32

	Name        string
	Comment     string
	NRow        uint32
	ColumnNames []string
	Columns     []wire.Handle[*Vect]
}

func ReadTable(payload []byte, engine endian.EndianEngine) (*Table, error) {
	c := wire.NewCursor(payload, engine)

	t := &Table{}

	var err error
	if t.Name, err = c.String(); err != nil {
		return nil, err
	}
	if t.Comment, err = c.String(); err != nil {
		return nil, err
	}
	if t.NRow, err = c.Uint32(); err != nil {
		return nil, err
	}

	nCol, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	t.ColumnNames = make([]string, nCol)
	for i := range t.ColumnNames {
		if t.ColumnNames[i], err = c.String(); err != nil {
			return nil, err
		}
	}

	t.Columns, err = readHandleArray[Vect](c)
	if err != nil {
		return nil, err
	}

	return t, nil
}

func WriteTable(w *wire.Writer, t *Table) error {
	if err := w.BeginStruct(format.ClassFrTable, t.InstanceID); err != nil {
		return err
	}

	if err := w.WriteString(t.Name); err != nil {
		return err
	}
	if err := w.WriteString(t.Comment); err != nil {
		return err
	}
	if err := w.WriteUint32(t.NRow); err != nil {
		return err
	}

	if err := w.WriteUint32(uint32(len(t.ColumnNames))); err != nil { //nolint:gosec
		return err
	}
	for _, name := range t.ColumnNames {
		if err := w.WriteString(name); err != nil {
			return err
		}
	}

	if err := writeHandleArray(w, t.Columns); err != nil {
		return err
	}

	return w.EndStruct()
}

func init() {
	mustRegister("FrTable", format.ClassFrTable, []registry.Field{
		{Name: "name", Type: "*STRING"},
		{Name: "comment", Type: "*STRING"},
		{Name: "nRow", Type: "INT_4U"},
		{Name: "nColumn", Type: "INT_4U"},
		{Name: "columnNames", Type: "*STRING[nColumn]"},
		{Name: "columns", Type: "PTR_STRUCT(FrVect)[nColumn]"},
	}, func() any { return &Table{} })
}

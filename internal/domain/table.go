package domain

// Kind enumerates the physical column types a Table can carry. The small
// set matches the two output schemas: narrow integers for calendar parts,
// float32 for derived values, float64 for coordinates.
type Kind int

const (
	Int8Kind Kind = iota
	Int16Kind
	Float32Kind
	Float64Kind
)

// Column is one named, typed column of values. Exactly one of the value
// slices is populated, selected by Kind.
type Column struct {
	Name string
	Kind Kind

	I8  []int8
	I16 []int16
	F32 []float32
	F64 []float64
}

// Int8Column builds an int8 column.
func Int8Column(name string, v []int8) Column { return Column{Name: name, Kind: Int8Kind, I8: v} }

// Int16Column builds an int16 column.
func Int16Column(name string, v []int16) Column { return Column{Name: name, Kind: Int16Kind, I16: v} }

// Float32Column builds a float32 column.
func Float32Column(name string, v []float32) Column {
	return Column{Name: name, Kind: Float32Kind, F32: v}
}

// Float64Column builds a float64 column.
func Float64Column(name string, v []float64) Column {
	return Column{Name: name, Kind: Float64Kind, F64: v}
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	switch c.Kind {
	case Int8Kind:
		return len(c.I8)
	case Int16Kind:
		return len(c.I16)
	case Float32Kind:
		return len(c.F32)
	default:
		return len(c.F64)
	}
}

// Table is an ordered set of equal-length columns, the flat form both
// output products take before they are persisted.
type Table struct {
	Cols []Column
}

// NumRows returns the row count (zero for an empty table).
func (t *Table) NumRows() int64 {
	if len(t.Cols) == 0 {
		return 0
	}
	return int64(t.Cols[0].Len())
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Cols) }

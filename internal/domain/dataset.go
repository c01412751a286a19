package domain

import "fmt"

// Dataset is an ordered collection of named derived fields sharing the same
// coordinate axes. Order is preserved so output column ordering follows the
// order in which fields were added.
type Dataset struct {
	names  []string
	fields map[string]*Field
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{fields: make(map[string]*Field)}
}

// Add appends a named field. Re-adding a name replaces the field but keeps
// its original position.
func (d *Dataset) Add(name string, f *Field) {
	if _, ok := d.fields[name]; !ok {
		d.names = append(d.names, name)
	}
	d.fields[name] = f
}

// Names returns the field names in insertion order.
func (d *Dataset) Names() []string { return d.names }

// Field returns the named field.
func (d *Dataset) Field(name string) (*Field, error) {
	f, ok := d.fields[name]
	if !ok {
		return nil, fmt.Errorf("dataset has no field %q (have %v)", name, d.names)
	}
	return f, nil
}

package domain

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch reports that two grids disagree on axis lengths. It is
// returned eagerly at merge time so the failure surfaces before any
// arithmetic is attempted.
var ErrShapeMismatch = errors.New("grid shapes do not match")

// MergeExtrema combines two independently normalized minimum and maximum
// temperature fields into one dataset exposing {prefix}_min_c and
// {prefix}_max_c. Each source is expected to carry exactly one primary
// variable after normalization; no alignment or reindexing is performed
// beyond the shape check.
func MergeExtrema(minField, maxField *Field, prefix string) (*Dataset, error) {
	if !minField.ShapeEquals(maxField) {
		return nil, fmt.Errorf("%w: min %s vs max %s", ErrShapeMismatch, minField.shape(), maxField.shape())
	}

	lo := minField.WithTransform(truncateTransform())
	lo.Name = prefix + "_min_c"
	hi := maxField.WithTransform(truncateTransform())
	hi.Name = prefix + "_max_c"

	ds := NewDataset()
	ds.Add(lo.Name, lo)
	ds.Add(hi.Name, hi)
	return ds, nil
}

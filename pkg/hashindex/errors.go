package hashindex

import "errors"

var (
	// ErrNotFound is returned when a key has no entry in the index.
	ErrNotFound = errors.New("hashindex: key not found")

	// ErrDuplicate is returned by Insert when the key already has an
	// entry.
	ErrDuplicate = errors.New("hashindex: key already exists")

	// ErrDirectoryFull is returned when a bucket split would require a
	// directory local depth beyond max_depth_d, per the extendible
	// hashing invariant that global depth never exceeds that bound.
	ErrDirectoryFull = errors.New("hashindex: directory at max depth, cannot split further")
)

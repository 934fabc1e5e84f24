package meshcache

import "errors"

var (
	// ErrCorruptCache is returned when replay encounters a record type
	// the codec does not recognize. The remaining file content cannot be
	// trusted, so replay aborts rather than resynchronizing.
	ErrCorruptCache = errors.New("meshcache: corrupt cache file")

	// ErrWriteInProgress is returned by Wrap when another session is
	// already writing the same quadkey. The caller should build without
	// caching instead of racing the first writer onto one file.
	ErrWriteInProgress = errors.New("meshcache: write already in progress")
)

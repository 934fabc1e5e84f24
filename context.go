package meshcache

// MeshSink consumes one geometry record. A non-nil error aborts the
// emitting build step and propagates to the builder.
type MeshSink func(*Mesh) error

// ElementSink consumes one metadata record.
type ElementSink func(*Element) error

// StyleProvider exposes the tag of the active styling configuration.
// The tag partitions the cache namespace: builds under different tags
// never share cache files.
type StyleProvider interface {
	Tag() string
}

// StringTable interns the strings referenced by element tags. The cache
// never calls it; it travels through Wrap untouched so the builder behind
// the wrapped sinks sees the same table.
type StringTable interface {
	ID(value string) uint32
	Value(id uint32) string
}

// ElementSource supplies the raw map elements for a tile. Passed through
// Wrap unchanged, like StringTable.
type ElementSource interface {
	Search(key QuadKey, sink ElementSink) error
}

// BuildContext is everything one tile build operates against. Wrap
// substitutes only MeshSink and ElementSink; every other field is copied
// through unchanged.
type BuildContext struct {
	QuadKey     QuadKey
	Style       StyleProvider
	Strings     StringTable
	Elements    ElementSource
	MeshSink    MeshSink
	ElementSink ElementSink
}

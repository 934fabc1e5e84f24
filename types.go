package meshcache

// GeoCoordinate is a geographic position in degrees.
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
}

// Tag is one key/value annotation on a map element.
type Tag struct {
	Key   string
	Value string
}

// Mesh is one unit of built tile geometry. Vertices are packed x, y, z
// triples; UVs are packed u, v pairs. The cache treats the field contents
// as opaque and round-trips them through the configured MeshCodec.
type Mesh struct {
	Name      string
	Vertices  []float64
	Triangles []int32
	Colors    []int32
	UVs       []float64
	UVMap     []int32
}

// Element is one unit of tagged map metadata emitted alongside geometry.
// ID is the element's 64-bit identity; it is carried by the cache record
// frame itself, not by the body codec.
type Element struct {
	ID          uint64
	Tags        []Tag
	Coordinates []GeoCoordinate
}

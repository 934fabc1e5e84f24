package meshcache

import "io"

// MeshCodec encodes and decodes geometry record bodies. Implementations
// must be self-delimiting: DecodeMesh reads exactly the bytes EncodeMesh
// produced, because cache records carry no length prefix.
type MeshCodec interface {
	EncodeMesh(w io.Writer, m *Mesh) error
	DecodeMesh(r io.Reader) (*Mesh, error)
}

// ElementCodec encodes and decodes metadata record bodies. The element's
// 64-bit identity is carried by the record frame, not the body: EncodeElement
// must not write Element.ID and DecodeElement returns it zeroed.
type ElementCodec interface {
	EncodeElement(w io.Writer, e *Element) error
	DecodeElement(r io.Reader) (*Element, error)
}

// Implementations must be safe for concurrent use: multiple build
// sessions encode on independent goroutines through one cache instance.

package meshcache

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
)

// maxArrayLen bounds per-field element counts during decode so a corrupt
// body cannot demand an arbitrarily large allocation.
const maxArrayLen = 1 << 26

// BinaryCodec is the default body codec: fields are serialized
// little-endian with varint counts, then the whole body is zstd
// compressed and written with a varint length prefix. It implements both
// MeshCodec and ElementCodec and is safe for concurrent use.
type BinaryCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

var (
	_ MeshCodec    = (*BinaryCodec)(nil)
	_ ElementCodec = (*BinaryCodec)(nil)
)

// NewBinaryCodec creates the default codec. The underlying zstd encoder
// and decoder are reused across calls via EncodeAll/DecodeAll.
func NewBinaryCodec() (*BinaryCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &BinaryCodec{enc: enc, dec: dec}, nil
}

// EncodeMesh implements MeshCodec.
func (c *BinaryCodec) EncodeMesh(w io.Writer, m *Mesh) error {
	body := make([]byte, 0, 64+8*len(m.Vertices)+4*len(m.Triangles))
	body = appendString(body, m.Name)
	body = appendFloat64s(body, m.Vertices)
	body = appendInt32s(body, m.Triangles)
	body = appendInt32s(body, m.Colors)
	body = appendFloat64s(body, m.UVs)
	body = appendInt32s(body, m.UVMap)
	return c.writeBody(w, body)
}

// DecodeMesh implements MeshCodec.
func (c *BinaryCodec) DecodeMesh(r io.Reader) (*Mesh, error) {
	body, err := c.readBody(r)
	if err != nil {
		return nil, err
	}
	cur := cursor{buf: body}
	m := &Mesh{}
	m.Name = cur.string()
	m.Vertices = cur.float64s()
	m.Triangles = cur.int32s()
	m.Colors = cur.int32s()
	m.UVs = cur.float64s()
	m.UVMap = cur.int32s()
	if cur.err != nil {
		return nil, fmt.Errorf("%w: mesh body: %v", ErrCorruptCache, cur.err)
	}
	return m, nil
}

// EncodeElement implements ElementCodec. Element.ID is intentionally not
// written; the record frame owns the identity.
func (c *BinaryCodec) EncodeElement(w io.Writer, e *Element) error {
	body := make([]byte, 0, 32+24*len(e.Tags)+16*len(e.Coordinates))
	body = binary.AppendUvarint(body, uint64(len(e.Tags)))
	for _, t := range e.Tags {
		body = appendString(body, t.Key)
		body = appendString(body, t.Value)
	}
	body = binary.AppendUvarint(body, uint64(len(e.Coordinates)))
	for _, gc := range e.Coordinates {
		body = binary.LittleEndian.AppendUint64(body, math.Float64bits(gc.Latitude))
		body = binary.LittleEndian.AppendUint64(body, math.Float64bits(gc.Longitude))
	}
	return c.writeBody(w, body)
}

// DecodeElement implements ElementCodec.
func (c *BinaryCodec) DecodeElement(r io.Reader) (*Element, error) {
	body, err := c.readBody(r)
	if err != nil {
		return nil, err
	}
	cur := cursor{buf: body}
	e := &Element{}
	if n := cur.count(); n > 0 {
		e.Tags = make([]Tag, 0, n)
		for i := 0; i < n; i++ {
			e.Tags = append(e.Tags, Tag{Key: cur.string(), Value: cur.string()})
		}
	}
	if n := cur.count(); n > 0 {
		e.Coordinates = make([]GeoCoordinate, 0, n)
		for i := 0; i < n; i++ {
			e.Coordinates = append(e.Coordinates, GeoCoordinate{
				Latitude:  cur.float64(),
				Longitude: cur.float64(),
			})
		}
	}
	if cur.err != nil {
		return nil, fmt.Errorf("%w: element body: %v", ErrCorruptCache, cur.err)
	}
	return e, nil
}

func (c *BinaryCodec) writeBody(w io.Writer, body []byte) error {
	compressed := c.enc.EncodeAll(body, nil)
	var prefix [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(prefix[:], uint64(len(compressed)))
	if _, err := w.Write(prefix[:n]); err != nil {
		return fmt.Errorf("write body length: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

func (c *BinaryCodec) readBody(r io.Reader) ([]byte, error) {
	size, err := binary.ReadUvarint(byteReaderOf(r))
	if err != nil {
		return nil, fmt.Errorf("%w: body length: %v", ErrCorruptCache, err)
	}
	if size > maxArrayLen {
		return nil, fmt.Errorf("%w: body length %d out of range", ErrCorruptCache, size)
	}
	compressed := make([]byte, size)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: truncated body: %v", ErrCorruptCache, err)
	}
	body, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress body: %v", ErrCorruptCache, err)
	}
	return body, nil
}

func appendString(b []byte, s string) []byte {
	b = binary.AppendUvarint(b, uint64(len(s)))
	return append(b, s...)
}

func appendFloat64s(b []byte, vs []float64) []byte {
	b = binary.AppendUvarint(b, uint64(len(vs)))
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b
}

func appendInt32s(b []byte, vs []int32) []byte {
	b = binary.AppendUvarint(b, uint64(len(vs)))
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	return b
}

// cursor walks a decoded body buffer. The first failure sticks; callers
// check err once after reading every field.
type cursor struct {
	buf []byte
	off int
	err error
}

func (c *cursor) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

func (c *cursor) uvarint() uint64 {
	if c.err != nil {
		return 0
	}
	v, n := binary.Uvarint(c.buf[c.off:])
	if n <= 0 {
		c.fail("truncated varint at offset %d", c.off)
		return 0
	}
	c.off += n
	return v
}

func (c *cursor) count() int {
	v := c.uvarint()
	if v > maxArrayLen {
		c.fail("count %d out of range", v)
		return 0
	}
	return int(v)
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.off+n > len(c.buf) {
		c.fail("need %d bytes at offset %d, have %d", n, c.off, len(c.buf)-c.off)
		return nil
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) string() string {
	n := c.count()
	return string(c.take(n))
}

func (c *cursor) float64() float64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (c *cursor) float64s() []float64 {
	n := c.count()
	if n == 0 || c.err != nil {
		return nil
	}
	vs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		vs = append(vs, c.float64())
	}
	return vs
}

func (c *cursor) int32s() []int32 {
	n := c.count()
	if n == 0 || c.err != nil {
		return nil
	}
	vs := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		b := c.take(4)
		if b == nil {
			return nil
		}
		vs = append(vs, int32(binary.LittleEndian.Uint32(b)))
	}
	return vs
}

// byteReaderOf adapts r for varint reads without buffering ahead.
func byteReaderOf(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &oneByteReader{r: r}
}

type oneByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (o *oneByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(o.r, o.buf[:]); err != nil {
		return 0, err
	}
	return o.buf[0], nil
}

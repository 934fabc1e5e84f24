package meshcache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryCodecMeshRoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewBinaryCodec()
	require.NoError(t, err)

	var buf bytes.Buffer
	mesh := testMesh()
	require.NoError(t, codec.EncodeMesh(&buf, mesh))

	got, err := codec.DecodeMesh(&buf)
	require.NoError(t, err)
	assert.Equal(t, mesh, got)
	assert.Zero(t, buf.Len(), "decode must consume the body exactly")
}

func TestBinaryCodecEmptyMesh(t *testing.T) {
	t.Parallel()

	codec, err := NewBinaryCodec()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, codec.EncodeMesh(&buf, &Mesh{}))

	got, err := codec.DecodeMesh(&buf)
	require.NoError(t, err)
	assert.Equal(t, &Mesh{}, got)
}

func TestBinaryCodecElementBodyExcludesID(t *testing.T) {
	t.Parallel()

	codec, err := NewBinaryCodec()
	require.NoError(t, err)

	var buf bytes.Buffer
	element := testElement()
	require.NoError(t, codec.EncodeElement(&buf, element))

	got, err := codec.DecodeElement(&buf)
	require.NoError(t, err)

	// The identity travels in the record frame, not the body.
	assert.Zero(t, got.ID)
	got.ID = element.ID
	assert.Equal(t, element, got)
}

func TestBinaryCodecTruncatedBody(t *testing.T) {
	t.Parallel()

	codec, err := NewBinaryCodec()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, codec.EncodeMesh(&buf, testMesh()))
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()/2])

	_, err = codec.DecodeMesh(truncated)
	require.ErrorIs(t, err, ErrCorruptCache)
}

func TestBinaryCodecGarbageBody(t *testing.T) {
	t.Parallel()

	codec, err := NewBinaryCodec()
	require.NoError(t, err)

	// A plausible length prefix followed by bytes that are not a zstd frame.
	garbage := bytes.NewReader([]byte{0x08, 0xde, 0xad, 0xbe, 0xef, 0x00, 0x11, 0x22, 0x33})
	_, err = codec.DecodeMesh(garbage)
	require.ErrorIs(t, err, ErrCorruptCache)
}

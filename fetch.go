package meshcache

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Fetch replays a committed cache file through the context's sinks.
//
// It returns false without touching the sinks when there is no committed
// entry for the context — either nothing exists on disk or a write for
// this quadkey is still in flight. Once the hit check passes, Fetch
// returns true even when ctx is cancelled partway through: cancellation
// is polled at record boundaries and simply stops the replay; records
// already delivered are not undone.
//
// A record the codec cannot decode, or an unknown record type byte,
// aborts the replay with an error wrapping ErrCorruptCache.
func (c *Cache) Fetch(ctx context.Context, bc BuildContext) (bool, error) {
	path := c.filePath(bc)

	c.mu.Lock()
	_, busy := c.inflight[bc.QuadKey]
	hit := !busy && fileExists(path)
	c.mu.Unlock()
	if !hit {
		return false, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open cache file: %w", err)
	}
	defer file.Close()

	c.log.Debug("cache hit, replaying",
		zap.Stringer("quadkey", bc.QuadKey),
		zap.String("path", path))

	if err := c.replay(ctx, bufio.NewReader(file), bc); err != nil {
		return true, err
	}
	return true, nil
}

func (c *Cache) replay(ctx context.Context, r *bufio.Reader, bc BuildContext) error {
	for ctx.Err() == nil {
		kind, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read record type: %w", err)
		}
		switch kind {
		case recordMesh:
			mesh, err := c.mesh.DecodeMesh(r)
			if err != nil {
				return err
			}
			if err := bc.MeshSink(mesh); err != nil {
				return err
			}
		case recordElement:
			var id [8]byte
			if _, err := io.ReadFull(r, id[:]); err != nil {
				return fmt.Errorf("%w: truncated element identity: %v", ErrCorruptCache, err)
			}
			element, err := c.element.DecodeElement(r)
			if err != nil {
				return err
			}
			element.ID = binary.LittleEndian.Uint64(id[:])
			if err := bc.ElementSink(element); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown record type 0x%02x", ErrCorruptCache, kind)
		}
	}
	return nil
}

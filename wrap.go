package meshcache

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Record type discriminators. One byte precedes every record body; an
// element record additionally carries its 64-bit identity between the
// type byte and the body.
const (
	recordElement byte = 0x00
	recordMesh    byte = 0x01
)

// Wrap prepares a build session for caching. If a committed file already
// exists for the context's quadkey, the context is returned unchanged —
// callers are expected to have tried Fetch first, so this is a
// passthrough, not an implicit replay. Otherwise Wrap opens the cache
// file, registers the quadkey as in-flight, and returns a copy of the
// context whose sinks append each record to the file before forwarding it
// unchanged to the original sink.
//
// Every successful Wrap must be balanced by exactly one Unwrap, or the
// quadkey stays in-flight forever and never reads as a hit again.
//
// If another session is already writing this quadkey, Wrap returns the
// context unchanged together with ErrWriteInProgress; the caller should
// run its build uncached rather than share the first writer's file.
func (c *Cache) Wrap(bc BuildContext) (BuildContext, error) {
	if !c.enabled.Load() {
		return bc, nil
	}
	path := c.filePath(bc)
	h := &writeHandle{path: path}

	// Hit check, conflict check and reservation are a single atomic
	// step; the open happens after, outside the lock.
	c.mu.Lock()
	if _, busy := c.inflight[bc.QuadKey]; busy {
		c.mu.Unlock()
		return bc, ErrWriteInProgress
	}
	if fileExists(path) {
		c.mu.Unlock()
		return bc, nil
	}
	c.inflight[bc.QuadKey] = h
	c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), c.dirPerm); err != nil {
		c.drop(bc.QuadKey)
		return bc, fmt.Errorf("create cache partition: %w", err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, c.filePerm)
	if err != nil {
		c.drop(bc.QuadKey)
		return bc, fmt.Errorf("open cache file: %w", err)
	}
	h.file = file

	c.log.Debug("cache write started",
		zap.Stringer("quadkey", bc.QuadKey),
		zap.String("style", bc.Style.Tag()),
		zap.String("path", path))

	wrapped := bc
	wrapped.MeshSink = c.interceptMesh(file, bc.MeshSink)
	wrapped.ElementSink = c.interceptElement(file, bc.ElementSink)
	return wrapped, nil
}

func (c *Cache) interceptMesh(w io.Writer, next MeshSink) MeshSink {
	return func(m *Mesh) error {
		if _, err := w.Write([]byte{recordMesh}); err != nil {
			return fmt.Errorf("append mesh record: %w", err)
		}
		if err := c.mesh.EncodeMesh(w, m); err != nil {
			return fmt.Errorf("append mesh record: %w", err)
		}
		return next(m)
	}
}

func (c *Cache) interceptElement(w io.Writer, next ElementSink) ElementSink {
	return func(e *Element) error {
		var header [9]byte
		header[0] = recordElement
		binary.LittleEndian.PutUint64(header[1:], e.ID)
		if _, err := w.Write(header[:]); err != nil {
			return fmt.Errorf("append element record: %w", err)
		}
		if err := c.element.EncodeElement(w, e); err != nil {
			return fmt.Errorf("append element record: %w", err)
		}
		return next(e)
	}
}

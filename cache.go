package meshcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	defaultDirPerm  = 0o750
	defaultFilePerm = 0o640

	cacheFileExt = ".mesh"
)

// Cache is a persistent cache for tile-build output, rooted at a single
// directory. One Cache instance owns the in-flight registry for that
// directory; all build sessions sharing the directory must share the
// instance. Safe for concurrent use.
type Cache struct {
	root     string
	dirPerm  os.FileMode
	filePerm os.FileMode
	enabled  atomic.Bool
	log      *zap.Logger

	mesh            MeshCodec
	element         ElementCodec
	prefetchWorkers int

	// mu guards inflight only. It is held for map lookups, inserts and
	// removals; file I/O always happens outside it.
	mu       sync.Mutex
	inflight map[QuadKey]*writeHandle
}

// writeHandle is one in-flight write. The registry entry exclusively owns
// the open file from Wrap until Unwrap removes it.
type writeHandle struct {
	path string
	file *os.File
}

// New creates a cache rooted at dir, creating the directory if needed.
// Unless overridden with WithMeshCodec/WithElementCodec, record bodies
// use the BinaryCodec.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("meshcache: cache dir is empty")
	}
	c := &Cache{
		root:            dir,
		dirPerm:         defaultDirPerm,
		filePerm:        defaultFilePerm,
		log:             zap.NewNop(),
		prefetchWorkers: runtime.GOMAXPROCS(0),
		inflight:        make(map[QuadKey]*writeHandle),
	}
	c.enabled.Store(true)
	for _, opt := range opts {
		opt(c)
	}
	if c.mesh == nil || c.element == nil {
		codec, err := NewBinaryCodec()
		if err != nil {
			return nil, err
		}
		if c.mesh == nil {
			c.mesh = codec
		}
		if c.element == nil {
			c.element = codec
		}
	}
	if err := os.MkdirAll(dir, c.dirPerm); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return c, nil
}

// Enabled reports whether the cache intercepts builds.
func (c *Cache) Enabled() bool {
	return c.enabled.Load()
}

// SetEnabled toggles interception. While disabled, Wrap returns its
// context unchanged; Fetch and Unwrap keep their normal behavior, and
// orchestrators are expected not to call them.
func (c *Cache) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// filePath derives the deterministic on-disk location for a context:
// <root>/<style_tag>/<detail_level>/<quadkey>.mesh.
func (c *Cache) filePath(bc BuildContext) string {
	return filepath.Join(
		c.root,
		bc.Style.Tag(),
		strconv.FormatUint(uint64(bc.QuadKey.LevelOfDetail), 10),
		bc.QuadKey.String()+cacheFileExt,
	)
}

// drop removes a registry entry without touching the file. Used to back
// out of a failed Wrap.
func (c *Cache) drop(key QuadKey) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

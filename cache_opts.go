package meshcache

import (
	"os"

	"go.uber.org/zap"
)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache lifecycle events.
// Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDirPerm sets the permissions for cache partition directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) {
		c.dirPerm = mode
	}
}

// WithFilePerm sets the permissions for cache files.
func WithFilePerm(mode os.FileMode) Option {
	return func(c *Cache) {
		c.filePerm = mode
	}
}

// WithDisabled starts the cache disabled. See Cache.SetEnabled.
func WithDisabled() Option {
	return func(c *Cache) {
		c.enabled.Store(false)
	}
}

// WithMeshCodec replaces the geometry body codec.
func WithMeshCodec(codec MeshCodec) Option {
	return func(c *Cache) {
		c.mesh = codec
	}
}

// WithElementCodec replaces the metadata body codec.
func WithElementCodec(codec ElementCodec) Option {
	return func(c *Cache) {
		c.element = codec
	}
}

// WithPrefetchConcurrency sets the number of workers used by Prefetch.
// Values below 1 force serial replay. Defaults to GOMAXPROCS.
func WithPrefetchConcurrency(n int) Option {
	return func(c *Cache) {
		if n < 1 {
			n = 1
		}
		c.prefetchWorkers = n
	}
}

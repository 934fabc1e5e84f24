package meshcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// Unwrap finalizes the write started by Wrap for the context's quadkey.
// It is the only transition out of the in-flight state.
//
// With a live ctx the file is closed and left in place as a committed
// cache entry. With a cancelled ctx the file is deleted: there is no
// guarantee the build emitted everything before stopping, and a cache
// file is meaningful only in its entirety.
//
// Unwrap is idempotent. When no write is in flight for the quadkey —
// including after a previous Unwrap, a Wrap that hit, or a Wrap that
// failed — it is a no-op.
func (c *Cache) Unwrap(ctx context.Context, bc BuildContext) error {
	c.mu.Lock()
	h, ok := c.inflight[bc.QuadKey]
	delete(c.inflight, bc.QuadKey)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	var closeErr error
	if h.file != nil {
		if err := h.file.Close(); err != nil {
			closeErr = fmt.Errorf("close cache file: %w", err)
		}
	}

	if ctx.Err() != nil {
		c.log.Debug("cache write discarded",
			zap.Stringer("quadkey", bc.QuadKey),
			zap.String("path", h.path))
		if err := os.Remove(h.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(closeErr, fmt.Errorf("remove cancelled cache file: %w", err))
		}
		return closeErr
	}

	if closeErr != nil {
		// A failed close may have lost data. The file cannot be trusted
		// as a committed entry, so take it off disk with the error.
		_ = os.Remove(h.path)
		return closeErr
	}

	c.log.Debug("cache write committed",
		zap.Stringer("quadkey", bc.QuadKey),
		zap.String("path", h.path))
	return nil
}

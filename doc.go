// Package meshcache provides a persistent, replayable cache for map-tile
// build output.
//
// Building a tile is expensive: a builder walks the raw map data for a
// quadkey and emits a stream of geometry records (meshes) and tagged
// metadata records (elements) through a pair of callback sinks. This
// package lets a completed build be replayed from disk instead of
// recomputed, while guaranteeing that a partially written build is never
// observable as a valid cache entry.
//
// The cache intercepts a build session transparently:
//
//	cache, err := meshcache.New("/var/cache/tiles")
//	if err != nil {
//	    return err
//	}
//
//	if hit, err := cache.Fetch(ctx, bc); err != nil {
//	    return err
//	} else if hit {
//	    return nil // replayed from disk, nothing to build
//	}
//
//	wrapped, err := cache.Wrap(bc)
//	if err != nil {
//	    return err
//	}
//	buildTile(ctx, wrapped) // records stream to disk and to the real sinks
//	return cache.Unwrap(ctx, wrapped)
//
// Unwrap commits the file when ctx is alive and discards it when ctx was
// cancelled, so a cancelled build leaves no trace on disk.
//
// Cache files are partitioned by style tag and detail level:
//
//	<root>/<style_tag>/<detail_level>/<quadkey>.mesh
//
// Different styling configurations never share files. A committed file is
// append-only history of one build and is meaningful only in its entirety;
// there is no eviction, expiry, or cross-process coordination.
package meshcache

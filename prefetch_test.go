package meshcache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefetch(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, WithPrefetchConcurrency(2))
	keys := []QuadKey{
		{X: 1, Y: 2, LevelOfDetail: 5},
		{X: 3, Y: 4, LevelOfDetail: 5},
		{X: 5, Y: 6, LevelOfDetail: 5},
	}
	for _, key := range keys {
		bc := (&recorder{}).context(key, "day")
		wrapped, err := c.Wrap(bc)
		require.NoError(t, err)
		require.NoError(t, wrapped.MeshSink(testMesh()))
		require.NoError(t, wrapped.ElementSink(testElement()))
		require.NoError(t, c.Unwrap(context.Background(), bc))
	}

	recs := make([]*recorder, 0, len(keys)+1)
	contexts := make([]BuildContext, 0, len(keys)+1)
	for _, key := range keys {
		rec := &recorder{}
		recs = append(recs, rec)
		contexts = append(contexts, rec.context(key, "day"))
	}
	// One quadkey was never built; Prefetch skips it silently.
	missing := &recorder{}
	contexts = append(contexts, missing.context(QuadKey{X: 9, Y: 9, LevelOfDetail: 5}, "day"))

	require.NoError(t, c.Prefetch(context.Background(), contexts...))
	for i, rec := range recs {
		assert.Equal(t, 2, rec.records(), "tile %d", i)
	}
	assert.Zero(t, missing.records())
}

func TestPrefetchPropagatesCorruption(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	good := QuadKey{X: 1, Y: 1, LevelOfDetail: 3}
	bad := QuadKey{X: 2, Y: 2, LevelOfDetail: 3}

	for _, key := range []QuadKey{good, bad} {
		bc := (&recorder{}).context(key, "day")
		wrapped, err := c.Wrap(bc)
		require.NoError(t, err)
		require.NoError(t, wrapped.MeshSink(testMesh()))
		require.NoError(t, c.Unwrap(context.Background(), bc))
	}

	badPath := c.filePath((&recorder{}).context(bad, "day"))
	require.NoError(t, os.WriteFile(badPath, []byte{0x7f}, 0o640))

	err := c.Prefetch(context.Background(),
		(&recorder{}).context(good, "day"),
		(&recorder{}).context(bad, "day"),
	)
	require.ErrorIs(t, err, ErrCorruptCache)
}

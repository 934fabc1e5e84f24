// Command cachebench exercises the mesh cache with synthetic tile builds.
// A write pass runs one wrapped build session per tile, then a replay
// pass fetches every tile back and verifies the record counts match.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/mapforge/meshcache"
)

type config struct {
	root     string
	style    string
	lod      uint
	tiles    int
	meshes   int
	elements int
	vertices int
	workers  int
	keep     bool
	seed     int64
	verbose  bool
}

func main() {
	cfg := parseFlags()

	log, err := newLogger(cfg.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck // stdout sync errors are uninteresting

	if err := run(cfg, log); err != nil {
		log.Fatal("bench failed", zap.Error(err))
	}
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.root, "root", "", "cache root directory (default: a temp dir)")
	flag.StringVar(&cfg.style, "style", "default", "style tag partitioning the cache")
	flag.UintVar(&cfg.lod, "lod", 16, "level of detail")
	flag.IntVar(&cfg.tiles, "tiles", 64, "number of tiles to build")
	flag.IntVar(&cfg.meshes, "meshes", 8, "mesh records per tile")
	flag.IntVar(&cfg.elements, "elements", 32, "element records per tile")
	flag.IntVar(&cfg.vertices, "vertices", 300, "vertex triples per mesh")
	flag.IntVar(&cfg.workers, "workers", 4, "concurrent build/replay sessions")
	flag.BoolVar(&cfg.keep, "keep", false, "keep the cache root after the run")
	flag.Int64Var(&cfg.seed, "seed", 1, "seed for synthetic record data")
	flag.BoolVar(&cfg.verbose, "v", false, "debug logging")
	flag.Parse()
	return cfg
}

func newLogger(verbose bool) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	if verbose {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return c.Build()
}

func run(cfg config, log *zap.Logger) error {
	root := cfg.root
	if root == "" {
		dir, err := os.MkdirTemp("", "cachebench-*")
		if err != nil {
			return fmt.Errorf("create temp root: %w", err)
		}
		if !cfg.keep {
			defer os.RemoveAll(dir) //nolint:errcheck // best-effort cleanup
		}
		root = dir
	}

	session := uuid.NewString()
	log.Info("starting bench",
		zap.String("session", session),
		zap.String("root", root),
		zap.Int("tiles", cfg.tiles),
		zap.Int("workers", cfg.workers))

	cache, err := meshcache.New(root,
		meshcache.WithLogger(log.Named("cache")),
		meshcache.WithPrefetchConcurrency(cfg.workers))
	if err != nil {
		return err
	}

	keys := tileKeys(cfg)
	style := staticStyle(cfg.style)
	ctx := context.Background()

	var written atomic.Int64
	start := time.Now()
	eg, buildCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.workers)
	for _, key := range keys {
		key := key
		eg.Go(func() error {
			n, err := buildTile(buildCtx, cache, key, style, cfg)
			written.Add(int64(n))
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("write pass: %w", err)
	}
	writeDur := time.Since(start)
	log.Info("write pass done",
		zap.Int64("records", written.Load()),
		zap.Duration("elapsed", writeDur))

	var replayed atomic.Int64
	contexts := make([]meshcache.BuildContext, 0, len(keys))
	for _, key := range keys {
		contexts = append(contexts, countingContext(key, style, &replayed))
	}
	start = time.Now()
	if err := cache.Prefetch(ctx, contexts...); err != nil {
		return fmt.Errorf("replay pass: %w", err)
	}
	replayDur := time.Since(start)
	log.Info("replay pass done",
		zap.Int64("records", replayed.Load()),
		zap.Duration("elapsed", replayDur))

	if replayed.Load() != written.Load() {
		return fmt.Errorf("replayed %d records, wrote %d", replayed.Load(), written.Load())
	}
	log.Info("bench ok",
		zap.String("session", session),
		zap.Float64("speedup", writeDur.Seconds()/replayDur.Seconds()))
	return nil
}

func tileKeys(cfg config) []meshcache.QuadKey {
	keys := make([]meshcache.QuadKey, 0, cfg.tiles)
	side := uint32(1) << cfg.lod
	for i := 0; i < cfg.tiles; i++ {
		keys = append(keys, meshcache.QuadKey{
			X:             uint32(i) % side,
			Y:             uint32(i/int(side)) % side,
			LevelOfDetail: uint32(cfg.lod),
		})
	}
	return keys
}

// buildTile fakes one build session: wrap, emit synthetic records, unwrap.
func buildTile(ctx context.Context, cache *meshcache.Cache, key meshcache.QuadKey, style staticStyle, cfg config) (int, error) {
	var emitted int
	bc := meshcache.BuildContext{
		QuadKey:     key,
		Style:       style,
		MeshSink:    func(*meshcache.Mesh) error { emitted++; return nil },
		ElementSink: func(*meshcache.Element) error { emitted++; return nil },
	}

	wrapped, err := cache.Wrap(bc)
	if err != nil {
		return 0, err
	}

	rng := rand.New(rand.NewSource(cfg.seed + int64(key.X)<<32 + int64(key.Y))) //nolint:gosec // synthetic data
	for i := 0; i < cfg.meshes; i++ {
		if err := wrapped.MeshSink(syntheticMesh(rng, i, cfg.vertices)); err != nil {
			return emitted, err
		}
	}
	for i := 0; i < cfg.elements; i++ {
		if err := wrapped.ElementSink(syntheticElement(rng, uint64(i))); err != nil {
			return emitted, err
		}
	}
	return emitted, cache.Unwrap(ctx, bc)
}

func countingContext(key meshcache.QuadKey, style staticStyle, n *atomic.Int64) meshcache.BuildContext {
	return meshcache.BuildContext{
		QuadKey:     key,
		Style:       style,
		MeshSink:    func(*meshcache.Mesh) error { n.Add(1); return nil },
		ElementSink: func(*meshcache.Element) error { n.Add(1); return nil },
	}
}

func syntheticMesh(rng *rand.Rand, i, vertices int) *meshcache.Mesh {
	m := &meshcache.Mesh{
		Name:      fmt.Sprintf("layer-%d", i),
		Vertices:  make([]float64, 3*vertices),
		Triangles: make([]int32, 3*vertices),
		Colors:    make([]int32, vertices),
	}
	for j := range m.Vertices {
		m.Vertices[j] = rng.Float64() * 100
	}
	for j := range m.Triangles {
		m.Triangles[j] = int32(rng.Intn(vertices))
	}
	for j := range m.Colors {
		m.Colors[j] = int32(rng.Intn(1 << 24))
	}
	return m
}

func syntheticElement(rng *rand.Rand, id uint64) *meshcache.Element {
	return &meshcache.Element{
		ID: id,
		Tags: []meshcache.Tag{
			{Key: "building", Value: "yes"},
			{Key: "height", Value: fmt.Sprintf("%d", rng.Intn(200))},
		},
		Coordinates: []meshcache.GeoCoordinate{
			{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180},
			{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180},
		},
	}
}

type staticStyle string

func (s staticStyle) Tag() string { return string(s) }

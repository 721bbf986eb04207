// Package tileset implements C5, the tileset builder: it drives the
// recursive octree split + per-level simplification descent, writes each
// node's GLB content and assembles the resulting tileset.json documents.
// The recursive-descent-with-bounded-fan-out shape is grounded on the
// teacher's GridTree.Build/launchParallelPointLoaders (parallel workers
// draining a shared unit of work) generalized from a flat worker pool over
// a point stream to a recursive per-node fan-out bounded by workpool.Pool.
package tileset

import (
	"fmt"
	"path"
	"sync"

	"github.com/golang/glog"

	"github.com/ecopia-map/mesh2tiles/internal/atlas"
	"github.com/ecopia-map/mesh2tiles/internal/mesh"
	"github.com/ecopia-map/mesh2tiles/internal/octree"
	"github.com/ecopia-map/mesh2tiles/internal/simplify"
	"github.com/ecopia-map/mesh2tiles/internal/workpool"
)

// SimplifyLevel is one entry of a simplify_schedule: the target triangle
// retention ratio and whether boundary edges lock at that depth.
type SimplifyLevel struct {
	Ratio      float64
	LockBorder bool
}

// Config controls the recursive descent.
type Config struct {
	MaxDepth            int
	MaxTrianglesPerTile int
	MinTileSizeM        float64
	SimplifySchedule    []SimplifyLevel // per-level (ratio, lock_border); padded past its length, see scheduleLevel
	Threads             int

	// CompactionSkipThreshold is the vertex count below which post-simplify
	// vertex compaction is skipped, since the remap allocation costs more
	// than the savings on a mesh this small (Open Question: relaxed
	// simplification and compaction-skip are independent per-level
	// switches, each keyed off depth/size separately rather than coupled).
	CompactionSkipThreshold int

	// TextureFormat/TextureQuality/TextureMaxSize mirror the external
	// texture_format/texture_quality/texture_max_size config: the GLB
	// codec each node's atlas is encoded with, its quality dial, and the
	// pixel cap on the atlas's longest side C4 packs into.
	TextureFormat  string // "png" | "webp" | "ktx2" | "none"
	TextureQuality int
	TextureMaxSize int
}

// relaxedLevel is the configuration a short simplify_schedule pads with
// once depth runs past its end: ratio=0.5, lock_border=false, trading
// border fidelity for throughput since coarse LODs are viewed at distance.
var relaxedLevel = SimplifyLevel{Ratio: 0.5, LockBorder: false}

// DefaultConfig returns the reference schedule: ratio halves each of the
// first few levels, then the relaxed configuration takes over past depth 2,
// trading per-tile fidelity for throughput on the high-density deep levels
// a photogrammetry capture produces.
func DefaultConfig() Config {
	return Config{
		MaxDepth:            12,
		MaxTrianglesPerTile: 60000,
		MinTileSizeM:        1.0,
		SimplifySchedule: []SimplifyLevel{
			{Ratio: 1.0, LockBorder: true},
			{Ratio: 0.5, LockBorder: true},
			{Ratio: 0.25, LockBorder: true},
		},
		Threads:                 4,
		CompactionSkipThreshold: 256,
		TextureFormat:           "png",
		TextureQuality:          90,
		TextureMaxSize:          4096,
	}
}

// TilingError names the failing tile, the operation that failed, and the
// underlying error, so a failure surfaced from deep in a recursive build
// stays actionable once it reaches the top-level caller (spec's error
// handling design: every user-visible failure names address, op, and
// cause in one sentence).
type TilingError struct {
	Address string // octant path, e.g. "0/3/7"; "" for the root
	Op      string
	Err     error
}

func (e *TilingError) Error() string {
	addr := e.Address
	if addr == "" {
		addr = "root"
	}
	return fmt.Sprintf("tile %s: %s: %v", addr, e.Op, e.Err)
}

func (e *TilingError) Unwrap() error { return e.Err }

// Builder runs the recursive descent over a single root mesh.
type Builder struct {
	cfg  Config
	pool *workpool.Pool

	mu      sync.Mutex
	Failures []error
}

// NewBuilder constructs a Builder bounded to cfg.Threads concurrent splits.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg, pool: workpool.New(cfg.Threads)}
}

// Build runs the full recursive descent starting from the root mesh and
// bounds, returning the root TileNode. A node whose atlas cannot be built
// is recorded in b.Failures and keeps the shared source library rather than
// aborting the whole tree; GLB encode failures are recorded later, by Write.
func (b *Builder) Build(m *mesh.IndexedMesh, lib *mesh.MaterialLibrary, bounds mesh.BoundingBox) *mesh.TileNode {
	return b.buildNode(m, lib, bounds, 0, "")
}

// buildNode runs one level of the recursive descent. address is this
// node's octant path ("0/3/7"/...; "" for the root), threaded down purely
// so a build-time failure can be reported against the tile it happened in
// via TilingError, matching the addresses writeNodeContent uses later.
func (b *Builder) buildNode(m *mesh.IndexedMesh, lib *mesh.MaterialLibrary, bounds mesh.BoundingBox, depth int, address string) *mesh.TileNode {
	node := &mesh.TileNode{
		Bounds: bounds,
		Depth:  depth,
	}

	level := b.scheduleLevel(depth)
	simplified := b.simplify(m, level)
	if simplified == m {
		// Simplify returns m itself for an empty or unreduced small mesh;
		// BuildNodeAtlas replaces its argument's slices, so it gets a shallow
		// copy and m stays intact for the split below.
		cp := *m
		simplified = &cp
	}
	node.Mesh = simplified

	// Build this node's own atlas before it's a candidate for writing: its
	// GLB must reference only the UV region its (possibly simplified)
	// geometry still touches, cropped from the shared source texture with
	// bleed padding, never the whole original atlas with original UVs.
	nodeLib, _, err := atlas.BuildNodeAtlas(simplified, lib, b.cfg.TextureMaxSize)
	if err != nil {
		b.recordFailure(address, "build atlas", err)
		nodeLib = lib
	}
	node.Materials = nodeLib

	if b.isLeaf(simplified, bounds, depth) {
		node.GeometricError = 0
		return node
	}

	// Error halves each level: diagonal(box)*(1-ratio)/2. A non-leaf whose
	// own level is unsimplified (ratio=1, the common root configuration)
	// would otherwise report geometricError=0 — violating "root has the
	// largest error" and child<parent monotonicity, since its children
	// simplify further and get a larger (1-ratio) term. effectiveRatio
	// borrows the nearest deeper level's ratio in that case, so a
	// full-fidelity root still carries more error than what it stands in
	// for during refinement.
	node.GeometricError = bounds.Diagonal() * (1 - b.effectiveRatio(depth)) / 2

	// Split the pristine pre-simplify mesh, not this level's simplified
	// content: children recurse over the full-resolution geometry of their
	// own octant and simplify it again for their own level.
	children := octree.SplitMesh(m, bounds)

	// A node below the root runs on a pool goroutine holding a slot; it
	// gives that slot back while it dispatches and waits for its children
	// and takes one again before returning, so nested fan-out never blocks
	// on slots held by its own ancestors.
	if depth > 0 {
		b.pool.Release()
	}
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i, child := range children {
		if child == nil {
			continue
		}
		i, child := i, child
		childBounds := bounds.Octant(i)
		childAddress := path.Join(address, itoa(i))
		b.pool.Go(&wg, func() {
			childNode := b.buildNode(child, lib, childBounds, depth+1, childAddress)
			mu.Lock()
			node.Children[i] = childNode
			mu.Unlock()
		})
	}
	wg.Wait()
	if depth > 0 {
		b.pool.Acquire()
	}

	// compact the sparse [8]*TileNode slots into ChildCount, matching
	// mesh.TileNode.Walk's expectation of a dense prefix.
	compact(node)

	return node
}

// effectiveRatio returns the simplification ratio used for this node's
// geometricError: its own scheduleLevel ratio, or — when that ratio is 1 —
// the nearest deeper level's ratio, scanning at most the length of the
// configured schedule before falling back to the relaxed level's ratio.
func (b *Builder) effectiveRatio(depth int) float64 {
	limit := depth + len(b.cfg.SimplifySchedule) + 1
	for d := depth; d < limit; d++ {
		if r := b.scheduleLevel(d).Ratio; r < 1 {
			return r
		}
	}
	return relaxedLevel.Ratio
}

func compact(node *mesh.TileNode) {
	var dense [8]*mesh.TileNode
	n := 0
	for _, c := range node.Children {
		if c != nil {
			dense[n] = c
			n++
		}
	}
	node.Children = dense
	node.ChildCount = n
}

func (b *Builder) simplify(m *mesh.IndexedMesh, level SimplifyLevel) *mesh.IndexedMesh {
	return simplify.Simplify(m, simplify.Options{
		TargetRatio:             level.Ratio,
		LockBorder:              level.LockBorder,
		CompactionSkipThreshold: b.cfg.CompactionSkipThreshold,
	})
}

// scheduleLevel returns the configured simplification level for depth,
// padding with the relaxed configuration (ratio=0.5, lock_border=false) once
// depth runs past the schedule's length (Open Question: pad rather than
// error — a short simplify_schedule relative to max_depth is a merely-short
// default, not a fatal misconfiguration — logged once per occurrence since
// it signals a likely length mismatch worth noticing).
func (b *Builder) scheduleLevel(depth int) SimplifyLevel {
	sched := b.cfg.SimplifySchedule
	if depth < len(sched) {
		return sched[depth]
	}
	if len(sched) > 0 {
		glog.Warningf("tileset: depth %d exceeds simplify_schedule length %d, padding with the relaxed level", depth, len(sched))
	}
	return relaxedLevel
}

func (b *Builder) isLeaf(m *mesh.IndexedMesh, bounds mesh.BoundingBox, depth int) bool {
	if depth >= b.cfg.MaxDepth {
		return true
	}
	if b.cfg.MaxTrianglesPerTile > 0 && m.TriangleCount() <= b.cfg.MaxTrianglesPerTile {
		return true
	}
	if b.cfg.MinTileSizeM > 0 && bounds.Diagonal() <= b.cfg.MinTileSizeM {
		return true
	}
	return false
}

func (b *Builder) recordFailure(address, op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Failures = append(b.Failures, &TilingError{Address: address, Op: op, Err: err})
}

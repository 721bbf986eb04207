package mesh

import "math"

// QuantScale controls the quantization grid DedupKey snaps vertices to.
// 1e-5 world units (typically meters) is well below photogrammetry capture
// noise, so two vertices produced by independent clip operations at the
// same geometric point always collapse to one key.
const QuantScale = 1e5

// DedupKey identifies a vertex by its quantized position, normal direction
// and UV, so the clipper and atlas repacker can recognize "the same vertex"
// across independent operations without floating point equality checks.
type DedupKey struct {
	PX, PY, PZ int64
	NX, NY, NZ int32
	U, V       int32
}

func quantizePos(v float32) int64 {
	return int64(math.Round(float64(v) * QuantScale))
}

func quantizeDir(v float32) int32 {
	// normals are unit-length; a coarser grid than positions is sufficient
	// and keeps near-duplicate-but-not-identical normals merged.
	return int32(math.Round(float64(v) * 1e4))
}

func quantizeUV(v float32) int32 {
	return int32(math.Round(float64(v) * 1e6))
}

// NewDedupKey builds the key for a vertex's attributes. hasNormal/hasUV
// select whether the corresponding fields participate; omitted fields are
// left zero so two positions differing only in an attribute neither mesh
// carries still collapse.
func NewDedupKey(pos [3]float32, normal [3]float32, hasNormal bool, uv [2]float32, hasUV bool) DedupKey {
	k := DedupKey{
		PX: quantizePos(pos[0]),
		PY: quantizePos(pos[1]),
		PZ: quantizePos(pos[2]),
	}
	if hasNormal {
		k.NX = quantizeDir(normal[0])
		k.NY = quantizeDir(normal[1])
		k.NZ = quantizeDir(normal[2])
	}
	if hasUV {
		k.U = quantizeUV(uv[0])
		k.V = quantizeUV(uv[1])
	}
	return k
}

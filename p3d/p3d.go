// Package p3d parses Real Virtuality model files: ODOL (binarized,
// versions 7 and 28-75) and MLOD (editable). It extracts per-LOD
// geometry, materials, named selections, and model-level indices, but
// performs no rendering or mesh processing of its own.
package p3d

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/armatools/rvtk/binio"
	"github.com/armatools/rvtk/lzss"
)

// ErrInvalidSignature is returned when the leading four bytes are
// neither "ODOL" nor "MLOD", and the file does not look like an
// LZSS-framed instance of either.
var ErrInvalidSignature = errors.New("p3d: invalid signature")

// ErrTooManyLODs is returned when a LOD count exceeds the 1000-LOD
// sanity ceiling shared by all three readers.
var ErrTooManyLODs = errors.New("p3d: LOD count exceeds sanity limit")

// ErrInvalidFaceVertexCount is returned for an MLOD face whose vertex
// count falls outside [0, 4].
var ErrInvalidFaceVertexCount = errors.New("p3d: invalid face vertex count")

const maxLODs = 1000

// Vector3 is a 3-component position or normal.
type Vector3 [3]float32

// UV is a 2-component texture coordinate.
type UV [2]float32

// NamedProperty is a key/value metadata pair attached to a LOD.
type NamedProperty struct {
	Name  string
	Value string
}

// FaceVertex stores one vertex's face-local attributes.
type FaceVertex struct {
	PointIndex  uint32
	NormalIndex int32 // -1 if unavailable
	UV          UV
}

// Face stores a polygon's vertices plus its resolved texture/material.
type Face struct {
	Vertices     []FaceVertex
	Flags        uint32
	Texture      string
	Material     string
	TextureIndex int32 // -1 if unresolved
}

// LOD holds the geometry and metadata for one level of detail.
type LOD struct {
	Index            int
	Resolution       float32
	ResolutionName   string
	Textures         []string
	Materials        []string
	NamedProperties  []NamedProperty
	NamedSelections  []string
	SelectionVerts   map[string][]uint32
	SelectionFaces   map[string][]uint32
	Vertices         []Vector3
	Normals          []Vector3
	UVSets           [][]UV
	FaceData         []Face
	Faces            [][]uint32
	VertexCount      int
	FaceCount        int
	BoundingBoxMin   Vector3
	BoundingBoxMax   Vector3
	BoundingCenter   Vector3
	BoundingRadius   float32
}

// ModelInfo holds model-level metadata read from ODOL files. Its LOD
// index fields are -1 when the corresponding distinguished role is
// absent.
type ModelInfo struct {
	BoundingSphere  float32
	BoundingBoxMin  Vector3
	BoundingBoxMax  Vector3
	CenterOfMass    Vector3
	Mass            float32
	Armor           float32
	MemoryLOD       int
	GeometryLOD     int
	FireGeometryLOD int
	ViewGeometryLOD int
	LandContactLOD  int
	RoadwayLOD      int
	PathsLOD        int
	HitPointsLOD    int
}

// File is the parsed metadata for a P3D model: its format discriminator
// ("ODOL" or "MLOD"), version, ordered LODs, and an optional model-level
// record (nil for MLOD).
type File struct {
	Format    string
	Version   int
	LODs      []LOD
	ModelInfo *ModelInfo
}

// isVisualLOD reports whether name is a distance-based visual LOD
// (its resolution_name is the numeric distance, e.g. "1.000").
func isVisualLOD(name string) bool {
	return len(name) > 0 && name[0] >= '0' && name[0] <= '9'
}

func newSelectionMaps() (map[string][]uint32, map[string][]uint32) {
	return map[string][]uint32{}, map[string][]uint32{}
}

func mergeSorted(existing []uint32, add []uint32) []uint32 {
	if len(add) == 0 {
		return existing
	}
	existing = append(existing, add...)
	return sortUniqueU32(existing)
}

func sortUniqueU32(vals []uint32) []uint32 {
	if len(vals) < 2 {
		return vals
	}
	// Insertion sort is adequate: selection lists are small relative to
	// mesh size and this runs once per LOD per selection.
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j-1] > vals[j]; j-- {
			vals[j-1], vals[j] = vals[j], vals[j-1]
		}
	}
	out := vals[:1]
	for _, v := range vals[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func clipSelections(m map[string][]uint32, limit uint32) {
	if limit == 0 {
		return
	}
	for name, idx := range m {
		kept := idx[:0]
		for _, v := range idx {
			if v < limit {
				kept = append(kept, v)
			}
		}
		m[name] = kept
	}
}

func readStringArray(br *binio.Reader) ([]string, error) {
	count, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("reading string array count: %w", err)
	}
	out := make([]string, count)
	for i := range out {
		s, err := br.ASCIIZ()
		if err != nil {
			return nil, fmt.Errorf("reading string array element %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// Read parses a P3D file from r, dispatching on its leading four-byte
// signature. LZSS-framed ODOL/MLOD files (raw PBO entries whose leading
// byte is an LZSS flag byte, not a literal signature character) are
// auto-decompressed and re-parsed.
func Read(r io.ReadSeeker) (*File, error) {
	br := binio.NewReader(r)
	sig, err := br.Signature()
	if err != nil {
		return nil, fmt.Errorf("p3d: reading signature: %w", err)
	}

	switch sig {
	case "ODOL":
		version, err := br.U32()
		if err != nil {
			return nil, fmt.Errorf("p3d: reading ODOL version: %w", err)
		}
		if version >= 28 {
			return readODOL28(br, version)
		}
		return readODOL7(br, version)
	case "MLOD":
		return readMLOD(br)
	}

	// LZSS-framed: the real signature characters appear at offsets 1-3
	// as literal bytes, with byte 0 an LZSS flag byte.
	if sig[0] != 0 && (sig[1:4] == "ODO" || sig[1:4] == "MLO") {
		if _, err := br.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("p3d: rewinding for LZSS frame: %w", err)
		}
		whole, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("p3d: reading LZSS-framed file: %w", err)
		}
		decompressed := lzss.DecompressAuto(whole)
		if decompressed == nil {
			return nil, fmt.Errorf("p3d: file appears LZSS-compressed but decompression failed")
		}
		return Read(bytes.NewReader(decompressed))
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidSignature, sig)
}

// ResolutionName maps a raw LOD resolution float to its conventional
// name: a fixed set of distinguished roles by exact bit pattern, the
// "ShadowVolume <n>" family for [1e4, 2e4), and a 3-decimal numeric
// fallback (visual LOD distance) otherwise.
func ResolutionName(r float32) string {
	switch math.Float32bits(r) {
	case 0x551184e7:
		return "Geometry"
	case 0x58635fa9:
		return "Memory"
	case 0x58e35fa9:
		return "LandContact"
	case 0x592a87bf:
		return "Roadway"
	case 0x59635fa9:
		return "Paths"
	case 0x598e1bca:
		return "HitPoints"
	case 0x59aa87bf:
		return "ViewGeometry"
	case 0x59c6f3b4:
		return "FireGeometry"
	case 0x59e35fa9:
		return "ViewCargoGeometry"
	case 0x59ffcb9e:
		return "ViewCargoFireGeometry"
	case 0x5a0e1bca:
		return "ViewCommander"
	case 0x5a1c51c4:
		return "ViewCommanderGeometry"
	case 0x5a2a87bf:
		return "ViewCommanderFireGeometry"
	case 0x5a38bdb9:
		return "ViewPilotGeometry"
	case 0x5a46f3b4:
		return "ViewPilotFireGeometry"
	case 0x5a5529af:
		return "ViewGunnerGeometry"
	case 0x5a635fa9:
		return "ViewGunnerFireGeometry"
	case 0x559184e7:
		return "Buoyancy"
	case 0x561184e7:
		return "PhysX"
	case 0x5a9536c7:
		return "Wreck"
	}

	if r >= 1e4 && r < 2e4 {
		return fmt.Sprintf("ShadowVolume %.0f", r-1e4)
	}

	return fmt.Sprintf("%.3f", r)
}

// SizeInfo holds model dimensions derived from a LOD's bounding box (or,
// for VisualBBox, from its actual vertex extents).
type SizeInfo struct {
	Source    string
	BBoxMin   Vector3
	BBoxMax   Vector3
	BBoxCenter Vector3
	BBoxRadius float32
	Dimensions Vector3
}

func sizeFromLOD(lod *LOD, source string) SizeInfo {
	center := lod.BoundingCenter
	radius := lod.BoundingRadius
	if center == (Vector3{}) && radius == 0 {
		for i := range center {
			center[i] = (lod.BoundingBoxMin[i] + lod.BoundingBoxMax[i]) / 2
		}
		dx := lod.BoundingBoxMax[0] - center[0]
		dy := lod.BoundingBoxMax[1] - center[1]
		dz := lod.BoundingBoxMax[2] - center[2]
		radius = float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
	}
	return SizeInfo{
		Source:     source,
		BBoxMin:    lod.BoundingBoxMin,
		BBoxMax:    lod.BoundingBoxMax,
		BBoxCenter: center,
		BBoxRadius: radius,
		Dimensions: Vector3{
			lod.BoundingBoxMax[0] - lod.BoundingBoxMin[0],
			lod.BoundingBoxMax[1] - lod.BoundingBoxMin[1],
			lod.BoundingBoxMax[2] - lod.BoundingBoxMin[2],
		},
	}
}

func sizeFromVertices(lod *LOD) *SizeInfo {
	if len(lod.Vertices) == 0 {
		return nil
	}
	bmin, bmax := lod.Vertices[0], lod.Vertices[0]
	for _, v := range lod.Vertices[1:] {
		for j := 0; j < 3; j++ {
			if v[j] < bmin[j] {
				bmin[j] = v[j]
			}
			if v[j] > bmax[j] {
				bmax[j] = v[j]
			}
		}
	}
	var center Vector3
	for i := range center {
		center[i] = (bmin[i] + bmax[i]) / 2
	}
	dx := bmax[0] - center[0]
	dy := bmax[1] - center[1]
	dz := bmax[2] - center[2]
	radius := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
	info := SizeInfo{
		Source:     lod.ResolutionName,
		BBoxMin:    bmin,
		BBoxMax:    bmax,
		BBoxCenter: center,
		BBoxRadius: radius,
		Dimensions: Vector3{bmax[0] - bmin[0], bmax[1] - bmin[1], bmax[2] - bmin[2]},
	}
	return &info
}

// CalculateSize computes model dimensions from the Geometry LOD's
// bounding box. If no Geometry LOD is present it falls back to the
// lowest-resolution visual LOD, returning a non-empty warning
// describing the fallback. If neither is found, info is nil and warning
// explains why.
func CalculateSize(model *File) (info *SizeInfo, warning string) {
	for i := range model.LODs {
		if model.LODs[i].ResolutionName == "Geometry" {
			s := sizeFromLOD(&model.LODs[i], "Geometry")
			return &s, ""
		}
	}

	bestIdx := -1
	bestRes := float32(math.MaxFloat32)
	for i := range model.LODs {
		l := &model.LODs[i]
		if !isVisualLOD(l.ResolutionName) || l.VertexCount == 0 {
			continue
		}
		if l.Resolution < bestRes {
			bestRes = l.Resolution
			bestIdx = i
		}
	}
	if bestIdx >= 0 {
		src := model.LODs[bestIdx].ResolutionName
		s := sizeFromLOD(&model.LODs[bestIdx], src)
		return &s, fmt.Sprintf("no Geometry LOD found, using visual LOD %s", src)
	}

	return nil, "no Geometry or visual LODs found, cannot calculate size"
}

// VisualBBox computes a bounding box from the actual vertex positions of
// the best visual LOD, preferring the highest-detail "1.000" LOD and
// falling back to the lowest-resolution visual LOD with vertex data.
func VisualBBox(model *File) *SizeInfo {
	var lod *LOD
	for i := range model.LODs {
		if model.LODs[i].ResolutionName == "1.000" && len(model.LODs[i].Vertices) > 0 {
			lod = &model.LODs[i]
			break
		}
	}

	if lod == nil {
		bestIdx := -1
		bestRes := float32(math.MaxFloat32)
		for i := range model.LODs {
			l := &model.LODs[i]
			if !isVisualLOD(l.ResolutionName) || len(l.Vertices) == 0 {
				continue
			}
			if l.Resolution < bestRes {
				bestRes = l.Resolution
				bestIdx = i
			}
		}
		if bestIdx >= 0 {
			lod = &model.LODs[bestIdx]
		}
	}

	if lod == nil {
		return nil
	}
	return sizeFromVertices(lod)
}

package p3d

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/armatools/rvtk/binio"
	"github.com/armatools/rvtk/lzss"
)

func fixed64(s string) []byte {
	buf := make([]byte, 64)
	copy(buf, s)
	return buf
}

// buildMLOD assembles a one-LOD MLOD file: four points, one normal,
// one triangle over points 1,2,3, a "head" named selection covering
// points 1 and 2, and one #Property# pair.
func buildMLOD(t *testing.T, nVerts int32) []byte {
	t.Helper()
	var buf bytes.Buffer
	bw := binio.NewWriter(&buf)

	write := func(steps ...error) {
		for _, err := range steps {
			if err != nil {
				t.Fatalf("building MLOD: %v", err)
			}
		}
	}

	write(
		bw.Signature("MLOD"),
		bw.U32(257), // version
		bw.U32(1),   // LOD count

		bw.Signature("P3DM"),
		bw.U32(0x1c), bw.U32(0x100), // major/minor
		bw.U32(4), // points
		bw.U32(1), // normals
		bw.U32(1), // faces
		bw.U32(0), // flags
	)

	points := [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 2, 0}, {0, 2, 3}}
	for _, p := range points {
		write(bw.F32Slice(p[:]), bw.U32(0))
	}
	write(bw.F32Slice([]float32{0, 1, 0})) // the single normal

	// One face referencing points 1,2,3; the fourth vertex slot is
	// present on the wire but unused.
	write(bw.I32(nVerts))
	for j, pt := range []int32{1, 2, 3, 0} {
		write(bw.I32(pt), bw.I32(0), bw.F32(float32(j)*0.25), bw.F32(0.5))
	}
	write(
		bw.I32(0), // face flags
		bw.ASCIIZ(`data\tex.paa`),
		bw.ASCIIZ(""),
	)

	write(
		bw.Signature("TAGG"),

		bw.U8(1),
		bw.ASCIIZ("head"),
		bw.U32(5),
		bw.Bytes([]byte{0, 1, 1, 0, 0}), // 4 point flags + 1 face flag

		bw.U8(1),
		bw.ASCIIZ("#Property#"),
		bw.U32(128),
		bw.Bytes(fixed64("class")),
		bw.Bytes(fixed64("house")),

		bw.U8(1),
		bw.ASCIIZ("#EndOfFile#"),
		bw.U32(0),

		bw.F32(1.0), // resolution
	)
	return buf.Bytes()
}

func TestMLODRead(t *testing.T) {
	model, err := Read(bytes.NewReader(buildMLOD(t, 3)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if model.Format != "MLOD" || model.Version != 257 {
		t.Errorf("format/version = %s/%d, want MLOD/257", model.Format, model.Version)
	}
	if model.ModelInfo != nil {
		t.Error("MLOD produced a ModelInfo, want nil")
	}
	if len(model.LODs) != 1 {
		t.Fatalf("LOD count = %d, want 1", len(model.LODs))
	}

	lod := &model.LODs[0]
	if lod.VertexCount != 4 || lod.FaceCount != 1 {
		t.Errorf("counts = %d verts, %d faces, want 4, 1", lod.VertexCount, lod.FaceCount)
	}
	if lod.ResolutionName != "1.000" {
		t.Errorf("resolution name = %q, want %q", lod.ResolutionName, "1.000")
	}

	// Vertex order per face is reversed on read to match ODOL winding.
	if want := []uint32{3, 2, 1}; !reflect.DeepEqual(lod.Faces[0], want) {
		t.Errorf("faces[0] = %v, want %v", lod.Faces[0], want)
	}
	if got := lod.FaceData[0].Vertices[0].PointIndex; got != 3 {
		t.Errorf("FaceData[0].Vertices[0].PointIndex = %d, want 3", got)
	}
	if lod.FaceData[0].Texture != `data\tex.paa` {
		t.Errorf("face texture = %q", lod.FaceData[0].Texture)
	}
	if want := []string{`data\tex.paa`}; !reflect.DeepEqual(lod.Textures, want) {
		t.Errorf("textures = %v, want %v", lod.Textures, want)
	}

	if want := []uint32{1, 2}; !reflect.DeepEqual(lod.SelectionVerts["head"], want) {
		t.Errorf(`selection "head" = %v, want %v`, lod.SelectionVerts["head"], want)
	}
	if want := []NamedProperty{{Name: "class", Value: "house"}}; !reflect.DeepEqual(lod.NamedProperties, want) {
		t.Errorf("named properties = %v, want %v", lod.NamedProperties, want)
	}

	if lod.BoundingBoxMin != (Vector3{0, 0, 0}) || lod.BoundingBoxMax != (Vector3{1, 2, 3}) {
		t.Errorf("bbox = %v..%v, want (0,0,0)..(1,2,3)", lod.BoundingBoxMin, lod.BoundingBoxMax)
	}
}

func TestMLODInvalidFaceVertexCount(t *testing.T) {
	if _, err := Read(bytes.NewReader(buildMLOD(t, 5))); !errors.Is(err, ErrInvalidFaceVertexCount) {
		t.Errorf("err = %v, want ErrInvalidFaceVertexCount", err)
	}
}

// A raw PBO entry may hold the whole P3D file LZSS-compressed; Read
// detects the framed signature and recurses on the decompressed bytes.
func TestLZSSFramedMLOD(t *testing.T) {
	raw := buildMLOD(t, 3)
	compressed, err := lzss.Compress(raw, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	model, err := Read(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("Read(framed): %v", err)
	}
	if model.Format != "MLOD" || len(model.LODs) != 1 {
		t.Errorf("framed parse = %s with %d LODs", model.Format, len(model.LODs))
	}
}

func TestInvalidSignature(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("XXXXtrailing bytes"))); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("err = %v, want ErrInvalidSignature", err)
	}
}

func TestResolutionName(t *testing.T) {
	cases := []struct {
		bits uint32
		want string
	}{
		{0x551184e7, "Geometry"},
		{0x58635fa9, "Memory"},
		{0x58e35fa9, "LandContact"},
		{0x592a87bf, "Roadway"},
		{0x59635fa9, "Paths"},
		{0x598e1bca, "HitPoints"},
		{0x59aa87bf, "ViewGeometry"},
		{0x59c6f3b4, "FireGeometry"},
	}
	for _, tc := range cases {
		if got := ResolutionName(math.Float32frombits(tc.bits)); got != tc.want {
			t.Errorf("ResolutionName(%#08x) = %q, want %q", tc.bits, got, tc.want)
		}
	}

	if got := ResolutionName(10000); got != "ShadowVolume 0" {
		t.Errorf("ResolutionName(10000) = %q, want %q", got, "ShadowVolume 0")
	}
	if got := ResolutionName(10500); got != "ShadowVolume 500" {
		t.Errorf("ResolutionName(10500) = %q, want %q", got, "ShadowVolume 500")
	}
	if got := ResolutionName(1); got != "1.000" {
		t.Errorf("ResolutionName(1) = %q, want %q", got, "1.000")
	}
	if got := ResolutionName(2.5); got != "2.500" {
		t.Errorf("ResolutionName(2.5) = %q, want %q", got, "2.500")
	}
}

func TestVisualBBoxFromVertices(t *testing.T) {
	model, err := Read(bytes.NewReader(buildMLOD(t, 3)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	visual := VisualBBox(model)
	if visual == nil {
		t.Fatal("VisualBBox = nil, want the 1.000 LOD's extents")
	}
	if visual.BBoxMin != (Vector3{0, 0, 0}) || visual.BBoxMax != (Vector3{1, 2, 3}) {
		t.Errorf("visual bbox = %v..%v, want (0,0,0)..(1,2,3)", visual.BBoxMin, visual.BBoxMax)
	}
	if visual.Dimensions != (Vector3{1, 2, 3}) {
		t.Errorf("dimensions = %v, want (1,2,3)", visual.Dimensions)
	}

	// The recomputed visual bounds must agree with the LOD's own
	// bounding box when no degenerate vertices are present.
	lod := &model.LODs[0]
	if visual.BBoxMin != lod.BoundingBoxMin || visual.BBoxMax != lod.BoundingBoxMax {
		t.Errorf("visual bounds diverge from LOD bounds: %v..%v vs %v..%v",
			visual.BBoxMin, visual.BBoxMax, lod.BoundingBoxMin, lod.BoundingBoxMax)
	}
}

func TestCalculateSizeFallsBackToVisualLOD(t *testing.T) {
	model, err := Read(bytes.NewReader(buildMLOD(t, 3)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	info, warning := CalculateSize(model)
	if info == nil {
		t.Fatal("CalculateSize = nil")
	}
	if warning == "" {
		t.Error("expected a fallback warning for a model without a Geometry LOD")
	}
	if info.Source != "1.000" {
		t.Errorf("size source = %q, want %q", info.Source, "1.000")
	}
}

func TestSortUniqueU32(t *testing.T) {
	got := sortUniqueU32([]uint32{5, 1, 3, 1, 5, 2})
	if want := []uint32{1, 2, 3, 5}; !reflect.DeepEqual(got, want) {
		t.Errorf("sortUniqueU32 = %v, want %v", got, want)
	}
}

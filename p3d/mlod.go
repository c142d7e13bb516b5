package p3d

import (
	"io"
	"math"
	"sort"

	"github.com/armatools/rvtk/binio"
)

// readMLODTaggs reads the trailing TAGG chunk sequence attached to one
// MLOD LOD: named-selection membership masks, the #Property# key/value
// pair, and the #EndOfFile# terminator. Any other tag is discarded.
func readMLODTaggs(br *binio.Reader, lod *LOD) error {
	sig, err := br.Signature()
	if err != nil {
		return err
	}
	if sig != "TAGG" {
		return ErrInvalidSignature
	}

	for {
		if _, err := br.Seek(1, io.SeekCurrent); err != nil { // active
			return err
		}
		tagName, err := br.ASCIIZ()
		if err != nil {
			return err
		}
		tagSize, err := br.U32()
		if err != nil {
			return err
		}

		if tagName == "#EndOfFile#" {
			return nil
		}

		if tagName == "#Property#" {
			key, err := br.FixedString(64)
			if err != nil {
				return err
			}
			val, err := br.FixedString(64)
			if err != nil {
				return err
			}
			lod.NamedProperties = append(lod.NamedProperties, NamedProperty{Name: key, Value: val})
			continue
		}

		if len(tagName) > 0 && tagName[0] != '#' {
			lod.NamedSelections = append(lod.NamedSelections, tagName)
			if tagSize > 0 {
				data, err := br.Bytes(int(tagSize))
				if err != nil {
					return err
				}
				vertexCount := lod.VertexCount
				if vertexCount < 0 {
					vertexCount = 0
				}
				span := len(data)
				if vertexCount < span {
					span = vertexCount
				}
				var selected []uint32
				for i := 0; i < span; i++ {
					if data[i] != 0 {
						selected = append(selected, uint32(i))
					}
				}
				if len(selected) > 0 {
					lod.SelectionVerts[tagName] = mergeSorted(lod.SelectionVerts[tagName], selected)
				}
			}
			continue
		}

		if tagSize > 0 {
			if _, err := br.Seek(int64(tagSize), io.SeekCurrent); err != nil {
				return err
			}
		}
	}
}

// readMLODLOD reads one P3DM/SP3X LOD: fixed-size point/normal arrays,
// per-face raw vertex/UV/material data (reversed to ODOL winding),
// trailing TAGG blocks, and the final resolution float.
func readMLODLOD(br *binio.Reader) (*LOD, error) {
	lod := &LOD{}
	lod.SelectionVerts, lod.SelectionFaces = newSelectionMaps()

	sig, err := br.Signature()
	if err != nil {
		return nil, err
	}
	if sig != "P3DM" && sig != "SP3X" {
		return nil, ErrInvalidSignature
	}
	if _, err := br.Seek(8, io.SeekCurrent); err != nil { // major/minor version
		return nil, err
	}

	pointsCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	normalsCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	facesCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	if _, err := br.Seek(4, io.SeekCurrent); err != nil { // flags
		return nil, err
	}

	lod.VertexCount = int(pointsCount)
	lod.FaceCount = int(facesCount)

	lod.Vertices = make([]Vector3, pointsCount)
	if pointsCount > 0 {
		bmin := Vector3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
		bmax := Vector3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
		for i := range lod.Vertices {
			v, err := br.F32Slice(3)
			if err != nil {
				return nil, err
			}
			copy(lod.Vertices[i][:], v)
			if _, err := br.Seek(4, io.SeekCurrent); err != nil { // per-point flags
				return nil, err
			}
			for j := 0; j < 3; j++ {
				if lod.Vertices[i][j] < bmin[j] {
					bmin[j] = lod.Vertices[i][j]
				}
				if lod.Vertices[i][j] > bmax[j] {
					bmax[j] = lod.Vertices[i][j]
				}
			}
		}
		lod.BoundingBoxMin = bmin
		lod.BoundingBoxMax = bmax
	}

	lod.Normals = make([]Vector3, normalsCount)
	for i := range lod.Normals {
		v, err := br.F32Slice(3)
		if err != nil {
			return nil, err
		}
		copy(lod.Normals[i][:], v)
	}

	texSet := map[string]bool{}
	matSet := map[string]bool{}
	lod.Faces = make([][]uint32, facesCount)
	lod.FaceData = make([]Face, 0, facesCount)
	for fi := uint32(0); fi < facesCount; fi++ {
		nv, err := br.I32()
		if err != nil {
			return nil, err
		}
		if nv < 0 || nv > 4 {
			return nil, ErrInvalidFaceVertexCount
		}

		indices := make([]uint32, 0, nv)
		faceVerts := make([]FaceVertex, 0, nv)
		for j := 0; j < 4; j++ {
			pointIdx, err := br.I32()
			if err != nil {
				return nil, err
			}
			normalIdx, err := br.I32()
			if err != nil {
				return nil, err
			}
			u, err := br.F32()
			if err != nil {
				return nil, err
			}
			vv, err := br.F32()
			if err != nil {
				return nil, err
			}
			if int32(j) < nv {
				indices = append(indices, uint32(pointIdx))
				faceVerts = append(faceVerts, FaceVertex{
					PointIndex: uint32(pointIdx), NormalIndex: normalIdx, UV: UV{u, vv},
				})
			}
		}
		reverseU32(indices)
		reverseFaceVerts(faceVerts)
		lod.Faces[fi] = indices

		flags, err := br.I32()
		if err != nil {
			return nil, err
		}
		texture, err := br.ASCIIZ()
		if err != nil {
			return nil, err
		}
		if texture != "" {
			texSet[texture] = true
		}
		material, err := br.ASCIIZ()
		if err != nil {
			return nil, err
		}
		if material != "" {
			matSet[material] = true
		}

		lod.FaceData = append(lod.FaceData, Face{
			Vertices: faceVerts, Flags: uint32(flags), Texture: texture, Material: material, TextureIndex: -1,
		})
	}

	lod.Textures = sortedKeys(texSet)
	lod.Materials = sortedKeys(matSet)

	if err := readMLODTaggs(br, lod); err != nil {
		return nil, err
	}

	res, err := br.F32()
	if err != nil {
		return nil, err
	}
	lod.Resolution = res
	lod.ResolutionName = ResolutionName(res)

	return lod, nil
}

func reverseU32(s []uint32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseFaceVerts(s []FaceVertex) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// readMLOD reads an MLOD file: a version, LOD count, and that many
// P3DM/SP3X LODs in sequence.
func readMLOD(br *binio.Reader) (*File, error) {
	version, err := br.U32()
	if err != nil {
		return nil, err
	}
	lodCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	if lodCount > maxLODs {
		return nil, ErrTooManyLODs
	}

	lods := make([]LOD, lodCount)
	for i := uint32(0); i < lodCount; i++ {
		lod, err := readMLODLOD(br)
		if err != nil {
			return nil, err
		}
		lod.Index = int(i)
		lods[i] = *lod
	}

	return &File{Format: "MLOD", Version: int(version), LODs: lods}, nil
}

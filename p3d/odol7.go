package p3d

import (
	"fmt"
	"io"

	"github.com/armatools/rvtk/binio"
	"github.com/armatools/rvtk/lzss"
)

// skipCompressedArrayV7 reads a count-prefixed LZSS-or-raw array header
// (OFP/CWA-era framing: below 1024 bytes stored raw) and discards its
// payload, returning the element count.
func skipCompressedArrayV7(br *binio.Reader, r io.ReadSeeker, elemSize int) (uint32, error) {
	count, err := br.U32()
	if err != nil {
		return 0, err
	}
	total := int(count) * elemSize
	if total < 1024 {
		if _, err := br.Seek(int64(total), io.SeekCurrent); err != nil {
			return 0, fmt.Errorf("skipping raw v7 array: %w", err)
		}
		return count, nil
	}
	if _, err := lzss.DecompressStream(r, total); err != nil {
		return 0, fmt.Errorf("skipping compressed v7 array: %w", err)
	}
	return count, nil
}

// readCompressedArrayV7 is skipCompressedArrayV7 but keeps the payload.
func readCompressedArrayV7(br *binio.Reader, r io.ReadSeeker, elemSize int) (uint32, []byte, error) {
	count, err := br.U32()
	if err != nil {
		return 0, nil, err
	}
	expected := int(count) * elemSize
	data, err := lzss.DecompressStreamOrRaw(r, expected)
	if err != nil {
		return 0, nil, fmt.Errorf("reading compressed v7 array: %w", err)
	}
	return count, data, nil
}

func readODOLModelInfoV7(br *binio.Reader) (*ModelInfo, error) {
	info := &ModelInfo{}

	if _, err := br.Seek(4, io.SeekCurrent); err != nil { // properties
		return nil, err
	}
	sphere, err := br.F32()
	if err != nil {
		return nil, fmt.Errorf("reading lodSphere: %w", err)
	}
	info.BoundingSphere = sphere

	// physicsSphere, properties2, hintsAnd, hintsOr, aimPoint(12), color(4),
	// color2(4), density(4) = 4+4+4+4+12+4+4+4 = 40 bytes
	if _, err := br.Seek(40, io.SeekCurrent); err != nil {
		return nil, err
	}

	minV, err := br.F32Slice(3)
	if err != nil {
		return nil, fmt.Errorf("reading bbox min: %w", err)
	}
	copy(info.BoundingBoxMin[:], minV)
	maxV, err := br.F32Slice(3)
	if err != nil {
		return nil, fmt.Errorf("reading bbox max: %w", err)
	}
	copy(info.BoundingBoxMax[:], maxV)

	// lodCenter(12), physicsCenter(12)
	if _, err := br.Seek(24, io.SeekCurrent); err != nil {
		return nil, err
	}
	massCenter, err := br.F32Slice(3)
	if err != nil {
		return nil, fmt.Errorf("reading massCenter: %w", err)
	}
	copy(info.CenterOfMass[:], massCenter)

	// invInertia(36), 5 bools(5), mapType(1) = 42 bytes
	if _, err := br.Seek(42, io.SeekCurrent); err != nil {
		return nil, err
	}

	return info, nil
}

func finishODOLModelInfoV7(br *binio.Reader, r io.ReadSeeker, info *ModelInfo) error {
	if _, _, err := readCompressedArrayV7(br, r, 4); err != nil { // masses
		return fmt.Errorf("reading masses: %w", err)
	}
	mass, err := br.F32()
	if err != nil {
		return err
	}
	info.Mass = mass
	if _, err := br.Seek(4, io.SeekCurrent); err != nil { // invMass
		return err
	}
	armor, err := br.F32()
	if err != nil {
		return err
	}
	info.Armor = armor
	if _, err := br.Seek(4, io.SeekCurrent); err != nil { // invArmor
		return err
	}

	indices, err := br.Bytes(12)
	if err != nil {
		return fmt.Errorf("reading LOD indices: %w", err)
	}
	info.MemoryLOD = int(int8(indices[0]))
	info.GeometryLOD = int(int8(indices[1]))
	info.FireGeometryLOD = int(int8(indices[2]))
	info.ViewGeometryLOD = int(int8(indices[3]))
	info.LandContactLOD = int(int8(indices[8]))
	info.RoadwayLOD = int(int8(indices[9]))
	info.PathsLOD = int(int8(indices[10]))
	info.HitPointsLOD = int(int8(indices[11]))
	return nil
}

func readODOL7LOD(br *binio.Reader, r io.ReadSeeker) (*LOD, error) {
	lod := &LOD{}
	lod.SelectionVerts, lod.SelectionFaces = newSelectionMaps()

	if _, err := skipCompressedArrayV7(br, r, 4); err != nil { // flags
		return nil, fmt.Errorf("skipping flags: %w", err)
	}

	uvCount, uvData, err := readCompressedArrayV7(br, r, 8)
	if err != nil {
		return nil, fmt.Errorf("reading UVs: %w", err)
	}
	if uvCount > 0 {
		uvSet := make([]UV, uvCount)
		for i := range uvSet {
			off := i * 8
			u := binio.LEFloat32(uvData[off : off+4])
			v := binio.LEFloat32(uvData[off+4 : off+8])
			uvSet[i] = UV{u, v}
		}
		lod.UVSets = append(lod.UVSets, uvSet)
	}

	posCount, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("reading position count: %w", err)
	}
	lod.VertexCount = int(posCount)
	lod.Vertices = make([]Vector3, posCount)
	for i := range lod.Vertices {
		v, err := br.F32Slice(3)
		if err != nil {
			return nil, fmt.Errorf("reading position %d: %w", i, err)
		}
		copy(lod.Vertices[i][:], v)
	}

	normalCount, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("reading normal count: %w", err)
	}
	lod.Normals = make([]Vector3, normalCount)
	for i := range lod.Normals {
		v, err := br.F32Slice(3)
		if err != nil {
			return nil, fmt.Errorf("reading normal %d: %w", i, err)
		}
		copy(lod.Normals[i][:], v)
	}

	if _, err := br.Seek(8, io.SeekCurrent); err != nil { // hintsOr, hintsAnd
		return nil, err
	}

	minV, err := br.F32Slice(3)
	if err != nil {
		return nil, err
	}
	copy(lod.BoundingBoxMin[:], minV)
	maxV, err := br.F32Slice(3)
	if err != nil {
		return nil, err
	}
	copy(lod.BoundingBoxMax[:], maxV)
	centerV, err := br.F32Slice(3)
	if err != nil {
		return nil, err
	}
	copy(lod.BoundingCenter[:], centerV)
	radius, err := br.F32()
	if err != nil {
		return nil, err
	}
	lod.BoundingRadius = radius

	rawTextures, err := readStringArray(br)
	if err != nil {
		return nil, fmt.Errorf("reading textures: %w", err)
	}
	for _, t := range rawTextures {
		if t != "" {
			lod.Textures = append(lod.Textures, t)
		}
	}

	if _, err := skipCompressedArrayV7(br, r, 2); err != nil { // pointToVertices
		return nil, err
	}
	if _, err := skipCompressedArrayV7(br, r, 2); err != nil { // vertexToPoints
		return nil, err
	}

	faceCount, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("reading face count: %w", err)
	}
	lod.FaceCount = int(faceCount)
	if _, err := br.U32(); err != nil { // total byte size, unused
		return nil, err
	}

	lod.Faces = make([][]uint32, 0, faceCount)
	lod.FaceData = make([]Face, 0, faceCount)
	for fi := uint32(0); fi < faceCount; fi++ {
		flags, err := br.U32()
		if err != nil {
			return nil, fmt.Errorf("reading face %d flags: %w", fi, err)
		}
		texIdx, err := br.U16()
		if err != nil {
			return nil, err
		}
		n, err := br.U8()
		if err != nil {
			return nil, err
		}
		indices := make([]uint32, n)
		verts := make([]FaceVertex, n)
		for j := uint8(0); j < n; j++ {
			idx16, err := br.U16()
			if err != nil {
				return nil, fmt.Errorf("reading face %d vertex %d: %w", fi, j, err)
			}
			idx := uint32(idx16)
			indices[j] = idx
			normalIdx := int32(-1)
			if int(idx) < len(lod.Normals) {
				normalIdx = int32(idx)
			}
			uv := UV{}
			if len(lod.UVSets) > 0 && int(idx) < len(lod.UVSets[0]) {
				uv = lod.UVSets[0][idx]
			}
			verts[j] = FaceVertex{PointIndex: idx, NormalIndex: normalIdx, UV: uv}
		}
		lod.Faces = append(lod.Faces, indices)
		var texture string
		if int(texIdx) < len(rawTextures) {
			texture = rawTextures[texIdx]
		}
		lod.FaceData = append(lod.FaceData, Face{
			Vertices:     verts,
			Flags:        flags,
			Texture:      texture,
			TextureIndex: int32(texIdx),
		})
	}

	sectionCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	if _, err := br.Seek(int64(sectionCount)*18, io.SeekCurrent); err != nil {
		return nil, fmt.Errorf("skipping sections: %w", err)
	}

	namedSectionCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	lod.NamedSelections = make([]string, namedSectionCount)
	for i := uint32(0); i < namedSectionCount; i++ {
		name, err := br.ASCIIZ()
		if err != nil {
			return nil, fmt.Errorf("reading named section %d name: %w", i, err)
		}
		lod.NamedSelections[i] = name

		faceIdxCount, faceIdxData, err := readCompressedArrayV7(br, r, 2)
		if err != nil {
			return nil, fmt.Errorf("reading named section %s face indices: %w", name, err)
		}
		selectedFaces := make([]uint32, faceIdxCount)
		for fi := uint32(0); fi < faceIdxCount; fi++ {
			selectedFaces[fi] = uint32(binio.LEUint16(faceIdxData[fi*2 : fi*2+2]))
		}

		if _, err := skipCompressedArrayV7(br, r, 1); err != nil { // faceWeights
			return nil, err
		}
		if _, err := skipCompressedArrayV7(br, r, 4); err != nil { // faceSelectionIndices
			return nil, err
		}
		if _, err := br.Seek(1, io.SeekCurrent); err != nil { // needSelection
			return nil, err
		}
		if _, err := skipCompressedArrayV7(br, r, 4); err != nil { // faceSelectionIndices2
			return nil, err
		}

		vertIdxCount, vertIdxData, err := readCompressedArrayV7(br, r, 2)
		if err != nil {
			return nil, fmt.Errorf("reading named section %s vertex indices: %w", name, err)
		}
		vertWeightCount, vertWeightData, err := readCompressedArrayV7(br, r, 1)
		if err != nil {
			return nil, fmt.Errorf("reading named section %s vertex weights: %w", name, err)
		}

		selectedVerts := make([]uint32, 0, vertIdxCount)
		for vi := uint32(0); vi < vertIdxCount; vi++ {
			idx := uint32(binio.LEUint16(vertIdxData[vi*2 : vi*2+2]))
			if vertWeightCount == vertIdxCount && int(vi) < len(vertWeightData) && vertWeightData[vi] == 0 {
				continue
			}
			selectedVerts = append(selectedVerts, idx)
		}

		if len(selectedFaces) > 0 {
			lod.SelectionFaces[name] = mergeSorted(lod.SelectionFaces[name], selectedFaces)
		}
		if len(selectedVerts) > 0 {
			lod.SelectionVerts[name] = mergeSorted(lod.SelectionVerts[name], selectedVerts)
		}
	}
	clipSelections(lod.SelectionVerts, uint32(len(lod.Vertices)))

	propCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	lod.NamedProperties = make([]NamedProperty, propCount)
	for i := range lod.NamedProperties {
		name, err := br.ASCIIZ()
		if err != nil {
			return nil, err
		}
		val, err := br.ASCIIZ()
		if err != nil {
			return nil, err
		}
		lod.NamedProperties[i] = NamedProperty{Name: name, Value: val}
	}

	animCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < animCount; i++ {
		if _, err := br.Seek(4, io.SeekCurrent); err != nil { // time
			return nil, err
		}
		pointCount, err := br.U32()
		if err != nil {
			return nil, err
		}
		if _, err := br.Seek(int64(pointCount)*12, io.SeekCurrent); err != nil {
			return nil, err
		}
	}

	if _, err := br.Seek(12, io.SeekCurrent); err != nil { // color, color2, flags2
		return nil, err
	}

	proxyCount, err := br.U32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < proxyCount; i++ {
		if _, err := br.ASCIIZ(); err != nil { // name
			return nil, err
		}
		if _, err := br.Seek(56, io.SeekCurrent); err != nil { // transform(48) + id(4) + sectionIndex(4)
			return nil, err
		}
	}

	return lod, nil
}

func readODOL7(br *binio.Reader, version uint32) (*File, error) {
	r := br.Underlying()
	lodCount, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("odol7: reading LOD count: %w", err)
	}
	if lodCount > maxLODs {
		return nil, fmt.Errorf("%w: %d", ErrTooManyLODs, lodCount)
	}

	lods := make([]LOD, lodCount)
	for i := uint32(0); i < lodCount; i++ {
		lod, err := readODOL7LOD(br, r)
		if err != nil {
			return nil, fmt.Errorf("odol7: reading LOD %d: %w", i, err)
		}
		lod.Index = int(i)
		lods[i] = *lod
	}

	for i := range lods {
		res, err := br.F32()
		if err != nil {
			return nil, fmt.Errorf("odol7: reading resolution %d: %w", i, err)
		}
		lods[i].Resolution = res
		lods[i].ResolutionName = ResolutionName(res)
	}

	info, err := readODOLModelInfoV7(br)
	if err != nil {
		return nil, fmt.Errorf("odol7: reading model info: %w", err)
	}
	if err := finishODOLModelInfoV7(br, r, info); err != nil {
		return nil, fmt.Errorf("odol7: reading model info: %w", err)
	}

	return &File{Format: "ODOL", Version: int(version), LODs: lods, ModelInfo: info}, nil
}

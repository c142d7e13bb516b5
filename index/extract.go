package index

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"

	"github.com/armatools/rvtk/ogg"
	"github.com/armatools/rvtk/p3d"
	"github.com/armatools/rvtk/paa"
	"github.com/armatools/rvtk/vpath"
	"github.com/armatools/rvtk/wss"
)

// recognizedExtensions is the set of lower-cased file extensions (with
// dot) whose entries get per-format metadata extracted during indexing.
// Extensions absent from this set are stored as generic file rows with
// no metadata rows.
var recognizedExtensions = map[string]bool{
	".p3d": true,
	".paa": true,
	".pac": true,
	".ogg": true,
	".wss": true,
	".wav": true,
}

func isRecognized(entryPath string) bool {
	dot := strings.LastIndexByte(entryPath, '.')
	if dot < 0 {
		return false
	}
	return recognizedExtensions[strings.ToLower(entryPath[dot:])]
}

// ensureDir walks path's directory components, inserting any missing
// dirs rows (with parent_id pointers forming the closure DAG) and
// returns the leaf directory's row id, or 0 for the archive root.
func ensureDir(tx *sql.Tx, dirCache map[string]int64, dirPath string) (int64, error) {
	if dirPath == "" {
		return 0, nil
	}
	if id, ok := dirCache[dirPath]; ok {
		return id, nil
	}

	parentPath := ""
	if idx := strings.LastIndexByte(dirPath, '/'); idx >= 0 {
		parentPath = dirPath[:idx]
	}
	name := dirPath
	if idx := strings.LastIndexByte(dirPath, '/'); idx >= 0 {
		name = dirPath[idx+1:]
	}

	parentID, err := ensureDir(tx, dirCache, parentPath)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRow("SELECT id FROM dirs WHERE path = ?", dirPath).Scan(&id)
	if err == sql.ErrNoRows {
		var parent any
		if parentID != 0 {
			parent = parentID
		}
		res, err := tx.Exec("INSERT INTO dirs(parent_id, name, path) VALUES (?, ?, ?)", parent, name, dirPath)
		if err != nil {
			return 0, fmt.Errorf("index: inserting dir %q: %w", dirPath, err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, fmt.Errorf("index: looking up dir %q: %w", dirPath, err)
	}

	dirCache[dirPath] = id
	return id, nil
}

func dirOf(virtualPath string) string {
	if idx := strings.LastIndexByte(virtualPath, '/'); idx >= 0 {
		return virtualPath[:idx]
	}
	return ""
}

// indexedCounts tallies the metadata rows inserted for one archive.
type indexedCounts struct {
	Models, Textures, AudioFiles int
}

// indexEntry takes the already-extracted body bytes of one archive entry
// and, if its extension is recognized, parses and inserts its metadata
// rows. Any
// parse failure is non-fatal to the archive: it is reported through
// warn and the entry's file row stands with no metadata.
func indexEntry(tx *sql.Tx, pboID int64, body []byte, virtualPath string, warn func(string)) indexedCounts {
	var counts indexedCounts
	dot := strings.LastIndexByte(virtualPath, '.')
	if dot < 0 {
		return counts
	}
	ext := strings.ToLower(virtualPath[dot:])
	name := virtualPath[strings.LastIndexByte(virtualPath, '/')+1:]

	switch ext {
	case ".p3d":
		if err := indexModel(tx, pboID, body, virtualPath, name); err != nil {
			warn(fmt.Sprintf("p3d %s: %v", virtualPath, err))
			return counts
		}
		counts.Models = 1
	case ".paa", ".pac":
		if err := indexTexture(tx, pboID, body, virtualPath, name); err != nil {
			warn(fmt.Sprintf("paa %s: %v", virtualPath, err))
			return counts
		}
		counts.Textures = 1
	case ".ogg":
		if err := indexOGG(tx, pboID, body, virtualPath, name); err != nil {
			warn(fmt.Sprintf("ogg %s: %v", virtualPath, err))
			return counts
		}
		counts.AudioFiles = 1
	case ".wss", ".wav":
		if err := indexWSS(tx, pboID, body, virtualPath, name); err != nil {
			warn(fmt.Sprintf("wss %s: %v", virtualPath, err))
			return counts
		}
		counts.AudioFiles = 1
	}
	return counts
}

func indexModel(tx *sql.Tx, pboID int64, body []byte, virtualPath, name string) error {
	model, err := p3d.Read(bytes.NewReader(body))
	if err != nil {
		return err
	}

	size, sizeWarning := p3d.CalculateSize(model)
	visual := p3d.VisualBBox(model)

	row := p3dModelRow{PboID: pboID, Path: virtualPath, Name: name, Format: model.Format}
	if size != nil {
		row.SizeSource = size.Source
		row.Dimensions = size.Dimensions
		row.BBoxMin = size.BBoxMin
		row.BBoxMax = size.BBoxMax
		row.BBoxCenter = size.BBoxCenter
		row.BBoxRadius = size.BBoxRadius
	} else if sizeWarning != "" {
		row.SizeSource = "none"
	}
	if model.ModelInfo != nil {
		row.ModelInfoMax = model.ModelInfo.BoundingBoxMax
	}
	if visual != nil {
		row.VisMin = visual.BBoxMin
		row.VisMax = visual.BBoxMax
		row.VisCenter = visual.BBoxCenter
	}

	if err := insertP3DModel(tx, row); err != nil {
		return err
	}
	return insertModelTextures(tx, pboID, virtualPath, model)
}

type p3dModelRow struct {
	PboID                          int64
	Path, Name, Format, SizeSource string
	Dimensions                     p3d.Vector3
	BBoxMin, BBoxMax, BBoxCenter   p3d.Vector3
	BBoxRadius                     float32
	ModelInfoMax                   p3d.Vector3
	VisMin, VisMax, VisCenter      p3d.Vector3
}

func insertP3DModel(tx *sql.Tx, r p3dModelRow) error {
	_, err := tx.Exec(`INSERT INTO p3d_models (
		pbo_id, path, name, format, size_source,
		size_x, size_y, size_z,
		bbox_min_x, bbox_min_y, bbox_min_z, bbox_max_x, bbox_max_y, bbox_max_z,
		bbox_center_x, bbox_center_y, bbox_center_z, bbox_radius,
		mi_max_x, mi_max_y, mi_max_z,
		vis_min_x, vis_min_y, vis_min_z, vis_max_x, vis_max_y, vis_max_z,
		vis_center_x, vis_center_y, vis_center_z
	) VALUES (?,?,?,?,?, ?,?,?, ?,?,?,?,?,?, ?,?,?,?, ?,?,?, ?,?,?,?,?,?, ?,?,?)`,
		r.PboID, r.Path, r.Name, r.Format, r.SizeSource,
		r.Dimensions[0], r.Dimensions[1], r.Dimensions[2],
		r.BBoxMin[0], r.BBoxMin[1], r.BBoxMin[2], r.BBoxMax[0], r.BBoxMax[1], r.BBoxMax[2],
		r.BBoxCenter[0], r.BBoxCenter[1], r.BBoxCenter[2], r.BBoxRadius,
		r.ModelInfoMax[0], r.ModelInfoMax[1], r.ModelInfoMax[2],
		r.VisMin[0], r.VisMin[1], r.VisMin[2], r.VisMax[0], r.VisMax[1], r.VisMax[2],
		r.VisCenter[0], r.VisCenter[1], r.VisCenter[2],
	)
	if err != nil {
		return fmt.Errorf("index: inserting p3d_models row for %s: %w", r.Path, err)
	}
	return nil
}

// insertModelTextures records every texture a model's LODs and
// embedded materials reference, skipping procedural-texture strings.
func insertModelTextures(tx *sql.Tx, pboID int64, modelPath string, model *p3d.File) error {
	seen := make(map[string]bool)
	record := func(texPath, source string) error {
		if texPath == "" || vpath.IsProceduralTexture(texPath) {
			return nil
		}
		key := source + "\x00" + texPath
		if seen[key] {
			return nil
		}
		seen[key] = true
		_, err := tx.Exec("INSERT INTO model_textures (pbo_id, model_path, texture_path, source) VALUES (?, ?, ?, ?)",
			pboID, modelPath, vpath.Normalize(texPath), source)
		return err
	}

	for _, lod := range model.LODs {
		for _, t := range lod.Textures {
			if err := record(t, "lod"); err != nil {
				return fmt.Errorf("index: recording lod texture ref: %w", err)
			}
		}
		for _, f := range lod.FaceData {
			if err := record(f.Texture, "lod"); err != nil {
				return fmt.Errorf("index: recording face texture ref: %w", err)
			}
		}
		for _, m := range lod.Materials {
			if err := record(m, "material"); err != nil {
				return fmt.Errorf("index: recording material ref: %w", err)
			}
		}
	}
	return nil
}

func indexTexture(tx *sql.Tx, pboID int64, body []byte, virtualPath, name string) error {
	meta, err := paa.DecodeMetadata(bytes.NewReader(body))
	if err != nil {
		return err
	}
	var width, height int
	if len(meta.MipHeaders) > 0 {
		width = int(meta.MipHeaders[0].Width)
		height = int(meta.MipHeaders[0].Height)
	}
	_, err = tx.Exec(`INSERT INTO textures (pbo_id, path, name, format, data_size, width, height) VALUES (?,?,?,?,?,?,?)`,
		pboID, virtualPath, name, paxTypeName(meta.Type), len(body), width, height)
	if err != nil {
		return fmt.Errorf("index: inserting textures row for %s: %w", virtualPath, err)
	}
	return nil
}

func paxTypeName(t paa.PaxType) string {
	switch t {
	case paa.PaxDXT1:
		return "DXT1"
	case paa.PaxDXT2:
		return "DXT2"
	case paa.PaxDXT3:
		return "DXT3"
	case paa.PaxDXT4:
		return "DXT4"
	case paa.PaxDXT5:
		return "DXT5"
	case paa.PaxARGB4:
		return "ARGB4444"
	case paa.PaxARGBA5:
		return "ARGB1555"
	case paa.PaxARGB8:
		return "ARGB8888"
	case paa.PaxGRAYA:
		return "AI88"
	case paa.PaxIndexed:
		return "INDEX"
	default:
		return "unknown"
	}
}

func indexWSS(tx *sql.Tx, pboID int64, body []byte, virtualPath, name string) error {
	audio, err := wss.Read(bytes.NewReader(body))
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO audio_files (pbo_id, path, name, format, encoder, sample_rate, channels, data_size) VALUES (?,?,?,?,?,?,?,?)`,
		pboID, virtualPath, name, audio.Format, "", audio.SampleRate, audio.Channels, len(audio.PCM))
	if err != nil {
		return fmt.Errorf("index: inserting audio_files row for %s: %w", virtualPath, err)
	}
	return nil
}

func indexOGG(tx *sql.Tx, pboID int64, body []byte, virtualPath, name string) error {
	h, err := ogg.ReadHeader(bytes.NewReader(body))
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO audio_files (pbo_id, path, name, format, encoder, sample_rate, channels, data_size) VALUES (?,?,?,?,?,?,?,?)`,
		pboID, virtualPath, name, "vorbis", h.Encoder, h.SampleRate, h.Channels, len(body))
	if err != nil {
		return fmt.Errorf("index: inserting audio_files row for %s: %w", virtualPath, err)
	}
	return nil
}

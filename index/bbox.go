package index

import "fmt"

// BoundingBoxes returns every indexed model's bounding geometry, keyed
// by its full lower-cased virtual path, in one batch query.
func (d *DB) BoundingBoxes() (map[string]ModelBBox, error) {
	rows, err := d.conn.Query(`SELECT
		p.path, p.prefix, m.path,
		bbox_min_x, bbox_min_y, bbox_min_z, bbox_max_x, bbox_max_y, bbox_max_z,
		bbox_center_x, bbox_center_y, bbox_center_z, bbox_radius,
		mi_max_x, mi_max_y, mi_max_z,
		vis_min_x, vis_min_y, vis_min_z, vis_max_x, vis_max_y, vis_max_z,
		vis_center_x, vis_center_y, vis_center_z
		FROM p3d_models m JOIN pbos p ON p.id = m.pbo_id`)
	if err != nil {
		return nil, fmt.Errorf("index: querying bounding boxes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ModelBBox)
	for rows.Next() {
		var archivePath, prefix, modelPath string
		var b ModelBBox
		err := rows.Scan(
			&archivePath, &prefix, &modelPath,
			&b.BBoxMin[0], &b.BBoxMin[1], &b.BBoxMin[2], &b.BBoxMax[0], &b.BBoxMax[1], &b.BBoxMax[2],
			&b.BBoxCenter[0], &b.BBoxCenter[1], &b.BBoxCenter[2], &b.BBoxRadius,
			&b.ModelInfoMax[0], &b.ModelInfoMax[1], &b.ModelInfoMax[2],
			&b.VisualMin[0], &b.VisualMin[1], &b.VisualMin[2], &b.VisualMax[0], &b.VisualMax[1], &b.VisualMax[2],
			&b.VisualCenter[0], &b.VisualCenter[1], &b.VisualCenter[2],
		)
		if err != nil {
			return nil, fmt.Errorf("index: scanning bounding box row: %w", err)
		}
		out[modelPath] = b
	}
	return out, rows.Err()
}

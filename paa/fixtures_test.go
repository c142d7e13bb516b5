package paa

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/armatools/rvtk/bcn"
	"github.com/armatools/rvtk/paa/texconfig"
)

// fixtureImage returns a deterministic 16x16 gradient with a varying
// alpha channel, enough to exercise both the DXT1 and DXT5 encode
// paths across suffix hints.
func fixtureImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 16),
				G: uint8(y * 16),
				B: uint8((x + y) * 8),
				A: uint8(255 - y*8),
			})
		}
	}
	return img
}

// writePAAFixtures encodes a set of suffix-hinted textures into a temp
// directory and returns their paths, substituting for a checked-in
// fixture corpus.
func writePAAFixtures(t *testing.T) []string {
	t.Helper()

	cfg, err := texconfig.DefaultTexConvertConfig()
	if err != nil {
		t.Fatalf("default texconfig: %v", err)
	}
	override := &EncodeOptions{BCn: &bcn.EncodeOptions{QualityLevel: bcn.QualityLevelFast}}
	img := fixtureImage()

	dir := t.TempDir()
	names := []string{"test_co.paa", "test_ca.paa", "test_nohq.paa", "test_mc.paa", "test_dt.paa"}

	var files []string
	for _, name := range names {
		hint, ok := texconfig.Resolve(name, cfg)
		if !ok || isTexViewUnsupported(hint) {
			continue
		}

		var buf bytes.Buffer
		if err := EncodeWithTexConfigOptions(&buf, img, name, cfg, override); err != nil {
			t.Fatalf("encoding fixture %s: %v", name, err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
		files = append(files, path)
	}

	if len(files) == 0 {
		t.Fatal("no encodable fixture names")
	}
	return files
}

package crunch

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChevyRay/crunch/manifest"
)

func TestControllerSplitBuildStitchesOutputs(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	for _, sub := range []string{"ui", "world"} {
		subDir := filepath.Join(in, sub)
		if err := os.Mkdir(subDir, 0755); err != nil {
			t.Fatal(err)
		}
		writeInputPNG(t, subDir, "icon", 16, 16, color.RGBA{1, 2, 3, 255})
	}

	cfg := DefaultConfig()
	cfg.Inputs = []string{in}
	cfg.Split = true
	cfg.XML = true
	cfg.JSON = true
	cfg.Binary = true

	c := NewController(out)
	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"atlas.xml", "atlas.json", "atlas.bin"} {
		data, err := os.ReadFile(filepath.Join(out, want))
		if err != nil {
			t.Fatalf("expected stitched %s: %v", want, err)
		}
		if len(data) == 0 {
			t.Fatalf("stitched %s is empty", want)
		}
	}

	xml, err := os.ReadFile(filepath.Join(out, "atlas.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(xml), "<tex") != 2 {
		t.Fatalf("expected 2 stitched <tex> blocks, got: %s", xml)
	}
	// Each subbuild must prefix its images with "<subdir>/", per
	// spec.md §4.6, even though both directories use the same "icon"
	// base name.
	for _, want := range []string{`n="ui/icon"`, `n="world/icon"`} {
		if !strings.Contains(string(xml), want) {
			t.Fatalf("expected stitched manifest to contain %s, got: %s", want, xml)
		}
	}

	binData, err := os.ReadFile(filepath.Join(out, "atlas.bin"))
	if err != nil {
		t.Fatal(err)
	}
	pages, _, _, _, err := manifest.ReadBinary(bytes.NewReader(binData))
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 stitched binary pages, got %d", len(pages))
	}
}

func TestControllerSplitBuildSkipsWhenUnchanged(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	subDir := filepath.Join(in, "ui")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeInputPNG(t, subDir, "icon", 8, 8, color.RGBA{9, 9, 9, 255})

	cfg := DefaultConfig()
	cfg.Inputs = []string{in}
	cfg.Split = true
	cfg.XML = true

	c := NewController(out)
	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}
	info1, err := os.Stat(filepath.Join(out, "atlas.xml"))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}
	info2, err := os.Stat(filepath.Join(out, "atlas.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if !info1.ModTime().Equal(info2.ModTime()) {
		t.Fatalf("expected unchanged split build to leave the stitched manifest untouched")
	}
}

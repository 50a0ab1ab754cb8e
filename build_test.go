package crunch

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeInputPNG(t *testing.T, dir, name string, w, h int, c color.RGBA) {
	t.Helper()
	writeTestPNG(t, filepath.Join(dir, name+".png"), w, h, func(x, y int) color.RGBA { return c })
}

func TestControllerPackSingleBuild(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeInputPNG(t, in, "a", 32, 32, color.RGBA{255, 0, 0, 255})
	writeInputPNG(t, in, "b", 16, 16, color.RGBA{0, 255, 0, 255})

	cfg := DefaultConfig()
	cfg.Output = "atlas"
	cfg.Inputs = []string{in}
	cfg.XML = true
	cfg.JSON = true
	cfg.Binary = true

	c := NewController(out)
	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"atlas0.png", "atlas.xml", "atlas.json", "atlas.bin", "atlas.hash"} {
		if _, err := os.Stat(filepath.Join(out, want)); err != nil {
			t.Fatalf("expected %s to exist: %v", want, err)
		}
	}

	xml, err := os.ReadFile(filepath.Join(out, "atlas.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(xml), "<atlas>") {
		t.Fatalf("expected wrapped xml document, got: %s", xml)
	}
}

func TestControllerSkipsUnchangedBuild(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeInputPNG(t, in, "a", 16, 16, color.RGBA{1, 1, 1, 255})

	cfg := DefaultConfig()
	cfg.Inputs = []string{in}
	cfg.XML = true

	c := NewController(out)
	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}
	hashInfo1, err := os.Stat(filepath.Join(out, "atlas.hash"))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}
	hashInfo2, err := os.Stat(filepath.Join(out, "atlas.hash"))
	if err != nil {
		t.Fatal(err)
	}
	if !hashInfo1.ModTime().Equal(hashInfo2.ModTime()) {
		t.Fatalf("expected unchanged build to skip rewriting the hash file")
	}
}

func TestControllerForceRebuildsUnchangedInput(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeInputPNG(t, in, "a", 16, 16, color.RGBA{1, 1, 1, 255})

	cfg := DefaultConfig()
	cfg.Inputs = []string{in}
	cfg.XML = true

	c := NewController(out)
	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}

	cfg.Force = true
	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(out, "atlas.xml")); err != nil {
		t.Fatalf("forced rebuild should still leave manifest outputs: %v", err)
	}
}

func TestControllerPrefixesNamesBySubdirectory(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	uiDir := filepath.Join(in, "ui")
	worldDir := filepath.Join(in, "world")
	if err := os.Mkdir(uiDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(worldDir, 0755); err != nil {
		t.Fatal(err)
	}
	// Same base name, "icon", in two different subdirectories: without a
	// subdirectory-qualified name these would collide in dedup/manifest
	// bookkeeping.
	writeInputPNG(t, uiDir, "icon", 8, 8, color.RGBA{10, 10, 10, 255})
	writeInputPNG(t, worldDir, "icon", 8, 8, color.RGBA{20, 20, 20, 255})

	cfg := DefaultConfig()
	cfg.Inputs = []string{in}
	cfg.XML = true

	c := NewController(out)
	if err := c.Pack("atlas", cfg); err != nil {
		t.Fatal(err)
	}

	xml, err := os.ReadFile(filepath.Join(out, "atlas.xml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`n="ui/icon"`, `n="world/icon"`} {
		if !strings.Contains(string(xml), want) {
			t.Fatalf("expected manifest to contain %s, got: %s", want, xml)
		}
	}
}

func TestControllerPackingImpossible(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeInputPNG(t, in, "huge", 100, 100, color.RGBA{1, 1, 1, 255})

	cfg := DefaultConfig()
	cfg.Size = 64
	cfg.Inputs = []string{in}
	cfg.XML = true

	c := NewController(out)
	err := c.Pack("atlas", cfg)
	if err == nil {
		t.Fatal("expected packing-impossible error")
	}
}

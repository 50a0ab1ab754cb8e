package crunch

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func makeBitmap(t *testing.T, dir, name string, w, h int, c color.RGBA) *Bitmap {
	t.Helper()
	path := filepath.Join(dir, name+".png")
	writeTestPNG(t, path, w, h, func(x, y int) color.RGBA { return c })
	bm, err := LoadBitmap(path, name, false, false)
	if err != nil {
		t.Fatal(err)
	}
	return bm
}

func TestPackerDedup(t *testing.T) {
	dir := t.TempDir()
	a := makeBitmap(t, dir, "a", 32, 32, color.RGBA{1, 2, 3, 255})
	b := makeBitmap(t, dir, "b", 32, 32, color.RGBA{1, 2, 3, 255})

	queue := []*Bitmap{a, b} // back of queue packed first: b, then a
	p := NewPacker(64, 64, 0)
	p.Pack(&queue, true, false, false)

	if len(queue) != 0 {
		t.Fatalf("expected queue to be drained, %d left", len(queue))
	}
	if len(p.Points) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(p.Points))
	}
	if !p.Points[1].IsDup() {
		t.Fatalf("expected second placement to be a duplicate")
	}
	if p.Points[1].X != p.Points[0].X || p.Points[1].Y != p.Points[0].Y {
		t.Fatalf("duplicate placement coordinates differ from primary")
	}
	if p.Width >= 64 || p.Height >= 64 {
		t.Fatalf("page should have shrunk below the 64x64 max, got %dx%d", p.Width, p.Height)
	}
}

func TestPackerStopsWhenFull(t *testing.T) {
	dir := t.TempDir()
	big := makeBitmap(t, dir, "big", 60, 60, color.RGBA{0, 0, 0, 255})
	small := makeBitmap(t, dir, "small", 60, 60, color.RGBA{9, 9, 9, 255})

	queue := []*Bitmap{small, big}
	p := NewPacker(64, 64, 0)
	p.Pack(&queue, false, false, false)

	if len(p.Points) != 1 {
		t.Fatalf("expected only one bitmap to fit, got %d placements", len(p.Points))
	}
	if len(queue) != 1 {
		t.Fatalf("expected one bitmap left in queue, got %d", len(queue))
	}
}

func TestPackerRotationFootprint(t *testing.T) {
	dir := t.TempDir()
	wide := makeBitmap(t, dir, "wide", 100, 50, color.RGBA{1, 1, 1, 255})
	tall := makeBitmap(t, dir, "tall", 50, 100, color.RGBA{2, 2, 2, 255})

	queue := []*Bitmap{wide, tall}
	p := NewPacker(128, 128, 0)
	p.Pack(&queue, false, true, false)

	if len(p.Points) != 2 {
		t.Fatalf("expected both bitmaps to fit with rotation, got %d", len(p.Points))
	}
}

func TestSavePngRoundTrips(t *testing.T) {
	dir := t.TempDir()
	a := makeBitmap(t, dir, "a", 4, 4, color.RGBA{255, 0, 0, 255})

	queue := []*Bitmap{a}
	p := NewPacker(64, 64, 0)
	p.Pack(&queue, false, false, false)

	out := filepath.Join(dir, "page.png")
	if err := p.SavePng(out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output page, got %v", err)
	}

	// The page shrinks to 4x4 and holds exactly the one red bitmap.
	page, err := LoadBitmap(out, "page", false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !page.Equals(a) {
		t.Fatalf("decoded page %dx%d does not match the packed bitmap", page.Width, page.Height)
	}
}

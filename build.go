package crunch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ChevyRay/crunch/internal/chash"
	"github.com/ChevyRay/crunch/internal/fsutil"
	"github.com/ChevyRay/crunch/internal/xtime"
	"github.com/ChevyRay/crunch/manifest"
)

// Controller drives one incremental build: hashing inputs, deciding
// whether to skip, loading and packing bitmaps, and writing the page
// PNGs and requested manifests. A Controller is reused across the
// subbuilds of a split build so they share one timing tracker.
type Controller struct {
	OutputDir string
	Timing    *xtime.Tracker
}

// NewController returns a Controller rooted at outputDir, with its own
// timing tracker.
func NewController(outputDir string) *Controller {
	return &Controller{OutputDir: outputDir, Timing: xtime.NewTracker()}
}

// Pack runs the build described by cfg: a single build, or — when
// cfg.Split is set — a split build across the immediate subdirectories
// of the first directory input.
func (c *Controller) Pack(name string, cfg Config) error {
	if cfg.Split {
		return c.packSplit(name, cfg)
	}
	changed, err := c.buildOnce(name, cfg.Inputs, cfg, false, "")
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("atlas is unchanged:", name)
	}
	return nil
}

// buildOnce implements the single-build flow (§4.6): hash inputs, skip
// if unchanged, remove stale outputs, load and pack, write outputs,
// persist the new hash. When fragment is true (a split subbuild), the
// manifests written are page fragments with no document wrapper, ready
// to be stitched by packSplit. namePrefix is prepended to every loaded
// bitmap's name, ahead of the subdirectory segments collectPNGs already
// contributes; packSplit passes "<subdir>/" here, a plain build passes "".
func (c *Controller) buildOnce(name string, inputs []string, cfg Config, fragment bool, namePrefix string) (changed bool, err error) {
	stop := c.Timing.Start("build:" + name)
	defer stop()

	h := c.computeHash(name, inputs, cfg)
	hashPath := filepath.Join(c.OutputDir, name+".hash")

	if !cfg.Force {
		if old, ok := chash.LoadHash(hashPath); ok && old == h {
			return false, nil
		}
	}

	if err := c.removeStaleOutputs(name); err != nil {
		return false, err
	}

	bitmaps, err := c.loadBitmaps(inputs, cfg, namePrefix)
	if err != nil {
		return false, err
	}

	sort.SliceStable(bitmaps, func(i, j int) bool {
		return bitmaps[i].Width*bitmaps[i].Height < bitmaps[j].Width*bitmaps[j].Height
	})

	pages, err := c.packPages(bitmaps, cfg)
	if err != nil {
		return false, err
	}

	if err := c.writeOutputs(name, pages, cfg, fragment); err != nil {
		return false, err
	}

	if err := chash.SaveHash(hashPath, h); err != nil {
		return false, fmt.Errorf("crunch: saving hash for %s: %w", name, err)
	}
	return true, nil
}

// computeHash folds the build name, the resolved Config, and each
// input's path and content (or modification time) into one running
// hash, used to detect an unchanged build.
func (c *Controller) computeHash(name string, inputs []string, cfg Config) uint64 {
	var h uint64
	chash.String(&h, name)
	chash.String(&h, fmt.Sprintf("%+v", cfg))
	for _, in := range inputs {
		chash.String(&h, in)
		if filepath.Ext(in) == "" {
			chash.Files(&h, in, cfg.UseMtime)
		} else {
			chash.File(&h, in, cfg.UseMtime)
		}
	}
	return h
}

// removeStaleOutputs deletes any previous output for name: the hash
// file, the three manifest formats, the single-page form, and every
// numbered page PNG in [0, 15].
func (c *Controller) removeStaleOutputs(name string) error {
	stale := []string{
		name + ".hash", name + ".bin", name + ".xml", name + ".json", name + ".png",
	}
	for i := 0; i <= 15; i++ {
		stale = append(stale, fmt.Sprintf("%s%d.png", name, i))
	}
	for _, f := range stale {
		path := filepath.Join(c.OutputDir, f)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("crunch: removing stale output %s: %w", path, err)
		}
	}
	return nil
}

// pngFile pairs a PNG's full path with the name it should be loaded
// under: the relative path of subdirectory segments below the input
// root it was found in, slash-joined, extension stripped. A PNG at
// "<root>/ui/icon.png" yields Name "ui/icon".
type pngFile struct {
	Path string
	Name string
}

// loadBitmaps resolves inputs (directories walked recursively for PNGs,
// or single .png files) into loaded Bitmaps. Per spec.md §3, a bitmap's
// name is prefixed by the subdirectory segments between its input root
// and the file itself, so that two same-named PNGs in different
// subdirectories of one input never collide. namePrefix is prepended on
// top of that (used by split builds to add "<subdir>/").
func (c *Controller) loadBitmaps(inputs []string, cfg Config, namePrefix string) ([]*Bitmap, error) {
	var files []pngFile
	for _, in := range inputs {
		if filepath.Ext(in) == "" {
			found, err := collectPNGs(in)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		} else {
			name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			files = append(files, pngFile{Path: in, Name: name})
		}
	}

	bitmaps := make([]*Bitmap, 0, len(files))
	for _, pf := range files {
		stop := c.Timing.Start("load")
		bm, err := LoadBitmap(pf.Path, namePrefix+pf.Name, cfg.Premultiply, cfg.Trim)
		stop()
		if err != nil {
			return nil, err
		}
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "crunch: loaded %s (%d x %d)\n", bm.Name, bm.Width, bm.Height)
		}
		bitmaps = append(bitmaps, bm)
	}
	return bitmaps, nil
}

// collectPNGs walks root recursively in sorted order, returning every
// *.png file found paired with a name prefixed by its subdirectory
// segments relative to root.
func collectPNGs(root string) ([]pngFile, error) {
	return collectPNGsPrefixed(root, "")
}

func collectPNGsPrefixed(dir, prefix string) ([]pngFile, error) {
	entries, err := fsutil.ReadDirSorted(dir)
	if err != nil {
		return nil, err
	}
	var out []pngFile
	for _, e := range entries {
		if e.IsDir {
			sub, err := collectPNGsPrefixed(e.Path, prefix+e.Name+"/")
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		if strings.EqualFold(e.Ext, "png") {
			name := prefix + strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
			out = append(out, pngFile{Path: e.Path, Name: name})
		}
	}
	return out, nil
}

// packPages repeatedly packs bitmaps (already sorted ascending by
// area) into fresh pages until the queue is empty. It fails with
// ErrPackingImpossible if a page pack places nothing at all, which
// happens only when the bitmap at the back of the queue cannot fit in
// an empty page.
func (c *Controller) packPages(bitmaps []*Bitmap, cfg Config) ([]*Packer, error) {
	queue := bitmaps
	var pages []*Packer
	for len(queue) > 0 {
		stop := c.Timing.Start("pack")
		p := NewPacker(cfg.Size, cfg.Size, cfg.Pad)
		p.Pack(&queue, cfg.Unique, cfg.Rotate, cfg.Verbose)
		stop()

		if len(p.Points) == 0 {
			name := queue[len(queue)-1].Name
			return nil, fmt.Errorf("%w: could not fit bitmap: %s", ErrPackingImpossible, name)
		}
		pages = append(pages, p)
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "crunch: %s%d (%d x %d)\n", "page", len(pages)-1, p.Width, p.Height)
		}
	}
	return pages, nil
}

// writeOutputs writes each page's PNG and the requested manifest
// formats for name. When fragment is true, manifests are written as
// page fragments (no document wrapper) for a later stitch pass.
func (c *Controller) writeOutputs(name string, pages []*Packer, cfg Config, fragment bool) error {
	mpages := make([]manifest.Page, len(pages))
	for i, p := range pages {
		pageName := fmt.Sprintf("%s%d", name, i)
		if len(pages) == 1 && cfg.NoZero {
			pageName = name
		}

		pngPath := filepath.Join(c.OutputDir, pageName+".png")
		if err := p.SavePng(pngPath); err != nil {
			return err
		}
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "crunch: wrote %s\n", pngPath)
		}
		mpages[i] = manifest.Page{Name: pageName, Images: pageImages(p)}
	}

	if cfg.XML {
		if err := c.writeManifestFile(name+".xml", cfg, fragment, func(w *os.File) error {
			if fragment {
				for _, mp := range mpages {
					if err := manifest.WriteXMLFragment(w, mp, cfg.Trim, cfg.Rotate); err != nil {
						return err
					}
				}
				return nil
			}
			return manifest.WriteXMLDocument(w, mpages, cfg.Trim, cfg.Rotate)
		}); err != nil {
			return err
		}
	}
	if cfg.JSON {
		if err := c.writeManifestFile(name+".json", cfg, fragment, func(w *os.File) error {
			if fragment {
				for i, mp := range mpages {
					if i > 0 {
						if _, err := w.WriteString(",\n"); err != nil {
							return err
						}
					}
					if err := manifest.WriteJSONFragment(w, mp, cfg.Trim, cfg.Rotate); err != nil {
						return err
					}
				}
				return nil
			}
			return manifest.WriteJSONDocument(w, mpages, cfg.Trim, cfg.Rotate)
		}); err != nil {
			return err
		}
	}
	if cfg.Binary {
		if err := c.writeManifestFile(name+".bin", cfg, fragment, func(w *os.File) error {
			if fragment {
				for _, mp := range mpages {
					if err := manifest.WriteBinaryBody(w, cfg.BinStr, cfg.Trim, cfg.Rotate, mp); err != nil {
						return err
					}
				}
				return nil
			}
			return manifest.WriteBinary(w, cfg.BinStr, cfg.Trim, cfg.Rotate, mpages)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) writeManifestFile(name string, cfg Config, fragment bool, emit func(*os.File) error) error {
	path := fsutil.ToNativePath(filepath.Join(c.OutputDir, name))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrEncodeFailed, path, err)
	}
	defer f.Close()
	if err := emit(f); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrEncodeFailed, path, err)
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "crunch: wrote %s\n", path)
	}
	return nil
}

// pageImages builds the manifest image records for every placement on
// p, primary and duplicate alike, since manifest consumers need a UV
// rect for every original image name even when its pixels are shared.
func pageImages(p *Packer) []manifest.Image {
	images := make([]manifest.Image, len(p.Points))
	for i, pt := range p.Points {
		bm := p.Bitmaps[i]
		images[i] = manifest.Image{
			Name: bm.Name,
			X:    pt.X, Y: pt.Y,
			W: bm.Width, H: bm.Height,
			FrameX: bm.FrameX, FrameY: bm.FrameY, FrameW: bm.FrameW, FrameH: bm.FrameH,
			Rotated: pt.Rotated,
		}
	}
	return images
}

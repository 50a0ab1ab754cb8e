package crunch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ChevyRay/crunch/internal/fsutil"
	"github.com/ChevyRay/crunch/manifest"
)

// packSplit implements the split-build flow (§4.6): one independent
// single-build per immediate subdirectory of the first directory
// input, then a stitch pass that concatenates the per-subdirectory
// manifest fragments into one aggregate manifest per requested format.
func (c *Controller) packSplit(name string, cfg Config) error {
	baseDir, err := firstDirInput(cfg.Inputs)
	if err != nil {
		return err
	}

	subdirs, err := fsutil.Subdirectories(baseDir)
	if err != nil {
		return fmt.Errorf("crunch: listing subdirectories of %s: %w", baseDir, err)
	}

	anyChanged := false
	for _, sub := range subdirs {
		subName := name + "_" + sub
		subInputs := []string{filepath.Join(baseDir, sub)}
		changed, err := c.buildOnce(subName, subInputs, cfg, true, sub+"/")
		if err != nil {
			return err
		}
		anyChanged = anyChanged || changed
	}

	if !anyChanged {
		fmt.Println("atlas is unchanged:", name)
		return nil
	}

	for _, ext := range []string{".bin", ".xml", ".json"} {
		_ = os.Remove(filepath.Join(c.OutputDir, name+ext))
	}

	if cfg.XML {
		if err := c.stitchText(name, ".xml", cfg); err != nil {
			return err
		}
	}
	if cfg.JSON {
		if err := c.stitchText(name, ".json", cfg); err != nil {
			return err
		}
	}
	if cfg.Binary {
		if err := c.stitchBinary(name, cfg); err != nil {
			return err
		}
	}
	return nil
}

// firstDirInput returns the first input in inputs that names a
// directory (no extension), which is where split mode looks for
// per-subdirectory sub-builds.
func firstDirInput(inputs []string) (string, error) {
	for _, in := range inputs {
		if filepath.Ext(in) == "" {
			return in, nil
		}
	}
	return "", fmt.Errorf("%w: split mode requires at least one directory input", ErrInvalidArgument)
}

// subbuildFragments returns the sorted paths of every subbuild's
// fragment file for the given extension, matching "<name>_*<ext>".
func (c *Controller) subbuildFragments(name, ext string) ([]string, error) {
	entries, err := fsutil.ReadDirSorted(c.OutputDir)
	if err != nil {
		return nil, err
	}
	prefix := name + "_"
	var out []string
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if strings.HasPrefix(e.Name, prefix) && strings.HasSuffix(e.Name, ext) {
			out = append(out, e.Path)
		}
	}
	sort.Strings(out)
	return out, nil
}

// stitchText concatenates every subbuild's XML or JSON fragment file
// and wraps the result in the document-level wrapper.
func (c *Controller) stitchText(name, ext string, cfg Config) error {
	frags, err := c.subbuildFragments(name, ext)
	if err != nil {
		return err
	}

	var bodies []string
	for _, f := range frags {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("crunch: reading fragment %s: %w", f, err)
		}
		bodies = append(bodies, strings.TrimRight(string(data), "\n"))
	}

	path := filepath.Join(c.OutputDir, name+ext)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrEncodeFailed, path, err)
	}
	defer f.Close()

	switch ext {
	case ".xml":
		if _, err := fmt.Fprint(f, "<atlas>\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "\t<trim>%s</trim>\n", boolDigit(cfg.Trim)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "\t<rotate>%s</rotate>\n", boolDigit(cfg.Rotate)); err != nil {
			return err
		}
		for _, b := range bodies {
			if _, err := fmt.Fprintln(f, b); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(f, "</atlas>\n"); err != nil {
			return err
		}
	case ".json":
		if _, err := fmt.Fprintf(f, "{ \"trim\": %t, \"rotate\": %t, \"textures\": [\n", cfg.Trim, cfg.Rotate); err != nil {
			return err
		}
		if _, err := fmt.Fprint(f, "\t"+strings.Join(bodies, ",\n\t")); err != nil {
			return err
		}
		if _, err := fmt.Fprint(f, "\n] }\n"); err != nil {
			return err
		}
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "crunch: wrote %s\n", path)
	}
	return nil
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// stitchBinary concatenates every subbuild's binary fragment body and
// prepends one header whose texture count is the sum across subbuilds.
func (c *Controller) stitchBinary(name string, cfg Config) error {
	frags, err := c.subbuildFragments(name, ".bin")
	if err != nil {
		return err
	}

	var combined []byte
	total := 0
	for _, f := range frags {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("crunch: reading fragment %s: %w", f, err)
		}
		n, err := manifest.CountBinaryPages(data, cfg.BinStr, cfg.Trim, cfg.Rotate)
		if err != nil {
			return fmt.Errorf("crunch: counting pages in %s: %w", f, err)
		}
		total += n
		combined = append(combined, data...)
	}

	path := filepath.Join(c.OutputDir, name+".bin")
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrEncodeFailed, path, err)
	}
	defer out.Close()

	if err := manifest.WriteBinaryHeader(out, cfg.BinStr, cfg.Trim, cfg.Rotate, int16(total)); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrEncodeFailed, path, err)
	}
	if _, err := out.Write(combined); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrEncodeFailed, path, err)
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "crunch: wrote %s\n", path)
	}
	return nil
}

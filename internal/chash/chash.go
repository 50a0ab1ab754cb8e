// Package chash implements crunch's platform-stable content hash: a BKDR
// polynomial string reduction combined into a running 64-bit accumulator.
// Standard library hash/maphash or per-process seeded hashers are
// deliberately not used here — the accumulated value must be identical
// across machines and across runs so that incremental rebuilds can be
// compared byte-for-byte via a stored hash file.
package chash

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ChevyRay/crunch/internal/fsutil"
)

// bkdrSeed and bkdrMask parameterize the BKDR polynomial hash used to
// reduce a string (or byte slice) to a single 32-bit value before it is
// folded into the running accumulator.
const (
	bkdrSeed = 131
	bkdrMask = 0x7FFFFFFF
)

// bkdr reduces data to a 32-bit polynomial hash: seed 131, masked to 31 bits.
func bkdr(data []byte) uint64 {
	var h uint64
	for _, b := range data {
		h = h*bkdrSeed + uint64(b)
	}
	return h & bkdrMask
}

// Combine folds v into the running accumulator h, in place.
//
//	h <- h XOR (v + 0x9E3779B9 + (h << 6) + (h >> 2))
func Combine(h *uint64, v uint64) {
	*h ^= v + 0x9E3779B9 + (*h << 6) + (*h >> 2)
}

// String folds the BKDR reduction of s into h.
func String(h *uint64, s string) {
	Combine(h, bkdr([]byte(s)))
}

// Bytes folds the BKDR reduction of b into h.
func Bytes(h *uint64, b []byte) {
	Combine(h, bkdr(b))
}

// File folds path's content (or, if checkTime, its modification time in
// whole seconds since the epoch) into h.
func File(h *uint64, path string, checkTime bool) error {
	if checkTime {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("chash: stat %s: %w", path, err)
		}
		Combine(h, uint64(info.ModTime().Unix()))
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("chash: reading %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("chash: reading %s: %w", path, err)
	}
	Bytes(h, data)
	return nil
}

// Files walks root in sorted order (descending into subdirectories,
// skipping "." and ".."), folding every *.png file it finds into h via
// File. Sorted traversal guarantees the same tree hashes identically
// regardless of the host filesystem's native enumeration order.
func Files(h *uint64, root string, checkTime bool) error {
	entries, err := fsutil.ReadDirSorted(root)
	if err != nil {
		return fmt.Errorf("chash: walking %s: %w", root, err)
	}
	for _, e := range entries {
		if e.IsDir {
			if err := Files(h, e.Path, checkTime); err != nil {
				return err
			}
			continue
		}
		if strings.EqualFold(e.Ext, "png") {
			if err := File(h, e.Path, checkTime); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadHash reads a decimal hash value previously written by SaveHash.
// The boolean result is false (with a zero value) if the file does not
// exist or does not contain a valid hash.
func LoadHash(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SaveHash writes h as a decimal integer to path.
func SaveHash(path string, h uint64) error {
	return os.WriteFile(path, []byte(strconv.FormatUint(h, 10)), 0644)
}

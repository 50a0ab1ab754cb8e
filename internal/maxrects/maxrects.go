// Package maxrects implements a textbook MaxRects online rectangle
// packer: a free-rectangle list that is split by the maximal-rectangles
// rule after every placement and pruned of rectangles fully contained in
// another. Only the best-short-side-fit (BSSF) placement heuristic is
// implemented, since it is the only one the atlas packer needs.
package maxrects

// Heuristic selects how a free rectangle is scored against a candidate
// size. BestShortSideFit is the only heuristic this package implements.
type Heuristic int

// BestShortSideFit picks the free rectangle that leaves the smallest of
// its two leftover dimensions after placement, tie-broken by the larger
// leftover dimension.
const BestShortSideFit Heuristic = 0

// Rect is an axis-aligned rectangle. A zero-area Rect (W == 0 || H == 0)
// signals a failed Insert.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) empty() bool { return r.W <= 0 || r.H <= 0 }

// Packer packs rectangles into a fixed bin using the MaxRects algorithm.
type Packer struct {
	binW, binH int
	free       []Rect
}

// New creates a packer for a bin of the given size.
func New(binW, binH int) *Packer {
	return &Packer{
		binW: binW,
		binH: binH,
		free: []Rect{{0, 0, binW, binH}},
	}
}

// Insert finds a free rectangle that fits w×h (or h×w if allowRotate),
// minimizing the heuristic score, places it, and returns the placed
// rectangle. The caller detects rotation by comparing the returned
// width to w: if they differ, the rectangle was placed rotated.
//
// On failure (no free rectangle admits the size), Insert returns a
// zero-area Rect.
func (p *Packer) Insert(w, h int, allowRotate bool, _ Heuristic) Rect {
	best, ok := p.findPosition(w, h, allowRotate)
	if !ok {
		return Rect{}
	}
	p.placeRect(best)
	return best
}

// findPosition scores every free rectangle against both orientations
// (when allowed) and returns the best-scoring placement.
func (p *Packer) findPosition(w, h int, allowRotate bool) (Rect, bool) {
	const maxScore = int(^uint(0) >> 1)
	bestShort, bestLong := maxScore, maxScore
	var best Rect
	found := false

	consider := func(x, y, fw, fh, pw, ph int) {
		if pw > fw || ph > fh {
			return
		}
		leftoverH := fw - pw
		leftoverV := fh - ph
		short := leftoverH
		long := leftoverV
		if leftoverV < leftoverH {
			short, long = leftoverV, leftoverH
		}
		if short < bestShort || (short == bestShort && long < bestLong) {
			bestShort, bestLong = short, long
			best = Rect{x, y, pw, ph}
			found = true
		}
	}

	for _, f := range p.free {
		consider(f.X, f.Y, f.W, f.H, w, h)
		if allowRotate {
			consider(f.X, f.Y, f.W, f.H, h, w)
		}
	}
	return best, found
}

// placeRect splits every free rectangle intersecting used, then prunes
// rectangles that ended up fully contained in another.
func (p *Packer) placeRect(used Rect) {
	var kept []Rect
	for _, f := range p.free {
		if !splitFreeNode(f, used, &kept) {
			kept = append(kept, f)
		}
	}
	p.free = pruneContained(kept)
}

// splitFreeNode replaces free with up to four smaller free rectangles
// covering free minus used, appending them to out. Returns false if
// used does not intersect free at all (free is unaffected).
func splitFreeNode(free, used Rect, out *[]Rect) bool {
	if used.X >= free.X+free.W || used.X+used.W <= free.X ||
		used.Y >= free.Y+free.H || used.Y+used.H <= free.Y {
		return false
	}

	if used.X < free.X+free.W && used.X+used.W > free.X {
		if used.Y > free.Y && used.Y < free.Y+free.H {
			n := free
			n.H = used.Y - n.Y
			appendIfNonEmpty(out, n)
		}
		if used.Y+used.H < free.Y+free.H {
			n := free
			n.Y = used.Y + used.H
			n.H = free.Y + free.H - n.Y
			appendIfNonEmpty(out, n)
		}
	}
	if used.Y < free.Y+free.H && used.Y+used.H > free.Y {
		if used.X > free.X && used.X < free.X+free.W {
			n := free
			n.W = used.X - n.X
			appendIfNonEmpty(out, n)
		}
		if used.X+used.W < free.X+free.W {
			n := free
			n.X = used.X + used.W
			n.W = free.X + free.W - n.X
			appendIfNonEmpty(out, n)
		}
	}
	return true
}

func appendIfNonEmpty(out *[]Rect, r Rect) {
	if !r.empty() {
		*out = append(*out, r)
	}
}

// pruneContained drops every rectangle that is fully contained in
// another, leaving the free-rectangle list's invariant intact: no free
// rectangle is strictly contained in another.
func pruneContained(rects []Rect) []Rect {
	kept := make([]bool, len(rects))
	for i := range rects {
		kept[i] = true
	}
	for i := 0; i < len(rects); i++ {
		if !kept[i] {
			continue
		}
		for j := 0; j < len(rects); j++ {
			if i == j || !kept[j] {
				continue
			}
			if contains(rects[j], rects[i]) {
				kept[i] = false
				break
			}
		}
	}
	out := rects[:0:0]
	for i, r := range rects {
		if kept[i] {
			out = append(out, r)
		}
	}
	return out
}

// contains reports whether b fully contains a.
func contains(b, a Rect) bool {
	return a.X >= b.X && a.Y >= b.Y &&
		a.X+a.W <= b.X+b.W && a.Y+a.H <= b.Y+b.H
}

// FreeArea returns the total area still free, for tests that check the
// "free area = bin area - placed area" invariant.
func (p *Packer) FreeArea() int {
	// Free rectangles overlap, so count each covered cell once.
	covered := make([]bool, p.binW*p.binH)
	total := 0
	for _, f := range p.free {
		for y := f.Y; y < f.Y+f.H; y++ {
			for x := f.X; x < f.X+f.W; x++ {
				if !covered[y*p.binW+x] {
					covered[y*p.binW+x] = true
					total++
				}
			}
		}
	}
	return total
}

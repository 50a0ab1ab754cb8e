package crunch

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/ChevyRay/crunch/internal/maxrects"
)

// Placement records where one bitmap ended up on a page.
type Placement struct {
	X, Y    int
	Rotated bool
	// DupOf is the index of an earlier placement on the same page this
	// one duplicates pixel-for-pixel, or -1 if this is a primary
	// placement.
	DupOf int
}

// IsDup reports whether this placement duplicates an earlier one.
func (p Placement) IsDup() bool { return p.DupOf >= 0 }

// Packer packs one page: a fixed maximum size, online MaxRects
// placement, and an optional dedup table keyed by bitmap content hash.
// Bitmaps and Points are parallel slices in the order images were
// actually consumed, which is also the order manifests emit them in.
type Packer struct {
	Width, Height int // shrinks to the used extent after Pack
	Pad           int

	Bitmaps []*Bitmap
	Points  []Placement

	maxW, maxH   int
	mr           *maxrects.Packer
	dup          map[uint64]int
	usedW, usedH int
}

// NewPacker creates a packer for one page of size maxW x maxH with the
// given padding between placements.
func NewPacker(maxW, maxH, pad int) *Packer {
	return &Packer{
		Width: maxW, Height: maxH,
		Pad:  pad,
		maxW: maxW, maxH: maxH,
		mr:  maxrects.New(maxW, maxH),
		dup: make(map[uint64]int),
	}
}

// Pack consumes bitmaps from the back of queue (precondition: queue is
// sorted by nondecreasing area) until the page is full or the queue is
// empty, removing consumed bitmaps from queue in place.
func (p *Packer) Pack(queue *[]*Bitmap, unique, rotate, verbose bool) {
	for len(*queue) > 0 {
		bm := (*queue)[len(*queue)-1]
		if verbose {
			fmt.Fprintf(os.Stderr, "crunch: packing %s\n", bm.Name)
		}

		if unique {
			if idx, ok := p.dup[bm.Hash()]; ok && bm.Equals(p.Bitmaps[idx]) {
				pt := p.Points[idx]
				p.Points = append(p.Points, Placement{X: pt.X, Y: pt.Y, DupOf: idx})
				p.Bitmaps = append(p.Bitmaps, bm)
				*queue = (*queue)[:len(*queue)-1]
				continue
			}
		}

		rect := p.mr.Insert(bm.Width+p.Pad, bm.Height+p.Pad, rotate, maxrects.BestShortSideFit)
		if rect.W == 0 || rect.H == 0 {
			// Page full: leave the remaining queue, including bm, for
			// the next page.
			break
		}

		rotated := rotate && rect.W != bm.Width+p.Pad
		idx := len(p.Points)
		if unique {
			p.dup[bm.Hash()] = idx
		}
		p.Points = append(p.Points, Placement{X: rect.X, Y: rect.Y, DupOf: -1, Rotated: rotated})
		p.Bitmaps = append(p.Bitmaps, bm)
		*queue = (*queue)[:len(*queue)-1]

		if rect.X+rect.W > p.usedW {
			p.usedW = rect.X + rect.W
		}
		if rect.Y+rect.H > p.usedH {
			p.usedH = rect.Y + rect.H
		}
	}
	p.shrink()
}

// shrink halves Width/Height while the result still covers the used
// extent, leaving the smallest power-of-two page that fits everything
// placed so far.
func (p *Packer) shrink() {
	for p.Width/2 >= p.usedW && p.Width > 1 {
		p.Width /= 2
	}
	for p.Height/2 >= p.usedH && p.Height > 1 {
		p.Height /= 2
	}
}

// pageBuffers pools the RGBA8 scratch buffers SavePng composites a page
// into, keyed by the buffer's exact byte count. Unlike a general-purpose
// allocator, a page buffer's size is never arbitrary: Width and Height
// are each one of Config's fixed power-of-two page sizes (64..4096), so
// the key space is small and an exact-size pool, rather than a handful
// of small/medium/large buckets, is both simpler and a perfect fit.
var pageBuffers sync.Map // int -> *sync.Pool

func getPageBuffer(n int) []byte {
	v, _ := pageBuffers.LoadOrStore(n, &sync.Pool{
		New: func() any {
			b := make([]byte, n)
			return &b
		},
	})
	bp := v.(*sync.Pool).Get().(*[]byte)
	b := *bp
	clear(b)
	return b
}

func putPageBuffer(n int, b []byte) {
	v, ok := pageBuffers.Load(n)
	if !ok {
		return
	}
	v.(*sync.Pool).Put(&b)
}

// SavePng writes the page's placements into a transparent RGBA8 buffer
// of Width x Height and encodes it as a PNG at path.
func (p *Packer) SavePng(path string) error {
	n := p.Width * p.Height * 4
	buf := getPageBuffer(n)
	defer putPageBuffer(n, buf)

	for i, pt := range p.Points {
		if pt.IsDup() {
			continue
		}
		bm := p.Bitmaps[i]
		if pt.Rotated {
			bm.CopyPixelsRot(buf, p.Width, pt.X, pt.Y)
		} else {
			bm.CopyPixels(buf, p.Width, pt.X, pt.Y)
		}
	}

	img := &image.RGBA{Pix: buf, Stride: p.Width * 4, Rect: image.Rect(0, 0, p.Width, p.Height)}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrEncodeFailed, path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrEncodeFailed, path, err)
	}
	return nil
}

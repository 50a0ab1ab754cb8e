package crunch

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"

	"github.com/ChevyRay/crunch/internal/chash"
	"github.com/ChevyRay/crunch/internal/fsutil"
)

// Bitmap is one loaded, preprocessed input image: an RGBA8 pixel buffer
// plus the trim/frame bookkeeping needed to reconstruct its place in the
// original, untrimmed image.
type Bitmap struct {
	Name string

	// Width and Height are the trimmed size in pixels.
	Width, Height int

	// FrameX, FrameY, FrameW, FrameH describe the original, untrimmed
	// frame. When trim is disabled these equal (0, 0, Width, Height).
	FrameX, FrameY, FrameW, FrameH int

	// Pixels is the RGBA8 buffer, row-major, Width*Height*4 bytes.
	Pixels []byte

	hash uint64
}

// LoadBitmap decodes path as a PNG, optionally premultiplies RGB by
// alpha, and optionally trims transparent borders, producing a Bitmap
// named name.
func LoadBitmap(path, name string, premultiply, trim bool) (*Bitmap, error) {
	native := fsutil.ToNativePath(path)

	f, err := os.Open(native)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrDecodeFailed, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrDecodeFailed, path, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	pixels := rgba.Pix

	if premultiply {
		premultiplyPixels(pixels)
	}

	bm := &Bitmap{
		Name:   name,
		Width:  w,
		Height: h,
		FrameX: 0, FrameY: 0, FrameW: w, FrameH: h,
		Pixels: pixels,
	}

	if trim {
		bm.applyTrim(w, h)
	}

	bm.hash = contentHash(bm.Pixels, bm.Width, bm.Height)
	return bm, nil
}

// premultiplyPixels multiplies each pixel's RGB by its alpha in place,
// using the same truncated floating-point math as the reference loader:
// m = a/255.0, component = int(component_f * m).
func premultiplyPixels(pixels []byte) {
	for i := 0; i < len(pixels); i += 4 {
		a := pixels[i+3]
		m := float64(a) / 255.0
		pixels[i+0] = byte(float64(pixels[i+0]) * m)
		pixels[i+1] = byte(float64(pixels[i+1]) * m)
		pixels[i+2] = byte(float64(pixels[i+2]) * m)
	}
}

// applyTrim computes the tight alpha bounding box and, if it is smaller
// than the full image, crops Pixels to it and records the frame offset.
func (bm *Bitmap) applyTrim(w, h int) {
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		row := bm.Pixels[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] != 0 {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if maxX < 0 {
		// Fully transparent: nothing to trim, keep the full image.
		fmt.Fprintf(os.Stderr, "crunch: %s: image is completely transparent\n", bm.Name)
		return
	}

	bboxW, bboxH := maxX-minX+1, maxY-minY+1
	if minX == 0 && minY == 0 && bboxW == w && bboxH == h {
		// No-op trim: reuse the decoded buffer.
		return
	}

	cropped := make([]byte, bboxW*bboxH*4)
	for y := 0; y < bboxH; y++ {
		srcRow := bm.Pixels[(minY+y)*w*4+minX*4 : (minY+y)*w*4+minX*4+bboxW*4]
		copy(cropped[y*bboxW*4:(y+1)*bboxW*4], srcRow)
	}

	bm.Pixels = cropped
	bm.Width, bm.Height = bboxW, bboxH
	bm.FrameX, bm.FrameY = -minX, -minY
	bm.FrameW, bm.FrameH = w, h
}

// contentHash folds a bitmap's dimensions and pixel bytes into a single
// 64-bit fingerprint, used for deduplication.
func contentHash(pixels []byte, w, h int) uint64 {
	var hv uint64
	chash.Combine(&hv, uint64(w))
	chash.Combine(&hv, uint64(h))
	chash.Bytes(&hv, pixels)
	return hv
}

// Hash returns bm's content fingerprint, used to look up duplicate
// candidates before falling back to Equals.
func (bm *Bitmap) Hash() uint64 { return bm.hash }

// Equals reports whether bm and other have identical dimensions and
// pixel bytes.
func (bm *Bitmap) Equals(other *Bitmap) bool {
	if bm.Width != other.Width || bm.Height != other.Height {
		return false
	}
	if len(bm.Pixels) != len(other.Pixels) {
		return false
	}
	for i := range bm.Pixels {
		if bm.Pixels[i] != other.Pixels[i] {
			return false
		}
	}
	return true
}

// CopyPixels blits bm into dst (a Width*Height*4 RGBA8 buffer of stride
// dstW) at offset (tx, ty), without blending.
func (bm *Bitmap) CopyPixels(dst []byte, dstW, tx, ty int) {
	for y := 0; y < bm.Height; y++ {
		srcRow := bm.Pixels[y*bm.Width*4 : (y+1)*bm.Width*4]
		dstOff := ((ty+y)*dstW + tx) * 4
		copy(dst[dstOff:dstOff+bm.Width*4], srcRow)
	}
}

// CopyPixelsRot blits bm into dst rotated 90 degrees clockwise: the
// destination pixel at (tx+y, ty+x) equals bm's source pixel at
// (x, Height-1-y). The destination region occupied is Height wide,
// Width tall.
func (bm *Bitmap) CopyPixelsRot(dst []byte, dstW, tx, ty int) {
	for y := 0; y < bm.Height; y++ {
		srcY := bm.Height - 1 - y
		srcRow := bm.Pixels[srcY*bm.Width*4 : (srcY+1)*bm.Width*4]
		for x := 0; x < bm.Width; x++ {
			dstOff := ((ty+x)*dstW + (tx + y)) * 4
			copy(dst[dstOff:dstOff+4], srcRow[x*4:x*4+4])
		}
	}
}

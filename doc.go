// Package crunch implements a texture atlas packer: it loads a set of PNG
// images, bin-packs them into one or more power-of-two atlas pages using
// the MaxRects best-short-side-fit heuristic, and writes the packed pages
// alongside XML/JSON/binary manifests describing where each input image
// ended up.
//
// The package is organized the way the command-line tool in cmd/crunch
// uses it: Bitmap loads and preprocesses a single image, Packer places a
// batch of Bitmaps into one page, and Controller drives the incremental
// (hash-gated) build across one or many pages, including split builds
// that pack each input subdirectory independently and stitch the results.
package crunch

// Package manifest emits and reads the three atlas manifest formats
// (XML, JSON, binary) that describe where each packed image ended up on
// its page. All three formats carry the same logical record per page:
// a name, an image count, and per-image placement plus optional
// frame/rotation fields.
//
// Each Write*Fragment function writes one page's record with no
// surrounding document wrapper, which is what a split build writes per
// subdirectory. The Write*Document functions add the document-level
// wrapper (<atlas>...</atlas>, or the {"trim":...,"textures":[...]}
// object) around one or more pages, which is what a non-split build
// writes directly and what a split build writes once, after stitching
// together the per-subdirectory fragments.
package manifest

import (
	"fmt"
	"io"
)

// Image is one packed image's manifest record.
type Image struct {
	Name    string
	X, Y    int
	W, H    int
	FrameX, FrameY, FrameW, FrameH int
	Rotated bool
}

// Page is one packed page's manifest record: its output name and the
// images placed on it, in placement order.
type Page struct {
	Name   string
	Images []Image
}

// WriteXMLFragment writes page as a standalone <tex>...</tex> block,
// with no document wrapper.
func WriteXMLFragment(w io.Writer, page Page, trim, rotate bool) error {
	if _, err := fmt.Fprintf(w, "\t<tex n=\"%s\">\n", page.Name); err != nil {
		return err
	}
	for _, img := range page.Images {
		if _, err := fmt.Fprintf(w, "\t\t<img n=\"%s\" x=\"%d\" y=\"%d\" w=\"%d\" h=\"%d\"",
			img.Name, img.X, img.Y, img.W, img.H); err != nil {
			return err
		}
		if trim {
			if _, err := fmt.Fprintf(w, " fx=\"%d\" fy=\"%d\" fw=\"%d\" fh=\"%d\"",
				img.FrameX, img.FrameY, img.FrameW, img.FrameH); err != nil {
				return err
			}
		}
		if rotate {
			r := 0
			if img.Rotated {
				r = 1
			}
			if _, err := fmt.Fprintf(w, " r=\"%d\"", r); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "/>\n"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\t</tex>\n")
	return err
}

// WriteXMLDocument writes the full <atlas> document for pages: the
// top-level <trim>/<rotate> elements followed by each page's fragment.
func WriteXMLDocument(w io.Writer, pages []Page, trim, rotate bool) error {
	if _, err := fmt.Fprint(w, "<atlas>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\t<trim>%s</trim>\n", boolDigit(trim)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\t<rotate>%s</rotate>\n", boolDigit(rotate)); err != nil {
		return err
	}
	for _, page := range pages {
		if err := WriteXMLFragment(w, page, trim, rotate); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "</atlas>\n")
	return err
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// WriteJSONFragment writes page as a standalone JSON object, with no
// document wrapper and no trailing comma.
func WriteJSONFragment(w io.Writer, page Page, trim, rotate bool) error {
	if _, err := fmt.Fprintf(w, "{ \"name\": %q, \"images\": [", page.Name); err != nil {
		return err
	}
	for i, img := range page.Images {
		if i > 0 {
			if _, err := fmt.Fprint(w, ","); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, " { \"n\": %q, \"x\": %d, \"y\": %d, \"w\": %d, \"h\": %d",
			img.Name, img.X, img.Y, img.W, img.H); err != nil {
			return err
		}
		if trim {
			if _, err := fmt.Fprintf(w, ", \"fx\": %d, \"fy\": %d, \"fw\": %d, \"fh\": %d",
				img.FrameX, img.FrameY, img.FrameW, img.FrameH); err != nil {
				return err
			}
		}
		if rotate {
			if _, err := fmt.Fprintf(w, ", \"r\": %t", img.Rotated); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, " }"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, " ] }")
	return err
}

// WriteJSONDocument writes the full JSON document for pages: the
// top-level trim/rotate flags and a comma-separated textures array.
func WriteJSONDocument(w io.Writer, pages []Page, trim, rotate bool) error {
	if _, err := fmt.Fprintf(w, "{ \"trim\": %t, \"rotate\": %t, \"textures\": [\n", trim, rotate); err != nil {
		return err
	}
	for i, page := range pages {
		if i > 0 {
			if _, err := fmt.Fprint(w, ",\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "\t"); err != nil {
			return err
		}
		if err := WriteJSONFragment(w, page, trim, rotate); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n] }\n")
	return err
}

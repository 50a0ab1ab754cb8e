package manifest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ChevyRay/crunch/internal/binio"
)

// BinaryMagic identifies the binary manifest format.
const BinaryMagic = "crch"

// BinaryVersion is the current binary manifest format version.
const BinaryVersion int16 = 0

// WriteBinaryHeader writes the fixed document header: magic, version,
// trim flag, rotate flag, string type, and the total number of texture
// (page) entries that follow.
func WriteBinaryHeader(w io.Writer, strType binio.StrType, trim, rotate bool, nTex int16) error {
	if _, err := io.WriteString(w, BinaryMagic); err != nil {
		return err
	}
	if err := binio.WriteShort(w, BinaryVersion); err != nil {
		return err
	}
	if err := binio.WriteByteValue(w, boolByte(trim)); err != nil {
		return err
	}
	if err := binio.WriteByteValue(w, boolByte(rotate)); err != nil {
		return err
	}
	if err := binio.WriteByteValue(w, byte(strType)); err != nil {
		return err
	}
	return binio.WriteShort(w, nTex)
}

// ReadBinaryHeader reads a header written by WriteBinaryHeader.
func ReadBinaryHeader(r io.Reader) (strType binio.StrType, trim, rotate bool, nTex int16, err error) {
	magic := make([]byte, len(BinaryMagic))
	if _, err = io.ReadFull(r, magic); err != nil {
		return
	}
	if string(magic) != BinaryMagic {
		err = fmt.Errorf("manifest: bad magic %q", magic)
		return
	}
	if _, err = binio.ReadShort(r); err != nil { // version, unused for now
		return
	}
	var t, ro, st byte
	if t, err = binio.ReadByteValue(r); err != nil {
		return
	}
	if ro, err = binio.ReadByteValue(r); err != nil {
		return
	}
	if st, err = binio.ReadByteValue(r); err != nil {
		return
	}
	if nTex, err = binio.ReadShort(r); err != nil {
		return
	}
	trim, rotate, strType = t != 0, ro != 0, binio.StrType(st)
	return
}

// WriteBinaryBody writes one page as a self-contained body entry: its
// name, image count, and per-image fields. Body entries carry no
// header, which is what lets a split build's per-subdirectory bodies
// be concatenated byte-for-byte before a single header is prepended.
func WriteBinaryBody(w io.Writer, strType binio.StrType, trim, rotate bool, page Page) error {
	if err := binio.WriteString(w, strType, page.Name); err != nil {
		return err
	}
	if err := binio.WriteShort(w, int16(len(page.Images))); err != nil {
		return err
	}
	for _, img := range page.Images {
		if err := binio.WriteString(w, strType, img.Name); err != nil {
			return err
		}
		for _, v := range []int{img.X, img.Y, img.W, img.H} {
			if err := binio.WriteShort(w, int16(v)); err != nil {
				return err
			}
		}
		if trim {
			for _, v := range []int{img.FrameX, img.FrameY, img.FrameW, img.FrameH} {
				if err := binio.WriteShort(w, int16(v)); err != nil {
					return err
				}
			}
		}
		if rotate {
			if err := binio.WriteByteValue(w, boolByte(img.Rotated)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadBinaryBody reads one page body written by WriteBinaryBody.
func ReadBinaryBody(r io.ByteReader, strType binio.StrType, trim, rotate bool) (Page, error) {
	var page Page
	name, err := binio.ReadString(r, strType)
	if err != nil {
		return page, err
	}
	page.Name = name

	nImg, err := readShortFromByteReader(r)
	if err != nil {
		return page, err
	}
	page.Images = make([]Image, 0, nImg)
	for i := int16(0); i < nImg; i++ {
		var img Image
		if img.Name, err = binio.ReadString(r, strType); err != nil {
			return page, err
		}
		vals := make([]int, 4)
		for j := range vals {
			v, err := readShortFromByteReader(r)
			if err != nil {
				return page, err
			}
			vals[j] = int(v)
		}
		img.X, img.Y, img.W, img.H = vals[0], vals[1], vals[2], vals[3]

		if trim {
			fvals := make([]int, 4)
			for j := range fvals {
				v, err := readShortFromByteReader(r)
				if err != nil {
					return page, err
				}
				fvals[j] = int(v)
			}
			img.FrameX, img.FrameY, img.FrameW, img.FrameH = fvals[0], fvals[1], fvals[2], fvals[3]
		}
		if rotate {
			b, err := r.ReadByte()
			if err != nil {
				return page, err
			}
			img.Rotated = b != 0
		}
		page.Images = append(page.Images, img)
	}
	return page, nil
}

func readShortFromByteReader(r io.ByteReader) (int16, error) {
	lo, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	hi, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return int16(uint16(lo) | uint16(hi)<<8), nil
}

// WriteBinary writes a complete binary document: header followed by
// every page's body.
func WriteBinary(w io.Writer, strType binio.StrType, trim, rotate bool, pages []Page) error {
	if err := WriteBinaryHeader(w, strType, trim, rotate, int16(len(pages))); err != nil {
		return err
	}
	for _, page := range pages {
		if err := WriteBinaryBody(w, strType, trim, rotate, page); err != nil {
			return err
		}
	}
	return nil
}

// ReadBinary reads a complete binary document written by WriteBinary.
func ReadBinary(r io.Reader) (pages []Page, trim, rotate bool, strType binio.StrType, err error) {
	var nTex int16
	strType, trim, rotate, nTex, err = ReadBinaryHeader(r)
	if err != nil {
		return
	}
	br := binio.NewByteReader(r)
	for i := int16(0); i < nTex; i++ {
		var page Page
		page, err = ReadBinaryBody(br, strType, trim, rotate)
		if err != nil {
			return
		}
		pages = append(pages, page)
	}
	return
}

// CountBinaryPages counts how many page bodies are packed into data, a
// blob of concatenated WriteBinaryBody output with no header. Used by
// split builds to compute the combined texture count before writing
// the final stitched header.
func CountBinaryPages(data []byte, strType binio.StrType, trim, rotate bool) (int, error) {
	r := bytes.NewReader(data)
	br := binio.NewByteReader(r)
	count := 0
	for r.Len() > 0 {
		if _, err := ReadBinaryBody(br, strType, trim, rotate); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

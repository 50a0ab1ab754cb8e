package manifest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ChevyRay/crunch/internal/binio"
)

func samplePages() []Page {
	return []Page{
		{
			Name: "atlas0",
			Images: []Image{
				{Name: "a", X: 0, Y: 0, W: 32, H: 32, FrameX: -1, FrameY: -2, FrameW: 34, FrameH: 36, Rotated: false},
				{Name: "b", X: 32, Y: 0, W: 16, H: 16, Rotated: true},
			},
		},
	}
}

func TestWriteXMLDocumentStructure(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXMLDocument(&buf, samplePages(), true, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<atlas>\n") || !strings.HasSuffix(out, "</atlas>\n") {
		t.Fatalf("missing atlas wrapper: %s", out)
	}
	if !strings.Contains(out, "<trim>1</trim>") || !strings.Contains(out, "<rotate>1</rotate>") {
		t.Fatalf("missing trim/rotate elements: %s", out)
	}
	if !strings.Contains(out, `fx="-1" fy="-2" fw="34" fh="36"`) {
		t.Fatalf("missing frame attributes: %s", out)
	}
	if !strings.Contains(out, `r="1"`) {
		t.Fatalf("missing rotated attribute: %s", out)
	}
}

func TestWriteJSONDocumentStructure(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONDocument(&buf, samplePages(), false, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"trim": false`) || !strings.Contains(out, `"rotate": true`) {
		t.Fatalf("missing top-level flags: %s", out)
	}
	if !strings.Contains(out, `"r": true`) {
		t.Fatalf("missing per-image rotated flag: %s", out)
	}
	if strings.Contains(out, `"fx"`) {
		t.Fatalf("frame fields should be absent when trim is disabled: %s", out)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	pages := samplePages()
	if err := WriteBinary(&buf, binio.Str7Bit, true, true, pages); err != nil {
		t.Fatal(err)
	}

	got, trim, rotate, strType, err := ReadBinary(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !trim || !rotate || strType != binio.Str7Bit {
		t.Fatalf("header mismatch: trim=%v rotate=%v strType=%v", trim, rotate, strType)
	}
	if len(got) != 1 || len(got[0].Images) != 2 {
		t.Fatalf("unexpected round-tripped pages: %+v", got)
	}
	if got[0].Images[0].FrameX != -1 || got[0].Images[1].Rotated != true {
		t.Fatalf("round-tripped image fields mismatch: %+v", got[0].Images)
	}
}

func TestCountBinaryPagesOnConcatenatedBodies(t *testing.T) {
	var a, b bytes.Buffer
	pages := samplePages()
	if err := WriteBinaryBody(&a, binio.StrNull, false, false, pages[0]); err != nil {
		t.Fatal(err)
	}
	if err := WriteBinaryBody(&b, binio.StrNull, false, false, pages[0]); err != nil {
		t.Fatal(err)
	}
	combined := append(a.Bytes(), b.Bytes()...)

	n, err := CountBinaryPages(combined, binio.StrNull, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

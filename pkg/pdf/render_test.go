package pdf

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func inked(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R != 0xff || c.G != 0xff || c.B != 0xff {
				n++
			}
		}
	}
	return n
}

func TestRenderPage(t *testing.T) {
	_, doc := sampleDocument(t)

	img, err := NewPageRenderer(doc, 72).RenderPage(1)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 612 || b.Dy() != 792 {
		t.Fatalf("image is %v, expected 612x792", b)
	}

	// "Hello" sits on the baseline at y = 792-720 = 72 from the top
	if inked(img, image.Rect(72, 60, 110, 75)) == 0 {
		t.Error("no text drawn near the first baseline")
	}
	if n := inked(img, image.Rect(0, 200, 612, 792)); n != 0 {
		t.Errorf("%d marked pixels below the text", n)
	}
}

func TestRenderPageScale(t *testing.T) {
	_, doc := sampleDocument(t)
	img, err := NewPageRenderer(doc, 144).RenderPage(1)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1224 || b.Dy() != 1584 {
		t.Errorf("image is %v, expected 1224x1584", b)
	}
	if _, err := NewPageRenderer(doc, 72).RenderPage(2); err == nil {
		t.Error("Expected error for page 2")
	}
}

func TestRenderFallbackFont(t *testing.T) {
	setup := letter
	setup.BaseFont = "Symbol"
	f := singlePageFile(t, setup, "BT /F1 12 Tf 72 720 Td (abc) Tj ET")
	doc, err := NewDocument(f.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	img, err := NewPageRenderer(doc, 72).RenderPage(1)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if inked(img, image.Rect(72, 55, 110, 75)) == 0 {
		t.Error("bitmap fallback drew nothing")
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v", decoded.Bounds())
	}
}

func TestRenderSkipsUnknownOperators(t *testing.T) {
	f := singlePageFile(t, letter, "q 1 0 0 RG 10 10 m 20 20 l S Q\nBT /F1 12 Tf 72 720 Td (abc) Tj ET\n0 0 m 5 5 l S")
	doc, err := NewDocument(f.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	r := NewPageRenderer(doc, 72)
	img, err := r.RenderPage(1)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if inked(img, image.Rect(72, 60, 110, 75)) == 0 {
		t.Error("text after graphics operators was not drawn")
	}
	want := []SkippedOperator{{"RG", 1}, {"S", 2}, {"l", 2}, {"m", 2}}
	if diff := cmp.Diff(want, r.Skipped()); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
}

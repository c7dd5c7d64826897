package paper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultLayoutValid(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("default layout invalid: %v", err)
	}
}

func TestParseLayout(t *testing.T) {
	data := []byte(`
wrap_width: 60
base_font: Courier
long_words: hardbreak
missing_glyphs: strict
glyphs:
  "☺": ":)"
`)
	got, err := ParseLayout(data)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}

	want := DefaultLayout()
	want.WrapWidth = 60
	want.BaseFont = "Courier"
	want.LongWords = HardBreak
	want.Missing = MissStrict
	want.Glyphs = map[string]string{"☺": ":)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseLayout mismatch (-want +got):\n%s", diff)
	}

	table, err := got.GlyphTable()
	if err != nil {
		t.Fatalf("GlyphTable: %v", err)
	}
	if r, _ := table.Lookup('☺'); r != ":)" {
		t.Errorf("Lookup(☺) = %q", r)
	}
}

func TestParseLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"bad policy", "long_words: squash", []string{"squash"}},
		{"bad yaml", "margin: [1", []string{"failed to parse layout"}},
		{
			name: "several problems",
			data: "leading: 0\nbase_font: Arial\nwrap_width: 0",
			want: []string{"leading", "Arial", "wrap_width"},
		},
		{"margin too wide", "margin: 400", []string{"leaves no room"}},
		{"margin nan", "margin: .nan", []string{"margin"}},
		{"margin negative", "margin: -1", []string{"margin"}},
		{"margin infinite", "margin: .inf", []string{"margin"}},
		{"font resource space", "font_resource: F 1", []string{"font_resource"}},
		{"font resource delimiter", "font_resource: F/1", []string{"font_resource"}},
		{"encoding", "encoding: MacRomanEncoding", []string{"MacRomanEncoding"}},
		{"glyph key", "glyphs:\n  ab: x", []string{"single character"}},
		{"glyph value", "glyphs:\n  \"☺\": \"☻\"", []string{"not encodable"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestLayoutSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "layout.yaml")

	want := DefaultLayout()
	want.Margin = 54
	want.Missing = MissPassThrough
	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "missing_glyphs: passthrough") {
		t.Errorf("policy not saved by name:\n%s", data)
	}
}

func TestLoadLayoutMissing(t *testing.T) {
	if _, err := LoadLayout(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

// utf16Bytes renders BMP text as UTF-16 code units without a BOM.
func utf16Bytes(s string, little bool) []byte {
	var out []byte
	for _, r := range s {
		hi, lo := byte(r>>8), byte(r)
		if little {
			out = append(out, lo, hi)
		} else {
			out = append(out, hi, lo)
		}
	}
	return out
}

func TestDetectEncoding(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want string
	}{
		{"empty", nil, "utf-8"},
		{"ascii", []byte("a,b\n1,2\n"), "utf-8"},
		{"utf8 multibyte", []byte("name\ncafé\n"), "utf-8"},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2\n")...), "utf-8-sig"},
		{"utf16le bom", append([]byte{0xFF, 0xFE}, utf16Bytes("a,b\n1,2\n", true)...), "utf-16le"},
		{"utf16be bom", append([]byte{0xFE, 0xFF}, utf16Bytes("a,b\n1,2\n", false)...), "utf-16be"},
		{"utf16le bomless", utf16Bytes("a,b\n1,2\n", true), "utf-16le"},
		{"utf16be bomless", utf16Bytes("a,b\n1,2\n", false), "utf-16be"},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9}, "windows-1252"},
	}
	for _, tc := range cases {
		if _, got := DetectEncoding(tc.raw); got != tc.want {
			t.Fatalf("%s: detected %q, want %q", tc.name, got, tc.want)
		}
	}
}

// The same logical CSV must load identically whatever bytes it arrived in.
func TestLoadAcrossEncodings(t *testing.T) {
	const text = "name,score\ncafé,1.5\nrené,2.5\n"
	dir := t.TempDir()

	fixtures := map[string][]byte{
		"plain.csv":   []byte(text),
		"bom.csv":     append([]byte{0xEF, 0xBB, 0xBF}, []byte(text)...),
		"u16le.csv":   append([]byte{0xFF, 0xFE}, utf16Bytes(text, true)...),
		"u16be.csv":   append([]byte{0xFE, 0xFF}, utf16Bytes(text, false)...),
		"win1252.csv": {'n', 'a', 'm', 'e', ',', 's', 'c', 'o', 'r', 'e', '\n', 'c', 'a', 'f', 0xE9, ',', '1', '.', '5', '\n', 'r', 'e', 'n', 0xE9, ',', '2', '.', '5', '\n'},
	}
	for name, raw := range fixtures {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		tbl, err := Load(path, Options{})
		if err != nil {
			t.Fatalf("Load %s: %v", name, err)
		}
		if tbl.Rows() != 2 || len(tbl.Columns) != 2 {
			t.Fatalf("%s: shape = %dx%d", name, tbl.Rows(), len(tbl.Columns))
		}
		got := tbl.Column("name").Values
		if got[0] != "café" || got[1] != "rené" {
			t.Fatalf("%s: name column = %v", name, got)
		}
		if s := tbl.Column("score").Values; s[0] != "1.5" || s[1] != "2.5" {
			t.Fatalf("%s: score column = %v", name, s)
		}
	}
}

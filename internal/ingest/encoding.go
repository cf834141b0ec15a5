package ingest

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// DetectEncoding inspects raw file bytes and picks the text encoding to
// decode with: BOM first, then UTF-8 validity, then a NUL-byte heuristic for
// BOM-less UTF-16, then Windows-1252 as the single-byte fallback. An empty
// or inconclusive sample defaults to UTF-8.
func DetectEncoding(raw []byte) (encoding.Encoding, string) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return unicode.UTF8BOM, "utf-8-sig"
	case bytes.HasPrefix(raw, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "utf-16be"
	case bytes.HasPrefix(raw, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "utf-16le"
	}
	if len(raw) == 0 {
		return unicode.UTF8, "utf-8"
	}
	// BOM-less UTF-16 of mostly-ASCII text is valid UTF-8 byte-wise (NUL is
	// a legal rune), so the NUL sniff has to run first.
	if endian, ok := sniffUTF16(raw); ok {
		if endian == unicode.LittleEndian {
			return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), "utf-16le"
		}
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), "utf-16be"
	}
	if utf8.Valid(raw) {
		return unicode.UTF8, "utf-8"
	}
	return charmap.Windows1252, "windows-1252"
}

// sniffUTF16 looks for the alternating NUL bytes that mostly-ASCII UTF-16
// text produces. The position of the NULs tells the byte order apart.
func sniffUTF16(raw []byte) (unicode.Endianness, bool) {
	sample := raw
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	var even, odd int
	for i, b := range sample {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			even++
		} else {
			odd++
		}
	}
	if even+odd < len(sample)/10 {
		return unicode.LittleEndian, false
	}
	if odd > even {
		return unicode.LittleEndian, true
	}
	return unicode.BigEndian, true
}

// decode converts raw bytes into UTF-8 text using the detected encoding,
// stripping any BOM along the way.
func decode(raw []byte, enc encoding.Encoding) ([]byte, error) {
	return enc.NewDecoder().Bytes(raw)
}

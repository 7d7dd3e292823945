package vrc

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

var replacement = []byte(string(utf8.RuneError))

// DecodeText interprets b as UTF-16LE code units. Unpaired surrogates and a
// dangling odd byte become U+FFFD; replaced counts those substitutions, not
// U+FFFD characters that were genuinely encoded in b.
func DecodeText(b []byte) (text string, replaced int) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", len(b)/2 + len(b)%2
	}

	encoded := 0
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0xfd && b[i+1] == 0xff {
			encoded++
		}
	}
	return string(out), bytes.Count(out, replacement) - encoded
}

// EncodeText is the inverse of DecodeText for valid UTF-8 input.
func EncodeText(text string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(text))
}

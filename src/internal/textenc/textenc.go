// Package textenc converts arbitrary bytes to text for the importer. Decode
// never fails: it walks a fixed fallback chain and ends in a lossy decode.
package textenc

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Fallback chain after UTF-8: GBK first because Latin-1 accepts any byte
// sequence and would otherwise shadow it.
var fallbacks = []encoding.Encoding{
	simplifiedchinese.GBK,
	charmap.ISO8859_1,
}

// Decode converts raw bytes to a string. Valid UTF-8 passes through; other
// inputs try each fallback encoding in order, rejecting any decode that had
// to substitute replacement runes. The last resort is a lossy UTF-8 decode.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	for _, enc := range fallbacks {
		out, err := enc.NewDecoder().Bytes(b)
		if err != nil || !utf8.Valid(out) {
			continue
		}
		if strings.ContainsRune(string(out), utf8.RuneError) {
			continue
		}
		return string(out)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

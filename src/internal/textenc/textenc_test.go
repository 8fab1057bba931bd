package textenc

import (
	"testing"
	"unicode/utf8"
)

func TestDecodeUTF8Passthrough(t *testing.T) {
	in := "@misc{a, title = {héllo 世界}}"
	if got := Decode([]byte(in)); got != in {
		t.Fatalf("utf-8 input must pass through unchanged: %q", got)
	}
}

func TestDecodeGBK(t *testing.T) {
	// "中文" in GBK.
	in := []byte{0xd6, 0xd0, 0xce, 0xc4}
	if got := Decode(in); got != "中文" {
		t.Fatalf("expected GBK decode, got %q", got)
	}
}

func TestDecodeLatin1(t *testing.T) {
	// 0xe9 alone is invalid UTF-8 and an incomplete GBK sequence.
	in := []byte{'c', 'a', 'f', 0xe9}
	if got := Decode(in); got != "café" {
		t.Fatalf("expected Latin-1 decode, got %q", got)
	}
}

func TestDecodeNeverFails(t *testing.T) {
	inputs := [][]byte{nil, {}, {0xff}, {0xff, 0xfe, 0x00}, {0x80, 0x81}}
	for _, in := range inputs {
		out := Decode(in)
		if !utf8.ValidString(out) {
			t.Fatalf("Decode(%v) produced invalid UTF-8: %q", in, out)
		}
	}
}

package util

import (
	"strings"
	"testing"
)

func TestDumpByteSlice(t *testing.T) {
	b := append([]byte("callan"), 0x00, 0xff)
	out := DumpByteSlice(b)

	if !strings.HasPrefix(out, "00000000 :") {
		t.Errorf("missing position header: %q", out)
	}
	if !strings.Contains(out, "63 61 6c 6c 61 6e 00 ff") {
		t.Errorf("missing hex bytes: %q", out)
	}
	if !strings.Contains(out, "callan..") {
		t.Errorf("missing ascii column: %q", out)
	}
	if lines := strings.Count(out, "\n"); lines != 1 {
		t.Errorf("got %d rows instead of 1: %q", lines, out)
	}
}

package membuf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromBytesCopyIsIndependent(t *testing.T) {
	src := []byte("payload")
	b := FromBytesCopy("p", src)
	src[0] = 'X'
	if string(b.Bytes()) != "payload" {
		t.Fatalf("copy must not alias the source: %q", b.Bytes())
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.anv")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := FromFile(path)
	if err != nil {
		t.Fatalf("from file: %v", err)
	}
	if b.Name() != "unit.anv" || b.Size() != 3 {
		t.Fatalf("got name %q size %d", b.Name(), b.Size())
	}
	if _, err := FromFile(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("missing file must fail")
	}
}

func TestFromReaderAndWriteTo(t *testing.T) {
	b, err := FromReader("in", strings.NewReader("stream"))
	if err != nil {
		t.Fatalf("from reader: %v", err)
	}
	var out bytes.Buffer
	n, err := b.WriteTo(&out)
	if err != nil || n != 6 {
		t.Fatalf("write to: n=%d err=%v", n, err)
	}
	if out.String() != "stream" {
		t.Fatalf("got %q", out.String())
	}
}

func TestLink(t *testing.T) {
	a := FromBytes("a", []byte("aa"))
	b := FromBytes("b", []byte("bb"))
	linked := Link("ab", a, b)
	if string(linked.Bytes()) != "aabb" {
		t.Fatalf("got %q", linked.Bytes())
	}
	// Linking must not alias the inputs.
	linked.Bytes()[0] = 'X'
	if string(a.Bytes()) != "aa" {
		t.Fatalf("input mutated: %q", a.Bytes())
	}
}

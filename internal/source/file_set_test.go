package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("fac.dfl", []byte("func main(): 1"), 0)
	id2 := fs.Add("fac.dfl", []byte("func main(): 2"), 0)
	if id1 == id2 {
		t.Fatalf("expected fresh FileID, got %d twice", id1)
	}

	latest, ok := fs.GetLatest("fac.dfl")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d", latest, ok, id2)
	}
	// старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "func main(): 1" {
		t.Errorf("old content = %q", got)
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("<stdin>", []byte("a\nb\n")))

	want := []uint32{1, 3}
	if len(f.LineIdx) != len(want) {
		t.Fatalf("LineIdx = %v, want %v", f.LineIdx, want)
	}
	for i := range want {
		if f.LineIdx[i] != want[i] {
			t.Errorf("LineIdx[%d] = %d, want %d", i, f.LineIdx[i], want[i])
		}
	}
	if f.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag")
	}
}

func TestNormalization(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddNormalized("x.dfl", []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0))

	if string(f.Content) != "a\nb\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", f.Flags)
	}

	lone := []byte("a\rb")
	if out, changed := normalizeCRLF(lone); changed || string(out) != "a\rb" {
		t.Errorf("lone CR rewritten: %q", out)
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.dfl", []byte("func f(x):\n  x + α\n"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{10, LineCol{1, 11}}, // сам '\n'
		{11, LineCol{2, 1}},
		{17, LineCol{2, 7}},
	}
	for _, c := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: c.off, End: c.off})
		if start != c.want {
			t.Errorf("offset %d: got %+v, want %+v", c.off, start, c.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("t.dfl", []byte("one\ntwo\nthree")))

	for i, want := range []string{"", "one", "two", "three", ""} {
		if got := f.GetLine(uint32(i)); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Errorf("Cover = %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("cross-file Cover = %v", got)
	}
	if !(Span{Start: 3, End: 3}).Empty() {
		t.Error("expected empty span")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.dfl")
	if err := os.WriteFile(path, []byte("func main():\r\n 1\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "func main():\n 1\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Path != filepath.ToSlash(path) {
		t.Errorf("path = %q", f.Path)
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.dfl")); err == nil {
		t.Error("expected error for missing file")
	}
}

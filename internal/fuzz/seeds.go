package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addSnippetSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.dfl файлы
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".dfl" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
}

func addSnippetSeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("func main(): 0\n"))
	f.Add([]byte("func main(a): let x := a * 2 in if x > 3 then x else -x\n"))
	f.Add([]byte("func main(a): for i in [1..a] do i * i\n"))
	f.Add([]byte("func main(): str_append(\"a\", str(1))\n"))
	f.Add([]byte("func f(x): g(x)\nfunc g(x): f(x)\nfunc main(): f(1)\n"))
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

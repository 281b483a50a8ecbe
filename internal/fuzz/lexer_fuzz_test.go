package fuzztests

import (
	"testing"

	"dlc/internal/diag"
	"dlc/internal/lexer"
	"dlc/internal/source"
	"dlc/internal/token"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = append([]byte(nil), input[:maxFuzzInput]...)
		} else {
			input = append([]byte(nil), input...)
		}

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.dfl", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		// каждый токен потребляет хотя бы один байт
		for i := 0; ; i++ {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
			if i > len(file.Content) {
				t.Fatalf("lexer made no progress at %v", tok.Span)
			}
		}
	})
}

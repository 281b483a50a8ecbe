package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"dlc/internal/diag"
	"dlc/internal/lexer"
	"dlc/internal/source"
	"dlc/internal/token"
)

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string, keepTrivia bool) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.dfl", []byte(input)))
	bag := diag.NewBag(0)
	return lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}, KeepTrivia: keepTrivia}), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		if t.Kind != token.EOF {
			out = append(out, t.Kind)
		}
	}
	return out
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// expectTokens проверяет последовательность токенов
func expectTokens(t *testing.T, input string, expected ...token.Kind) {
	t.Helper()
	lx, bag := makeTestLexer(input, false)
	toks := lx.All()
	got := kinds(toks)
	if len(got) != len(expected) {
		t.Fatalf("input %q: expected %d tokens, got %s (diags %d)", input, len(expected), tokensToString(toks), bag.Len())
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("input %q token %d: expected %v, got %v", input, i, expected[i], got[i])
		}
	}
	if bag.HasErrors() {
		t.Errorf("input %q: unexpected diagnostics %+v", input, bag.Items())
	}
}

func TestFunctionHeader(t *testing.T) {
	expectTokens(t, "func fac(n): if n < 2 then 1 else n * fac(n - 1)",
		token.KwFunc, token.Ident, token.LParen, token.Ident, token.RParen, token.Colon,
		token.KwIf, token.Ident, token.Lt, token.IntLit,
		token.KwThen, token.IntLit,
		token.KwElse, token.Ident, token.Star, token.Ident, token.LParen, token.Ident, token.Minus, token.IntLit, token.RParen)
}

func TestLetAndFor(t *testing.T) {
	expectTokens(t, "let x := [1..n] in for e in x do e + 1",
		token.KwLet, token.Ident, token.ColonAssign,
		token.LBracket, token.IntLit, token.DotDot, token.Ident, token.RBracket,
		token.KwIn, token.KwFor, token.Ident, token.KwIn, token.Ident, token.KwDo, token.Ident, token.Plus, token.IntLit)
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"<=", token.LtEq},
		{"=<", token.LtEq},
		{">=", token.GtEq},
		{"=", token.Eq},
		{"==", token.Eq},
		{"!=", token.BangEq},
		{"!", token.Bang},
		{"&&", token.AndAnd},
		{"||", token.OrOr},
		{"/", token.Slash},
		{`\`, token.Slash},
		{":=", token.ColonAssign},
		{":", token.Colon},
		{"..", token.DotDot},
		{".", token.Dot},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectTokens(t, tt.input, tt.kind)
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"0", token.IntLit},
		{"123", token.IntLit},
		{"1.5", token.FloatLit},
		{"2e10", token.FloatLit},
		{"2.5E-3", token.FloatLit},
	}
	for _, tt := range tests {
		lx, bag := makeTestLexer(tt.input, false)
		tok := lx.Next()
		if tok.Kind != tt.kind || tok.Text != tt.input || bag.Len() != 0 {
			t.Errorf("%q: got %v(%q), %d diags", tt.input, tok.Kind, tok.Text, bag.Len())
		}
	}

	// диапазон не съедается как дробь
	expectTokens(t, "1..5", token.IntLit, token.DotDot, token.IntLit)
}

func TestBadNumbers(t *testing.T) {
	for _, input := range []string{"1e", "12abc"} {
		lx, bag := makeTestLexer(input, false)
		if tok := lx.Next(); tok.Kind != token.Invalid {
			t.Errorf("%q: got %v", input, tok.Kind)
		}
		if bag.Len() != 1 || bag.Items()[0].Code != diag.LexBadNumber {
			t.Errorf("%q: diags %+v", input, bag.Items())
		}
	}
}

func TestStrings(t *testing.T) {
	lx, bag := makeTestLexer(`str_find("a\"b", "b")`, false)
	toks := lx.All()
	if toks[2].Kind != token.StringLit || toks[2].Text != `"a\"b"` {
		t.Errorf("string token = %v(%q)", toks[2].Kind, toks[2].Text)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diags %+v", bag.Items())
	}

	lx, bag = makeTestLexer("\"open\n", false)
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Errorf("got %v", tok.Kind)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Errorf("diags %+v", bag.Items())
	}
}

func TestIdentifiersNFC(t *testing.T) {
	// "é" в NFD: e + U+0301
	lx, bag := makeTestLexer("cafe\u0301 cafe\u0301_2", false)
	a, b := lx.Next(), lx.Next()
	if a.Kind != token.Ident || b.Kind != token.Ident {
		t.Fatalf("got %v %v", a.Kind, b.Kind)
	}
	if a.Text != "caf\u00e9" {
		t.Errorf("not normalised: %q", a.Text)
	}
	if a.Span.Len() != 6 {
		t.Errorf("span must cover source bytes, got %d", a.Span.Len())
	}
	if b.Text != "caf\u00e9_2" {
		t.Errorf("b = %q", b.Text)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diags %+v", bag.Items())
	}
}

func TestKeywordsAreCaseSensitive(t *testing.T) {
	expectTokens(t, "If Then func true False", token.Ident, token.Ident, token.KwFunc, token.KwTrue, token.Ident)
}

func TestCommentsAndTrivia(t *testing.T) {
	lx, _ := makeTestLexer("# header\nfunc  # trailing\nmain", true)
	fn := lx.Next()
	if fn.Kind != token.KwFunc {
		t.Fatalf("got %v", fn.Kind)
	}
	if len(fn.Leading) != 2 || fn.Leading[0].Kind != token.TriviaComment || fn.Leading[1].Kind != token.TriviaNewline {
		t.Errorf("leading = %+v", fn.Leading)
	}
	main := lx.Next()
	if main.Text != "main" || len(main.Leading) != 3 {
		t.Errorf("main = %q leading %+v", main.Text, main.Leading)
	}

	lx, _ = makeTestLexer("# only a comment", false)
	if tok := lx.Next(); tok.Kind != token.EOF {
		t.Errorf("got %v", tok.Kind)
	}
}

func TestUnknownCharacter(t *testing.T) {
	lx, bag := makeTestLexer("a ? b § c", false)
	toks := lx.All()
	got := kinds(toks)
	want := []token.Kind{token.Ident, token.Invalid, token.Ident, token.Invalid, token.Ident}
	if len(got) != len(want) {
		t.Fatalf("tokens %s", tokensToString(toks))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: %v, want %v", i, got[i], want[i])
		}
	}
	if bag.Len() != 2 {
		t.Fatalf("want 2 diags, got %d", bag.Len())
	}
	if d := bag.Items()[1]; d.Code != diag.LexUnknownChar || d.Primary.Len() != 2 {
		t.Errorf("diag = %+v", d)
	}
}

func TestPeekAndEOF(t *testing.T) {
	lx, _ := makeTestLexer("x", false)
	if p := lx.Peek(); p.Kind != token.Ident {
		t.Fatalf("Peek = %v", p.Kind)
	}
	if p := lx.Peek(); p.Kind != token.Ident {
		t.Fatalf("second Peek = %v", p.Kind)
	}
	if n := lx.Next(); n.Text != "x" {
		t.Fatalf("Next = %q", n.Text)
	}
	for range 3 {
		if n := lx.Next(); n.Kind != token.EOF {
			t.Fatalf("after end: %v", n.Kind)
		}
	}
}

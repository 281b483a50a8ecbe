package token_test

import (
	"testing"

	"dlc/internal/token"
)

func TestClassification(t *testing.T) {
	cases := []struct {
		kind                  token.Kind
		literal, keyword, op bool
	}{
		{token.IntLit, true, false, false},
		{token.KwTrue, true, true, false},
		{token.KwFunc, false, true, false},
		{token.ColonAssign, false, false, true},
		{token.RBracket, false, false, true},
		{token.Ident, false, false, false},
		{token.EOF, false, false, false},
	}
	for _, c := range cases {
		tok := token.Token{Kind: c.kind}
		if tok.IsLiteral() != c.literal || tok.IsKeyword() != c.keyword || tok.IsPunctOrOp() != c.op {
			t.Errorf("%v: literal=%v keyword=%v op=%v", c.kind, tok.IsLiteral(), tok.IsKeyword(), tok.IsPunctOrOp())
		}
	}
}

func TestLookupKeyword(t *testing.T) {
	for _, kw := range []string{"func", "let", "in", "if", "then", "else", "for", "do", "true", "false"} {
		k, ok := token.LookupKeyword(kw)
		if !ok {
			t.Errorf("%q not a keyword", kw)
			continue
		}
		if got := k.String(); got != "'"+kw+"'" {
			t.Errorf("String() = %s", got)
		}
	}
	if _, ok := token.LookupKeyword("Func"); ok {
		t.Error("keywords are case sensitive")
	}
	if _, ok := token.LookupKeyword("str_find"); ok {
		t.Error("natives are identifiers")
	}
}

package lexer

import (
	"golang.org/x/text/unicode/norm"

	"dlc/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword сканирует [Ident] и проверяет через LookupKeyword.
// Unicode-идентификаторы приводятся к NFC, чтобы "é" и "é" были одним именем.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 || !isIdentStartRune(r) {
		return lx.scanOperatorOrPunct()
	}
	ascii := true
	for {
		r, sz = lx.peekRune()
		if sz == 0 || !isIdentContinueRune(r) {
			break
		}
		if r >= utf8RuneSelf {
			ascii = false
		}
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if !ascii {
		text = norm.NFC.String(text)
	}

	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

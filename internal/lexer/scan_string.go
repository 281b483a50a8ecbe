package lexer

import (
	"dlc/internal/diag"
	"dlc/internal/token"
)

// scanString режет "..." целиком, escape-последовательности раскрывает парсер.
// Незакрытая строка обрывается на переводе строки или EOF.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	msg := "unterminated string literal"
loop:
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '"':
			lx.cursor.Bump()
			return lx.textToken(token.StringLit, start)
		case '\\':
			lx.cursor.Bump()
			lx.cursor.Bump()
		case '\n':
			msg = "newline in string literal"
			break loop
		default:
			lx.cursor.Bump()
		}
	}
	tok := lx.textToken(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, msg)
	return tok
}

func (lx *Lexer) textToken(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

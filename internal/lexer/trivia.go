package lexer

import (
	"dlc/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
// - ' ', '\t' и '\r' коалесцируются в один TriviaSpace
// - последовательные '\n' коалесцируются в один TriviaNewline
// - # ... до \n -> TriviaComment
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		var kind token.TriviaKind

		switch b := lx.cursor.Peek(); b {
		case ' ', '\t', '\r':
			for b2 := lx.cursor.Peek(); b2 == ' ' || b2 == '\t' || b2 == '\r'; b2 = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			kind = token.TriviaSpace
		case '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			kind = token.TriviaNewline
		case '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			kind = token.TriviaComment
		default:
			return
		}

		if lx.opts.KeepTrivia {
			sp := lx.cursor.SpanFrom(start)
			lx.hold = append(lx.hold, token.Trivia{
				Kind: kind,
				Span: sp,
				Text: string(lx.file.Content[sp.Start:sp.End]),
			})
		}
	}
}

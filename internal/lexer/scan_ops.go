package lexer

import (
	"fmt"

	"dlc/internal/diag"
	"dlc/internal/token"
)

// Жадность: сначала 2-символьные, затем 1-символьные.
// Принимаются обе исторические формы: "=<" и "<=", "\" и "/", "=" и "==".
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{
			Kind: k,
			Span: sp,
			Text: string(lx.file.Content[sp.Start:sp.End]),
		}
	}

	switch {
	case lx.try2('.', '.'):
		return emit(token.DotDot)
	case lx.try2(':', '='):
		return emit(token.ColonAssign)
	case lx.try2('&', '&'):
		return emit(token.AndAnd)
	case lx.try2('|', '|'):
		return emit(token.OrOr)
	case lx.try2('=', '='):
		return emit(token.Eq)
	case lx.try2('!', '='):
		return emit(token.BangEq)
	case lx.try2('<', '='), lx.try2('=', '<'):
		return emit(token.LtEq)
	case lx.try2('>', '='):
		return emit(token.GtEq)
	}

	switch ch := lx.cursor.Peek(); ch {
	case '+':
		return lx.one(emit, token.Plus)
	case '-':
		return lx.one(emit, token.Minus)
	case '*':
		return lx.one(emit, token.Star)
	case '/', '\\':
		return lx.one(emit, token.Slash)
	case '=':
		return lx.one(emit, token.Eq)
	case '!':
		return lx.one(emit, token.Bang)
	case '<':
		return lx.one(emit, token.Lt)
	case '>':
		return lx.one(emit, token.Gt)
	case ':':
		return lx.one(emit, token.Colon)
	case ',':
		return lx.one(emit, token.Comma)
	case '.':
		return lx.one(emit, token.Dot)
	case '(':
		return lx.one(emit, token.LParen)
	case ')':
		return lx.one(emit, token.RParen)
	case '[':
		return lx.one(emit, token.LBracket)
	case ']':
		return lx.one(emit, token.RBracket)
	}

	// неизвестный символ, целиком руна
	r, _ := lx.peekRune()
	lx.bumpRune()
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnknownChar, sp, fmt.Sprintf("unknown character %q", r))
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) one(emit func(token.Kind) token.Token, k token.Kind) token.Token {
	lx.cursor.Bump()
	return emit(k)
}

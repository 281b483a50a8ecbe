package token

import "dlc/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaComment // # до конца строки
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

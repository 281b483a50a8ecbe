// Package token defines lexical token kinds and trivia for DFL sources.
// Invariants:
//   - Token.Text is a slice of the original source, except identifiers,
//     which are NFC-normalised by the lexer.
//   - Token.Span covers the token's bytes in the source file.
//   - Native function names (int, str_find, ...) are identifiers.
//     They are recognised by the parser, not the lexer.
package token

package token

var keywords = map[string]Kind{
	"func":  KwFunc,
	"let":   KwLet,
	"in":    KwIn,
	"if":    KwIf,
	"then":  KwThen,
	"else":  KwElse,
	"for":   KwFor,
	"do":    KwDo,
	"true":  KwTrue,
	"false": KwFalse,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

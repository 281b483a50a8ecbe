package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident

	KwFunc  // func
	KwLet   // let
	KwIn    // in
	KwIf    // if
	KwThen  // then
	KwElse  // else
	KwFor   // for
	KwDo    // do
	KwTrue  // true
	KwFalse // false

	IntLit
	FloatLit
	StringLit

	Plus        // +
	Minus       // -
	Star        // *
	Slash       // / или \
	Lt          // <
	LtEq        // <= или =<
	Gt          // >
	GtEq        // >=
	Eq          // = или ==
	BangEq      // !=
	Bang        // !
	AndAnd      // &&
	OrOr        // ||
	ColonAssign // :=
	Colon       // :
	Comma       // ,
	Dot         // .
	DotDot      // ..
	LParen      // (
	RParen      // )
	LBracket    // [
	RBracket    // ]
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	EOF:         "EOF",
	Ident:       "identifier",
	KwFunc:      "'func'",
	KwLet:       "'let'",
	KwIn:        "'in'",
	KwIf:        "'if'",
	KwThen:      "'then'",
	KwElse:      "'else'",
	KwFor:       "'for'",
	KwDo:        "'do'",
	KwTrue:      "'true'",
	KwFalse:     "'false'",
	IntLit:      "integer",
	FloatLit:    "float",
	StringLit:   "string",
	Plus:        "'+'",
	Minus:       "'-'",
	Star:        "'*'",
	Slash:       "'/'",
	Lt:          "'<'",
	LtEq:        "'<='",
	Gt:          "'>'",
	GtEq:        "'>='",
	Eq:          "'='",
	BangEq:      "'!='",
	Bang:        "'!'",
	AndAnd:      "'&&'",
	OrOr:        "'||'",
	ColonAssign: "':='",
	Colon:       "':'",
	Comma:       "','",
	Dot:         "'.'",
	DotDot:      "'..'",
	LParen:      "'('",
	RParen:      "')'",
	LBracket:    "'['",
	RBracket:    "']'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

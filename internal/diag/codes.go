package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003

	// Синтаксические
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynUnexpectedEOF   Code = 2002

	// Семантические
	SemaInfo              Code = 3000
	SemaDuplicateFunction Code = 3001
	SemaDuplicateName     Code = 3002
	SemaUnknownFunction   Code = 3003
	SemaUnknownName       Code = 3004
	SemaWrongArgCount     Code = 3005
	SemaTypeMismatch      Code = 3006
	SemaWrongType         Code = 3007
	SemaMissingEntry      Code = 3008

	// I/O
	IOLoadFileError Code = 4001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		LexInfo:               "Lexical information",
		LexUnknownChar:        "Unknown character",
		LexUnterminatedString: "Unterminated string literal",
		LexBadNumber:          "Malformed number literal",
		SynInfo:               "Syntax information",
		SynUnexpectedToken:    "Unexpected token",
		SynUnexpectedEOF:      "Unexpected end of file",
		SemaInfo:              "Semantic information",
		SemaDuplicateFunction: "Duplicate function definition",
		SemaDuplicateName:     "Duplicate name in scope",
		SemaUnknownFunction:   "Call to an unknown function",
		SemaUnknownName:       "Unknown name",
		SemaWrongArgCount:     "Wrong number of arguments",
		SemaTypeMismatch:      "Branch types do not match",
		SemaWrongType:         "Operand has the wrong type",
		SemaMissingEntry:      "Entry function is missing",
		IOLoadFileError:       "I/O load file error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

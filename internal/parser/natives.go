package parser

import "dlc/internal/igr"

// native описывает встроенную функцию DFL: имя в исходнике → opcode.
// TypeUnknown в In означает "любой тип".
type native struct {
	Code string
	In   []igr.Type
	Out  igr.Type
}

var (
	anyT  = igr.TypeUnknown
	intT  = igr.TypeInt
	strT  = igr.TypeString
	listT = igr.TypeArray
)

var natives = map[string]native{
	"bool":  {"bool", []igr.Type{anyT}, igr.TypeBool},
	"int":   {"int", []igr.Type{anyT}, intT},
	"flt":   {"float", []igr.Type{anyT}, igr.TypeFloat},
	"str":   {"string", []igr.Type{anyT}, strT},
	"arr":   {"array", []igr.Type{anyT}, listT},
	"tup":   {"tuple", []igr.Type{anyT}, igr.TypeTuple},
	"floor": {"floor", []igr.Type{anyT}, intT},
	"ceil":  {"ceil", []igr.Type{anyT}, intT},
	"min":   {"min", []igr.Type{anyT}, anyT},
	"max":   {"max", []igr.Type{anyT}, anyT},

	"str_contains":  {"strContains", []igr.Type{strT, strT}, igr.TypeBool},
	"str_find":      {"strFind", []igr.Type{strT, strT}, intT},
	"str_upperCase": {"strUpper", []igr.Type{strT}, strT},
	"str_lowerCase": {"strLower", []igr.Type{strT}, strT},
	"str_substring": {"strSub", []igr.Type{strT, intT}, strT},
	"str_reverse":   {"strRev", []igr.Type{strT}, strT},
	"str_append":    {"strApp", []igr.Type{listT, listT}, listT},

	"arr_empty":  {"arrIsEmpty", []igr.Type{listT}, igr.TypeBool},
	"arr_length": {"arrLen", []igr.Type{listT}, intT},
	"arr_create": {"arrCreate", []igr.Type{intT, anyT}, listT},
	"arr_concat": {"arrCat", []igr.Type{listT, listT}, listT},
	"arr_subset": {"arrSub", []igr.Type{listT, intT, intT}, listT},
}

// IsNative reports whether name is a built-in function.
func IsNative(name string) bool {
	_, ok := natives[name]
	return ok
}

// NativeNames returns the built-in function names mapped to their opcodes.
func NativeNames() map[string]string {
	out := make(map[string]string, len(natives))
	for name, n := range natives {
		out[name] = n.Code
	}
	return out
}

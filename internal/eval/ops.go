package eval

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"dlc/internal/igr"
)

// Op is a native implementation of one opcode. Arity -1 accepts any
// number of arguments.
type Op struct {
	Arity int
	Fn    func(args []igr.Value) (igr.Value, error)
}

var ops = map[string]Op{
	"add":    {2, arith("add", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })},
	"sub":    {2, arith("sub", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })},
	"mul":    {2, arith("mul", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })},
	"div":    {2, opDiv},
	"less":   {2, compare("less", func(c int) bool { return c < 0 })},
	"lessEq": {2, compare("lessEq", func(c int) bool { return c <= 0 })},
	"more":   {2, compare("more", func(c int) bool { return c > 0 })},
	"moreEq": {2, compare("moreEq", func(c int) bool { return c >= 0 })},
	"equals": {2, func(a []igr.Value) (igr.Value, error) { return igr.BoolValue(equal(a[0], a[1])), nil }},
	"notEq":  {2, func(a []igr.Value) (igr.Value, error) { return igr.BoolValue(!equal(a[0], a[1])), nil }},
	"and":    {2, logic("and", func(a, b bool) bool { return a && b })},
	"or":     {2, logic("or", func(a, b bool) bool { return a || b })},
	"not":    {1, opNot},
	"neg":    {1, opNeg},

	"int":    {1, opInt},
	"bool":   {1, opBool},
	"float":  {1, opFloat},
	"string": {1, opString},
	"array":  {-1, func(a []igr.Value) (igr.Value, error) { return igr.ArrayValue(a...), nil }},
	"tuple":  {-1, func(a []igr.Value) (igr.Value, error) { return igr.ArrayValue(a...), nil }},
	"floor":  {1, rounding("floor", math.Floor)},
	"ceil":   {1, rounding("ceil", math.Ceil)},
	"min":    {1, extreme("min", func(c int) bool { return c < 0 })},
	"max":    {1, extreme("max", func(c int) bool { return c > 0 })},

	"arrGet": {2, opArrGet},
	"range":  {2, opRange},

	"strContains": {2, strs2("strContains", func(s, sub string) igr.Value { return igr.BoolValue(strings.Contains(s, sub)) })},
	"strFind":     {2, strs2("strFind", func(s, sub string) igr.Value { return igr.IntValue(int64(strings.Index(s, sub))) })},
	"strUpper":    {1, str1("strUpper", strings.ToUpper)},
	"strLower":    {1, str1("strLower", strings.ToLower)},
	"strRev":      {1, str1("strRev", reverse)},
	"strSub":      {2, opStrSub},
	"strApp":      {2, opConcat("strApp")},
	"arrIsEmpty":  {1, opArrIsEmpty},
	"arrLen":      {1, opArrLen},
	"arrCreate":   {2, opArrCreate},
	"arrCat":      {2, opConcat("arrCat")},
	"arrSub":      {3, opArrSub},
}

// Lookup returns the native implementation of an opcode.
func Lookup(code string) (Op, bool) {
	op, ok := ops[code]
	return op, ok
}

// Apply runs an opcode on already computed arguments.
func Apply(code string, args []igr.Value) (igr.Value, error) {
	op, ok := ops[code]
	if !ok {
		return igr.Value{}, fmt.Errorf("%w: opcode %q", ErrUnsupported, code)
	}
	if op.Arity >= 0 && op.Arity != len(args) {
		return igr.Value{}, runtimeErr(code, "takes %d arguments, got %d", op.Arity, len(args))
	}
	return op.Fn(args)
}

func isNum(v igr.Value) bool { return v.Kind == igr.ValueInt || v.Kind == igr.ValueFloat }

func toFloat(v igr.Value) float64 {
	if v.Kind == igr.ValueInt {
		return float64(v.Int)
	}
	return v.Float
}

func arith(code string, fi func(a, b int64) int64, ff func(a, b float64) float64) func([]igr.Value) (igr.Value, error) {
	return func(a []igr.Value) (igr.Value, error) {
		x, y := a[0], a[1]
		switch {
		case x.Kind == igr.ValueInt && y.Kind == igr.ValueInt:
			return igr.IntValue(fi(x.Int, y.Int)), nil
		case isNum(x) && isNum(y):
			return igr.FloatValue(ff(toFloat(x), toFloat(y))), nil
		case code == "add" && x.Kind == igr.ValueString && y.Kind == igr.ValueString:
			return igr.StringValue(x.Str + y.Str), nil
		default:
			return igr.Value{}, runtimeErr(code, "bad operands %s, %s", x, y)
		}
	}
}

func opDiv(a []igr.Value) (igr.Value, error) {
	x, y := a[0], a[1]
	switch {
	case x.Kind == igr.ValueInt && y.Kind == igr.ValueInt:
		if y.Int == 0 {
			return igr.Value{}, runtimeErr("div", "division by zero")
		}
		return igr.IntValue(x.Int / y.Int), nil
	case isNum(x) && isNum(y):
		if toFloat(y) == 0 {
			return igr.Value{}, runtimeErr("div", "division by zero")
		}
		return igr.FloatValue(toFloat(x) / toFloat(y)), nil
	default:
		return igr.Value{}, runtimeErr("div", "bad operands %s, %s", x, y)
	}
}

// order orders two numbers or two strings.
func order(code string, x, y igr.Value) (int, error) {
	switch {
	case x.Kind == igr.ValueInt && y.Kind == igr.ValueInt:
		return compareOrdered(x.Int, y.Int), nil
	case isNum(x) && isNum(y):
		return compareOrdered(toFloat(x), toFloat(y)), nil
	case x.Kind == igr.ValueString && y.Kind == igr.ValueString:
		return strings.Compare(x.Str, y.Str), nil
	default:
		return 0, runtimeErr(code, "cannot compare %s and %s", x, y)
	}
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compare(code string, pred func(int) bool) func([]igr.Value) (igr.Value, error) {
	return func(a []igr.Value) (igr.Value, error) {
		c, err := order(code, a[0], a[1])
		if err != nil {
			return igr.Value{}, err
		}
		return igr.BoolValue(pred(c)), nil
	}
}

// equal treats ints and floats as numbers, everything else structurally.
func equal(x, y igr.Value) bool {
	if isNum(x) && isNum(y) && x.Kind != y.Kind {
		return toFloat(x) == toFloat(y)
	}
	return x.Equal(y)
}

func truth(code string, v igr.Value) (bool, error) {
	switch v.Kind {
	case igr.ValueBool:
		return v.Bool, nil
	case igr.ValueInt:
		return v.Int != 0, nil
	default:
		return false, runtimeErr(code, "%s is not a boolean", v)
	}
}

func logic(code string, fn func(a, b bool) bool) func([]igr.Value) (igr.Value, error) {
	return func(a []igr.Value) (igr.Value, error) {
		x, err := truth(code, a[0])
		if err != nil {
			return igr.Value{}, err
		}
		y, err := truth(code, a[1])
		if err != nil {
			return igr.Value{}, err
		}
		return igr.BoolValue(fn(x, y)), nil
	}
}

func opNot(a []igr.Value) (igr.Value, error) {
	b, err := truth("not", a[0])
	if err != nil {
		return igr.Value{}, err
	}
	return igr.BoolValue(!b), nil
}

func opNeg(a []igr.Value) (igr.Value, error) {
	switch v := a[0]; v.Kind {
	case igr.ValueInt:
		return igr.IntValue(-v.Int), nil
	case igr.ValueFloat:
		return igr.FloatValue(-v.Float), nil
	default:
		return igr.Value{}, runtimeErr("neg", "bad operand %s", v)
	}
}

func opInt(a []igr.Value) (igr.Value, error) {
	switch v := a[0]; v.Kind {
	case igr.ValueInt:
		return v, nil
	case igr.ValueFloat:
		return igr.IntValue(int64(v.Float)), nil
	case igr.ValueBool:
		if v.Bool {
			return igr.IntValue(1), nil
		}
		return igr.IntValue(0), nil
	case igr.ValueString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return igr.Value{}, runtimeErr("int", "%q is not an integer", v.Str)
		}
		return igr.IntValue(i), nil
	default:
		return igr.Value{}, runtimeErr("int", "cannot convert %s", v)
	}
}

func opBool(a []igr.Value) (igr.Value, error) {
	switch v := a[0]; v.Kind {
	case igr.ValueBool:
		return v, nil
	case igr.ValueInt:
		return igr.BoolValue(v.Int != 0), nil
	case igr.ValueFloat:
		return igr.BoolValue(v.Float != 0), nil
	case igr.ValueString:
		return igr.BoolValue(v.Str != ""), nil
	case igr.ValueArray:
		return igr.BoolValue(len(v.Elems) != 0), nil
	default:
		return igr.BoolValue(false), nil
	}
}

func opFloat(a []igr.Value) (igr.Value, error) {
	switch v := a[0]; v.Kind {
	case igr.ValueInt, igr.ValueFloat:
		return igr.FloatValue(toFloat(v)), nil
	case igr.ValueString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return igr.Value{}, runtimeErr("float", "%q is not a number", v.Str)
		}
		return igr.FloatValue(f), nil
	default:
		return igr.Value{}, runtimeErr("float", "cannot convert %s", v)
	}
}

func opString(a []igr.Value) (igr.Value, error) {
	if a[0].Kind == igr.ValueString {
		return a[0], nil
	}
	return igr.StringValue(a[0].String()), nil
}

func rounding(code string, fn func(float64) float64) func([]igr.Value) (igr.Value, error) {
	return func(a []igr.Value) (igr.Value, error) {
		if !isNum(a[0]) {
			return igr.Value{}, runtimeErr(code, "bad operand %s", a[0])
		}
		return igr.IntValue(int64(fn(toFloat(a[0])))), nil
	}
}

func extreme(code string, better func(int) bool) func([]igr.Value) (igr.Value, error) {
	return func(a []igr.Value) (igr.Value, error) {
		arr := a[0]
		if arr.Kind != igr.ValueArray || len(arr.Elems) == 0 {
			return igr.Value{}, runtimeErr(code, "needs a non-empty array, got %s", arr)
		}
		best := arr.Elems[0]
		for _, e := range arr.Elems[1:] {
			c, err := order(code, e, best)
			if err != nil {
				return igr.Value{}, err
			}
			if better(c) {
				best = e
			}
		}
		return best, nil
	}
}

func index(code string, v igr.Value, n int) (int, error) {
	if v.Kind != igr.ValueInt {
		return 0, runtimeErr(code, "index %s is not an int", v)
	}
	if v.Int < 0 || v.Int > int64(n) {
		return 0, runtimeErr(code, "index %d out of range [0, %d]", v.Int, n)
	}
	return int(v.Int), nil
}

func opArrGet(a []igr.Value) (igr.Value, error) {
	arr := a[0]
	if arr.Kind != igr.ValueArray {
		return igr.Value{}, runtimeErr("arrGet", "%s is not an array", arr)
	}
	i, err := index("arrGet", a[1], len(arr.Elems))
	if err != nil {
		return igr.Value{}, err
	}
	if i == len(arr.Elems) {
		return igr.Value{}, runtimeErr("arrGet", "index %d out of range", i)
	}
	return arr.Elems[i], nil
}

// maxRange bounds the size of arrays built by range and arrCreate.
const maxRange = 1 << 20

// opRange builds the inclusive range [from..to].
func opRange(a []igr.Value) (igr.Value, error) {
	from, to := a[0], a[1]
	if from.Kind != igr.ValueInt || to.Kind != igr.ValueInt {
		return igr.Value{}, runtimeErr("range", "bounds %s, %s are not ints", from, to)
	}
	if to.Int < from.Int {
		return igr.ArrayValue(), nil
	}
	if to.Int-from.Int >= maxRange {
		return igr.Value{}, runtimeErr("range", "range of %d elements is too large", to.Int-from.Int+1)
	}
	elems := make([]igr.Value, 0, to.Int-from.Int+1)
	for i := from.Int; i <= to.Int; i++ {
		elems = append(elems, igr.IntValue(i))
	}
	return igr.Value{Kind: igr.ValueArray, Elems: elems}, nil
}

func str1(code string, fn func(string) string) func([]igr.Value) (igr.Value, error) {
	return func(a []igr.Value) (igr.Value, error) {
		if a[0].Kind != igr.ValueString {
			return igr.Value{}, runtimeErr(code, "%s is not a string", a[0])
		}
		return igr.StringValue(fn(a[0].Str)), nil
	}
}

func strs2(code string, fn func(a, b string) igr.Value) func([]igr.Value) (igr.Value, error) {
	return func(a []igr.Value) (igr.Value, error) {
		if a[0].Kind != igr.ValueString || a[1].Kind != igr.ValueString {
			return igr.Value{}, runtimeErr(code, "operands %s, %s are not strings", a[0], a[1])
		}
		return fn(a[0].Str, a[1].Str), nil
	}
}

func reverse(s string) string {
	r := []rune(s)
	slices.Reverse(r)
	return string(r)
}

func opStrSub(a []igr.Value) (igr.Value, error) {
	if a[0].Kind != igr.ValueString {
		return igr.Value{}, runtimeErr("strSub", "%s is not a string", a[0])
	}
	r := []rune(a[0].Str)
	i, err := index("strSub", a[1], len(r))
	if err != nil {
		return igr.Value{}, err
	}
	return igr.StringValue(string(r[i:])), nil
}

func opConcat(code string) func([]igr.Value) (igr.Value, error) {
	return func(a []igr.Value) (igr.Value, error) {
		x, y := a[0], a[1]
		switch {
		case x.Kind == igr.ValueString && y.Kind == igr.ValueString:
			return igr.StringValue(x.Str + y.Str), nil
		case x.Kind == igr.ValueArray && y.Kind == igr.ValueArray:
			return igr.ArrayValue(append(slices.Clone(x.Elems), y.Elems...)...), nil
		default:
			return igr.Value{}, runtimeErr(code, "cannot concatenate %s and %s", x, y)
		}
	}
}

func opArrIsEmpty(a []igr.Value) (igr.Value, error) {
	if a[0].Kind != igr.ValueArray {
		return igr.Value{}, runtimeErr("arrIsEmpty", "%s is not an array", a[0])
	}
	return igr.BoolValue(len(a[0].Elems) == 0), nil
}

func opArrLen(a []igr.Value) (igr.Value, error) {
	switch a[0].Kind {
	case igr.ValueArray:
		return igr.IntValue(int64(len(a[0].Elems))), nil
	case igr.ValueString:
		return igr.IntValue(int64(len([]rune(a[0].Str)))), nil
	default:
		return igr.Value{}, runtimeErr("arrLen", "%s has no length", a[0])
	}
}

func opArrCreate(a []igr.Value) (igr.Value, error) {
	n := a[0]
	if n.Kind != igr.ValueInt || n.Int < 0 || n.Int > maxRange {
		return igr.Value{}, runtimeErr("arrCreate", "bad length %s", n)
	}
	elems := make([]igr.Value, n.Int)
	for i := range elems {
		elems[i] = a[1]
	}
	return igr.Value{Kind: igr.ValueArray, Elems: elems}, nil
}

func opArrSub(a []igr.Value) (igr.Value, error) {
	arr := a[0]
	if arr.Kind != igr.ValueArray {
		return igr.Value{}, runtimeErr("arrSub", "%s is not an array", arr)
	}
	from, err := index("arrSub", a[1], len(arr.Elems))
	if err != nil {
		return igr.Value{}, err
	}
	to, err := index("arrSub", a[2], len(arr.Elems))
	if err != nil {
		return igr.Value{}, err
	}
	if to < from {
		return igr.Value{}, runtimeErr("arrSub", "end %d before start %d", to, from)
	}
	return igr.ArrayValue(arr.Elems[from:to]...), nil
}

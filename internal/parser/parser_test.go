package parser_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dlc/internal/diag"
	"dlc/internal/eval"
	"dlc/internal/igr"
	"dlc/internal/lexer"
	"dlc/internal/parser"
	"dlc/internal/source"
	"dlc/internal/testkit"
)

func parse(t *testing.T, src, entry string) (parser.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.dfl", []byte(src)))
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	res := parser.ParseFile(fs, lx, parser.Options{Reporter: rep, Entry: entry})
	return res, bag
}

func mustParse(t *testing.T, src string) *igr.Graph {
	t.Helper()
	res, bag := parse(t, src, "main")
	if bag.HasErrors() || res.Errors != 0 {
		for _, d := range bag.Items() {
			t.Errorf("%s %s", d.Code.ID(), d.Message)
		}
		t.Fatalf("unexpected errors (%d)", res.Errors)
	}
	if err := igr.Validate(res.Graph); err != nil {
		t.Fatalf("invalid graph: %v", err)
	}
	if err := testkit.CheckGraphInvariants(res.Graph); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	return res.Graph
}

func run(t *testing.T, g *igr.Graph, args ...igr.Value) igr.Value {
	t.Helper()
	v, err := eval.New(g).Call(context.Background(), "main", args)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	return v
}

func ints(vs ...int64) igr.Value {
	out := make([]igr.Value, len(vs))
	for i, v := range vs {
		out[i] = igr.IntValue(v)
	}
	return igr.ArrayValue(out...)
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		args []igr.Value
		want igr.Value
	}{
		{
			name: "factorial",
			src: `# factorial
func fac(n): if n < 2 then 1 else n * fac(n - 1)
func main(n): fac(n)`,
			args: []igr.Value{igr.IntValue(5)},
			want: igr.IntValue(120),
		},
		{
			name: "fibonacci",
			src: `func fib(n): if n <= 1 then n else fib(n - 1) + fib(n - 2)
func main(n): fib(n)`,
			args: []igr.Value{igr.IntValue(10)},
			want: igr.IntValue(55),
		},
		{
			name: "forin",
			src:  `func main(a, b, c, d): for el in [a..b] do if el > 0 then el + c + d + 7 else 0`,
			args: []igr.Value{igr.IntValue(1), igr.IntValue(10), igr.IntValue(3), igr.IntValue(4)},
			want: ints(15, 16, 17, 18, 19, 20, 21, 22, 23, 24),
		},
		{
			name: "let",
			src: `func main(a, b):
  let s := a + b
      d := a - b
  in s * d`,
			args: []igr.Value{igr.IntValue(7), igr.IntValue(3)},
			want: igr.IntValue(40),
		},
		{
			name: "forward call",
			src: `func main(): triple(2)
func triple(x): x * 3`,
			want: igr.IntValue(6),
		},
		{
			name: "precedence",
			src:  `func main(): 1 + 2 * 3 - -4 / 2`,
			want: igr.IntValue(9),
		},
		{
			name: "logic",
			src:  `func main(a): !(a < 0) && a != 3 || a = 10`,
			args: []igr.Value{igr.IntValue(3)},
			want: igr.BoolValue(false),
		},
		{
			name: "arrays and natives",
			src:  `func main(): arr_length([1, 2, 3]) + [10, 20, 30][1]`,
			want: igr.IntValue(23),
		},
		{
			name: "strings",
			src:  `func main(s): str_upperCase(str_reverse(s))`,
			args: []igr.Value{igr.StringValue("abc")},
			want: igr.StringValue("CBA"),
		},
		{
			name: "capture through nested branches",
			src: `func main(x, y):
  if x > 0 then
    if y > 0 then x + y else x
  else y`,
			args: []igr.Value{igr.IntValue(2), igr.IntValue(5)},
			want: igr.IntValue(7),
		},
		{
			name: "empty array",
			src:  `func main(): arr_empty([])`,
			want: igr.BoolValue(true),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustParse(t, tt.src)
			got := run(t, g, tt.args...)
			if !got.Equal(tt.want) {
				t.Errorf("main(%v) = %s, want %s", tt.args, got, tt.want)
			}
		})
	}
}

func TestIfShape(t *testing.T) {
	g := mustParse(t, `func main(n): if n < 1 then 1 else n * 2`)

	if got := testkit.CountOps(g, "int"); got != 1 {
		t.Errorf("int coercions = %d, want 1", got)
	}
	var iff *igr.Node
	for _, n := range testkit.Nodes(g) {
		if n.Kind == igr.NodeIf {
			iff = n
		}
	}
	if iff == nil {
		t.Fatal("no if node")
	}
	// условие + захваченный n
	if iff.Arity() != 2 {
		t.Errorf("if arity = %d, want 2", iff.Arity())
	}
	src, ok := iff.In[0].Source()
	if !ok || g.Node(src.Owner).Op.Code != "int" {
		t.Errorf("condition is not fed by int")
	}
	if iff.Out.Type != igr.TypeInt {
		t.Errorf("if type = %s", iff.Out.Type)
	}
}

func TestCallsAndRecursion(t *testing.T) {
	g := mustParse(t, `func fac(n): if n < 2 then 1 else n * fac(n - 1)
func main(n): fac(n) + fac(n)`)

	fac, err := g.Function("fac")
	if err != nil {
		t.Fatal(err)
	}
	if !fac.Recursive {
		t.Error("fac must be marked recursive")
	}
	if got := testkit.CountCalls(g, "fac"); got != 3 {
		t.Errorf("calls to fac = %d, want 3", got)
	}
	if diff := cmp.Diff([]string{"fac", "main"}, g.FunctionNames()); diff != "" {
		t.Errorf("functions (-want +got):\n%s", diff)
	}
}

func TestLiteralReuse(t *testing.T) {
	g := mustParse(t, `func main(): let k := 2 in k * k + k`)
	if got := run(t, g); !got.Equal(igr.IntValue(6)) {
		t.Errorf("got %s", got)
	}
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []diag.Code
	}{
		{"unknown name", `func main(): x + 1`, []diag.Code{diag.SemaUnknownName}},
		{"unknown function", `func main(): foo(1)`, []diag.Code{diag.SemaUnknownFunction}},
		{"wrong arg count", "func f(a): a\nfunc main(): f(1, 2)", []diag.Code{diag.SemaWrongArgCount}},
		{"native arg count", `func main(): str_reverse("a", "b")`, []diag.Code{diag.SemaWrongArgCount}},
		{"native arg type", `func main(): str_find(1, "b")`, []diag.Code{diag.SemaWrongType}},
		{"duplicate function", "func main(): 1\nfunc main(): 2", []diag.Code{diag.SemaDuplicateFunction}},
		{"native redefined", "func int(x): x\nfunc main(): 1", []diag.Code{diag.SemaDuplicateFunction}},
		{"duplicate param", `func main(a, a): a`, []diag.Code{diag.SemaDuplicateName}},
		{"duplicate let", `func main(): let a := 1 a := 2 in a`, []diag.Code{diag.SemaDuplicateName}},
		{"branch mismatch", `func main(): if true then 1 else false`, []diag.Code{diag.SemaTypeMismatch}},
		{"operand type", `func main(): 1 + true`, []diag.Code{diag.SemaWrongType}},
		{"condition type", `func main(): if 1 then 2 else 3`, []diag.Code{diag.SemaWrongType}},
		{"missing entry", `func f(): 1`, []diag.Code{diag.SemaMissingEntry}},
		{"unexpected eof", `func main(): 1 +`, []diag.Code{diag.SynUnexpectedEOF}},
		{"unexpected token", "func f(: 1\nfunc main(): 2", []diag.Code{diag.SynUnexpectedToken}},
		{"unknown char", `func main(): 1 $ 2`, []diag.Code{diag.LexUnknownChar, diag.SynUnexpectedToken}},
		{"several errors", "func main(): a + b", []diag.Code{diag.SemaUnknownName, diag.SemaUnknownName}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, bag := parse(t, tt.src, "main")
			var got []diag.Code
			for _, d := range bag.Items() {
				got = append(got, d.Code)
			}
			if diff := cmp.Diff(tt.codes, got); diff != "" {
				t.Errorf("codes (-want +got):\n%s", diff)
			}
			if res.Errors == 0 {
				t.Error("Result.Errors must be non-zero")
			}
		})
	}
}

func TestRecoveryKeepsLaterFunctions(t *testing.T) {
	res, bag := parse(t, "func broken(: 1\nfunc main(): 2", "main")
	if !bag.HasErrors() {
		t.Fatal("expected a syntax error")
	}
	if !res.Graph.HasFunction("main") {
		t.Error("main must still be parsed after the broken function")
	}
}

func TestWrongArgCountNote(t *testing.T) {
	_, bag := parse(t, "func f(a): a\nfunc main(): f()", "main")
	if bag.Len() != 1 {
		t.Fatalf("diags = %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Message != "'f' expects 1 argument, got 0" {
		t.Errorf("message = %q", d.Message)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "'f' defined here" {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestNatives(t *testing.T) {
	names := parser.NativeNames()
	if names["str_upperCase"] != "strUpper" || names["flt"] != "float" || names["arr_subset"] != "arrSub" {
		t.Errorf("unexpected native table %v", names)
	}
	if !parser.IsNative("arr_length") || parser.IsNative("main") {
		t.Error("IsNative mismatch")
	}
}

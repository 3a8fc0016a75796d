package numfu

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func newTestInterp(t *testing.T, o Options) *Interp {
	t.Helper()
	if o.Stdout == nil {
		o.Stdout = io.Discard
	}
	in, err := New(o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return in
}

// evalLast evaluates src and returns the value of the last top-level
// expression (Unit when the program only runs statements).
func evalLast(t *testing.T, in *Interp, src string) Value {
	t.Helper()
	last := Unit
	err := in.EvalSource("<test>", src, in.Global, func(v Value) { last = v })
	if err != nil {
		t.Fatalf("eval error: %v\nsource:\n%s", err, src)
	}
	return last
}

// run evaluates src in a fresh interpreter and renders the last value the
// way the top level would.
func run(t *testing.T, src string) string {
	t.Helper()
	in := newTestInterp(t, Options{})
	return in.FormatTop(evalLast(t, in, src))
}

func evalErr(t *testing.T, src string) error {
	t.Helper()
	in := newTestInterp(t, Options{})
	err := in.EvalSource("<test>", src, in.Global, nil)
	if err == nil {
		t.Fatalf("expected error, got nil\nsource:\n%s", src)
	}
	return err
}

func wantKind(t *testing.T, err error, kind string) *Error {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("want *Error of kind %s, got %T: %v", kind, err, err)
	}
	if e.Kind != kind {
		t.Fatalf("want kind %s, got %s (%v)", kind, e.Kind, err)
	}
	return e
}

func wantErrContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("want error containing %q, got: %v", substr, err)
	}
}

// runTable renders each source and compares against the expected output.
func runTable(t *testing.T, cases []struct{ src, want string }) {
	t.Helper()
	for _, c := range cases {
		if got := run(t, c.src); got != c.want {
			t.Errorf("%s = %q, want %q", c.src, got, c.want)
		}
	}
}

// --- literals and arithmetic -----------------------------------------------

func Test_Eval_Literals(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"42", "42"},
		{"3.14", "3.14"},
		{`"hi"`, "hi"},
		{"true", "true"},
		{"false", "false"},
		{"[1, 2, 3]", "[1, 2, 3]"},
		{"[]", "[]"},
		{`["a", [1]]`, `["a", [1]]`},
	})
}

func Test_Eval_Arithmetic(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"2 - 3", "-1"},
		{"-5", "-5"},
		{"--5", "5"},
		{"10 / 4", "2.5"},
		{"7 % 4", "3"},
		{"2 ^ 10", "1024"},
		{"2 ^ 3 ^ 2", "512"}, // right-associative
		{"0.1 + 0.2", "0.3"}, // decimal, not binary float
		{"1 / 3 * 3", "1"},
	})
}

func Test_Eval_Precision_Is_Configurable(t *testing.T) {
	in := newTestInterp(t, Options{Precision: 5})
	if got := in.FormatTop(evalLast(t, in, "1 / 3")); got != "0.33333" {
		t.Fatalf("1/3 at precision 5 = %q", got)
	}
	in = newTestInterp(t, Options{Precision: 30})
	if got := in.FormatTop(evalLast(t, in, "1 / 3")); got != "0.333333333333333333333333333333" {
		t.Fatalf("1/3 at precision 30 = %q", got)
	}
}

func Test_Eval_NonFinite_Numbers(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"1 / 0", "inf"},
		{"-1 / 0", "-inf"},
		{"0 / 0", "nan"},
		{"inf", "inf"},
		{"-inf", "-inf"},
		{"nan", "nan"},
		{"isnan(0 / 0)", "true"},
		{"isnan(1)", "false"},
		{"isinf(1 / 0)", "true"},
		{"nan == nan", "false"},
		{"nan != nan", "true"},
		{"nan < 1", "false"},
		{"nan > 1", "false"},
		{"inf > 1e100", "true"},
	})
}

// --- comparisons and logic -------------------------------------------------

func Test_Eval_Comparisons(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"1 < 2", "true"},
		{"2 <= 2", "true"},
		{"3 > 4", "false"},
		{"1 == 1.0", "true"},
		{"1 != 2", "true"},
		{`"a" == "a"`, "true"},
		{`"a" == 1`, "false"},
		{"[1, [2]] == [1, [2]]", "true"},
		{"[1] == [1, 2]", "false"},
	})
}

func Test_Eval_Comparison_Chains(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"1 < 2 < 3", "true"},
		{"1 < 2 < 2", "false"},
		{"1 <= 2 <= 2", "true"},
		{"3 >= 3 > 2", "true"},
		{"1 == 1 != 2", "true"},
	})
}

func Test_Eval_Logic_And_Truthiness(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"true && false", "false"},
		{"true || false", "true"},
		{"!true", "false"},
		{"!0", "true"},
		{"xor(true, false)", "true"},
		{"xor(1, 1)", "false"},
		{"if 0 then 1 else 2", "2"},
		{`if "" then 1 else 2`, "2"},
		{"if [] then 1 else 2", "2"},
		{`if "x" then 1 else 2`, "1"},
		{"if nan then 1 else 2", "1"}, // nan is truthy
		{"Bool([1])", "true"},
		{"Bool(0)", "false"},
	})
}

func Test_Eval_ShortCircuit(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{`false && error("boom")`, "false"},
		{`true || error("boom")`, "true"},
		{`if true then 1 else error("boom")`, "1"},
	})
}

// --- strings and lists -----------------------------------------------------

func Test_Eval_Strings(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{`"a" + "b"`, "ab"},
		{`"ab" * 3`, "ababab"},
		{`3 * "ab"`, "ababab"},
		{`"abc"[1]`, "b"},
		{`"abc"[-1]`, "c"},
		{`length("héllo")`, "5"},
		{`String(42)`, "42"},
		{`Number("12.5") + 0.5`, "13"},
		{`Number("-3")`, "-3"},
	})
}

func Test_Eval_Lists(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"[1, 2] + [3]", "[1, 2, 3]"},
		{"[0] * 3", "[0, 0, 0]"},
		{"[1, 2, 3][0]", "1"},
		{"[1, 2, 3][-1]", "3"},
		{"[1, ...[2, 3], 4]", "[1, 2, 3, 4]"},
		{"append([1], 2)", "[1, 2]"},
		{"length([1, 2, 3])", "3"},
		{`List("ab")`, `["a", "b"]`},
	})
}

func Test_Eval_Index_Errors(t *testing.T) {
	wantKind(t, evalErr(t, "[1, 2][2]"), ErrIndex)
	wantKind(t, evalErr(t, "[1, 2][-3]"), ErrIndex)
	wantKind(t, evalErr(t, `"ab"[5]`), ErrIndex)
	wantKind(t, evalErr(t, "[1][0.5]"), ErrType)
	wantKind(t, evalErr(t, "42[0]"), ErrType)
}

// --- bindings --------------------------------------------------------------

func Test_Eval_Let_Statement_And_Expression(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"let x = 5\nx + 1", "6"},
		{"let x = 1 in x + 1", "2"},
		{"let x = 1, y = 2 in x + y", "3"},
		{"let x = 2 in let y = x * x in y + 1", "5"},
		// let-in may continue as an operand
		{"(let x = 1 in x) + 1", "2"},
	})
}

func Test_Eval_Let_Bindings_Are_Simultaneous(t *testing.T) {
	// the second binding sees the outer x, not the first binding
	src := `
let x = 1
let x = 10, y = x + 1 in y
`
	if got := run(t, src); got != "2" {
		t.Fatalf("simultaneous let = %q, want 2", got)
	}
}

func Test_Eval_Shadowing_And_Rebinding(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"let x = 1\nlet x = x + 1\nx", "2"},
		{"let x = 1\nlet f = {y -> x + y}\nlet x = 100\nf(1)", "101"},
	})
}

func Test_Eval_Const(t *testing.T) {
	if got := run(t, "const k = 7\nk * 2"); got != "14" {
		t.Fatalf("const read = %q", got)
	}
	wantKind(t, evalErr(t, "const k = 1\nlet k = 2"), ErrType)
	wantKind(t, evalErr(t, "const k = 1\nconst k = 2"), ErrType)
	wantKind(t, evalErr(t, "const k = 1\ndel k"), ErrType)
}

func Test_Eval_Del(t *testing.T) {
	wantKind(t, evalErr(t, "let x = 1\ndel x\nx"), ErrName)
	wantKind(t, evalErr(t, "del nothing"), ErrName)
}

// --- functions -------------------------------------------------------------

func Test_Eval_Lambdas_And_Calls(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"{x -> x + 1}(41)", "42"},
		{"{x, y -> x - y}(10, 4)", "6"},
		{"let add = {a, b -> a + b}\nadd(1, 2)", "3"},
	})
}

func Test_Eval_Currying(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"{x, y -> x - y}(10)(4)", "6"},
		{"let add3 = {a, b, c -> a + b + c}\nadd3(1)(2)(3)", "6"},
		{"let add3 = {a, b, c -> a + b + c}\nadd3(1, 2)(3)", "6"},
		{"(+)(1)(2)", "3"},
	})
}

func Test_Eval_Placeholders(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"{x, y -> x - y}(_, 4)(10)", "6"},
		{"let sub10 = {x, y -> x - y}(10, _)\nsub10(3)", "7"},
		{"map([1, 2, 3], _ + 10)", "[11, 12, 13]"},
		{"contains(_, 2)([1, 2])", "true"},
		// holes fill earliest-first
		{"{a, b, c -> [a, b, c]}(_, _, 3)(1)(2)", "[1, 2, 3]"},
	})
}

func Test_Eval_Closure_Capture(t *testing.T) {
	src := `
let make = {a -> {b -> a + b}}
let add2 = make(2)
add2(5)
`
	if got := run(t, src); got != "7" {
		t.Fatalf("closure capture = %q", got)
	}
}

func Test_Eval_Rest_Params(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"{...xs -> xs}(1, 2, 3)", "[1, 2, 3]"},
		{"{x, ...r -> r}(1)", "[]"},
		{"{x, ...r -> [x, r]}(1, 2, 3)", "[1, [2, 3]]"},
		{"{...xs -> sum(xs)}(...[1, 2], 3)", "6"},
	})
}

func Test_Eval_Spread_In_Calls(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"max(...[1, 5, 3])", "5"},
		{"{a, b, c -> a * 100 + b * 10 + c}(...[1, 2], 3)", "123"},
	})
}

func Test_Eval_Named_Lambda_Recursion(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"{fact: n -> if n <= 1 then 1 else n * fact(n - 1)}(10)", "3628800"},
		{"let fib = {n -> if n < 2 then n else fib(n - 1) + fib(n - 2)}\nfib(10)", "55"},
	})
}

func Test_Eval_Tail_Calls_Do_Not_Grow_The_Stack(t *testing.T) {
	src := `
let loop = {n, acc -> if n == 0 then acc else loop(n - 1, acc + 1)}
loop(50000, 0)
`
	if got := run(t, src); got != "50000" {
		t.Fatalf("tail loop = %q", got)
	}
}

func Test_Eval_Recursion_Limit(t *testing.T) {
	in := newTestInterp(t, Options{RecDepth: 32})
	// non-tail recursion: the addition keeps every frame live
	src := `
let f = {n -> if n == 0 then 0 else 1 + f(n - 1)}
f(1000)
`
	err := in.EvalSource("<test>", src, in.Global, nil)
	wantKind(t, err, ErrRecursion)
}

func Test_Eval_Iteration_Limit(t *testing.T) {
	in := newTestInterp(t, Options{IterDepth: 100})
	src := `
let loop = {n -> if n == 0 then 0 else loop(n - 1)}
loop(100000)
`
	err := in.EvalSource("<test>", src, in.Global, nil)
	wantKind(t, err, ErrRecursion)
}

// --- pipelines and composition ---------------------------------------------

func Test_Eval_Pipeline(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"[1, 2, 3] |> length", "3"},
		{"5 |> {x -> x + 1}", "6"},
		{"[3, 1, 2] |> sort |> reverse", "[3, 2, 1]"},
		{"2 |> (_ ^ 10)", "1024"},
	})
}

func Test_Eval_Composition(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"let f = {x -> x + 1} >> {x -> x * 2}\nf(3)", "8"},
		{"({x -> x + 1} >> {x -> x * 2} >> {x -> x - 1})(3)", "7"},
		{"let f = sum >> {x -> x * 10}\nf([1, 2, 3])", "60"},
		{"compose({x -> x + 1}, {x -> x * 3})(1)", "6"},
	})
}

func Test_Eval_Operators_Are_Values(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"(+)(2, 3)", "5"},
		{"reduce([1, 2, 3, 4], (+), 0)", "10"},
		{"map([1, 2, 3], flip((-))(1))", "[0, 1, 2]"},
		{"(>=)(2, 2)", "true"},
	})
}

// --- assertions and user errors --------------------------------------------

func Test_Eval_Assertion_Success_Is_Silent(t *testing.T) {
	in := newTestInterp(t, Options{})
	emitted := 0
	err := in.EvalSource("<test>", "2 + 2 ---> $ == 4", in.Global, func(Value) { emitted++ })
	if err != nil {
		t.Fatalf("assertion should pass: %v", err)
	}
	if emitted != 0 {
		t.Fatalf("passing assertion emitted %d values, want 0", emitted)
	}
}

func Test_Eval_Assertion_Failure(t *testing.T) {
	err := evalErr(t, "2 + 2 ---> $ == 5")
	wantKind(t, err, ErrAssertion)
	wantErrContains(t, err, "Assertion failed")
}

func Test_Eval_Assertion_Predicate_Sees_Dollar(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"sort([3, 1, 2]) ---> length($) == 3\n1", "1"},
		{`"ok" ---> $ == "ok"` + "\n2", "2"},
	})
}

func Test_Eval_Error_Builtin(t *testing.T) {
	err := evalErr(t, `error("boom")`)
	e := wantKind(t, err, ErrRuntime)
	if e.Msg != "boom" {
		t.Fatalf("msg = %q", e.Msg)
	}

	err = evalErr(t, `error("nope", "MyError")`)
	var custom *Error
	if !errors.As(err, &custom) || custom.Kind != "MyError" {
		t.Fatalf("custom kind not preserved: %v", err)
	}
}

func Test_Eval_Assert_Builtin(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"assert(1 < 2)", "true"},
		{"assert(true, 42)", "42"},
	})
	wantKind(t, evalErr(t, "assert(false)"), ErrAssertion)
	wantKind(t, evalErr(t, "assert(1)"), ErrType) // must be a Boolean
}

// --- runtime error kinds ---------------------------------------------------

func Test_Eval_Error_Kinds(t *testing.T) {
	wantKind(t, evalErr(t, "nosuchname"), ErrName)
	wantKind(t, evalErr(t, "42(1)"), ErrType)
	wantKind(t, evalErr(t, `1 + "a"`), ErrType)
	wantKind(t, evalErr(t, `"a" < "b"`), ErrType)
	wantKind(t, evalErr(t, `Number("zzz")`), ErrValue)
	wantKind(t, evalErr(t, "{x -> x}(1, 2)"), ErrType)
}

func Test_Eval_Errors_Carry_Spans(t *testing.T) {
	err := evalErr(t, "let x = 1\nbadname")
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("want *Error, got %v", err)
	}
	if e.Span.Line != 2 {
		t.Fatalf("span line = %d, want 2", e.Span.Line)
	}
}

// --- prelude ---------------------------------------------------------------

func Test_Eval_Prelude_Functions(t *testing.T) {
	runTable(t, []struct{ src, want string }{
		{"id(42)", "42"},
		{"const_(1)(99)", "1"},
		{"flip({a, b -> a - b})(2, 10)", "8"},
		{"head([7, 8])", "7"},
		{"tail([7, 8, 9])", "[8, 9]"},
		{"reduce([1, 2, 3, 4], (*), 1)", "24"},
		{"any([1, 2, 3], {x -> x > 2})", "true"},
		{"any([], {x -> true})", "false"},
		{"all([2, 4], {x -> x % 2 == 0})", "true"},
		{"all([2, 3], {x -> x % 2 == 0})", "false"},
		{`zip([1, 2], ["a", "b", "c"])`, `[[1, "a"], [2, "b"]]`},
		{`enumerate(["a", "b"])`, `[[0, "a"], [1, "b"]]`},
		{"take([1, 2, 3, 4], 2)", "[1, 2]"},
		{"drop([1, 2, 3, 4], 2)", "[3, 4]"},
	})
}

func Test_Eval_Prelude_Is_Shadowable(t *testing.T) {
	if got := run(t, "let id = {x -> x + 1}\nid(1)"); got != "2" {
		t.Fatalf("shadowed prelude = %q", got)
	}
}

// --- emit protocol ---------------------------------------------------------

func Test_Eval_Emit_Skips_Unit(t *testing.T) {
	in := newTestInterp(t, Options{})
	var got []string
	err := in.EvalSource("<test>", "1\nlet x = 2\nprint(\"\")\nx", in.Global, func(v Value) {
		got = append(got, in.FormatTop(v))
	})
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	want := []string{"1", "2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("emitted %v, want %v", got, want)
	}
}

// printer_test.go
package numfu

import (
	"testing"
)

// fmtVal renders the last value of src in structural form.
func fmtVal(t *testing.T, src string) string {
	t.Helper()
	in := newTestInterp(t, Options{})
	return in.FormatValue(evalLast(t, in, src))
}

func fmtTable(t *testing.T, cases []struct{ src, want string }) {
	t.Helper()
	for _, c := range cases {
		if got := fmtVal(t, c.src); got != c.want {
			t.Errorf("%s = %q, want %q", c.src, got, c.want)
		}
	}
}

func Test_Printer_Numbers(t *testing.T) {
	fmtTable(t, []struct{ src, want string }{
		{"0", "0"},
		{"-0", "0"},
		{"42", "42"},
		{"-42", "-42"},
		{"1.5000", "1.5"},
		{"0.1 + 0.2", "0.3"},
		{"1 / 4", "0.25"},
		{"10 ^ 6", "1000000"},
		{"10 ^ -6", "0.000001"},
		{"1 / 0", "inf"},
		{"-1 / 0", "-inf"},
		{"0 / 0", "nan"},
	})
}

func Test_Printer_Scientific_Notation_Boundaries(t *testing.T) {
	// fixed notation holds while the exponent stays near the shown digits
	fmtTable(t, []struct{ src, want string }{
		{"10 ^ 20", "100000000000000000000"},
		{"10 ^ 21", "1e+21"},
		{"10 ^ -7", "1e-7"},
		{"-10 ^ 21", "-1e+21"},
		{"1.5 * 10 ^ 21", "1.5e+21"},
	})
}

func Test_Printer_Precision_Controls_Rounding(t *testing.T) {
	in := newTestInterp(t, Options{Precision: 4})
	if got := in.FormatValue(evalLast(t, in, "2 / 3")); got != "0.6667" {
		t.Fatalf("2/3 at precision 4: %q", got)
	}
	// the fixed/scientific threshold moves with the precision
	if got := in.FormatValue(evalLast(t, in, "10 ^ 10")); got != "1e+10" {
		t.Fatalf("10^10 at precision 4: %q", got)
	}
}

func Test_Printer_Strings_Top_Versus_Structural(t *testing.T) {
	in := newTestInterp(t, Options{})
	v := evalLast(t, in, `"hello"`)
	if got := in.FormatTop(v); got != "hello" {
		t.Fatalf("FormatTop: %q", got)
	}
	if got := in.FormatValue(v); got != `"hello"` {
		t.Fatalf("FormatValue: %q", got)
	}
}

func Test_Printer_String_Escapes(t *testing.T) {
	fmtTable(t, []struct{ src, want string }{
		{`"a\nb"`, `"a\nb"`},
		{`"tab\there"`, `"tab\there"`},
		{`"say \"hi\""`, `"say \"hi\""`},
		{`"back\\slash"`, `"back\\slash"`},
		{`"héllo"`, `"héllo"`},
	})
}

func Test_Printer_Lists(t *testing.T) {
	fmtTable(t, []struct{ src, want string }{
		{"[]", "[]"},
		{"[1, 2, 3]", "[1, 2, 3]"},
		{`[1, "two", [true, false]]`, `[1, "two", [true, false]]`},
	})
}

func Test_Printer_Unit_Is_Empty(t *testing.T) {
	in := newTestInterp(t, Options{})
	if got := in.FormatValue(Unit); got != "" {
		t.Fatalf("Unit renders as %q", got)
	}
}

func Test_Printer_Closures_Print_As_Source(t *testing.T) {
	fmtTable(t, []struct{ src, want string }{
		{"{x -> x + 1}", "{x -> x + 1}"},
		{"{x, y -> x * y}", "{x, y -> x * y}"},
		{"{...xs -> length(xs)}", "{...xs -> length(xs)}"},
		{"{f: n -> if n == 0 then 1 else n * f(n - 1)}",
			"{f: n -> if n == 0 then 1 else n * f(n - 1)}"},
	})
}

func Test_Printer_Partial_Closures_Inline_Filled_Params(t *testing.T) {
	fmtTable(t, []struct{ src, want string }{
		{"{a, b, c -> a + b + c}(_, 5, _)", "{a, c -> a + 5 + c}"},
		{"{a, b -> a + b}(1)", "{b -> 1 + b}"},
		{`{pre, s -> pre + s}("go", _)`, `{s -> "go" + s}`},
		{"{a, b -> a ^ b}(_, -2)", "{a -> a ^ (-2)}"},
	})
}

func Test_Printer_Substitution_Respects_Shadowing(t *testing.T) {
	// the inner lambda re-binds b, so the filled value must not leak into it
	got := fmtVal(t, "{a, b -> {b -> a + b}}(_, 9)")
	if got != "{a -> {b -> a + b}}" {
		t.Fatalf("shadowed substitution: %q", got)
	}
}

func Test_Printer_Builtins(t *testing.T) {
	fmtTable(t, []struct{ src, want string }{
		{"sqrt", "sqrt"},
		{"(+)", "(+)"},
		{"(<=)", "(<=)"},
		{"(+)(1)", "(+)(1)"},
		{"contains(_, 2)", "contains(_, 2)"},
	})
}

func Test_Printer_Operator_Grouping_Roundtrips(t *testing.T) {
	fmtTable(t, []struct{ src, want string }{
		{"{x -> x + 1 * 2}", "{x -> x + 1 * 2}"},
		{"{x -> (x + 1) * 2}", "{x -> (x + 1) * 2}"},
		{"{x -> x ^ 2 ^ 3}", "{x -> x ^ 2 ^ 3}"},
		{"{x -> (x ^ 2) ^ 3}", "{x -> (x ^ 2) ^ 3}"},
		{"{x -> -x + 1}", "{x -> -x + 1}"},
		{"{x -> -(x + 1)}", "{x -> -(x + 1)}"},
		{"{x -> !(x && true)}", "{x -> !(x && true)}"},
		{"{x -> x - (1 - 2)}", "{x -> x - (1 - 2)}"},
		{"{x -> 1 < x < 10 == true}", "{x -> 1 < x < 10 == true}"},
	})
}

func Test_Printer_Composition_Renders_Desugared_Form(t *testing.T) {
	got := fmtVal(t, "let f = {x -> x + 1}, g = {x -> x * 2} in f >> g")
	if got != "{...args -> g(f(...args))}" {
		t.Fatalf("composition: %q", got)
	}
}

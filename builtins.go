// builtins.go: native function registry and argument checking
//
// Natives register into the interpreter's root frame before the prelude
// loads, so prelude definitions may wrap them. Every native is a Builtin
// value participating in the ordinary curry/placeholder protocol; Arity is
// the minimum argument count, Variadic allows more (multi-arity natives
// such as `-`, `round` or `log` dispatch on len(args) inside their Fn).
package numfu

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

func registerBuiltins(in *Interp) {
	registerOperatorBuiltins(in)
	registerMathBuiltins(in)
	registerStdBuiltins(in)
	registerIOBuiltins(in)
}

func def(in *Interp, name string, arity int, fn func(*Interp, []Value, Span) (Value, error)) {
	in.root.Define(name, BuiltinVal(&Builtin{Name: name, Arity: arity, Fn: fn}))
}

func defVar(in *Interp, name string, minArity int, fn func(*Interp, []Value, Span) (Value, error)) {
	in.root.Define(name, BuiltinVal(&Builtin{Name: name, Arity: minArity, Variadic: true, Fn: fn}))
}

/* ===========================
   argument checking
   =========================== */

// isOperatorName reports whether a builtin is an operator, which changes
// the wording of its type errors.
func isOperatorName(name string) bool {
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return false
		}
	}
	return true
}

func badArg(name string, i int, want string, got Value, sp Span) error {
	op := ""
	if isOperatorName(name) {
		op = "operator "
	}
	return errAt(ErrType, sp, "Invalid argument type for %s'%s': argument %d must be %s, got %s",
		op, name, i+1, want, got.TypeName())
}

func badArity(name string, want, got int, sp Span) error {
	s := "s"
	if want == 1 {
		s = ""
	}
	return errAt(ErrType, sp, "'%s' expected %d argument%s, got %d", name, want, s, got)
}

func argNum(name string, args []Value, i int, sp Span) (*apd.Decimal, error) {
	if args[i].Tag != VTNumber {
		return nil, badArg(name, i, "Number", args[i], sp)
	}
	return args[i].Data.(*apd.Decimal), nil
}

func argStr(name string, args []Value, i int, sp Span) (string, error) {
	if args[i].Tag != VTString {
		return "", badArg(name, i, "String", args[i], sp)
	}
	return args[i].Data.(string), nil
}

func argList(name string, args []Value, i int, sp Span) ([]Value, error) {
	if args[i].Tag != VTList {
		return nil, badArg(name, i, "List", args[i], sp)
	}
	return args[i].Data.([]Value), nil
}

func argFn(name string, args []Value, i int, sp Span) (Value, error) {
	if args[i].Tag != VTClosure && args[i].Tag != VTBuiltin {
		return Value{}, badArg(name, i, "Function", args[i], sp)
	}
	return args[i], nil
}

// argInt requires an integral finite number.
func argInt(name string, args []Value, i int, sp Span) (int64, error) {
	d, err := argNum(name, args, i, sp)
	if err != nil {
		return 0, err
	}
	n, err := d.Int64()
	if err != nil {
		return 0, errAt(ErrType, sp, "Invalid argument type for '%s': argument %d must be an integer", name, i+1)
	}
	return n, nil
}

/* ===========================
   decimal helpers
   =========================== */

// newDecContext builds the arithmetic context: a few guard digits beyond
// the display precision, and no traps so that 1/0 yields Infinity and 0/0
// yields NaN instead of an error.
func newDecContext(precision int) *apd.Context {
	ctx := apd.BaseContext.WithPrecision(uint32(precision) + 5)
	ctx.Traps = 0
	return ctx
}

func decFromFloat(f float64) *apd.Decimal {
	d := new(apd.Decimal)
	d.SetFloat64(f)
	return d
}

func decFromInt(i int64) *apd.Decimal { return apd.New(i, 0) }

// decInt converts an integral decimal to an int64, flagging non-integers.
func decInt(d *apd.Decimal, what string, sp Span) (int64, error) {
	n, err := d.Int64()
	if err != nil {
		return 0, errAt(ErrType, sp, "%s", fmt.Sprintf("%s must be an integer", what))
	}
	return n, nil
}

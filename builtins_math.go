// builtins_math.go: arithmetic, comparison, logic and math natives
//
// Core arithmetic runs on the interpreter's apd context, so precision and
// IEEE edge cases (x/0, 0/0, sqrt of negatives) fall out of the decimal
// semantics. Transcendentals without a decimal implementation (trig,
// hyperbolics) go through float64, which is exact to well past the default
// display precision.
package numfu

import (
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

const (
	piDigits = "3.14159265358979323846264338327950288419716939937510582097"
	eDigits  = "2.71828182845904523536028747135266249775724709369995957497"
)

func registerOperatorBuiltins(in *Interp) {
	pi, _, _ := apd.NewFromString(piDigits)
	e, _, _ := apd.NewFromString(eDigits)
	in.root.Define("pi", Num(pi))
	in.root.Define("e", Num(e))
	in.root.Define("inf", Inf())
	in.root.Define("nan", NaN())

	def(in, "+", 2, biAdd)
	defVar(in, "-", 1, biSub)
	def(in, "*", 2, biMul)
	def(in, "/", 2, biBinNum("/", func(in *Interp, r, a, b *apd.Decimal) { in.ctx.Quo(r, a, b) }))
	def(in, "%", 2, biBinNum("%", func(in *Interp, r, a, b *apd.Decimal) { in.ctx.Rem(r, a, b) }))
	def(in, "^", 2, biBinNum("^", func(in *Interp, r, a, b *apd.Decimal) { in.ctx.Pow(r, a, b) }))

	def(in, "&&", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Bool(Truthy(args[0]) && Truthy(args[1])), nil
	})
	def(in, "||", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Bool(Truthy(args[0]) || Truthy(args[1])), nil
	})
	def(in, "!", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Bool(!Truthy(args[0])), nil
	})
	def(in, "xor", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Bool(Truthy(args[0]) != Truthy(args[1])), nil
	})

	def(in, "==", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Bool(Equal(args[0], args[1])), nil
	})
	def(in, "!=", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Bool(!Equal(args[0], args[1])), nil
	})
	for _, op := range []string{"<", ">", "<=", ">="} {
		op := op
		def(in, op, 2, func(in *Interp, args []Value, sp Span) (Value, error) {
			ok, err := compareValues(op, args[0], args[1], sp)
			if err != nil {
				return Value{}, err
			}
			return Bool(ok), nil
		})
	}
}

func registerMathBuiltins(in *Interp) {
	unary := map[string]func(float64) float64{
		"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
		"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
		"asinh": math.Asinh, "acosh": math.Acosh, "atanh": math.Atanh,
		"radians": func(x float64) float64 { return x * math.Pi / 180 },
		"degrees": func(x float64) float64 { return x * 180 / math.Pi },
	}
	for name, fn := range unary {
		name, fn := name, fn
		def(in, name, 1, func(in *Interp, args []Value, sp Span) (Value, error) {
			d, err := argNum(name, args, 0, sp)
			if err != nil {
				return Value{}, err
			}
			f, _ := d.Float64()
			return Num(decFromFloat(fn(f))), nil
		})
	}
	def(in, "atan2", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		y, err := argNum("atan2", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		x, err := argNum("atan2", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		fy, _ := y.Float64()
		fx, _ := x.Float64()
		return Num(decFromFloat(math.Atan2(fy, fx))), nil
	})

	def(in, "exp", 1, biUnNum("exp", func(in *Interp, r, x *apd.Decimal) { in.ctx.Exp(r, x) }))
	def(in, "sqrt", 1, biUnNum("sqrt", func(in *Interp, r, x *apd.Decimal) { in.ctx.Sqrt(r, x) }))
	def(in, "log10", 1, biUnNum("log10", func(in *Interp, r, x *apd.Decimal) { in.ctx.Log10(r, x) }))
	defVar(in, "log", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		if len(args) > 2 {
			return Value{}, badArity("log", 2, len(args), sp)
		}
		x, err := argNum("log", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		r := new(apd.Decimal)
		in.ctx.Ln(r, x)
		if len(args) == 2 {
			b, err := argNum("log", args, 1, sp)
			if err != nil {
				return Value{}, err
			}
			lb := new(apd.Decimal)
			in.ctx.Ln(lb, b)
			in.ctx.Quo(r, r, lb)
		}
		return Num(r), nil
	})

	def(in, "ceil", 1, biUnNum("ceil", func(in *Interp, r, x *apd.Decimal) { in.ctx.Ceil(r, x) }))
	def(in, "floor", 1, biUnNum("floor", func(in *Interp, r, x *apd.Decimal) { in.ctx.Floor(r, x) }))
	def(in, "abs", 1, biUnNum("abs", func(in *Interp, r, x *apd.Decimal) { in.ctx.Abs(r, x) }))
	defVar(in, "round", 1, biRound)
	def(in, "sign", 1, biSign)

	defVar(in, "max", 1, biExtremum("max", 1))
	defVar(in, "min", 1, biExtremum("min", -1))
	def(in, "sum", 1, biSum)

	def(in, "isnan", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		d, err := argNum("isnan", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		return Bool(d.Form == apd.NaN), nil
	})
	def(in, "isinf", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		d, err := argNum("isinf", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		return Bool(d.Form == apd.Infinite), nil
	})
}

//// END_OF_PUBLIC

/* ===========================
   operators
   =========================== */

func biBinNum(name string, op func(in *Interp, r, a, b *apd.Decimal)) func(*Interp, []Value, Span) (Value, error) {
	return func(in *Interp, args []Value, sp Span) (Value, error) {
		a, err := argNum(name, args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		b, err := argNum(name, args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		r := new(apd.Decimal)
		op(in, r, a, b)
		return Num(r), nil
	}
}

func biUnNum(name string, op func(in *Interp, r, x *apd.Decimal)) func(*Interp, []Value, Span) (Value, error) {
	return func(in *Interp, args []Value, sp Span) (Value, error) {
		x, err := argNum(name, args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		r := new(apd.Decimal)
		op(in, r, x)
		return Num(r), nil
	}
}

func biAdd(in *Interp, args []Value, sp Span) (Value, error) {
	a, b := args[0], args[1]
	switch {
	case a.Tag == VTNumber && b.Tag == VTNumber:
		r := new(apd.Decimal)
		in.ctx.Add(r, a.Data.(*apd.Decimal), b.Data.(*apd.Decimal))
		return Num(r), nil
	case a.Tag == VTString && b.Tag == VTString:
		return Str(a.Data.(string) + b.Data.(string)), nil
	case a.Tag == VTList && b.Tag == VTList:
		xs := a.Data.([]Value)
		ys := b.Data.([]Value)
		out := make([]Value, 0, len(xs)+len(ys))
		out = append(out, xs...)
		out = append(out, ys...)
		return List(out), nil
	case a.Tag == VTNumber || a.Tag == VTString || a.Tag == VTList:
		return Value{}, badArg("+", 1, a.TypeName(), b, sp)
	default:
		return Value{}, badArg("+", 0, "Number", a, sp)
	}
}

// biSub is both negation and subtraction, dispatched on argument count.
func biSub(in *Interp, args []Value, sp Span) (Value, error) {
	if len(args) > 2 {
		return Value{}, badArity("-", 2, len(args), sp)
	}
	a, err := argNum("-", args, 0, sp)
	if err != nil {
		return Value{}, err
	}
	r := new(apd.Decimal)
	if len(args) == 1 {
		in.ctx.Neg(r, a)
		return Num(r), nil
	}
	b, err := argNum("-", args, 1, sp)
	if err != nil {
		return Value{}, err
	}
	in.ctx.Sub(r, a, b)
	return Num(r), nil
}

func biMul(in *Interp, args []Value, sp Span) (Value, error) {
	a, b := args[0], args[1]
	// repetition operands commute
	if b.Tag == VTNumber && a.Tag != VTNumber {
		a, b = b, a
	}
	switch {
	case a.Tag == VTNumber && b.Tag == VTNumber:
		r := new(apd.Decimal)
		in.ctx.Mul(r, a.Data.(*apd.Decimal), b.Data.(*apd.Decimal))
		return Num(r), nil
	case a.Tag == VTNumber && b.Tag == VTString:
		n, err := repeatCount(a, sp)
		if err != nil {
			return Value{}, err
		}
		return Str(strings.Repeat(b.Data.(string), n)), nil
	case a.Tag == VTNumber && b.Tag == VTList:
		n, err := repeatCount(a, sp)
		if err != nil {
			return Value{}, err
		}
		xs := b.Data.([]Value)
		out := make([]Value, 0, n*len(xs))
		for i := 0; i < n; i++ {
			out = append(out, xs...)
		}
		return List(out), nil
	case a.Tag == VTString && b.Tag == VTString:
		return Value{}, errAt(ErrType, sp, "Cannot multiply two strings")
	case a.Tag == VTList && b.Tag == VTList:
		return Value{}, errAt(ErrType, sp, "Cannot multiply two lists")
	default:
		return Value{}, badArg("*", 0, "Number", args[0], sp)
	}
}

func repeatCount(v Value, sp Span) (int, error) {
	n, err := v.Data.(*apd.Decimal).Int64()
	if err != nil {
		return 0, errAt(ErrType, sp, "Can't multiply by non-integer")
	}
	if n < 0 {
		n = 0
	}
	return int(n), nil
}

/* ===========================
   comparisons
   =========================== */

// compareValues implements <, >, <= and >= on numbers. Any comparison
// involving nan is false.
func compareValues(op string, a, b Value, sp Span) (bool, error) {
	if a.Tag != VTNumber {
		return false, badArg(op, 0, "Number", a, sp)
	}
	if b.Tag != VTNumber {
		return false, badArg(op, 1, "Number", b, sp)
	}
	x := a.Data.(*apd.Decimal)
	y := b.Data.(*apd.Decimal)
	if x.Form == apd.NaN || y.Form == apd.NaN {
		return false, nil
	}
	c := x.Cmp(y)
	switch op {
	case "<":
		return c < 0, nil
	case ">":
		return c > 0, nil
	case "<=":
		return c <= 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, errAt(ErrType, sp, "unknown comparison operator '%s'", op)
}

/* ===========================
   rounding, extrema
   =========================== */

func biRound(in *Interp, args []Value, sp Span) (Value, error) {
	if len(args) > 2 {
		return Value{}, badArity("round", 2, len(args), sp)
	}
	x, err := argNum("round", args, 0, sp)
	if err != nil {
		return Value{}, err
	}
	exp := int64(0)
	if len(args) == 2 {
		p, err := argInt("round", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		exp = -p
	}
	if x.Form != apd.Finite {
		return args[0], nil
	}
	r := new(apd.Decimal)
	in.ctx.Quantize(r, x, int32(exp))
	return Num(r), nil
}

func biSign(in *Interp, args []Value, sp Span) (Value, error) {
	d, err := argNum("sign", args, 0, sp)
	if err != nil {
		return Value{}, err
	}
	switch {
	case d.Form == apd.NaN:
		return NaN(), nil
	case d.IsZero():
		return NumInt(0), nil
	case d.Negative:
		return NumInt(-1), nil
	default:
		return NumInt(1), nil
	}
}

// biExtremum builds max (dir=1) and min (dir=-1). Accepts either one list
// of numbers or variadic numbers.
func biExtremum(name string, dir int) func(*Interp, []Value, Span) (Value, error) {
	return func(in *Interp, args []Value, sp Span) (Value, error) {
		nums := args
		if len(args) == 1 && args[0].Tag == VTList {
			nums = args[0].Data.([]Value)
			if len(nums) == 0 {
				return Value{}, errAt(ErrValue, sp, "'%s' of an empty list", name)
			}
		}
		best, err := argNum(name, nums, 0, sp)
		if err != nil {
			return Value{}, err
		}
		for i := 1; i < len(nums); i++ {
			d, err := argNum(name, nums, i, sp)
			if err != nil {
				return Value{}, err
			}
			if c := d.Cmp(best); (dir > 0 && c > 0) || (dir < 0 && c < 0) {
				best = d
			}
		}
		return Num(best), nil
	}
}

func biSum(in *Interp, args []Value, sp Span) (Value, error) {
	xs, err := argList("sum", args, 0, sp)
	if err != nil {
		return Value{}, err
	}
	r := apd.New(0, 0)
	for i := range xs {
		d, err := argNum("sum", xs, i, sp)
		if err != nil {
			return Value{}, err
		}
		in.ctx.Add(r, r, d)
	}
	return Num(r), nil
}

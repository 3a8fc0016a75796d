// value.go: the runtime value model
//
// NumFu has seven kinds of runtime values: arbitrary-precision numbers,
// booleans, strings, lists, closures, builtins and the unit value produced
// by statements and side-effecting calls. Values are carried in a single
// tagged struct so that lists and environments stay homogeneous.
//
// Numbers are apd decimals, which natively carry the three IEEE forms the
// language needs (finite, signed infinity, NaN). Arithmetic precision is a
// property of the interpreter's context, not of the value.
package numfu

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

/* ===========================
   PUBLIC API
   =========================== */

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTUnit    ValueTag = iota // no payload
	VTNumber                  // *apd.Decimal
	VTBool                    // bool
	VTString                  // string
	VTList                    // []Value
	VTClosure                 // *Closure
	VTBuiltin                 // *Builtin
)

// Value is the universal runtime carrier. Tag determines which Go type Data
// holds (see ValueTag). When Tag==VTUnit, Data is nil.
type Value struct {
	Tag  ValueTag
	Data any
}

// Unit is the singleton unit value.
var Unit = Value{Tag: VTUnit}

// Constructors.
func Bool(b bool) Value        { return Value{Tag: VTBool, Data: b} }
func Str(s string) Value       { return Value{Tag: VTString, Data: s} }
func List(xs []Value) Value    { return Value{Tag: VTList, Data: xs} }
func Num(d *apd.Decimal) Value { return Value{Tag: VTNumber, Data: d} }

// NumInt builds a number value from a machine integer.
func NumInt(i int64) Value { return Num(apd.New(i, 0)) }

// NaN, Inf and NegInf build the three non-finite number forms.
func NaN() Value    { return Num(&apd.Decimal{Form: apd.NaN}) }
func Inf() Value    { return Num(&apd.Decimal{Form: apd.Infinite}) }
func NegInf() Value { return Num(&apd.Decimal{Form: apd.Infinite, Negative: true}) }

// String renders a short debug representation. User-facing printing lives in
// printer.go and differs (precision-aware numbers, closure reconstruction).
func (v Value) String() string {
	switch v.Tag {
	case VTUnit:
		return "()"
	case VTNumber:
		return v.Data.(*apd.Decimal).String()
	case VTBool:
		return fmt.Sprintf("%v", v.Data.(bool))
	case VTString:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTList:
		return fmt.Sprintf("<list len=%d>", len(v.Data.([]Value)))
	case VTClosure:
		return "<closure>"
	case VTBuiltin:
		return fmt.Sprintf("<builtin %s>", v.Data.(*Builtin).Name)
	default:
		return "<unknown>"
	}
}

// TypeName returns the user-visible type name used in error messages.
func (v Value) TypeName() string {
	switch v.Tag {
	case VTUnit:
		return "Unit"
	case VTNumber:
		return "Number"
	case VTBool:
		return "Boolean"
	case VTString:
		return "String"
	case VTList:
		return "List"
	case VTClosure, VTBuiltin:
		return "Function"
	case vtModule:
		return "Module"
	default:
		return "Unknown"
	}
}

// ArgSlot is one positional argument a callable has accumulated through
// currying and partial application. Hole slots come from `_` placeholders;
// later calls fill the earliest hole before appending new slots.
type ArgSlot struct {
	V    Value
	Hole bool
}

// Closure is a user-defined function value. Params is the full declared
// parameter list; a trailing rest parameter keeps its "..." prefix. Slots
// records the application state so far: slot i corresponds to Params[i],
// slots past the fixed parameters collect into the rest list. The body runs
// once no hole remains and every fixed parameter has a value; a rest
// parameter may collect zero arguments.
//
// Partial application never mutates a closure; it produces a fresh Closure
// sharing Name, Params, Body and Env with extended Slots.
//
// Name is the self-reference name from the {name: params -> body} form, or
// the top-level let name a lambda was bound to; it is used for recursion and
// printing only.
type Closure struct {
	Name   string
	Params []string
	Body   S
	Env    *Env
	Slots  []ArgSlot
}

// ClosureVal wraps *Closure into a Value.
func ClosureVal(c *Closure) Value { return Value{Tag: VTClosure, Data: c} }

// HasRest reports whether the closure declares a rest parameter.
func (c *Closure) HasRest() bool {
	return len(c.Params) > 0 && isRestParam(c.Params[len(c.Params)-1])
}

// FixedArity returns the number of non-rest parameters.
func (c *Closure) FixedArity() int {
	if c.HasRest() {
		return len(c.Params) - 1
	}
	return len(c.Params)
}

// Builtin is a natively-implemented function value. Builtins participate in
// the same currying and placeholder protocol as closures: Slots accumulates
// applied arguments until Arity is reached, then Fn runs.
//
// Variadic builtins accept any number of arguments at or above Arity; they
// run as soon as a call completes with no holes outstanding (so a variadic
// builtin called with placeholders still waits for the holes to fill).
type Builtin struct {
	Name     string
	Arity    int
	Variadic bool
	Fn       func(in *Interp, args []Value, sp Span) (Value, error)
	Slots    []ArgSlot
}

// BuiltinVal wraps *Builtin into a Value.
func BuiltinVal(b *Builtin) Value { return Value{Tag: VTBuiltin, Data: b} }

// Truthy implements the language's truthiness: false, 0, "" and [] are
// falsy, everything else (nan and inf included) is truthy.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTBool:
		return v.Data.(bool)
	case VTNumber:
		d := v.Data.(*apd.Decimal)
		return d.Form != apd.Finite || !d.IsZero()
	case VTString:
		return v.Data.(string) != ""
	case VTList:
		return len(v.Data.([]Value)) != 0
	case VTUnit:
		return false
	default:
		return true
	}
}

// Equal implements `==`: structural for lists, numeric for numbers (with
// nan != nan), false across types, identity for functions.
func Equal(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTUnit:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTString:
		return a.Data.(string) == b.Data.(string)
	case VTNumber:
		x, y := a.Data.(*apd.Decimal), b.Data.(*apd.Decimal)
		if x.Form == apd.NaN || y.Form == apd.NaN {
			return false
		}
		return x.Cmp(y) == 0
	case VTList:
		xs, ys := a.Data.([]Value), b.Data.([]Value)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !Equal(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case VTClosure:
		return a.Data.(*Closure) == b.Data.(*Closure)
	case VTBuiltin:
		return a.Data.(*Builtin) == b.Data.(*Builtin)
	default:
		return false
	}
}

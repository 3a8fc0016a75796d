// builtins_std.go: list/string natives, type conversions, map and filter
package numfu

import (
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

func registerStdBuiltins(in *Interp) {
	def(in, "map", 2, biMap)
	def(in, "filter", 2, biFilter)

	def(in, "Bool", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Bool(Truthy(args[0])), nil
	})
	def(in, "Number", 1, biNumber)
	def(in, "List", 1, biList)
	def(in, "String", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Str(in.FormatTop(args[0])), nil
	})

	def(in, "append", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		xs, err := argList("append", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		out := make([]Value, 0, len(xs)+1)
		out = append(out, xs...)
		return List(append(out, args[1])), nil
	})

	def(in, "length", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		switch args[0].Tag {
		case VTList:
			return NumInt(int64(len(args[0].Data.([]Value)))), nil
		case VTString:
			return NumInt(int64(len([]rune(args[0].Data.(string))))), nil
		}
		return Value{}, badArg("length", 0, "List or String", args[0], sp)
	})

	def(in, "contains", 2, biContains)
	def(in, "set", 3, biSet)
	def(in, "reverse", 1, biReverse)
	def(in, "sort", 1, biSort)
	def(in, "slice", 3, biSlice)

	def(in, "join", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		xs, err := argList("join", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		sep, err := argStr("join", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		parts := make([]string, len(xs))
		for i, x := range xs {
			if x.Tag != VTString {
				return Value{}, badArg("join", 0, "List of String", args[0], sp)
			}
			parts[i] = x.Data.(string)
		}
		return Str(strings.Join(parts, sep)), nil
	})

	def(in, "split", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		s, err := argStr("split", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		sep, err := argStr("split", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		var parts []string
		if sep == "" {
			parts = strings.Fields(s)
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return List(out), nil
	})

	defVar(in, "format", 1, biFormat)

	def(in, "trim", 1, biStrFn("trim", strings.TrimSpace))
	def(in, "toLowerCase", 1, biStrFn("toLowerCase", strings.ToLower))
	def(in, "toUpperCase", 1, biStrFn("toUpperCase", strings.ToUpper))

	def(in, "replace", 3, func(in *Interp, args []Value, sp Span) (Value, error) {
		s, err := argStr("replace", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		old, err := argStr("replace", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		new_, err := argStr("replace", args, 2, sp)
		if err != nil {
			return Value{}, err
		}
		return Str(strings.ReplaceAll(s, old, new_)), nil
	})

	def(in, "count", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		s, err := argStr("count", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		sub, err := argStr("count", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		return NumInt(int64(strings.Count(s, sub))), nil
	})

	def(in, "range", 2, func(in *Interp, args []Value, sp Span) (Value, error) {
		a, err := argInt("range", args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		b, err := argInt("range", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		var out []Value
		for i := a; i < b; i++ {
			out = append(out, NumInt(i))
		}
		return List(out), nil
	})
}

//// END_OF_PUBLIC

func biMap(in *Interp, args []Value, sp Span) (Value, error) {
	xs, err := argList("map", args, 0, sp)
	if err != nil {
		return Value{}, err
	}
	fn, err := argFn("map", args, 1, sp)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(xs))
	for i, x := range xs {
		r, err := in.Apply(fn, []Value{x}, sp)
		if err != nil {
			return Value{}, err
		}
		out[i] = r
	}
	return List(out), nil
}

func biFilter(in *Interp, args []Value, sp Span) (Value, error) {
	xs, err := argList("filter", args, 0, sp)
	if err != nil {
		return Value{}, err
	}
	fn, err := argFn("filter", args, 1, sp)
	if err != nil {
		return Value{}, err
	}
	var out []Value
	for _, x := range xs {
		r, err := in.Apply(fn, []Value{x}, sp)
		if err != nil {
			return Value{}, err
		}
		if Truthy(r) {
			out = append(out, x)
		}
	}
	return List(out), nil
}

/* ===========================
   conversions
   =========================== */

func biNumber(in *Interp, args []Value, sp Span) (Value, error) {
	switch args[0].Tag {
	case VTNumber:
		return args[0], nil
	case VTBool:
		if args[0].Data.(bool) {
			return NumInt(1), nil
		}
		return NumInt(0), nil
	case VTString:
		s := resolveSignChain(strings.TrimSpace(args[0].Data.(string)))
		d, _, err := apd.NewFromString(s)
		if err != nil {
			return Value{}, errAt(ErrValue, sp, "Could not convert \"%s\" to a number", args[0].Data.(string))
		}
		return Num(d), nil
	}
	return Value{}, badArg("Number", 0, "Boolean or Number or String", args[0], sp)
}

// resolveSignChain collapses a leading run of + and - signs into a single
// sign by minus parity, so Number("--+5") parses as 5.
func resolveSignChain(s string) string {
	i, minus := 0, 0
	for i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			minus++
		}
		i++
	}
	if minus%2 == 1 {
		return "-" + s[i:]
	}
	return s[i:]
}

func biList(in *Interp, args []Value, sp Span) (Value, error) {
	switch args[0].Tag {
	case VTList:
		return args[0], nil
	case VTString:
		rs := []rune(args[0].Data.(string))
		out := make([]Value, len(rs))
		for i, r := range rs {
			out[i] = Str(string(r))
		}
		return List(out), nil
	}
	return Value{}, errAt(ErrType, sp, "Type '%s' is not iterable", args[0].TypeName())
}

/* ===========================
   list and string operations
   =========================== */

func biContains(in *Interp, args []Value, sp Span) (Value, error) {
	switch args[0].Tag {
	case VTList:
		for _, x := range args[0].Data.([]Value) {
			if Equal(x, args[1]) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case VTString:
		sub, err := argStr("contains", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		return Bool(strings.Contains(args[0].Data.(string), sub)), nil
	}
	return Value{}, badArg("contains", 0, "List or String", args[0], sp)
}

func biSet(in *Interp, args []Value, sp Span) (Value, error) {
	i, err := argInt("set", args, 1, sp)
	if err != nil {
		return Value{}, err
	}
	switch args[0].Tag {
	case VTList:
		xs := args[0].Data.([]Value)
		k, ok := normIndex(i, len(xs))
		if !ok {
			return Value{}, errAt(ErrIndex, sp, "List index out of range")
		}
		out := append([]Value(nil), xs...)
		out[k] = args[2]
		return List(out), nil
	case VTString:
		v, err := argStr("set", args, 2, sp)
		if err != nil {
			return Value{}, err
		}
		rs := []rune(args[0].Data.(string))
		k, ok := normIndex(i, len(rs))
		if !ok {
			return Value{}, errAt(ErrIndex, sp, "String index out of range")
		}
		return Str(string(rs[:k]) + v + string(rs[k+1:])), nil
	}
	return Value{}, badArg("set", 0, "List or String", args[0], sp)
}

// normIndex resolves a possibly negative index against a length.
func normIndex(i int64, n int) (int, bool) {
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, false
	}
	return int(i), true
}

func biReverse(in *Interp, args []Value, sp Span) (Value, error) {
	switch args[0].Tag {
	case VTList:
		xs := args[0].Data.([]Value)
		out := make([]Value, len(xs))
		for i, x := range xs {
			out[len(xs)-1-i] = x
		}
		return List(out), nil
	case VTString:
		rs := []rune(args[0].Data.(string))
		for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
			rs[i], rs[j] = rs[j], rs[i]
		}
		return Str(string(rs)), nil
	}
	return Value{}, badArg("reverse", 0, "List or String", args[0], sp)
}

func biSort(in *Interp, args []Value, sp Span) (Value, error) {
	switch args[0].Tag {
	case VTString:
		rs := []rune(args[0].Data.(string))
		sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
		return Str(string(rs)), nil
	case VTList:
		xs := args[0].Data.([]Value)
		if len(xs) == 0 {
			return List(nil), nil
		}
		out := append([]Value(nil), xs...)
		switch xs[0].Tag {
		case VTNumber:
			for _, x := range out {
				if x.Tag != VTNumber {
					return Value{}, badArg("sort", 0, "List of Number or List of String", args[0], sp)
				}
			}
			sort.SliceStable(out, func(i, j int) bool {
				return out[i].Data.(*apd.Decimal).Cmp(out[j].Data.(*apd.Decimal)) < 0
			})
		case VTString:
			for _, x := range out {
				if x.Tag != VTString {
					return Value{}, badArg("sort", 0, "List of Number or List of String", args[0], sp)
				}
			}
			sort.SliceStable(out, func(i, j int) bool {
				return out[i].Data.(string) < out[j].Data.(string)
			})
		default:
			return Value{}, badArg("sort", 0, "List of Number or List of String", args[0], sp)
		}
		return List(out), nil
	}
	return Value{}, badArg("sort", 0, "List or String", args[0], sp)
}

// biSlice returns c[start..end] with an INCLUSIVE end. Negative positions
// count from the back; end -1 reaches the final element. Out-of-range
// bounds clamp, and end < start yields an empty result.
func biSlice(in *Interp, args []Value, sp Span) (Value, error) {
	start, err := argInt("slice", args, 1, sp)
	if err != nil {
		return Value{}, err
	}
	end, err := argInt("slice", args, 2, sp)
	if err != nil {
		return Value{}, err
	}
	switch args[0].Tag {
	case VTList:
		xs := args[0].Data.([]Value)
		lo, hi := sliceBounds(start, end, len(xs))
		return List(append([]Value(nil), xs[lo:hi]...)), nil
	case VTString:
		rs := []rune(args[0].Data.(string))
		lo, hi := sliceBounds(start, end, len(rs))
		return Str(string(rs[lo:hi])), nil
	}
	return Value{}, badArg("slice", 0, "List or String", args[0], sp)
}

func sliceBounds(start, end int64, n int) (int, int) {
	lo := start
	if lo < 0 {
		lo += int64(n)
	}
	hi := end + 1
	if end < 0 {
		hi = int64(n) + end + 1
	}
	if lo < 0 {
		lo = 0
	}
	if hi > int64(n) {
		hi = int64(n)
	}
	if hi < lo {
		hi = lo
	}
	if lo > int64(n) {
		lo, hi = int64(n), int64(n)
	}
	return int(lo), int(hi)
}

/* ===========================
   formatting
   =========================== */

// biFormat substitutes {} placeholders in order; {{ and }} escape braces.
func biFormat(in *Interp, args []Value, sp Span) (Value, error) {
	tmpl, err := argStr("format", args, 0, sp)
	if err != nil {
		return Value{}, err
	}
	rest := args[1:]
	var b strings.Builder
	next := 0
	for i := 0; i < len(tmpl); i++ {
		switch {
		case tmpl[i] == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case tmpl[i] == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case tmpl[i] == '{' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			if next >= len(rest) {
				return Value{}, errAt(ErrIndex, sp, "Replacement index %d out of range", next)
			}
			b.WriteString(in.FormatTop(rest[next]))
			next++
			i++
		default:
			b.WriteByte(tmpl[i])
		}
	}
	return Str(b.String()), nil
}

func biStrFn(name string, f func(string) string) func(*Interp, []Value, Span) (Value, error) {
	return func(in *Interp, args []Value, sp Span) (Value, error) {
		s, err := argStr(name, args, 0, sp)
		if err != nil {
			return Value{}, err
		}
		return Str(f(s)), nil
	}
}

// printer.go: user-facing value rendering and closure reconstruction
//
// Two entry points: FormatTop renders a top-level result (strings bare),
// FormatValue renders a value in a structural context (strings quoted).
// Closures print as source, reconstructed from the stored lambda AST with
// every filled parameter substituted back into the body as a literal, so
// {a,b,c -> a+b+c}(_, 5, _) renders as {a, c -> a + 5 + c}. Only values
// with an unambiguous source form are inlined; parenthesization follows
// the operator table, emitting parens only where re-parsing would differ.
package numfu

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

/* ===========================
   PUBLIC API
   =========================== */

// FormatTop renders v the way the top level prints results: strings appear
// without quotes, everything else as FormatValue.
func (in *Interp) FormatTop(v Value) string {
	if v.Tag == VTString {
		return v.Data.(string)
	}
	return in.FormatValue(v)
}

// FormatValue renders v in structural form.
func (in *Interp) FormatValue(v Value) string {
	switch v.Tag {
	case VTUnit:
		return ""
	case VTNumber:
		return in.formatNumber(v.Data.(*apd.Decimal))
	case VTBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case VTString:
		return quoteString(v.Data.(string))
	case VTList:
		xs := v.Data.([]Value)
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = in.FormatValue(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTClosure:
		return in.reconstructClosure(v.Data.(*Closure))
	case VTBuiltin:
		return in.reconstructBuiltin(v.Data.(*Builtin))
	case vtModule:
		return fmt.Sprintf("<module %s>", v.Data.(*moduleRec).name)
	default:
		return v.String()
	}
}

//// END_OF_PUBLIC

/* ===========================
   numbers
   =========================== */

// formatNumber rounds to the display precision, strips trailing zeros and
// switches to scientific notation only far away from the decimal point.
func (in *Interp) formatNumber(d *apd.Decimal) string {
	switch d.Form {
	case apd.Infinite:
		if d.Negative {
			return "-inf"
		}
		return "inf"
	case apd.NaN, apd.NaNSignaling:
		return "nan"
	}

	dctx := apd.BaseContext.WithPrecision(uint32(in.Precision))
	dctx.Traps = 0
	r := new(apd.Decimal)
	dctx.Round(r, d)
	r.Reduce(r)

	if r.IsZero() {
		return "0"
	}
	adj := int(r.Exponent) + int(r.NumDigits()) - 1
	if adj >= -6 && adj < in.Precision+6 {
		return r.Text('f')
	}

	digits := r.Coeff.String()
	var b strings.Builder
	if r.Negative {
		b.WriteByte('-')
	}
	b.WriteString(digits[:1])
	if len(digits) > 1 {
		b.WriteByte('.')
		b.WriteString(digits[1:])
	}
	fmt.Fprintf(&b, "e%+d", adj)
	return b.String()
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

/* ===========================
   closure reconstruction
   =========================== */

func (in *Interp) reconstructClosure(c *Closure) string {
	subst := map[string]Value{}
	var params []string
	fixed := c.FixedArity()
	for i := 0; i < fixed; i++ {
		if i < len(c.Slots) && !c.Slots[i].Hole {
			subst[c.Params[i]] = c.Slots[i].V
		} else {
			params = append(params, c.Params[i])
		}
	}
	if c.HasRest() {
		params = append(params, c.Params[len(c.Params)-1])
	}

	var b strings.Builder
	b.WriteByte('{')
	if c.Name != "" && len(c.Slots) == 0 {
		b.WriteString(c.Name)
		b.WriteString(": ")
	}
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(" -> ")
	in.writeExpr(&b, c.Body, 0, subst)
	b.WriteByte('}')
	return b.String()
}

// reconstructBuiltin prints a builtin by name; partially applied builtins
// show their accumulated arguments with holes as `_`.
func (in *Interp) reconstructBuiltin(b *Builtin) string {
	name := b.Name
	if isOperatorName(name) {
		name = "(" + name + ")"
	}
	if len(b.Slots) == 0 {
		return name
	}
	parts := make([]string, len(b.Slots))
	for i, s := range b.Slots {
		if s.Hole {
			parts[i] = "_"
		} else {
			parts[i] = in.FormatValue(s.V)
		}
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// substValue renders an inlined captured value inside a reconstructed body.
// Closures recurse into their own reconstruction; everything else uses the
// structural form.
func (in *Interp) substValue(b *strings.Builder, v Value, prec int) {
	if v.Tag == VTNumber {
		d := v.Data.(*apd.Decimal)
		neg := d.Negative && (d.Form == apd.Infinite || !d.IsZero())
		if neg && prec > bpUnary {
			// a negative literal binds like a unary minus
			b.WriteByte('(')
			b.WriteString(in.formatNumber(d))
			b.WriteByte(')')
			return
		}
	}
	b.WriteString(in.FormatValue(v))
}

var printPrec = map[string]int{
	"||": bpOr, "&&": bpAnd,
	"==": bpCmp, "!=": bpCmp, "<": bpCmp, "<=": bpCmp, ">": bpCmp, ">=": bpCmp,
	"+": bpAdd, "-": bpAdd,
	"*": bpMul, "/": bpMul, "%": bpMul,
	"^": bpPow,
}

// writeExpr prints node n, wrapping in parens when its top construct binds
// looser than the surrounding precedence prec.
func (in *Interp) writeExpr(b *strings.Builder, n S, prec int, subst map[string]Value) {
	switch Tag(n) {
	case "num":
		b.WriteString(partStr(n, 0))
	case "str":
		b.WriteString(quoteString(partStr(n, 0)))
	case "bool":
		if part(n, 0).(bool) {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case "hole":
		b.WriteByte('_')
	case "id":
		name := partStr(n, 0)
		if v, ok := subst[name]; ok {
			in.substValue(b, v, prec)
			return
		}
		if isOperatorName(name) {
			b.WriteByte('(')
			b.WriteString(name)
			b.WriteByte(')')
			return
		}
		b.WriteString(name)
	case "list":
		b.WriteByte('[')
		for i, el := range allParts(n) {
			if i > 0 {
				b.WriteString(", ")
			}
			in.writeExpr(b, el.(S), 0, subst)
		}
		b.WriteByte(']')
	case "spread":
		b.WriteString("...")
		in.writeExpr(b, partS(n, 0), bpPostfix, subst)
	case "lambda":
		in.writeLambda(b, n, subst)
	case "call":
		in.writeCall(b, n, prec, subst)
	case "index":
		in.writeExpr(b, partS(n, 0), bpPostfix, subst)
		b.WriteByte('[')
		in.writeExpr(b, partS(n, 1), 0, subst)
		b.WriteByte(']')
	case "member":
		in.writeExpr(b, partS(n, 0), bpPostfix, subst)
		b.WriteByte('.')
		b.WriteString(partStr(n, 1))
	case "if":
		open := prec > 0
		if open {
			b.WriteByte('(')
		}
		b.WriteString("if ")
		in.writeExpr(b, partS(n, 0), 0, subst)
		b.WriteString(" then ")
		in.writeExpr(b, partS(n, 1), 0, subst)
		b.WriteString(" else ")
		in.writeExpr(b, partS(n, 2), 0, subst)
		if open {
			b.WriteByte(')')
		}
	case "and", "or":
		op, p := "&&", bpAnd
		if Tag(n) == "or" {
			op, p = "||", bpOr
		}
		in.writeInfix(b, op, p, partS(n, 0), partS(n, 1), prec, subst)
	case "cmp":
		open := prec > bpCmp
		if open {
			b.WriteByte('(')
		}
		ops := part(n, 0).([]string)
		for i := 1; i < numParts(n); i++ {
			if i > 1 {
				b.WriteByte(' ')
				b.WriteString(ops[i-2])
				b.WriteByte(' ')
			}
			in.writeExpr(b, partS(n, i), bpCmp+1, subst)
		}
		if open {
			b.WriteByte(')')
		}
	default:
		b.WriteString("<" + Tag(n) + ">")
	}
}

func (in *Interp) writeLambda(b *strings.Builder, n S, subst map[string]Value) {
	name := partStr(n, 0)
	params := partStrs(n, 1)
	if len(subst) > 0 {
		inner := make(map[string]Value, len(subst))
		for k, v := range subst {
			inner[k] = v
		}
		for _, p := range params {
			if isRestParam(p) {
				p = restParamName(p)
			}
			delete(inner, p)
		}
		subst = inner
	}
	b.WriteByte('{')
	if name != "" {
		b.WriteString(name)
		b.WriteString(": ")
	}
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(" -> ")
	in.writeExpr(b, partS(n, 2), 0, subst)
	b.WriteByte('}')
}

func (in *Interp) writeCall(b *strings.Builder, n S, prec int, subst map[string]Value) {
	callee := partS(n, 0)
	args := numParts(n) - 1

	// operator calls print back as operators, unless substitution replaced
	// the operator name itself
	if Tag(callee) == "id" {
		op := partStr(callee, 0)
		if _, shadowed := subst[op]; !shadowed && isOperatorName(op) {
			if p, ok := printPrec[op]; ok && args == 2 {
				in.writeInfix(b, op, p, partS(n, 1), partS(n, 2), prec, subst)
				return
			}
			if args == 1 && (op == "-" || op == "!") {
				open := prec > bpUnary
				if open {
					b.WriteByte('(')
				}
				b.WriteString(op)
				in.writeExpr(b, partS(n, 1), bpUnary, subst)
				if open {
					b.WriteByte(')')
				}
				return
			}
		}
	}

	in.writeExpr(b, callee, bpPostfix, subst)
	b.WriteByte('(')
	for i := 1; i < numParts(n); i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		in.writeExpr(b, partS(n, i), 0, subst)
	}
	b.WriteByte(')')
}

func (in *Interp) writeInfix(b *strings.Builder, op string, p int, lhs, rhs S, prec int, subst map[string]Value) {
	open := prec > p
	if open {
		b.WriteByte('(')
	}
	lp, rp := p, p+1
	if op == "^" {
		lp, rp = p+1, p
	}
	in.writeExpr(b, lhs, lp, subst)
	b.WriteByte(' ')
	b.WriteString(op)
	b.WriteByte(' ')
	in.writeExpr(b, rhs, rp, subst)
	if open {
		b.WriteByte(')')
	}
}

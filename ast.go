package numfu

// S is the S-expression node type for NumFu ASTs. Every node has the shape
//
//	[]any{tag string, span Span, part0, part1, ...}
//
// where parts are either child nodes (S) or leaf payloads (string, bool,
// []string). The tag inventory:
//
//	"block"    stmt...                      program / module body
//	"num"      lexeme string                numeric literal, kept textual
//	"str"      value string
//	"bool"     value bool
//	"id"       name string
//	"hole"     —                            argument placeholder "_"
//	"dollar"   —                            "$" inside an assertion predicate
//	"list"     elem...
//	"spread"   expr                         "...expr" in a call argument list
//	"lambda"   name string, params []string, body
//	"call"     callee, arg...
//	"index"    target, index
//	"member"   target, name string          module member access
//	"if"       cond, then, else
//	"and"      left, right
//	"or"       left, right
//	"cmp"      ops []string, operand...     chained comparison
//	"assert"   expr, predicate              "expr ---> predicate"
//	"letstmt"  name string, expr            top-level "let NAME = EXPR"
//	"const"    name string, expr
//	"del"      name string
//	"import"   path string, names []string  nil names = prefixed access,
//	                                        ["*"] = import everything
//	"export"   names []string
//	"exportlet" name string, expr
//
// Lambda params carry a "..." prefix on a trailing rest parameter, e.g.
// []string{"x", "...rest"}. "let ... in" is desugared at parse time into an
// immediate lambda call, and operators into calls of the builtin of the same
// name, so the evaluator never sees a binary-operator node.
type S = []any

// L builds a node from a tag, a span and parts.
func L(tag string, sp Span, parts ...any) S {
	return append([]any{tag, sp}, parts...)
}

// Tag returns the node tag, or "" if n is not a node.
func Tag(n any) string {
	if s, ok := n.(S); ok && len(s) > 0 {
		if t, ok := s[0].(string); ok {
			return t
		}
	}
	return ""
}

// NodeSpan returns the source span of a node (zero Span if absent).
func NodeSpan(n any) Span {
	if s, ok := n.(S); ok && len(s) > 1 {
		if sp, ok := s[1].(Span); ok {
			return sp
		}
	}
	return Span{}
}

func numParts(n S) int       { return len(n) - 2 }
func part(n S, i int) any    { return n[i+2] }
func allParts(n S) []any     { return n[2:] }
func partS(n S, i int) S     { return n[i+2].(S) }
func partStr(n S, i int) string {
	return n[i+2].(string)
}
func partStrs(n S, i int) []string {
	if v, ok := n[i+2].([]string); ok {
		return v
	}
	return nil
}

// isRestParam reports whether a lambda parameter name is a rest parameter.
func isRestParam(name string) bool {
	return len(name) > 3 && name[:3] == "..."
}

func restParamName(name string) string { return name[3:] }

package numfu

// Span is a source region in line/column coordinates. Lines and columns are
// 1-based; EndCol is exclusive. A zero Span means "no position known".
//
// Spans are carried inside AST nodes (see ast.go) so that every evaluation
// step can report a precise region without a sidecar lookup. Multi-line spans
// arise from lambdas, lists and calls whose tokens cross lines.
type Span struct {
	Line    int
	Col     int
	EndLine int
	EndCol  int
}

// IsZero reports whether the span carries no position.
func (sp Span) IsZero() bool { return sp.Line == 0 }

// tokSpan derives a span from a single token. Tokens never cross lines
// (strings reject raw newlines), so the end stays on the same line.
func tokSpan(t Token) Span {
	return Span{
		Line:    t.Line,
		Col:     t.Col + 1,
		EndLine: t.Line,
		EndCol:  t.Col + 1 + len(t.Lexeme),
	}
}

// joinSpans covers the region from the start of a to the end of b.
// A zero side is ignored.
func joinSpans(a, b Span) Span {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	return Span{Line: a.Line, Col: a.Col, EndLine: b.EndLine, EndCol: b.EndCol}
}

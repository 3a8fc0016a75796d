// errors.go: kind-tagged diagnostics and caret-snippet rendering
//
// Every error surfaced to a NumFu user carries a named kind (SyntaxError,
// TypeError, ...), a message and a source span. `WrapErrorWithSource` turns
// such an error into a readable snippet with a caret run underlining the
// offending region:
//
//	[at fib.nfu:3:14]
//	   2 | let x = f(1, 2
//	   3 |              )
//	     |              ^
//	TypeError: value is not callable
//
// The snippet includes up to one line of context before and after the error,
// numbers the lines, and underlines the span on its first line.
package numfu

import (
	"errors"
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// Error kinds observable from user code.
const (
	ErrSyntax    = "SyntaxError"
	ErrName      = "NameError"
	ErrType      = "TypeError"
	ErrIndex     = "IndexError"
	ErrValue     = "ValueError"
	ErrAssertion = "AssertionError"
	ErrRecursion = "RecursionError"
	ErrImport    = "ImportError"
	ErrRuntime   = "RuntimeError"
)

// Error is the single diagnostic type produced by the lexer, parser,
// evaluator and module resolver. Kind is one of the Err* constants or a
// user-supplied tag from error(msg, "Tag").
type Error struct {
	Kind string
	Msg  string
	Span Span
	File string

	// Incomplete marks a parse that ran out of input mid-construct; the
	// REPL uses it to prompt for a continuation line instead of failing.
	Incomplete bool
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Span.Line, e.Span.Col, e.Msg)
}

// IsIncomplete reports whether err is a parse error caused by truncated
// input (unterminated lambda, list, call, ...). Lexer string/escape errors
// at EOF also count, so multi-line strings are not an endless prompt.
func IsIncomplete(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Incomplete
	}
	return false
}

// ExitCode maps an error to the process exit status: 0 for nil, 2 for
// syntax and import failures, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == ErrSyntax || e.Kind == ErrImport {
			return 2
		}
	}
	return 1
}

// WrapErrorWithSource returns an error whose message is a caret-annotated
// snippet of the provided source. It recognizes *Error and *LexError and
// leaves other errors untouched.
func WrapErrorWithSource(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *LexError:
		// Lexer Col is 0-based; render as 1-based.
		sp := Span{Line: e.Line, Col: e.Col + 1, EndLine: e.Line, EndCol: e.Col + 2}
		return fmt.Errorf("%s", prettySnippet(src, srcName, ErrSyntax, sp, e.Msg))
	case *Error:
		if e.Span.IsZero() {
			if srcName != "" {
				return fmt.Errorf("[at %s]\n%s: %s", srcName, e.Kind, e.Msg)
			}
			return err
		}
		name := e.File
		if name == "" {
			name = srcName
		}
		return fmt.Errorf("%s", prettySnippet(src, name, e.Kind, e.Span, e.Msg))
	default:
		return err
	}
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: rendering
   =========================== */

// prettySnippet builds the snippet with a location header, context lines and
// a caret run underlining the span on its first line. Coordinates are
// 1-based and clamped to the source bounds.
func prettySnippet(src, name, kind string, sp Span, msg string) string {
	lines := strings.Split(src, "\n")
	line, col := sp.Line, sp.Col
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	width := 1
	if sp.EndLine == sp.Line && sp.EndCol > sp.Col {
		width = sp.EndCol - sp.Col
	} else if sp.EndLine > sp.Line {
		// multi-line span: underline to the end of the first line
		width = len(lineTxt) - (col - 1)
	}
	if col-1 > len(lineTxt) {
		col = len(lineTxt) + 1
	}
	if width < 1 {
		width = 1
	}
	if col-1+width > len(lineTxt) {
		width = len(lineTxt) - (col - 1)
		if width < 1 {
			width = 1
		}
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "[at %s:%d:%d]\n", name, line, col)
	} else {
		fmt.Fprintf(&b, "[at %d:%d]\n", line, col)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	fmt.Fprintf(&b, "%s: %s", kind, msg)
	return b.String()
}

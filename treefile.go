// treefile.go: the serialized AST format behind `numfu parse`
//
// A tree file is the magic "NFU-TREE-FILE" followed by a JSON encoding of
// the program node, so a parsed file can be executed later without
// re-parsing. Nodes serialize as objects {"t","s","p"}; the span compresses
// to a four-int array and is omitted when zero. Leaf parts keep their
// natural JSON form (string, bool, array of strings), which makes objects
// the only ambiguity-free marker a decoder needs.
//
// FormatTree is the other consumer of the node shape: the indented
// s-expression dump behind `numfu parse -p` and the AST REPL.
package numfu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// TreeMagic prefixes every serialized tree file.
const TreeMagic = "NFU-TREE-FILE"

// IsTreeData reports whether data begins with the tree-file magic.
func IsTreeData(data []byte) bool {
	return bytes.HasPrefix(data, []byte(TreeMagic))
}

// MarshalTree serializes a parsed program to the tree-file format.
func MarshalTree(prog S) ([]byte, error) {
	enc, err := encodeNode(prog)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(enc)
	if err != nil {
		return nil, err
	}
	return append([]byte(TreeMagic), body...), nil
}

// UnmarshalTree decodes a tree file back into a program node.
func UnmarshalTree(data []byte) (S, error) {
	if !IsTreeData(data) {
		return nil, &Error{Kind: ErrValue, Msg: "not a NumFu tree file"}
	}
	var raw any
	if err := json.Unmarshal(data[len(TreeMagic):], &raw); err != nil {
		return nil, &Error{Kind: ErrValue, Msg: fmt.Sprintf("corrupt tree file: %v", err)}
	}
	return decodeNode(raw)
}

// FormatTree renders a node as an indented s-expression. maxDepth limits how
// deep child nodes are expanded (0 means unlimited); indent is the number of
// spaces per level.
func FormatTree(n S, maxDepth, indent int) string {
	var b strings.Builder
	writeTree(&b, n, 0, maxDepth, indent)
	return b.String()
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: codec
   =========================== */

func encodeNode(n S) (map[string]any, error) {
	tag := Tag(n)
	if tag == "" {
		return nil, &Error{Kind: ErrValue, Msg: "cannot serialize a malformed node"}
	}
	m := map[string]any{"t": tag}
	if sp := NodeSpan(n); !sp.IsZero() {
		m["s"] = []int{sp.Line, sp.Col, sp.EndLine, sp.EndCol}
	}
	parts := allParts(n)
	if len(parts) == 0 {
		return m, nil
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case S:
			child, err := encodeNode(v)
			if err != nil {
				return nil, err
			}
			out[i] = child
		case string, bool, []string:
			out[i] = v
		default:
			return nil, &Error{Kind: ErrValue, Msg: fmt.Sprintf("cannot serialize node part of type %T", p)}
		}
	}
	m["p"] = out
	return m, nil
}

func decodeNode(raw any) (S, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, corruptTree("node is not an object")
	}
	tag, ok := m["t"].(string)
	if !ok || tag == "" {
		return nil, corruptTree("node without a tag")
	}
	sp := Span{}
	if s, ok := m["s"]; ok {
		xs, ok := s.([]any)
		if !ok || len(xs) != 4 {
			return nil, corruptTree("bad span")
		}
		ints := make([]int, 4)
		for i, x := range xs {
			f, ok := x.(float64)
			if !ok {
				return nil, corruptTree("bad span")
			}
			ints[i] = int(f)
		}
		sp = Span{Line: ints[0], Col: ints[1], EndLine: ints[2], EndCol: ints[3]}
	}
	node := S{tag, sp}
	if p, ok := m["p"]; ok {
		parts, ok := p.([]any)
		if !ok {
			return nil, corruptTree("bad part list")
		}
		for _, part := range parts {
			switch v := part.(type) {
			case map[string]any:
				child, err := decodeNode(v)
				if err != nil {
					return nil, err
				}
				node = append(node, child)
			case string, bool:
				node = append(node, v)
			case nil:
				// a nil string list (prefixed import, no lambda params)
				node = append(node, []string(nil))
			case []any:
				ss := make([]string, len(v))
				for i, x := range v {
					s, ok := x.(string)
					if !ok {
						return nil, corruptTree("bad string list part")
					}
					ss[i] = s
				}
				node = append(node, ss)
			default:
				return nil, corruptTree(fmt.Sprintf("unsupported part of type %T", part))
			}
		}
	}
	return node, nil
}

func corruptTree(what string) error {
	return &Error{Kind: ErrValue, Msg: "corrupt tree file: " + what}
}

/* ===========================
   PRIVATE: pretty printing
   =========================== */

func writeTree(b *strings.Builder, n S, depth, maxDepth, indent int) {
	b.WriteByte('(')
	b.WriteString(Tag(n))
	if maxDepth > 0 && depth >= maxDepth {
		if numParts(n) > 0 {
			b.WriteString(" ...")
		}
		b.WriteByte(')')
		return
	}
	pad := strings.Repeat(" ", (depth+1)*indent)
	for _, p := range allParts(n) {
		switch v := p.(type) {
		case S:
			b.WriteByte('\n')
			b.WriteString(pad)
			writeTree(b, v, depth+1, maxDepth, indent)
		case string:
			fmt.Fprintf(b, " %q", v)
		case bool:
			fmt.Fprintf(b, " %v", v)
		case []string:
			b.WriteString(" [")
			for i, s := range v {
				if i > 0 {
					b.WriteByte(' ')
				}
				fmt.Fprintf(b, "%q", s)
			}
			b.WriteByte(']')
		default:
			fmt.Fprintf(b, " <%T>", p)
		}
	}
	b.WriteByte(')')
}

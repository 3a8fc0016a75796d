// interpreter.go: the tree-walking evaluator
//
// The evaluator reduces S-expression nodes (see ast.go) to Values. It is
// strict except for `&&`, `||`, `if-then-else` and the later operands of a
// chained comparison. Calls in tail position do not recurse on the Go stack:
// evalNode returns a tailCall token that the loop in interpreter_call.go
// iterates on, so tail-recursive NumFu programs run in constant stack space.
//
// Two limits govern runaway programs: RecDepth bounds the nesting of
// non-tail calls, IterDepth bounds trampoline iterations within a single
// call (-1 means unlimited).
//
// Top-level statements (let, const, del, import, export, assertions) are
// executed by EvalTop; everything below statement level goes through
// evalNode.
package numfu

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/cockroachdb/apd/v3"
)

/* ===========================
   PUBLIC API
   =========================== */

// Defaults for Options fields left zero.
const (
	DefaultPrecision = 15
	DefaultRecDepth  = 10000
	DefaultIterDepth = -1
)

// Options configures a new interpreter.
type Options struct {
	Precision int       // significant digits shown when printing numbers
	RecDepth  int       // max non-tail call nesting
	IterDepth int       // max trampoline iterations per call; -1 = unlimited
	Dir       string    // directory imports of the main module resolve from
	Stdout    io.Writer // print() target; defaults to os.Stdout
	Stdin     io.Reader // input() source; defaults to os.Stdin
}

// Interp is the NumFu interpreter: configuration, the environment chain and
// the module cache. It is not safe for concurrent use.
type Interp struct {
	Precision int
	RecDepth  int
	IterDepth int
	Dir       string
	Stdout    io.Writer

	// Global is the mutable top frame of the main module (and of the REPL).
	// Its parent is the root frame holding natives and the prelude.
	Global *Env

	ctx       *apd.Context
	root      *Env
	modules map[string]*moduleRec
	stdin     *bufio.Reader
	rng       *rand.Rand
	depth     int
}

// New builds an interpreter: native builtins are registered, the embedded
// prelude source is parsed and evaluated into the root frame (no serialized
// tree of it is loaded), and a fresh mutable top frame is stacked on top for
// the program.
func New(o Options) (*Interp, error) {
	if o.Precision <= 0 {
		o.Precision = DefaultPrecision
	}
	if o.RecDepth == 0 {
		o.RecDepth = DefaultRecDepth
	}
	if o.IterDepth == 0 {
		o.IterDepth = DefaultIterDepth
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}

	in := &Interp{
		Precision: o.Precision,
		RecDepth:  o.RecDepth,
		IterDepth: o.IterDepth,
		Dir:       o.Dir,
		Stdout:    o.Stdout,
		// guard digits so that printing at Precision is stable
		ctx:     newDecContext(o.Precision),
		modules: map[string]*moduleRec{},
		stdin:   bufio.NewReader(o.Stdin),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	in.root = NewTopEnv(nil)
	registerBuiltins(in)
	if err := in.loadPrelude(); err != nil {
		return nil, err
	}
	in.Global = NewTopEnv(in.root)
	return in, nil
}

// Eval evaluates a single expression node in env.
func (in *Interp) Eval(n S, env *Env) (Value, error) {
	return in.eval(n, env)
}

// Apply calls fn with args, running the full curry/placeholder protocol.
// Builtins that take callbacks (map, filter) re-enter here.
func (in *Interp) Apply(fn Value, args []Value, sp Span) (Value, error) {
	v, _, err := in.apply(fn, args, sp, false)
	return v, err
}

// EvalSource parses src and executes its statements in env. emit receives
// the value of every top-level expression that is not Unit (pass nil to
// discard). name labels parse errors.
func (in *Interp) EvalSource(name, src string, env *Env, emit func(Value)) error {
	prog, err := ParseSExpr(src)
	if err != nil {
		return err
	}
	return in.EvalTop(prog, env, nil, emit)
}

// EvalTop executes the statements of a "block" node. mod, when non-nil, is
// the module record collecting export declarations; the main module and the
// REPL pass nil and have exports validated immediately.
func (in *Interp) EvalTop(prog S, env *Env, mod *moduleRec, emit func(Value)) error {
	for _, st := range allParts(prog) {
		n, ok := st.(S)
		if !ok {
			continue
		}
		if err := in.evalStmt(n, env, mod, emit); err != nil {
			return err
		}
	}
	return nil
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: statements
   =========================== */

func (in *Interp) evalStmt(n S, env *Env, mod *moduleRec, emit func(Value)) error {
	sp := NodeSpan(n)
	switch Tag(n) {
	case "letstmt":
		name := partStr(n, 0)
		if env.IsConst(name) {
			return errAt(ErrType, sp, "Cannot reassign constant '%s'", name)
		}
		v, err := in.eval(partS(n, 1), env)
		if err != nil {
			return err
		}
		adoptName(v, name)
		env.Define(name, v)
		return nil

	case "const":
		name := partStr(n, 0)
		if env.IsConst(name) {
			return errAt(ErrType, sp, "Cannot reassign constant '%s'", name)
		}
		v, err := in.eval(partS(n, 1), env)
		if err != nil {
			return err
		}
		adoptName(v, name)
		env.DefineConst(name, v)
		return nil

	case "del":
		name := partStr(n, 0)
		if env.IsConst(name) {
			return errAt(ErrType, sp, "Cannot delete constant '%s'", name)
		}
		if !env.Delete(name) {
			return errAt(ErrName, sp, "'%s' is not defined in the current scope", name)
		}
		return nil

	case "import":
		return in.evalImport(n, env, mod)

	case "export":
		names := partStrs(n, 0)
		if mod == nil {
			for _, name := range names {
				if _, ok := env.Get(name); !ok {
					return errAt(ErrName, sp, "'%s' is not defined in the current scope", name)
				}
			}
			return nil
		}
		mod.exportNames = append(mod.exportNames, names...)
		mod.exportSpans = append(mod.exportSpans, repeatSpan(sp, len(names))...)
		return nil

	case "exportlet":
		name := partStr(n, 0)
		v, err := in.eval(partS(n, 1), env)
		if err != nil {
			return err
		}
		adoptName(v, name)
		env.Define(name, v)
		if mod != nil {
			mod.exportNames = append(mod.exportNames, name)
			mod.exportSpans = append(mod.exportSpans, sp)
		}
		return nil

	default:
		v, err := in.eval(n, env)
		if err != nil {
			return err
		}
		if emit != nil && v.Tag != VTUnit {
			emit(v)
		}
		return nil
	}
}

// adoptName labels an anonymous closure with the top-level name it is bound
// to, so recursion through the top frame and printing both work.
func adoptName(v Value, name string) {
	if v.Tag == VTClosure {
		if c := v.Data.(*Closure); c.Name == "" {
			c.Name = name
		}
	}
}

func repeatSpan(sp Span, n int) []Span {
	out := make([]Span, n)
	for i := range out {
		out[i] = sp
	}
	return out
}

/* ===========================
   PRIVATE: expression evaluation
   =========================== */

// eval evaluates n to completion (never returns a tailCall token).
func (in *Interp) eval(n S, env *Env) (Value, error) {
	v, _, err := in.evalNode(n, env, false)
	return v, err
}

// evalNode reduces one node. When tail is true and the node is a call whose
// callable is ready to run, the call is returned as a tailCall token instead
// of being entered, so the trampoline in interpreter_call.go can iterate.
func (in *Interp) evalNode(n S, env *Env, tail bool) (Value, *tailCall, error) {
	sp := NodeSpan(n)
	switch Tag(n) {
	case "num":
		v, err := parseNumber(partStr(n, 0), sp)
		return v, nil, err

	case "str":
		return Str(partStr(n, 0)), nil, nil

	case "bool":
		return Bool(n[2].(bool)), nil, nil

	case "id":
		name := partStr(n, 0)
		if v, ok := env.Get(name); ok {
			return v, nil, nil
		}
		return Value{}, nil, errAt(ErrName, sp, "'%s' is not defined in the current scope", name)

	case "list":
		var elems []Value
		for i := 0; i < numParts(n); i++ {
			e := partS(n, i)
			if Tag(e) == "spread" {
				v, err := in.eval(partS(e, 0), env)
				if err != nil {
					return Value{}, nil, err
				}
				if v.Tag != VTList {
					return Value{}, nil, errAt(ErrType, NodeSpan(e), "Type '%s' is not iterable", v.TypeName())
				}
				elems = append(elems, v.Data.([]Value)...)
				continue
			}
			v, err := in.eval(e, env)
			if err != nil {
				return Value{}, nil, err
			}
			elems = append(elems, v)
		}
		return List(elems), nil, nil

	case "lambda":
		name := partStr(n, 0)
		params := partStrs(n, 1)
		capture := env
		c := &Closure{Name: name, Params: params, Body: partS(n, 2), Env: capture}
		if name != "" {
			// recursive self-reference via an extra frame
			selfEnv := NewEnv(env)
			c.Env = selfEnv
			selfEnv.Define(name, ClosureVal(c))
		}
		return ClosureVal(c), nil, nil

	case "call":
		fn, err := in.eval(partS(n, 0), env)
		if err != nil {
			return Value{}, nil, err
		}
		args, err := in.evalCallArgs(n, env)
		if err != nil {
			return Value{}, nil, err
		}
		return in.apply(fn, args, sp, tail)

	case "index":
		target, err := in.eval(partS(n, 0), env)
		if err != nil {
			return Value{}, nil, err
		}
		idx, err := in.eval(partS(n, 1), env)
		if err != nil {
			return Value{}, nil, err
		}
		v, err := indexValue(target, idx, sp)
		return v, nil, err

	case "member":
		target, err := in.eval(partS(n, 0), env)
		if err != nil {
			return Value{}, nil, err
		}
		v, err := in.memberValue(target, partStr(n, 1), sp)
		return v, nil, err

	case "if":
		cond, err := in.eval(partS(n, 0), env)
		if err != nil {
			return Value{}, nil, err
		}
		if Truthy(cond) {
			return in.evalNode(partS(n, 1), env, tail)
		}
		return in.evalNode(partS(n, 2), env, tail)

	case "and":
		l, err := in.eval(partS(n, 0), env)
		if err != nil {
			return Value{}, nil, err
		}
		if !Truthy(l) {
			return Bool(false), nil, nil
		}
		r, err := in.eval(partS(n, 1), env)
		if err != nil {
			return Value{}, nil, err
		}
		return Bool(Truthy(r)), nil, nil

	case "or":
		l, err := in.eval(partS(n, 0), env)
		if err != nil {
			return Value{}, nil, err
		}
		if Truthy(l) {
			return Bool(true), nil, nil
		}
		r, err := in.eval(partS(n, 1), env)
		if err != nil {
			return Value{}, nil, err
		}
		return Bool(Truthy(r)), nil, nil

	case "cmp":
		// a < b < c evaluates b once and stops at the first false link
		ops := partStrs(n, 0)
		left, err := in.eval(partS(n, 1), env)
		if err != nil {
			return Value{}, nil, err
		}
		for i, op := range ops {
			right, err := in.eval(partS(n, i+2), env)
			if err != nil {
				return Value{}, nil, err
			}
			var ok bool
			switch op {
			case "==":
				ok = Equal(left, right)
			case "!=":
				ok = !Equal(left, right)
			default:
				ok, err = compareValues(op, left, right, NodeSpan(partS(n, i+2)))
				if err != nil {
					return Value{}, nil, err
				}
			}
			if !ok {
				return Bool(false), nil, nil
			}
			left = right
		}
		return Bool(true), nil, nil

	case "assert":
		lhs := partS(n, 0)
		v, err := in.eval(lhs, env)
		if err != nil {
			return Value{}, nil, err
		}
		frame := NewEnv(env)
		frame.Define("$", v)
		p, err := in.eval(partS(n, 1), frame)
		if err != nil {
			return Value{}, nil, err
		}
		if !Truthy(p) {
			return Value{}, nil, errAt(ErrAssertion, NodeSpan(lhs), "Assertion failed")
		}
		return Unit, nil, nil

	case "hole":
		return Value{}, nil, errAt(ErrSyntax, sp, "'_' is only allowed in call arguments")

	case "spread":
		return Value{}, nil, errAt(ErrSyntax, sp, "spread is only allowed in call arguments and list literals")

	case "letstmt", "const", "del", "import", "export", "exportlet":
		return Value{}, nil, errAt(ErrSyntax, sp, "'%s' is only allowed at the top level of a module", Tag(n))
	}
	return Value{}, nil, errAt(ErrSyntax, sp, "cannot evaluate '%s' node", Tag(n))
}

/* ===========================
   PRIVATE: indexing and helpers
   =========================== */

func parseNumber(lex string, sp Span) (Value, error) {
	d, _, err := apd.NewFromString(lex)
	if err != nil {
		return Value{}, errAt(ErrSyntax, sp, "invalid number literal '%s'", lex)
	}
	return Num(d), nil
}

func indexValue(target, idx Value, sp Span) (Value, error) {
	var n int
	switch target.Tag {
	case VTList:
		n = len(target.Data.([]Value))
	case VTString:
		n = len([]rune(target.Data.(string)))
	default:
		return Value{}, errAt(ErrType, sp, "'%s' object is not subscriptable", target.TypeName())
	}

	i, err := indexInt(idx, target.TypeName(), sp)
	if err != nil {
		return Value{}, err
	}
	if i >= n || i < -n {
		return Value{}, errAt(ErrIndex, sp, "%s index out of range", target.TypeName())
	}
	if i < 0 {
		i += n
	}
	if target.Tag == VTString {
		return Str(string([]rune(target.Data.(string))[i])), nil
	}
	return target.Data.([]Value)[i], nil
}

// indexInt checks that idx is an integral number and converts it.
func indexInt(idx Value, what string, sp Span) (int, error) {
	if idx.Tag != VTNumber {
		return 0, errAt(ErrType, sp, "%s index must be an integer, not '%s'", what, idx.TypeName())
	}
	d := idx.Data.(*apd.Decimal)
	if d.Form != apd.Finite {
		return 0, errAt(ErrType, sp, "%s index must be an integer, not '%s'", what, d.String())
	}
	i, err := d.Int64()
	if err != nil {
		return 0, errAt(ErrType, sp, "%s index must be an integer, not a floating-point number", what)
	}
	return int(i), nil
}

// errAt builds a kind-tagged error with a source span.
func errAt(kind string, sp Span, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Span: sp}
}

// builtins_io.go: console I/O, randomness, wall clock, error raising
package numfu

import (
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// ExitRequest is returned by the exit builtin. It unwinds evaluation like
// any error; the CLI recognizes it and terminates with Code instead of
// printing a diagnostic.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string { return fmt.Sprintf("exit(%d)", e.Code) }

func registerIOBuiltins(in *Interp) {
	def(in, "print", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		fmt.Fprint(in.Stdout, in.FormatTop(args[0]))
		return Unit, nil
	})
	def(in, "println", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		fmt.Fprintln(in.Stdout, in.FormatTop(args[0]))
		return Unit, nil
	})

	defVar(in, "input", 0, func(in *Interp, args []Value, sp Span) (Value, error) {
		if len(args) > 1 {
			return Value{}, badArity("input", 1, len(args), sp)
		}
		if len(args) == 1 {
			prompt, err := argStr("input", args, 0, sp)
			if err != nil {
				return Value{}, err
			}
			fmt.Fprint(in.Stdout, prompt)
		}
		line, err := in.stdin.ReadString('\n')
		if err != nil && err != io.EOF {
			return Value{}, errAt(ErrRuntime, sp, "input: %v", err)
		}
		return Str(strings.TrimRight(line, "\r\n")), nil
	})

	def(in, "random", 0, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Num(decFromFloat(in.rng.Float64())), nil
	})

	def(in, "seed", 1, func(in *Interp, args []Value, sp Span) (Value, error) {
		var s int64
		switch args[0].Tag {
		case VTNumber:
			d := args[0].Data.(*apd.Decimal)
			n, err := d.Int64()
			if err != nil {
				n = hashSeed(d.Text('G'))
			}
			s = n
		case VTString:
			s = hashSeed(args[0].Data.(string))
		default:
			return Value{}, badArg("seed", 0, "Number or String", args[0], sp)
		}
		in.rng = rand.New(rand.NewSource(s))
		return Unit, nil
	})

	def(in, "time", 0, func(in *Interp, args []Value, sp Span) (Value, error) {
		return Num(apd.New(time.Now().UnixNano(), -9)), nil
	})

	defVar(in, "exit", 0, func(in *Interp, args []Value, sp Span) (Value, error) {
		if len(args) > 1 {
			return Value{}, badArity("exit", 1, len(args), sp)
		}
		code := int64(0)
		if len(args) == 1 {
			var err error
			code, err = argInt("exit", args, 0, sp)
			if err != nil {
				return Value{}, err
			}
		}
		return Value{}, &ExitRequest{Code: int(code)}
	})

	defVar(in, "error", 1, biError)
	defVar(in, "assert", 1, biAssert)
}

//// END_OF_PUBLIC

func hashSeed(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// biError raises a user error. The optional second argument replaces the
// default RuntimeError kind with a custom tag.
func biError(in *Interp, args []Value, sp Span) (Value, error) {
	if len(args) > 2 {
		return Value{}, badArity("error", 2, len(args), sp)
	}
	msg, err := argStr("error", args, 0, sp)
	if err != nil {
		return Value{}, err
	}
	kind := ErrRuntime
	if len(args) == 2 {
		tag, err := argStr("error", args, 1, sp)
		if err != nil {
			return Value{}, err
		}
		kind = tag
	}
	return Value{}, errAt(kind, sp, "%s", msg)
}

// biAssert checks a boolean condition. assert(cond) yields true; the
// two-argument form assert(cond, val) passes val through on success.
func biAssert(in *Interp, args []Value, sp Span) (Value, error) {
	if len(args) > 2 {
		return Value{}, badArity("assert", 2, len(args), sp)
	}
	if args[0].Tag != VTBool {
		return Value{}, badArg("assert", 0, "Boolean", args[0], sp)
	}
	if !args[0].Data.(bool) {
		return Value{}, errAt(ErrAssertion, sp, "Assertion failed")
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return Bool(true), nil
}

// interpreter_call.go: calls, currying, placeholders and the trampoline
//
// Every call funnels through apply. Incoming arguments merge with the
// callable's accumulated slots: each argument consumes the earliest open
// slot (a `_` placeholder from an earlier call), a placeholder argument
// leaves its slot open, and surplus arguments append. The callable runs
// only when no slot is open and the fixed (non-rest) parameters are covered;
// otherwise apply returns a new partially-applied value.
//
// A ready closure in tail position is not entered: apply hands back a
// tailCall token and the loop in callClosure re-binds the frame and
// iterates, so `f(n-1, acc+n)` in tail position runs in constant Go stack.
package numfu

// vtHole is the internal tag of the placeholder sentinel produced by a `_`
// argument. It never escapes a call's argument list.
const vtHole ValueTag = -1

var holeVal = Value{Tag: vtHole}

func isHole(v Value) bool { return v.Tag == vtHole }

// tailCall is the trampoline token: a closure whose slots are complete,
// waiting to be entered by the loop in callClosure.
type tailCall struct {
	cl *Closure
	sp Span
}

// evalCallArgs evaluates the argument list of a "call" node. Spread
// arguments splice in list elements; `_` becomes the hole sentinel. The two
// cannot mix in one call.
func (in *Interp) evalCallArgs(call S, env *Env) ([]Value, error) {
	var out []Value
	sawHole := false
	var spreadSpan Span
	for i := 1; i < numParts(call); i++ {
		a := partS(call, i)
		switch Tag(a) {
		case "hole":
			out = append(out, holeVal)
			sawHole = true
		case "spread":
			v, err := in.eval(partS(a, 0), env)
			if err != nil {
				return nil, err
			}
			if v.Tag != VTList {
				return nil, errAt(ErrType, NodeSpan(a), "Type '%s' is not iterable", v.TypeName())
			}
			out = append(out, v.Data.([]Value)...)
			spreadSpan = NodeSpan(a)
		default:
			v, err := in.eval(a, env)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	if sawHole && !spreadSpan.IsZero() {
		return nil, errAt(ErrType, spreadSpan, "Cannot combine spread operator with argument placeholder")
	}
	return out, nil
}

// mergeSlots composes a new argument list with previously accumulated
// slots. Arguments consume open slots left-to-right; placeholder arguments
// keep their slot open; leftovers append.
func mergeSlots(slots []ArgSlot, args []Value) []ArgSlot {
	merged := append([]ArgSlot(nil), slots...)
	var open []int
	for i, s := range merged {
		if s.Hole {
			open = append(open, i)
		}
	}
	k := 0
	for _, a := range args {
		if k < len(open) {
			if !isHole(a) {
				merged[open[k]] = ArgSlot{V: a}
			}
			k++
			continue
		}
		merged = append(merged, ArgSlot{V: a, Hole: isHole(a)})
	}
	return merged
}

func hasHoles(slots []ArgSlot) bool {
	for _, s := range slots {
		if s.Hole {
			return true
		}
	}
	return false
}

func slotValues(slots []ArgSlot) []Value {
	out := make([]Value, len(slots))
	for i, s := range slots {
		out[i] = s.V
	}
	return out
}

// apply merges args into fn's application state and runs it if complete.
// When tail is true and fn is a ready closure, the call is returned as a
// tailCall token for the caller's trampoline.
func (in *Interp) apply(fn Value, args []Value, sp Span, tail bool) (Value, *tailCall, error) {
	switch fn.Tag {
	case VTClosure:
		c := fn.Data.(*Closure)
		merged := mergeSlots(c.Slots, args)
		next := &Closure{Name: c.Name, Params: c.Params, Body: c.Body, Env: c.Env, Slots: merged}
		if hasHoles(merged) || len(merged) < c.FixedArity() {
			return ClosureVal(next), nil, nil
		}
		if tail {
			return Value{}, &tailCall{cl: next, sp: sp}, nil
		}
		v, err := in.callClosure(next, sp)
		return v, nil, err

	case VTBuiltin:
		b := fn.Data.(*Builtin)
		merged := mergeSlots(b.Slots, args)
		if hasHoles(merged) || len(merged) < b.Arity {
			next := &Builtin{Name: b.Name, Arity: b.Arity, Variadic: b.Variadic, Fn: b.Fn, Slots: merged}
			return BuiltinVal(next), nil, nil
		}
		vals := slotValues(merged)
		if !b.Variadic && len(vals) > b.Arity {
			r, err := b.Fn(in, vals[:b.Arity], sp)
			if err != nil {
				return Value{}, nil, err
			}
			return in.applyExtra(r, vals[b.Arity:], sp, tail)
		}
		v, err := b.Fn(in, vals, sp)
		return v, nil, err

	default:
		return Value{}, nil, errAt(ErrType, sp, "value is not callable")
	}
}

// applyExtra feeds surplus arguments to the result of a saturated call.
func (in *Interp) applyExtra(r Value, rest []Value, sp Span, tail bool) (Value, *tailCall, error) {
	if len(rest) == 0 {
		return r, nil, nil
	}
	if r.Tag != VTClosure && r.Tag != VTBuiltin {
		return Value{}, nil, errAt(ErrType, sp, "Cannot apply %d more arguments to non-callable result", len(rest))
	}
	return in.apply(r, rest, sp, tail)
}

// callClosure enters a closure whose slots are complete and trampolines
// through tail calls. Non-tail nesting is bounded by RecDepth, trampoline
// iterations by IterDepth.
func (in *Interp) callClosure(c *Closure, sp Span) (Value, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.RecDepth > 0 && in.depth > in.RecDepth {
		return Value{}, errAt(ErrRecursion, sp, "maximum recursion depth exceeded")
	}

	cur := c
	iters := 0
	for {
		iters++
		if in.IterDepth >= 0 && iters > in.IterDepth {
			return Value{}, errAt(ErrRecursion, sp, "maximum tail-call iterations exceeded")
		}

		frame, extra := bindFrame(cur)

		var v Value
		var tc *tailCall
		var err error
		if len(extra) == 0 {
			v, tc, err = in.evalNode(cur.Body, frame, true)
		} else {
			// over-application: finish this body, then feed the surplus
			v, err = in.eval(cur.Body, frame)
			if err == nil {
				v, tc, err = in.applyExtra(v, extra, sp, true)
			}
		}
		if err != nil {
			return Value{}, err
		}
		if tc == nil {
			return v, nil
		}
		cur = tc.cl
	}
}

// bindFrame builds the call frame for a complete closure: fixed parameters
// bind positionally, a rest parameter collects the remainder into a list.
// Without a rest parameter, surplus slots are returned as extra arguments
// for the over-application protocol.
func bindFrame(c *Closure) (*Env, []Value) {
	frame := NewEnv(c.Env)
	vals := slotValues(c.Slots)
	fixed := c.FixedArity()
	for i := 0; i < fixed && i < len(vals); i++ {
		frame.Define(c.Params[i], vals[i])
	}
	if c.HasRest() {
		rest := append([]Value(nil), vals[fixed:]...)
		frame.Define(restParamName(c.Params[len(c.Params)-1]), List(rest))
		return frame, nil
	}
	return frame, vals[fixed:]
}

// stdlib.go: prelude bootstrapping
//
// The prelude is plain NumFu source compiled into the binary. It evaluates
// into the root frame after the natives register, so user code (and later
// prelude definitions) may shadow or wrap anything it defines.
package numfu

import (
	_ "embed"
	"fmt"
)

//go:embed stdlib/builtins.nfu
var preludeSrc string

func (in *Interp) loadPrelude() error {
	prog, err := ParseSExpr(preludeSrc)
	if err != nil {
		return fmt.Errorf("prelude: %w", err)
	}
	if err := in.EvalTop(prog, in.root, nil, nil); err != nil {
		return fmt.Errorf("prelude: %w", err)
	}
	return nil
}

// modules.go: import resolution, the module cache and member access
//
// A module evaluates in its own top frame chained onto the root scope, so
// it sees the natives and the prelude but not the importer's bindings.
// Resolution tries the importer's directory first (PATH.nfu, then
// PATH/index.nfu) and falls back to the embedded standard library. Each
// resolved file evaluates once per process; the cache is keyed by the
// canonical path. A cache entry still in the Loading state when it is
// requested again means the import graph has a cycle.
package numfu

import (
	"embed"
	"errors"
	"os"
	gopath "path"
	"path/filepath"
	"strings"
)

//go:embed stdlib
var stdlibFS embed.FS

/* ===========================
   PUBLIC API
   =========================== */

// ModuleExports returns the export names of the module value v, or nil if v
// is not a module.
func ModuleExports(v Value) []string {
	if v.Tag != vtModule {
		return nil
	}
	rec := v.Data.(*moduleRec)
	return append([]string(nil), rec.exportNames...)
}

//// END_OF_PUBLIC

// vtModule tags the value produced by a prefixed `import "PATH"`. It is not
// constructible from user expressions; only member access applies to it.
const vtModule ValueTag = -2

type moduleState int

const (
	moduleLoading moduleState = iota
	moduleReady
)

// moduleRec is one cached module. name is the path as written at the first
// import site (used in messages), path the canonical cache key.
type moduleRec struct {
	name   string
	path   string
	dir    string
	stdlib bool
	state  moduleState
	env    *Env

	exports     map[string]Value
	exportNames []string
	exportSpans []Span
}

func (in *Interp) evalImport(n S, env *Env, mod *moduleRec) error {
	sp := NodeSpan(n)
	path := partStr(n, 0)
	names := partStrs(n, 1)

	if !validModuleName(path) {
		return errAt(ErrImport, sp, "\"%s\" is an invalid module name", path)
	}

	base, fromStdlib := in.Dir, false
	if mod != nil {
		base, fromStdlib = mod.dir, mod.stdlib
	}
	rec, err := in.loadModule(base, fromStdlib, path, sp)
	if err != nil {
		return err
	}

	switch {
	case len(names) == 0:
		env.Define(lastSegment(path), Value{Tag: vtModule, Data: rec})
	case names[0] == "*":
		for _, name := range rec.exportNames {
			env.Define(name, rec.exports[name])
		}
	default:
		for _, name := range names {
			v, ok := rec.exports[name]
			if !ok {
				return errAt(ErrImport, sp, "module %s does not export an identifier named %s", path, name)
			}
			env.Define(name, v)
		}
	}
	return nil
}

// loadModule resolves path relative to base, then against the embedded
// standard library. Modules loaded from the standard library resolve their
// own imports against the standard library only.
func (in *Interp) loadModule(base string, fromStdlib bool, path string, sp Span) (*moduleRec, error) {
	if !fromStdlib {
		for _, cand := range []string{path + ".nfu", filepath.Join(path, "index.nfu")} {
			full, err := filepath.Abs(filepath.Join(base, cand))
			if err != nil {
				continue
			}
			if rec, ok := in.modules[full]; ok {
				return cachedModule(rec, sp)
			}
			src, err := os.ReadFile(full)
			if err != nil {
				continue
			}
			return in.evalModule(path, full, filepath.Dir(full), false, string(src), sp)
		}
	}

	stdBase := ""
	if fromStdlib {
		stdBase = base
	}
	for _, cand := range []string{path + ".nfu", path + "/index.nfu"} {
		key := gopath.Join("stdlib", stdBase, cand)
		if rec, ok := in.modules[key]; ok {
			return cachedModule(rec, sp)
		}
		src, err := stdlibFS.ReadFile(key)
		if err != nil {
			continue
		}
		dir := gopath.Dir(gopath.Join(stdBase, cand))
		return in.evalModule(path, key, dir, true, string(src), sp)
	}

	return nil, errAt(ErrImport, sp, "Cannot find module %s", path)
}

func cachedModule(rec *moduleRec, sp Span) (*moduleRec, error) {
	if rec.state == moduleLoading {
		return nil, errAt(ErrImport, sp, "cyclic import")
	}
	return rec, nil
}

// evalModule parses and runs a module body, then snapshots its exports.
// The Loading entry goes into the cache before the body runs so that a
// cycle back into this module is caught instead of recursing forever.
func (in *Interp) evalModule(name, key, dir string, std bool, src string, sp Span) (*moduleRec, error) {
	prog, err := ParseSExpr(src)
	if err != nil {
		return nil, fileError(err, key)
	}

	rec := &moduleRec{
		name:    name,
		path:    key,
		dir:     dir,
		stdlib:  std,
		state:   moduleLoading,
		env:     NewTopEnv(in.root),
		exports: map[string]Value{},
	}
	in.modules[key] = rec

	if err := in.EvalTop(prog, rec.env, rec, nil); err != nil {
		delete(in.modules, key)
		return nil, fileError(err, key)
	}
	for i, exp := range rec.exportNames {
		v, ok := rec.env.Get(exp)
		if !ok {
			delete(in.modules, key)
			return nil, fileError(errAt(ErrName, rec.exportSpans[i], "'%s' is not defined in the current scope", exp), key)
		}
		rec.exports[exp] = v
	}
	rec.state = moduleReady
	return rec, nil
}

// memberValue resolves M.name where M is a prefixed module import.
func (in *Interp) memberValue(target Value, name string, sp Span) (Value, error) {
	if target.Tag != vtModule {
		return Value{}, errAt(ErrType, sp, "Type '%s' does not support member access", target.TypeName())
	}
	rec := target.Data.(*moduleRec)
	v, ok := rec.exports[name]
	if !ok {
		return Value{}, errAt(ErrImport, sp, "module %s does not export an identifier named %s", rec.name, name)
	}
	return v, nil
}

// fileError stamps the originating file onto a diagnostic that does not
// carry one yet, so the host shows the right source snippet.
func fileError(err error, file string) error {
	var e *Error
	if errors.As(err, &e) && e.File == "" {
		e.File = file
	}
	return err
}

func validModuleName(path string) bool {
	if path == "" {
		return false
	}
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '/' || r == '-':
		default:
			return false
		}
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return false
		}
	}
	return true
}

func lastSegment(path string) string {
	seg := path
	if i := strings.LastIndexByte(seg, '/'); i >= 0 {
		seg = seg[i+1:]
	}
	return seg
}

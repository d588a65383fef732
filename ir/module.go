package ir

import (
	"fmt"

	"anvil/types"
)

// Module is a named collection of functions and globals owned by one
// Context. Declaration order is preserved; names are unique across both
// namespaces.
type Module struct {
	ctx  *Context
	name string

	funcs     []*Func
	funcIdx   map[string]int
	globals   []*Global
	globalIdx map[string]int
}

// NewModule creates an empty module owned by this context. Multiple modules
// may share one context.
func (c *Context) NewModule(name string) (*Module, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return nil, err
	}
	return &Module{
		ctx:       c,
		name:      name,
		funcIdx:   make(map[string]int),
		globalIdx: make(map[string]int),
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Context returns the owning context.
func (m *Module) Context() *Context { return m.ctx }

// Functions returns functions in declaration order.
// Callers must not modify the returned slice.
func (m *Module) Functions() []*Func { return m.funcs }

// Globals returns globals in declaration order.
// Callers must not modify the returned slice.
func (m *Module) Globals() []*Global { return m.globals }

// Function looks up a declared function by name.
func (m *Module) Function(name string) (*Func, bool) {
	idx, ok := m.funcIdx[name]
	if !ok {
		return nil, false
	}
	return m.funcs[idx], true
}

// Global looks up a declared global by name.
func (m *Module) Global(name string) (*Global, bool) {
	idx, ok := m.globalIdx[name]
	if !ok {
		return nil, false
	}
	return m.globals[idx], true
}

// DeclareFunction declares a function with the given signature type, or
// returns the existing one when it was already declared with the same
// signature (repeated forward declaration). A name collision with a
// different signature, or with a global, fails with ErrDuplicateSymbol.
func (m *Module) DeclareFunction(name string, sig types.TypeID) (*Func, error) {
	c := m.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return nil, err
	}
	info, ok := c.types.FnInfo(sig)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a function signature", ErrTypeMismatch, types.Format(c.types, sig))
	}
	if idx, ok := m.funcIdx[name]; ok {
		existing := m.funcs[idx]
		if existing.sig == sig {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: function %q already declared as %s", ErrDuplicateSymbol,
			name, types.Format(c.types, existing.sig))
	}
	if _, ok := m.globalIdx[name]; ok {
		return nil, fmt.Errorf("%w: %q already names a global", ErrDuplicateSymbol, name)
	}
	fn := &Func{
		mod:  m,
		name: name,
		sig:  sig,
	}
	fn.params = make([]*Value, len(info.Params))
	for i, pt := range info.Params {
		fn.params[i] = &Value{
			kind:  ValueParam,
			ty:    pt,
			arena: c.Arena(),
			fn:    fn,
			index: i,
		}
	}
	m.funcIdx[name] = len(m.funcs)
	m.funcs = append(m.funcs, fn)
	return fn, nil
}

// DeclareGlobal declares a module-level variable of the given type, or
// returns the existing one when name and type match. The optional
// initializer must be a constant of exactly that type.
func (m *Module) DeclareGlobal(name string, ty types.TypeID, init *Value) (*Global, error) {
	c := m.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return nil, err
	}
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type#%d", ErrTypeMismatch, ty)
	}
	switch tt.Kind {
	case types.KindVoid, types.KindFunc:
		return nil, fmt.Errorf("%w: global of type %s", ErrTypeMismatch, types.Format(c.types, ty))
	}
	if init != nil {
		if init.kind != ValueConst {
			return nil, fmt.Errorf("%w: global initializer must be a constant", ErrTypeMismatch)
		}
		if init.arena != c.Arena() {
			return nil, fmt.Errorf("%w: initializer belongs to a different context", ErrCrossContext)
		}
		if init.ty != ty {
			return nil, fmt.Errorf("%w: initializer is %s, global is %s", ErrTypeMismatch,
				types.Format(c.types, init.ty), types.Format(c.types, ty))
		}
	}
	if idx, ok := m.globalIdx[name]; ok {
		existing := m.globals[idx]
		if existing.ty == ty {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: global %q already declared as %s", ErrDuplicateSymbol,
			name, types.Format(c.types, existing.ty))
	}
	if _, ok := m.funcIdx[name]; ok {
		return nil, fmt.Errorf("%w: %q already names a function", ErrDuplicateSymbol, name)
	}
	g := &Global{mod: m, name: name, ty: ty, init: init}
	g.ref = &Value{
		kind:   ValueGlobal,
		ty:     c.types.Builtins().Ptr,
		name:   name,
		arena:  c.Arena(),
		global: g,
	}
	m.globalIdx[name] = len(m.globals)
	m.globals = append(m.globals, g)
	return g, nil
}

package ir

import (
	"fmt"
	"sync"

	"anvil/types"
)

// Context is the owning arena for types, values and named entities. Every
// module, type and value is created through exactly one Context and is only
// meaningful together with it.
//
// Independent Contexts share no state and may be used concurrently from
// different goroutines. Within one Context, mutating operations are
// serialized by an internal mutex; read-only traversal (printing,
// verification) must not race with construction of the same module, which is
// the caller's responsibility.
type Context struct {
	mu       sync.Mutex
	types    *types.Interner
	named    map[string]types.TypeID
	disposed bool
}

// NewContext allocates a fresh context with its own type interner.
func NewContext() *Context {
	return &Context{
		types: types.NewInterner(),
		named: make(map[string]types.TypeID),
	}
}

// Dispose invalidates the context. Every later operation through it, or
// through any module derived from it, fails with ErrUseAfterDispose.
func (c *Context) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
}

// Disposed reports whether Dispose has been called.
func (c *Context) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func (c *Context) alive() error {
	if c.disposed {
		return fmt.Errorf("%w: context is disposed", ErrUseAfterDispose)
	}
	return nil
}

// Arena returns the tag identifying this context's type arena.
func (c *Context) Arena() uint32 {
	return c.types.Arena()
}

// Types exposes the context's interner for read-only resolution of TypeIDs.
// Callers must not interleave lookups with concurrent construction on the
// same context from other goroutines.
func (c *Context) Types() *types.Interner {
	return c.types
}

// Primitive type accessors ---------------------------------------------------

func (c *Context) VoidType() types.TypeID    { return c.types.Builtins().Void }
func (c *Context) Int1Type() types.TypeID    { return c.types.Builtins().I1 }
func (c *Context) Int8Type() types.TypeID    { return c.types.Builtins().I8 }
func (c *Context) Int16Type() types.TypeID   { return c.types.Builtins().I16 }
func (c *Context) Int32Type() types.TypeID   { return c.types.Builtins().I32 }
func (c *Context) Int64Type() types.TypeID   { return c.types.Builtins().I64 }
func (c *Context) Float32Type() types.TypeID { return c.types.Builtins().F32 }
func (c *Context) Float64Type() types.TypeID { return c.types.Builtins().F64 }
func (c *Context) PointerType() types.TypeID { return c.types.Builtins().Ptr }

// IntType interns an integer type of arbitrary bit width.
func (c *Context) IntType(bits uint32) (types.TypeID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return types.NoTypeID, err
	}
	return c.types.Intern(types.MakeInt(bits))
}

// PointerTypeIn interns a pointer in the given address space.
func (c *Context) PointerTypeIn(addrSpace uint32) (types.TypeID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return types.NoTypeID, err
	}
	return c.types.Intern(types.MakePointer(addrSpace))
}

// ArrayType interns a fixed-length array type.
func (c *Context) ArrayType(elem types.TypeID, count uint32) (types.TypeID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return types.NoTypeID, err
	}
	return c.types.Intern(types.MakeArray(elem, count))
}

// VectorType interns a fixed-length vector type.
func (c *Context) VectorType(elem types.TypeID, count uint32) (types.TypeID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return types.NoTypeID, err
	}
	return c.types.Intern(types.MakeVector(elem, count))
}

// StructType interns an anonymous structural struct type.
func (c *Context) StructType(fields []types.TypeID, packed bool) (types.TypeID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return types.NoTypeID, err
	}
	return c.types.RegisterStruct(fields, packed)
}

// NamedStructType returns the named struct registered under name, minting an
// opaque one on first use. Recursive types reference the name before its
// body is set.
func (c *Context) NamedStructType(name string) (types.TypeID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return types.NoTypeID, err
	}
	if id, ok := c.named[name]; ok {
		return id, nil
	}
	id := c.types.RegisterNamedStruct(name)
	c.named[name] = id
	return id, nil
}

// SetStructBody fills in the body of a named struct.
func (c *Context) SetStructBody(id types.TypeID, fields []types.TypeID, packed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return err
	}
	return c.types.SetStructBody(id, fields, packed)
}

// FunctionType interns a function signature type.
func (c *Context) FunctionType(params []types.TypeID, result types.TypeID, variadic bool) (types.TypeID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return types.NoTypeID, err
	}
	return c.types.RegisterFn(params, result, variadic)
}

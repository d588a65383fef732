package ir

import (
	"fmt"

	"anvil/types"
)

// ValueKind discriminates value provenance.
type ValueKind uint8

const (
	// ValueConst is a literal constant.
	ValueConst ValueKind = iota
	// ValueInstr is the result of an instruction.
	ValueInstr
	// ValueParam is a function parameter.
	ValueParam
	// ValueGlobal is a reference to a module-level global.
	ValueGlobal
)

func (k ValueKind) String() string {
	switch k {
	case ValueConst:
		return "const"
	case ValueInstr:
		return "instr"
	case ValueParam:
		return "param"
	case ValueGlobal:
		return "global"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is a typed handle for a constant, parameter, instruction result or
// global reference. Values are immutable after creation; replacing a value's
// uses means rebuilding the downstream instructions.
type Value struct {
	kind  ValueKind
	ty    types.TypeID
	name  string
	arena uint32

	fn     *Func  // param, instr result
	def    *Instr // instr result
	index  int    // param position
	global *Global

	intVal   int64
	floatVal float64
	elems    []*Value // aggregate constant
}

// Kind returns the value's provenance discriminant.
func (v *Value) Kind() ValueKind { return v.kind }

// Type returns the value's TypeID in its owning context.
func (v *Value) Type() types.TypeID { return v.ty }

// Name returns the optional name given at construction.
func (v *Value) Name() string { return v.name }

// Arena returns the tag of the owning context's type arena.
func (v *Value) Arena() uint32 { return v.arena }

// Def returns the defining instruction for ValueInstr values, nil otherwise.
func (v *Value) Def() *Instr { return v.def }

// Parent returns the owning function for params and instruction results.
func (v *Value) Parent() *Func { return v.fn }

// ParamIndex returns the positional index for ValueParam values.
func (v *Value) ParamIndex() int { return v.index }

// Global returns the referenced global for ValueGlobal values.
func (v *Value) Global() *Global { return v.global }

// Int returns the literal for integer constants.
func (v *Value) Int() int64 { return v.intVal }

// Float returns the literal for floating-point constants.
func (v *Value) Float() float64 { return v.floatVal }

// Elems returns the element constants of an aggregate constant, nil for
// every other value. Callers must not modify the returned slice.
func (v *Value) Elems() []*Value { return v.elems }

// ConstInt builds an integer constant of the given type. The literal must be
// representable in the type's bit width, either as a signed or (when
// non-negative) unsigned value; anything wider fails with ErrTypeMismatch.
func (c *Context) ConstInt(ty types.TypeID, value int64) (*Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return nil, err
	}
	tt, ok := c.types.Lookup(ty)
	if !ok || tt.Kind != types.KindInt {
		return nil, fmt.Errorf("%w: %s is not an integer type", ErrTypeMismatch, types.Format(c.types, ty))
	}
	if !fitsInt(value, tt.Bits) {
		return nil, fmt.Errorf("%w: literal %d does not fit in i%d", ErrTypeMismatch, value, tt.Bits)
	}
	return &Value{kind: ValueConst, ty: ty, arena: c.Arena(), intVal: value}, nil
}

// ConstBool builds an i1 constant.
func (c *Context) ConstBool(b bool) (*Value, error) {
	v := int64(0)
	if b {
		v = 1
	}
	return c.ConstInt(c.Int1Type(), v)
}

// ConstFloat builds a floating-point constant of the given type.
func (c *Context) ConstFloat(ty types.TypeID, value float64) (*Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return nil, err
	}
	tt, ok := c.types.Lookup(ty)
	if !ok || tt.Kind != types.KindFloat {
		return nil, fmt.Errorf("%w: %s is not a float type", ErrTypeMismatch, types.Format(c.types, ty))
	}
	return &Value{kind: ValueConst, ty: ty, arena: c.Arena(), floatVal: value}, nil
}

// ConstNull builds the null constant of a pointer type.
func (c *Context) ConstNull(ty types.TypeID) (*Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return nil, err
	}
	tt, ok := c.types.Lookup(ty)
	if !ok || tt.Kind != types.KindPointer {
		return nil, fmt.Errorf("%w: %s is not a pointer type", ErrTypeMismatch, types.Format(c.types, ty))
	}
	return &Value{kind: ValueConst, ty: ty, arena: c.Arena()}, nil
}

// ConstAggregate builds a constant of array, vector or struct type from
// element constants. Every element must be a constant from this context
// with exactly the type the aggregate's shape demands.
func (c *Context) ConstAggregate(ty types.TypeID, elems []*Value) (*Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return nil, err
	}
	tt, ok := c.types.Lookup(ty)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type#%d", ErrTypeMismatch, ty)
	}

	var want []types.TypeID
	switch tt.Kind {
	case types.KindArray, types.KindVector:
		want = make([]types.TypeID, tt.Count)
		for i := range want {
			want[i] = tt.Elem
		}
	case types.KindStruct:
		info, ok := c.types.StructInfo(ty)
		if !ok || info.Opaque {
			return nil, fmt.Errorf("%w: %s has no field list", ErrTypeMismatch, types.Format(c.types, ty))
		}
		want = info.Fields
	default:
		return nil, fmt.Errorf("%w: %s is not an aggregate type", ErrTypeMismatch, types.Format(c.types, ty))
	}

	if len(elems) != len(want) {
		return nil, fmt.Errorf("%w: %s wants %d elements, got %d",
			ErrTypeMismatch, types.Format(c.types, ty), len(want), len(elems))
	}
	for i, el := range elems {
		if el == nil || el.kind != ValueConst {
			return nil, fmt.Errorf("%w: element %d is not a constant", ErrTypeMismatch, i)
		}
		if el.arena != c.Arena() {
			return nil, fmt.Errorf("%w: element %d belongs to a different context", ErrCrossContext, i)
		}
		if el.ty != want[i] {
			return nil, fmt.Errorf("%w: element %d is %s, want %s",
				ErrTypeMismatch, i, types.Format(c.types, el.ty), types.Format(c.types, want[i]))
		}
	}
	return &Value{
		kind:  ValueConst,
		ty:    ty,
		arena: c.Arena(),
		elems: append([]*Value(nil), elems...),
	}, nil
}

// fitsInt reports whether value is representable in bits, allowing the
// unsigned range for non-negative literals (so 255 fits i8, and -1 means
// all-ones at any width).
func fitsInt(value int64, bits uint32) bool {
	if bits >= 64 {
		return true
	}
	if value >= 0 {
		return value <= int64(1)<<bits-1
	}
	return value >= -(int64(1) << (bits - 1))
}

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidTypeSpec rejects malformed type descriptors: zero-width integers,
// unsupported float precisions, and aggregates whose value size is unbounded.
var ErrInvalidTypeSpec = errors.New("invalid type spec")

// checkSpec validates a descriptor before interning. Struct and func kinds
// enter through their Register helpers, which validate component lists.
func (in *Interner) checkSpec(t Type) error {
	switch t.Kind {
	case KindInvalid:
		return fmt.Errorf("%w: invalid kind", ErrInvalidTypeSpec)
	case KindVoid, KindPointer:
		return nil
	case KindInt:
		if t.Bits == 0 {
			return fmt.Errorf("%w: zero-width integer", ErrInvalidTypeSpec)
		}
		if t.Bits > MaxIntBits {
			return fmt.Errorf("%w: integer width %d exceeds %d", ErrInvalidTypeSpec, t.Bits, MaxIntBits)
		}
		return nil
	case KindFloat:
		switch t.Bits {
		case Float16, Float32, Float64:
			return nil
		}
		return fmt.Errorf("%w: unsupported float precision %d", ErrInvalidTypeSpec, t.Bits)
	case KindArray:
		return in.checkElem(t.Elem, "array")
	case KindVector:
		if t.Count == 0 {
			return fmt.Errorf("%w: zero-length vector", ErrInvalidTypeSpec)
		}
		elem, ok := in.Lookup(t.Elem)
		if !ok {
			return fmt.Errorf("%w: unknown vector element type#%d", ErrInvalidTypeSpec, t.Elem)
		}
		switch elem.Kind {
		case KindInt, KindFloat, KindPointer:
			return nil
		}
		return fmt.Errorf("%w: vector element must be int, float or pointer", ErrInvalidTypeSpec)
	case KindStruct, KindFunc:
		return fmt.Errorf("%w: %s types must go through their Register helper", ErrInvalidTypeSpec, t.Kind)
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidTypeSpec, t.Kind)
	}
}

func (in *Interner) checkElem(elem TypeID, what string) error {
	tt, ok := in.Lookup(elem)
	if !ok {
		return fmt.Errorf("%w: unknown %s element type#%d", ErrInvalidTypeSpec, what, elem)
	}
	switch tt.Kind {
	case KindVoid, KindFunc, KindInvalid:
		return fmt.Errorf("%w: %s element must be sized, got %s", ErrInvalidTypeSpec, what, tt.Kind)
	}
	return nil
}

type sizedState struct {
	stack []TypeID
	index map[TypeID]int
}

// checkSized walks value-type edges of an aggregate and rejects cycles that
// are not broken by pointer indirection, since such a type has no finite
// size. Pointer elements stop the walk: recursion through a pointer is fine.
func (in *Interner) checkSized(id TypeID) error {
	state := &sizedState{index: make(map[TypeID]int, 8)}
	return in.checkSizedRec(id, state)
}

func (in *Interner) checkSizedRec(id TypeID, state *sizedState) error {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindStruct, KindArray, KindVector:
	default:
		return nil
	}
	if idx, ok := state.index[id]; ok {
		cycle := append([]TypeID(nil), state.stack[idx:]...)
		cycle = append(cycle, id)
		return fmt.Errorf("%w: recursive value type has unbounded size (cycle: %s)",
			ErrInvalidTypeSpec, formatCycle(cycle))
	}
	state.index[id] = len(state.stack)
	state.stack = append(state.stack, id)
	defer func() {
		state.stack = state.stack[:len(state.stack)-1]
		delete(state.index, id)
	}()

	switch tt.Kind {
	case KindArray, KindVector:
		return in.checkSizedRec(tt.Elem, state)
	case KindStruct:
		info := in.structInfo(id)
		if info == nil {
			return nil
		}
		for _, f := range info.Fields {
			if err := in.checkSizedRec(f, state); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatCycle(cycle []TypeID) string {
	out := ""
	for i, id := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += fmt.Sprintf("type#%d", id)
	}
	return out
}

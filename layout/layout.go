// Package layout computes target-dependent sizes, alignments and struct
// field offsets for interned types. Results are cached per engine; an
// engine is tied to one interner and one target and is not safe for
// concurrent use.
package layout

import (
	"anvil/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only:
	FieldOffsets []int
}

// Engine computes memory layout for types.
type Engine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

// New creates an Engine for the given target and interner.
func New(target Target, typesIn *types.Interner) *Engine {
	return &Engine{
		Target: target,
		Types:  typesIn,
		cache:  newCache(),
	}
}

// layoutState tracks the in-progress recursion so that a type reachable
// from itself through value fields is reported as a cycle instead of
// looping forever.
type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

func newLayoutState() *layoutState {
	return &layoutState{index: make(map[types.TypeID]int, 32)}
}

// LayoutOf computes and caches the layout of a type.
func (e *Engine) LayoutOf(id types.TypeID) (TypeLayout, error) {
	l, err := e.layoutOf(id, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *Engine) layoutOf(id types.TypeID, state *layoutState) (TypeLayout, *Error) {
	if e.cache == nil {
		e.cache = newCache()
	}
	if cached, ok := e.cache.get(id); ok {
		return cached.layout, cached.err
	}

	if idx, ok := state.index[id]; ok {
		cycle := append([]types.TypeID(nil), state.stack[idx:]...)
		cycle = append(cycle, id)
		err := &Error{Kind: ErrRecursiveUnsized, Type: id, Cycle: cycle}
		e.cache.put(id, cacheEntry{layout: TypeLayout{Align: 1}, err: err})
		return TypeLayout{Align: 1}, err
	}

	state.index[id] = len(state.stack)
	state.stack = append(state.stack, id)
	l, err := e.compute(id, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, id)

	e.cache.put(id, cacheEntry{layout: l, err: err})
	return l, err
}

// SizeOf returns the size of a type in bytes.
func (e *Engine) SizeOf(id types.TypeID) (int, error) {
	l, err := e.LayoutOf(id)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *Engine) AlignOf(id types.TypeID) (int, error) {
	l, err := e.LayoutOf(id)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field.
func (e *Engine) FieldOffset(structID types.TypeID, field int) (int, error) {
	l, err := e.LayoutOf(structID)
	if err != nil {
		return 0, err
	}
	if field < 0 || field >= len(l.FieldOffsets) {
		return 0, &Error{Kind: ErrUnknownType, Type: structID, Why: "field index out of range"}
	}
	return l.FieldOffsets[field], nil
}

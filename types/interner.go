package types

import (
	"fmt"
	"sync/atomic"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	I1      TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	F32     TypeID
	F64     TypeID
	Ptr     TypeID // address space 0
}

var arenaCounter atomic.Uint32

// Interner provides stable TypeIDs by hashing structural descriptors.
// One Interner belongs to exactly one compilation context; TypeIDs from
// different interners are never interchangeable.
type Interner struct {
	arena    uint32
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	structs  []StructInfo
	fns      []FnInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		arena: arenaCounter.Add(1),
		index: make(map[Type]TypeID, 64),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.fns = append(in.fns, FnInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.internRaw(MakeVoid())
	in.builtins.I1 = in.internRaw(MakeInt(1))
	in.builtins.I8 = in.internRaw(MakeInt(8))
	in.builtins.I16 = in.internRaw(MakeInt(16))
	in.builtins.I32 = in.internRaw(MakeInt(32))
	in.builtins.I64 = in.internRaw(MakeInt(64))
	in.builtins.F32 = in.internRaw(MakeFloat(Float32))
	in.builtins.F64 = in.internRaw(MakeFloat(Float64))
	in.builtins.Ptr = in.internRaw(MakePointer(0))
	return in
}

// Arena returns the tag distinguishing this interner from all others in the
// process. Used to reject cross-context type leakage.
func (in *Interner) Arena() uint32 {
	return in.arena
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID. Two calls with
// structurally equal descriptors return the same identity. The descriptor is
// validated first; malformed specs are rejected with ErrInvalidTypeSpec and
// leave the interner unchanged.
func (in *Interner) Intern(t Type) (TypeID, error) {
	if err := in.checkSpec(t); err != nil {
		return NoTypeID, err
	}
	if id, ok := in.index[t]; ok {
		return id, nil
	}
	return in.internRaw(t), nil
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Count returns the number of interned descriptors, including the reserved
// invalid slot at index zero.
func (in *Interner) Count() int {
	return len(in.types)
}

// Contains reports whether id resolves to a live descriptor in this interner.
func (in *Interner) Contains(id TypeID) bool {
	_, ok := in.Lookup(id)
	return ok
}

// Package types interns type descriptors into stable per-arena TypeIDs.
// Structural kinds deduplicate on their full shape; named structs are
// nominal. TypeIDs from different interners are never interchangeable.
package types

import "fmt"

// TypeID uniquely identifies a type inside one Interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindInt
	KindFloat
	KindPointer
	KindArray
	KindVector
	KindStruct
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindVector:
		return "vector"
	case KindStruct:
		return "struct"
	case KindFunc:
		return "func"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// MaxIntBits caps integer widths, mirroring the usual backend limit.
const MaxIntBits = 1 << 23

// Float precisions accepted by MakeFloat.
const (
	Float16 = 16
	Float32 = 32
	Float64 = 64
)

// Type is a compact descriptor for any supported type. Composite kinds keep
// their component lists in side tables addressed through Payload, so equality
// on Type itself stays shallow and recursion resolves through TypeIDs.
type Type struct {
	Kind      Kind
	Elem      TypeID // array/vector element
	Count     uint32 // array/vector length
	Bits      uint32 // integer width or float precision
	AddrSpace uint32 // pointer address space
	Payload   uint32 // slot into struct/fn side tables
}

// Descriptor helpers ---------------------------------------------------------

// MakeVoid describes the void type.
func MakeVoid() Type {
	return Type{Kind: KindVoid}
}

// MakeInt describes a signed-agnostic integer of the given bit width.
func MakeInt(bits uint32) Type {
	return Type{Kind: KindInt, Bits: bits}
}

// MakeFloat describes a floating-point type of the given precision.
func MakeFloat(precision uint32) Type {
	return Type{Kind: KindFloat, Bits: precision}
}

// MakePointer describes an opaque pointer in the given address space.
func MakePointer(addrSpace uint32) Type {
	return Type{Kind: KindPointer, AddrSpace: addrSpace}
}

// MakeArray describes a fixed-length array of the element type.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeVector describes a fixed-length vector of the element type.
func MakeVector(elem TypeID, count uint32) Type {
	return Type{Kind: KindVector, Elem: elem, Count: count}
}

package layout

import (
	"fortio.org/safecast"

	"anvil/types"
)

func (e *Engine) compute(id types.TypeID, state *layoutState) (TypeLayout, *Error) {
	if e.Types == nil {
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnknownType, Type: id}
	}
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnknownType, Type: id}
	}

	switch tt.Kind {
	case types.KindVoid:
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnsized, Type: id, Why: "void has no representation"}

	case types.KindFunc:
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnsized, Type: id, Why: "function types are not first class"}

	case types.KindInt:
		return intLayout(tt.Bits), nil

	case types.KindFloat:
		return scalarLayoutBytes(int(tt.Bits) / 8), nil

	case types.KindPointer:
		return e.ptrLayout(), nil

	case types.KindArray:
		return e.arrayLayout(id, tt, state)

	case types.KindVector:
		return e.vectorLayout(id, tt, state)

	case types.KindStruct:
		return e.structLayout(id, state)

	default:
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnknownType, Type: id}
	}
}

func (e *Engine) ptrLayout() TypeLayout {
	size := e.Target.PtrSize
	align := e.Target.PtrAlign
	if size <= 0 {
		size = 8
	}
	if align <= 0 {
		align = size
	}
	return TypeLayout{Size: size, Align: align}
}

// intLayout rounds the width up to whole bytes and aligns to the next power
// of two, capped at 8. An i1 occupies one byte; an i24 occupies three bytes
// aligned to four.
func intLayout(bits uint32) TypeLayout {
	size := int((bits + 7) / 8)
	if size == 0 {
		size = 1
	}
	return TypeLayout{Size: size, Align: pow2Align(size, 8)}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func pow2Align(size, limit int) int {
	a := 1
	for a < size && a < limit {
		a <<= 1
	}
	return a
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (e *Engine) arrayLayout(id types.TypeID, tt types.Type, state *layoutState) (TypeLayout, *Error) {
	el, err := e.layoutOf(tt.Elem, state)
	if err != nil {
		return TypeLayout{Align: 1}, err
	}
	align := el.Align
	if align <= 0 {
		align = 1
	}
	stride := roundUp(el.Size, align)
	n, convErr := safecast.Conv[int](tt.Count)
	if convErr != nil || n < 0 {
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnknownType, Type: id, Why: "array length overflows"}
	}
	return TypeLayout{Size: stride * n, Align: align}, nil
}

// vectorLayout packs the lanes back to back and aligns the whole vector to
// the next power of two of its size, capped at 16 to match common SIMD
// register alignment.
func (e *Engine) vectorLayout(id types.TypeID, tt types.Type, state *layoutState) (TypeLayout, *Error) {
	el, err := e.layoutOf(tt.Elem, state)
	if err != nil {
		return TypeLayout{Align: 1}, err
	}
	n, convErr := safecast.Conv[int](tt.Count)
	if convErr != nil || n <= 0 {
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnknownType, Type: id, Why: "vector length overflows"}
	}
	size := el.Size * n
	return TypeLayout{Size: size, Align: pow2Align(size, 16)}, nil
}

func (e *Engine) structLayout(id types.TypeID, state *layoutState) (TypeLayout, *Error) {
	info, ok := e.Types.StructInfo(id)
	if !ok {
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnknownType, Type: id}
	}
	if info.Opaque {
		return TypeLayout{Align: 1}, &Error{Kind: ErrUnsized, Type: id, Why: "opaque struct body is not set"}
	}
	fields := info.Fields
	offsets := make([]int, len(fields))

	if info.Packed {
		size := 0
		for i, f := range fields {
			fl, err := e.layoutOf(f, state)
			if err != nil {
				return TypeLayout{Align: 1}, err
			}
			offsets[i] = size
			size += fl.Size
		}
		return TypeLayout{Size: size, Align: 1, FieldOffsets: offsets}, nil
	}

	size := 0
	align := 1
	for i, f := range fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return TypeLayout{Align: 1}, err
		}
		fAlign := fl.Align
		if fAlign <= 0 {
			fAlign = 1
		}
		size = roundUp(size, fAlign)
		offsets[i] = size
		size += fl.Size
		align = maxInt(align, fAlign)
	}
	size = roundUp(size, align)
	return TypeLayout{Size: size, Align: align, FieldOffsets: offsets}, nil
}

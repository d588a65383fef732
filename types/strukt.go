package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// StructInfo stores metadata for a struct type. Anonymous structural structs
// have an empty Name and are deduplicated by field list; named structs are
// nominal and may start opaque (no body) until SetStructBody.
type StructInfo struct {
	Name   string
	Fields []TypeID
	Packed bool
	Opaque bool
}

// RegisterStruct creates or finds an anonymous structural struct type.
// Field types must already belong to this interner.
func (in *Interner) RegisterStruct(fields []TypeID, packed bool) (TypeID, error) {
	for _, f := range fields {
		if !in.Contains(f) {
			return NoTypeID, fmt.Errorf("%w: unknown field type#%d", ErrInvalidTypeSpec, f)
		}
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindStruct {
			continue
		}
		info := in.structs[tt.Payload]
		if info.Name == "" && !info.Opaque && info.Packed == packed && slices.Equal(info.Fields, fields) {
			return id, nil
		}
	}
	slot := in.appendStructInfo(StructInfo{
		Fields: slices.Clone(fields),
		Packed: packed,
	})
	id := in.internRaw(Type{Kind: KindStruct, Payload: slot})
	if err := in.checkSized(id); err != nil {
		return NoTypeID, err
	}
	return id, nil
}

// RegisterNamedStruct allocates a nominal struct type slot with no body yet.
// Named structs are never deduplicated; each call mints a fresh identity.
func (in *Interner) RegisterNamedStruct(name string) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name, Opaque: true})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// SetStructBody stores the resolved field descriptors for a named struct.
// Fails when the body would give the struct unbounded size (a value cycle
// with no pointer indirection).
func (in *Interner) SetStructBody(typeID TypeID, fields []TypeID, packed bool) error {
	info := in.structInfo(typeID)
	if info == nil {
		return fmt.Errorf("%w: type#%d is not a struct", ErrInvalidTypeSpec, typeID)
	}
	for _, f := range fields {
		if !in.Contains(f) {
			return fmt.Errorf("%w: unknown field type#%d", ErrInvalidTypeSpec, f)
		}
	}
	prevFields, prevPacked, prevOpaque := info.Fields, info.Packed, info.Opaque
	info.Fields = slices.Clone(fields)
	info.Packed = packed
	info.Opaque = false
	if err := in.checkSized(typeID); err != nil {
		info.Fields, info.Packed, info.Opaque = prevFields, prevPacked, prevOpaque
		return err
	}
	return nil
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// StructFields returns a copy of struct fields for the TypeID.
func (in *Interner) StructFields(typeID TypeID) []TypeID {
	info := in.structInfo(typeID)
	if info == nil || len(info.Fields) == 0 {
		return nil
	}
	return slices.Clone(info.Fields)
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	in.structs = append(in.structs, info)
	slot, err := safecast.Conv[uint32](len(in.structs) - 1)
	if err != nil {
		panic(fmt.Errorf("struct info overflow: %w", err))
	}
	return slot
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// FnInfo stores metadata for function signature types.
type FnInfo struct {
	Params   []TypeID
	Result   TypeID
	Variadic bool
}

// RegisterFn creates or finds a function signature type. The result may be
// the void builtin; parameters must be first-class (no void, no func).
func (in *Interner) RegisterFn(params []TypeID, result TypeID, variadic bool) (TypeID, error) {
	if !in.Contains(result) {
		return NoTypeID, fmt.Errorf("%w: unknown result type#%d", ErrInvalidTypeSpec, result)
	}
	for _, p := range params {
		tt, ok := in.Lookup(p)
		if !ok {
			return NoTypeID, fmt.Errorf("%w: unknown param type#%d", ErrInvalidTypeSpec, p)
		}
		if tt.Kind == KindVoid || tt.Kind == KindFunc {
			return NoTypeID, fmt.Errorf("%w: %s is not a first-class parameter type", ErrInvalidTypeSpec, tt.Kind)
		}
	}
	if rt := in.MustLookup(result); rt.Kind == KindFunc {
		return NoTypeID, fmt.Errorf("%w: function result must be first-class or void", ErrInvalidTypeSpec)
	}
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindFunc {
			continue
		}
		info := in.fns[tt.Payload]
		if info.Result == result && info.Variadic == variadic && slices.Equal(info.Params, params) {
			return id, nil
		}
	}
	slot := in.appendFnInfo(FnInfo{
		Params:   slices.Clone(params),
		Result:   result,
		Variadic: variadic,
	})
	return in.internRaw(Type{Kind: KindFunc, Payload: slot}), nil
}

// FnInfo retrieves function signature metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunc {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

func (in *Interner) appendFnInfo(info FnInfo) uint32 {
	in.fns = append(in.fns, info)
	slot, err := safecast.Conv[uint32](len(in.fns) - 1)
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	return slot
}

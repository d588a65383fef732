package types

import (
	"fmt"
	"strings"
)

// Format renders a TypeID into a stable human-readable form for dumps and
// diagnostics.
func Format(in *Interner, id TypeID) string {
	if in == nil {
		return fmt.Sprintf("type#%d", id)
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return fmt.Sprintf("type#%d", id)
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindInt:
		return fmt.Sprintf("i%d", tt.Bits)
	case KindFloat:
		return fmt.Sprintf("f%d", tt.Bits)
	case KindPointer:
		if tt.AddrSpace != 0 {
			return fmt.Sprintf("ptr addrspace(%d)", tt.AddrSpace)
		}
		return "ptr"
	case KindArray:
		return fmt.Sprintf("[%d x %s]", tt.Count, Format(in, tt.Elem))
	case KindVector:
		return fmt.Sprintf("<%d x %s>", tt.Count, Format(in, tt.Elem))
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return fmt.Sprintf("struct#%d", id)
		}
		if info.Name != "" {
			return "%" + info.Name
		}
		fields := make([]string, 0, len(info.Fields))
		for _, f := range info.Fields {
			fields = append(fields, Format(in, f))
		}
		body := "{" + strings.Join(fields, ", ") + "}"
		if info.Packed {
			return "<" + body + ">"
		}
		return body
	case KindFunc:
		info, ok := in.FnInfo(id)
		if !ok {
			return fmt.Sprintf("fn#%d", id)
		}
		params := make([]string, 0, len(info.Params)+1)
		for _, p := range info.Params {
			params = append(params, Format(in, p))
		}
		if info.Variadic {
			params = append(params, "...")
		}
		return fmt.Sprintf("fn(%s) %s", strings.Join(params, ", "), Format(in, info.Result))
	default:
		return tt.Kind.String()
	}
}

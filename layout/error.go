package layout

import (
	"fmt"
	"strings"

	"anvil/types"
)

// ErrorKind enumerates layout calculation failures.
type ErrorKind uint8

const (
	// ErrUnsized indicates a type with no in-memory representation, such as
	// void, a function type or an opaque struct.
	ErrUnsized ErrorKind = iota + 1
	// ErrRecursiveUnsized indicates a recursive value type with no fixed size.
	ErrRecursiveUnsized
	// ErrUnknownType indicates a TypeID that does not resolve in the interner.
	ErrUnknownType
	// ErrBadTarget indicates an unusable target description.
	ErrBadTarget
)

// Error reports a failed layout computation.
type Error struct {
	Kind  ErrorKind
	Type  types.TypeID
	Cycle []types.TypeID // for ErrRecursiveUnsized
	Why   string         // for ErrUnsized and ErrBadTarget
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnsized:
		if e.Why != "" {
			return fmt.Sprintf("type#%d has no size: %s", e.Type, e.Why)
		}
		return fmt.Sprintf("type#%d has no size", e.Type)
	case ErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive value type has infinite size (type#%d)", e.Type)
		}
		parts := make([]string, 0, len(e.Cycle))
		for _, id := range e.Cycle {
			parts = append(parts, fmt.Sprintf("type#%d", id))
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(parts, " -> "))
	case ErrUnknownType:
		if e.Why != "" {
			return fmt.Sprintf("type#%d: %s", e.Type, e.Why)
		}
		return fmt.Sprintf("type#%d does not resolve in the interner", e.Type)
	case ErrBadTarget:
		return fmt.Sprintf("bad target: %s", e.Why)
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}

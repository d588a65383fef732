package diag

import "fmt"

// Loc addresses a point inside a module: function, block index, instruction
// index within the block. Negative indexes mean "not applicable" (e.g. a
// function-level finding has Block = -1).
type Loc struct {
	Func  string
	Block int
	Instr int
}

func (l Loc) String() string {
	switch {
	case l.Func == "":
		return "<module>"
	case l.Block < 0:
		return l.Func
	case l.Instr < 0:
		return fmt.Sprintf("%s:bb%d", l.Func, l.Block)
	default:
		return fmt.Sprintf("%s:bb%d:%d", l.Func, l.Block, l.Instr)
	}
}

// Note attaches secondary context to a diagnostic.
type Note struct {
	Loc Loc
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Loc
	Notes    []Note
}

package ir

import (
	"fmt"

	"anvil/types"
)

// Func owns an ordered sequence of basic blocks. A function with no blocks
// is a declaration (an external reference); the first appended block is the
// entry.
type Func struct {
	mod    *Module
	name   string
	sig    types.TypeID
	params []*Value
	blocks []*Block
}

// Name returns the function name.
func (f *Func) Name() string { return f.name }

// Module returns the owning module.
func (f *Func) Module() *Module { return f.mod }

// Signature returns the function's signature TypeID.
func (f *Func) Signature() types.TypeID { return f.sig }

// ResultType returns the signature's result type.
func (f *Func) ResultType() types.TypeID {
	info, ok := f.mod.ctx.types.FnInfo(f.sig)
	if !ok {
		return types.NoTypeID
	}
	return info.Result
}

// Params returns the parameter values, one per signature parameter.
// Callers must not modify the returned slice.
func (f *Func) Params() []*Value { return f.params }

// Param returns the parameter at position i.
func (f *Func) Param(i int) *Value {
	if i < 0 || i >= len(f.params) {
		panic(fmt.Sprintf("ir: function %s has no parameter %d", f.name, i))
	}
	return f.params[i]
}

// Blocks returns the blocks in append order.
// Callers must not modify the returned slice.
func (f *Func) Blocks() []*Block { return f.blocks }

// Entry returns the entry block, or nil for a declaration.
func (f *Func) Entry() *Block {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// IsDeclaration reports whether the function has no body.
func (f *Func) IsDeclaration() bool { return len(f.blocks) == 0 }

// AppendBlock appends a new basic block at the end of the function's block
// sequence. The first appended block becomes the entry.
func (f *Func) AppendBlock(label string) (*Block, error) {
	c := f.mod.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return nil, err
	}
	b := &Block{
		fn:    f,
		label: label,
		index: len(f.blocks),
	}
	f.blocks = append(f.blocks, b)
	return b, nil
}

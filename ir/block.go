package ir

// Block is a straight-line instruction sequence inside one function. A
// well-formed block ends in exactly one terminator; the builder enforces
// that shape during construction and the verifier re-checks it.
type Block struct {
	fn     *Func
	label  string
	index  int
	instrs []*Instr
}

// Label returns the label given at append time.
func (b *Block) Label() string { return b.label }

// Index returns the block's position in the function's block sequence.
func (b *Block) Index() int { return b.index }

// Parent returns the owning function.
func (b *Block) Parent() *Func { return b.fn }

// Instrs returns the instructions in order.
// Callers must not modify the returned slice.
func (b *Block) Instrs() []*Instr { return b.instrs }

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	if b == nil || len(b.instrs) == 0 {
		return false
	}
	return b.instrs[len(b.instrs)-1].op.IsTerminator()
}

// Terminator returns the trailing terminator, or nil.
func (b *Block) Terminator() *Instr {
	if !b.Terminated() {
		return nil
	}
	return b.instrs[len(b.instrs)-1]
}

// Succs returns the control-flow successors named by the terminator.
func (b *Block) Succs() []*Block {
	t := b.Terminator()
	if t == nil {
		return nil
	}
	switch t.op {
	case OpBr, OpCondBr:
		return t.blocks
	default:
		return nil
	}
}

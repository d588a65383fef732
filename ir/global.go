package ir

import "anvil/types"

// Global is a module-level variable. Its Value is a pointer to the storage,
// not the stored content; loads and stores go through that pointer.
type Global struct {
	mod  *Module
	name string
	ty   types.TypeID
	init *Value
	ref  *Value
}

// Name returns the global's name.
func (g *Global) Name() string { return g.name }

// Type returns the type of the stored content.
func (g *Global) Type() types.TypeID { return g.ty }

// Init returns the initializer constant, or nil for zero-initialized.
func (g *Global) Init() *Value { return g.init }

// Value returns the pointer-typed reference usable as an operand.
func (g *Global) Value() *Value { return g.ref }

// Module returns the owning module.
func (g *Global) Module() *Module { return g.mod }

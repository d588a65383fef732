// Package verify checks completed modules for structural well-formedness:
// terminator discipline, reachability, dominance of definitions over uses,
// phi/predecessor agreement and context ownership. The pass is read-only;
// it never mutates the module it inspects.
package verify

import (
	"fmt"

	"anvil/diag"
	"anvil/ir"
	"anvil/types"
)

// Options tunes a verification pass.
type Options struct {
	// MaxDiagnostics caps the number of accumulated findings. Zero means a
	// reasonable default.
	MaxDiagnostics int
}

// Verify walks a completed module and either returns a valid certificate or
// a bag with at least one error-severity violation, never both. Warnings
// (such as unreachable blocks) may accompany a valid certificate.
//
// The module must not be mutated concurrently with verification.
func Verify(m *ir.Module, opts Options) (Certificate, *diag.Bag) {
	max := opts.MaxDiagnostics
	if max <= 0 {
		max = 128
	}
	bag := diag.NewBag(max)
	if m == nil {
		return Certificate{}, bag
	}

	v := &verifier{m: m, in: m.Context().Types(), arena: m.Context().Arena(), bag: bag}
	for _, g := range m.Globals() {
		v.checkGlobal(g)
	}
	for _, f := range m.Functions() {
		v.checkFunc(f)
	}
	bag.Sort()
	if bag.HasErrors() {
		return Certificate{}, bag
	}
	return newCertificate(m), bag
}

type verifier struct {
	m     *ir.Module
	in    *types.Interner
	arena uint32
	bag   *diag.Bag
}

func (v *verifier) report(sev diag.Severity, code diag.Code, loc diag.Loc, format string, args ...any) {
	v.bag.Add(diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Primary:  loc,
	})
}

func (v *verifier) checkGlobal(g *ir.Global) {
	loc := diag.Loc{Func: "@" + g.Name(), Block: -1, Instr: -1}
	if !v.in.Contains(g.Type()) {
		v.report(diag.SevError, diag.VerifyForeignType, loc, "global type does not resolve in the owning context")
	}
	if init := g.Init(); init != nil && init.Arena() != v.arena {
		v.report(diag.SevError, diag.VerifyForeignValue, loc, "initializer belongs to a different context")
	}
}

func (v *verifier) checkFunc(f *ir.Func) {
	if f.IsDeclaration() {
		return
	}
	structuralOK := v.checkStructure(f)
	if !structuralOK {
		// Predecessor and dominance analysis needs intact terminators.
		return
	}
	g := newCFG(f)
	v.checkReachability(f, g)
	v.checkDominance(f, g)
	v.checkPhis(f, g)
}

// checkStructure enforces block shape: exactly one terminator, last in the
// block, targets inside the same function, types resolvable. Returns false
// when the control-flow graph cannot be trusted for further analysis.
func (v *verifier) checkStructure(f *ir.Func) bool {
	ok := true
	if !v.in.Contains(f.Signature()) {
		v.report(diag.SevError, diag.VerifyForeignType,
			diag.Loc{Func: f.Name(), Block: -1, Instr: -1},
			"function signature does not resolve in the owning context")
		ok = false
	}
	for _, b := range f.Blocks() {
		blockLoc := diag.Loc{Func: f.Name(), Block: b.Index(), Instr: -1}
		instrs := b.Instrs()
		if len(instrs) == 0 || !instrs[len(instrs)-1].Op().IsTerminator() {
			v.report(diag.SevError, diag.VerifyUnterminatedBlock, blockLoc, "block has no terminator")
			ok = false
		}
		for idx, ins := range instrs {
			loc := diag.Loc{Func: f.Name(), Block: b.Index(), Instr: idx}
			if ins.Op().IsTerminator() && idx != len(instrs)-1 {
				v.report(diag.SevError, diag.VerifyMultipleTerminators, loc,
					"%s is not the last instruction of its block", ins.Op())
				ok = false
			}
			for _, target := range ins.Blocks() {
				if ins.Op() == ir.OpPhi {
					continue // phi blocks are predecessors, not targets
				}
				if target == nil || target.Parent() != f {
					v.report(diag.SevError, diag.VerifyBadBranchTarget, loc,
						"branch target does not belong to function %q", f.Name())
					ok = false
				}
			}
			v.checkInstrTypes(f, b, idx, ins)
		}
	}
	v.checkReturns(f)
	return ok
}

func (v *verifier) checkInstrTypes(f *ir.Func, b *ir.Block, idx int, ins *ir.Instr) {
	loc := diag.Loc{Func: f.Name(), Block: b.Index(), Instr: idx}
	if ty := ins.Type(); ty != types.NoTypeID && !v.in.Contains(ty) {
		v.report(diag.SevError, diag.VerifyForeignType, loc,
			"%s result type does not resolve in the owning context", ins.Op())
	}
	if ty := ins.Pointee(); ty != types.NoTypeID && !v.in.Contains(ty) {
		v.report(diag.SevError, diag.VerifyForeignType, loc,
			"alloca type does not resolve in the owning context")
	}
	for _, op := range ins.Operands() {
		if op == nil {
			continue
		}
		if op.Arena() != v.arena {
			v.report(diag.SevError, diag.VerifyForeignValue, loc,
				"%s operand belongs to a different context", ins.Op())
		} else if !v.in.Contains(op.Type()) {
			v.report(diag.SevError, diag.VerifyForeignType, loc,
				"%s operand type does not resolve in the owning context", ins.Op())
		}
	}
}

// checkReturns re-checks terminating returns against the signature result.
func (v *verifier) checkReturns(f *ir.Func) {
	result := f.ResultType()
	if !v.in.Contains(result) {
		return
	}
	isVoid := v.in.MustLookup(result).Kind == types.KindVoid
	for _, b := range f.Blocks() {
		t := b.Terminator()
		if t == nil || t.Op() != ir.OpRet {
			continue
		}
		loc := diag.Loc{Func: f.Name(), Block: b.Index(), Instr: len(b.Instrs()) - 1}
		hasValue := len(t.Operands()) > 0
		switch {
		case isVoid && hasValue:
			v.report(diag.SevError, diag.VerifyReturnMismatch, loc, "return with value in void function")
		case !isVoid && !hasValue:
			v.report(diag.SevError, diag.VerifyReturnMismatch, loc, "return without value in non-void function")
		case hasValue && t.Operands()[0].Type() != result:
			v.report(diag.SevError, diag.VerifyReturnMismatch, loc,
				"return of %s, function returns %s",
				types.Format(v.in, t.Operands()[0].Type()), types.Format(v.in, result))
		}
	}
}

func (v *verifier) checkReachability(f *ir.Func, g *cfg) {
	for i, b := range f.Blocks() {
		if !g.reach[i] {
			v.report(diag.SevWarning, diag.VerifyUnreachableBlock,
				diag.Loc{Func: f.Name(), Block: b.Index(), Instr: -1},
				"block is unreachable from the entry")
		}
	}
}

type defSite struct {
	block int
	index int
}

// checkDominance verifies that every use of an instruction result occurs at
// a program point dominated by its definition. Parameters, constants and
// globals dominate everywhere. A phi's use of an incoming value is located
// at the end of the corresponding predecessor, not in the phi's own block,
// so loop-carried values are legal.
func (v *verifier) checkDominance(f *ir.Func, g *cfg) {
	defs := make(map[*ir.Instr]defSite)
	for bi, b := range f.Blocks() {
		for idx, ins := range b.Instrs() {
			defs[ins] = defSite{block: bi, index: idx}
		}
	}

	for bi, b := range f.Blocks() {
		if !g.reach[bi] {
			continue
		}
		for idx, ins := range b.Instrs() {
			loc := diag.Loc{Func: f.Name(), Block: b.Index(), Instr: idx}
			for oi, op := range ins.Operands() {
				if op == nil || op.Kind() != ir.ValueInstr {
					continue
				}
				if op.Parent() != f {
					v.report(diag.SevError, diag.VerifyForeignValue, loc,
						"operand defined in function %q", op.Parent().Name())
					continue
				}
				def, ok := defs[op.Def()]
				if !ok {
					v.report(diag.SevError, diag.VerifyUseNotDominated, loc,
						"operand has no definition site in function %q", f.Name())
					continue
				}
				if ins.Op() == ir.OpPhi {
					// Use point is the tail of the incoming edge.
					pred := ins.Blocks()[oi]
					if pred == nil || pred.Parent() != f {
						continue // reported by phi checks
					}
					pi := pred.Index()
					// An edge from an unreachable predecessor is never taken,
					// so dominance over it is vacuous.
					if g.reach[pi] && (!g.reach[def.block] || !g.dominates(def.block, pi)) {
						v.report(diag.SevError, diag.VerifyUseNotDominated, loc,
							"phi incoming value does not dominate predecessor bb%d", pi)
					}
					continue
				}
				if !g.reach[def.block] {
					v.report(diag.SevError, diag.VerifyUseNotDominated, loc,
						"operand defined in unreachable block bb%d", def.block)
					continue
				}
				if def.block == bi {
					if def.index >= idx {
						v.report(diag.SevError, diag.VerifyUseNotDominated, loc,
							"use precedes definition in the same block")
					}
					continue
				}
				if !g.dominates(def.block, bi) {
					v.report(diag.SevError, diag.VerifyUseNotDominated, loc,
						"definition in bb%d does not dominate use in bb%d", def.block, bi)
				}
			}
		}
	}
}

// checkPhis verifies that each phi's incoming edge set equals the realized
// predecessor set of its block, in both directions, and that phis stay
// grouped at the top of the block.
func (v *verifier) checkPhis(f *ir.Func, g *cfg) {
	for bi, b := range f.Blocks() {
		if !g.reach[bi] {
			continue
		}
		seenNonPhi := false
		for idx, ins := range b.Instrs() {
			loc := diag.Loc{Func: f.Name(), Block: b.Index(), Instr: idx}
			if ins.Op() != ir.OpPhi {
				seenNonPhi = true
				continue
			}
			if seenNonPhi {
				v.report(diag.SevError, diag.VerifyPhiNotGrouped, loc,
					"phi appears after a non-phi instruction")
			}
			incoming := make(map[int]bool, len(ins.Blocks()))
			for _, pred := range ins.Blocks() {
				if pred == nil || pred.Parent() != f {
					v.report(diag.SevError, diag.VerifyPhiExtraPred, loc,
						"phi names a block outside function %q", f.Name())
					continue
				}
				pi := pred.Index()
				if incoming[pi] {
					v.report(diag.SevError, diag.VerifyPhiDuplicatePred, loc,
						"phi lists bb%d twice", pi)
					continue
				}
				incoming[pi] = true
				if !contains(g.preds[bi], pi) {
					v.report(diag.SevError, diag.VerifyPhiExtraPred, loc,
						"phi names bb%d, which is not a predecessor of bb%d", pi, bi)
				}
			}
			for _, pi := range g.preds[bi] {
				if !incoming[pi] {
					v.report(diag.SevError, diag.VerifyPhiMissingPred, loc,
						"phi in bb%d has no incoming value for predecessor bb%d", bi, pi)
				}
			}
		}
	}
}

package ir

import (
	"fmt"
	"io"
	"strings"

	"anvil/types"
)

// DumpOptions configures module dumping.
type DumpOptions struct{}

// Dump writes a human-readable representation of a module. Output is
// deterministic: declaration order for symbols, append order for blocks.
func Dump(w io.Writer, m *Module, _ DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	in := m.ctx.types
	fmt.Fprintf(w, "module %q\n", m.name)

	for _, g := range m.globals {
		init := "zeroinit"
		if g.init != nil {
			init = constText(in, g.init)
		}
		fmt.Fprintf(w, "global @%s: %s = %s\n", g.name, types.Format(in, g.ty), init)
	}

	for _, f := range m.funcs {
		if err := dumpFunc(w, f, in); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, in *types.Interner) error {
	if f.IsDeclaration() {
		_, err := fmt.Fprintf(w, "\ndeclare @%s: %s\n", f.name, types.Format(in, f.sig))
		return err
	}
	fmt.Fprintf(w, "\nfn @%s: %s {\n", f.name, types.Format(in, f.sig))
	names := nameValues(f)
	for _, b := range f.blocks {
		fmt.Fprintf(w, "%s:\n", blockText(b))
		for _, ins := range b.instrs {
			fmt.Fprintf(w, "  %s\n", instrText(in, ins, names))
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// nameValues assigns printable names: explicit names win, anonymous params
// become %argN, anonymous results get sequential %N.
func nameValues(f *Func) map[*Value]string {
	names := make(map[*Value]string)
	for i, p := range f.params {
		if p.name != "" {
			names[p] = "%" + p.name
		} else {
			names[p] = fmt.Sprintf("%%arg%d", i)
		}
	}
	next := 0
	for _, b := range f.blocks {
		for _, ins := range b.instrs {
			if ins.result == nil {
				continue
			}
			if ins.result.name != "" {
				names[ins.result] = "%" + ins.result.name
			} else {
				names[ins.result] = fmt.Sprintf("%%%d", next)
				next++
			}
		}
	}
	return names
}

func blockText(b *Block) string {
	if b.label != "" {
		return fmt.Sprintf("bb%d.%s", b.index, b.label)
	}
	return fmt.Sprintf("bb%d", b.index)
}

func operandText(in *types.Interner, v *Value, names map[*Value]string) string {
	switch v.kind {
	case ValueConst:
		return fmt.Sprintf("%s %s", types.Format(in, v.ty), constText(in, v))
	case ValueGlobal:
		return "ptr @" + v.global.name
	default:
		return fmt.Sprintf("%s %s", types.Format(in, v.ty), names[v])
	}
}

func constText(in *types.Interner, v *Value) string {
	tt, ok := in.Lookup(v.ty)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case types.KindInt:
		return fmt.Sprintf("%d", v.intVal)
	case types.KindFloat:
		return fmt.Sprintf("%g", v.floatVal)
	case types.KindPointer:
		return "null"
	case types.KindArray, types.KindVector, types.KindStruct:
		elems := make([]string, 0, len(v.elems))
		for _, el := range v.elems {
			elems = append(elems, constText(in, el))
		}
		if tt.Kind == types.KindStruct {
			return "{" + strings.Join(elems, ", ") + "}"
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return "?"
	}
}

func instrText(in *types.Interner, ins *Instr, names map[*Value]string) string {
	ops := make([]string, 0, len(ins.operands))
	for _, o := range ins.operands {
		ops = append(ops, operandText(in, o, names))
	}
	res := ""
	if ins.result != nil {
		res = names[ins.result] + " = "
	}
	switch ins.op {
	case OpICmp:
		return fmt.Sprintf("%sicmp %s %s, %s", res, ins.ipred, ops[0], ops[1])
	case OpFCmp:
		return fmt.Sprintf("%sfcmp %s %s, %s", res, ins.fpred, ops[0], ops[1])
	case OpTrunc, OpZExt, OpSExt, OpFPTrunc, OpFPExt,
		OpFPToSI, OpFPToUI, OpSIToFP, OpUIToFP,
		OpPtrToInt, OpIntToPtr, OpBitcast:
		return fmt.Sprintf("%s%s %s to %s", res, ins.op, ops[0], types.Format(in, ins.ty))
	case OpAlloca:
		return fmt.Sprintf("%salloca %s", res, types.Format(in, ins.pointee))
	case OpLoad:
		return fmt.Sprintf("%sload %s, %s", res, types.Format(in, ins.ty), ops[0])
	case OpStore:
		return fmt.Sprintf("store %s, %s", ops[0], ops[1])
	case OpCall:
		return fmt.Sprintf("%scall @%s(%s)", res, ins.callee.name, strings.Join(ops, ", "))
	case OpPhi:
		pairs := make([]string, 0, len(ins.operands))
		for i := range ins.operands {
			pairs = append(pairs, fmt.Sprintf("[%s, %s]", ops[i], blockText(ins.blocks[i])))
		}
		return fmt.Sprintf("%sphi %s %s", res, types.Format(in, ins.ty), strings.Join(pairs, ", "))
	case OpBr:
		return "br " + blockText(ins.blocks[0])
	case OpCondBr:
		return fmt.Sprintf("condbr %s, %s, %s", ops[0], blockText(ins.blocks[0]), blockText(ins.blocks[1]))
	case OpRet:
		if len(ins.operands) == 0 {
			return "ret void"
		}
		return "ret " + ops[0]
	case OpUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("%s%s %s", res, ins.op, strings.Join(ops, ", "))
	}
}

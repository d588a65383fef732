package membuf

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"anvil/ir"
	"anvil/types"
	"anvil/verify"
)

// Schema version of the encoded payload. Increment when the record shapes
// below change.
const schemaVersion uint16 = 1

var (
	ErrNoCertificate  = errors.New("module has no valid certificate")
	ErrSchemaMismatch = errors.New("unsupported payload schema")
	ErrDigestMismatch = errors.New("payload digest mismatch")
)

// envelope is the outer frame: a version, a sha256 over Body and the
// msgpack-encoded Payload itself.
type envelope struct {
	Schema uint16
	Digest [sha256.Size]byte
	Body   []byte
}

// Payload is the serialized form of a verified module. TypeIDs are indexes
// into Types; instruction results are numbered densely per function in
// block order.
type Payload struct {
	Name    string
	Types   []TypeRec
	Globals []GlobalRec
	Funcs   []FuncRec
}

// TypeRec mirrors one interned type descriptor. Struct and function kinds
// carry their component lists inline instead of side-table slots.
type TypeRec struct {
	Kind      uint8
	Elem      uint32
	Count     uint32
	Bits      uint32
	AddrSpace uint32

	// Struct-only:
	StructName string
	Fields     []uint32
	Packed     bool
	Opaque     bool

	// Func-only:
	Params   []uint32
	Result   uint32
	Variadic bool
}

type GlobalRec struct {
	Name string
	Type uint32
	Init *ValueRec
}

type FuncRec struct {
	Name   string
	Sig    uint32
	Blocks []BlockRec
}

type BlockRec struct {
	Label  string
	Instrs []InstrRec
}

type InstrRec struct {
	Op        uint8
	Type      uint32
	Name      string
	Operands  []ValueRec
	Blocks    []int // block indexes; phi predecessors or branch targets
	IntPred   uint8
	FloatPred uint8
	Pointee   uint32
	Callee    string
}

// ValueRec references a value by provenance: constants inline their
// payload, parameters their index, instruction results their dense number,
// globals their name.
type ValueRec struct {
	Kind  uint8
	Type  uint32
	Index int        // param index or instruction number
	Int   int64      // integer and null constants
	Float float64    // float constants
	Name  string     // global name
	Elems []ValueRec // aggregate constant elements
}

// Encode serializes a verified module into a named buffer. The certificate
// must cover exactly this module; unverified modules do not cross the
// boundary.
func Encode(m *ir.Module, cert verify.Certificate) (*Buffer, error) {
	if m == nil || !cert.Covers(m) {
		return nil, ErrNoCertificate
	}
	p := Payload{Name: m.Name()}
	encodeTypes(&p, m.Context().Types())
	for _, g := range m.Globals() {
		rec := GlobalRec{Name: g.Name(), Type: uint32(g.Type())}
		if init := g.Init(); init != nil {
			vr := constRec(init)
			rec.Init = &vr
		}
		p.Globals = append(p.Globals, rec)
	}
	for _, f := range m.Functions() {
		p.Funcs = append(p.Funcs, encodeFunc(f))
	}

	body, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("encode module %q: %w", m.Name(), err)
	}
	env := envelope{Schema: schemaVersion, Digest: sha256.Sum256(body), Body: body}
	raw, err := msgpack.Marshal(&env)
	if err != nil {
		return nil, fmt.Errorf("encode module %q: %w", m.Name(), err)
	}
	return FromBytes(m.Name()+".anv", raw), nil
}

// Decode validates the envelope and returns the payload. The module is not
// re-materialized; the payload is the backend-facing record.
func Decode(buf *Buffer) (*Payload, error) {
	var env envelope
	if err := msgpack.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %q: %w", buf.Name(), err)
	}
	if env.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, env.Schema, schemaVersion)
	}
	if sha256.Sum256(env.Body) != env.Digest {
		return nil, ErrDigestMismatch
	}
	var p Payload
	if err := msgpack.Unmarshal(env.Body, &p); err != nil {
		return nil, fmt.Errorf("decode %q: %w", buf.Name(), err)
	}
	return &p, nil
}

func encodeTypes(p *Payload, in *types.Interner) {
	p.Types = make([]TypeRec, in.Count())
	for i := 1; i < in.Count(); i++ {
		id := types.TypeID(i)
		tt := in.MustLookup(id)
		rec := TypeRec{
			Kind:      uint8(tt.Kind),
			Elem:      uint32(tt.Elem),
			Count:     tt.Count,
			Bits:      tt.Bits,
			AddrSpace: tt.AddrSpace,
		}
		switch tt.Kind {
		case types.KindStruct:
			if info, ok := in.StructInfo(id); ok {
				rec.StructName = info.Name
				rec.Fields = idList(info.Fields)
				rec.Packed = info.Packed
				rec.Opaque = info.Opaque
			}
		case types.KindFunc:
			if info, ok := in.FnInfo(id); ok {
				rec.Params = idList(info.Params)
				rec.Result = uint32(info.Result)
				rec.Variadic = info.Variadic
			}
		}
		p.Types[i] = rec
	}
}

func idList(ids []types.TypeID) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

func encodeFunc(f *ir.Func) FuncRec {
	rec := FuncRec{Name: f.Name(), Sig: uint32(f.Signature())}

	// Dense numbering of instruction results in block order.
	num := make(map[*ir.Instr]int)
	n := 0
	for _, b := range f.Blocks() {
		for _, ins := range b.Instrs() {
			if ins.Result() != nil {
				num[ins] = n
				n++
			}
		}
	}

	for _, b := range f.Blocks() {
		br := BlockRec{Label: b.Label()}
		for _, ins := range b.Instrs() {
			irec := InstrRec{
				Op:        uint8(ins.Op()),
				Type:      uint32(ins.Type()),
				IntPred:   uint8(ins.IntPred()),
				FloatPred: uint8(ins.FloatPred()),
				Pointee:   uint32(ins.Pointee()),
			}
			if res := ins.Result(); res != nil {
				irec.Name = res.Name()
			}
			if callee := ins.Callee(); callee != nil {
				irec.Callee = callee.Name()
			}
			for _, op := range ins.Operands() {
				irec.Operands = append(irec.Operands, valueRec(op, num))
			}
			for _, blk := range ins.Blocks() {
				irec.Blocks = append(irec.Blocks, blk.Index())
			}
			br.Instrs = append(br.Instrs, irec)
		}
		rec.Blocks = append(rec.Blocks, br)
	}
	return rec
}

func valueRec(v *ir.Value, num map[*ir.Instr]int) ValueRec {
	switch v.Kind() {
	case ir.ValueConst:
		return constRec(v)
	case ir.ValueParam:
		return ValueRec{Kind: uint8(ir.ValueParam), Type: uint32(v.Type()), Index: v.ParamIndex()}
	case ir.ValueGlobal:
		return ValueRec{Kind: uint8(ir.ValueGlobal), Type: uint32(v.Type()), Name: v.Global().Name()}
	default:
		return ValueRec{Kind: uint8(ir.ValueInstr), Type: uint32(v.Type()), Index: num[v.Def()]}
	}
}

func constRec(v *ir.Value) ValueRec {
	rec := ValueRec{
		Kind:  uint8(ir.ValueConst),
		Type:  uint32(v.Type()),
		Int:   v.Int(),
		Float: v.Float(),
	}
	for _, el := range v.Elems() {
		rec.Elems = append(rec.Elems, constRec(el))
	}
	return rec
}

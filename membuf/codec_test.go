package membuf

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"anvil/ir"
	"anvil/types"
	"anvil/verify"
)

// buildVerified constructs fn @add: fn(i32, i32) i32 { ret (add p0, p1) }
// with one global and verifies it.
func buildVerified(t *testing.T) (*ir.Module, verify.Certificate) {
	t.Helper()
	c := ir.NewContext()
	m, err := c.NewModule("unit")
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	zero, _ := c.ConstInt(c.Int32Type(), 0)
	if _, err := m.DeclareGlobal("counter", c.Int32Type(), zero); err != nil {
		t.Fatalf("global: %v", err)
	}
	i32 := c.Int32Type()
	sig, _ := c.FunctionType([]types.TypeID{i32, i32}, i32, false)
	f, err := m.DeclareFunction("add", sig)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	entry, _ := f.AppendBlock("entry")
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	sum, err := b.BuildAdd(f.Param(0), f.Param(1), "sum")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := b.BuildRet(sum); err != nil {
		t.Fatalf("ret: %v", err)
	}
	cert, bag := verify.Verify(m, verify.Options{})
	if !cert.Valid() {
		t.Fatalf("module must verify: %+v", bag.Items())
	}
	return m, cert
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m, cert := buildVerified(t)
	buf, err := Encode(m, cert)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Name() != "unit.anv" || buf.Size() == 0 {
		t.Fatalf("buffer: name %q size %d", buf.Name(), buf.Size())
	}

	p, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "unit" {
		t.Errorf("name: %q", p.Name)
	}
	if len(p.Globals) != 1 || p.Globals[0].Name != "counter" || p.Globals[0].Init == nil {
		t.Errorf("globals: %+v", p.Globals)
	}
	if len(p.Funcs) != 1 || p.Funcs[0].Name != "add" {
		t.Fatalf("funcs: %+v", p.Funcs)
	}
	blocks := p.Funcs[0].Blocks
	if len(blocks) != 1 || blocks[0].Label != "entry" || len(blocks[0].Instrs) != 2 {
		t.Fatalf("blocks: %+v", blocks)
	}
	addRec := blocks[0].Instrs[0]
	if addRec.Op != uint8(ir.OpAdd) || addRec.Name != "sum" || len(addRec.Operands) != 2 {
		t.Errorf("add record: %+v", addRec)
	}
	if addRec.Operands[0].Kind != uint8(ir.ValueParam) || addRec.Operands[0].Index != 0 {
		t.Errorf("first operand: %+v", addRec.Operands[0])
	}
	retRec := blocks[0].Instrs[1]
	if retRec.Op != uint8(ir.OpRet) || retRec.Operands[0].Kind != uint8(ir.ValueInstr) {
		t.Errorf("ret record: %+v", retRec)
	}

	// The type table must resolve the function signature.
	sig := p.Funcs[0].Sig
	if int(sig) >= len(p.Types) || p.Types[sig].Kind != uint8(types.KindFunc) {
		t.Errorf("signature record: sig=%d types=%d", sig, len(p.Types))
	}
}

func TestEncodeRequiresCertificate(t *testing.T) {
	m, _ := buildVerified(t)
	var stale verify.Certificate
	if _, err := Encode(m, stale); !errors.Is(err, ErrNoCertificate) {
		t.Fatalf("want ErrNoCertificate, got %v", err)
	}

	c := ir.NewContext()
	other, _ := c.NewModule("other")
	_, cert := buildVerified(t)
	if _, err := Encode(other, cert); !errors.Is(err, ErrNoCertificate) {
		t.Fatalf("certificate for another module must be rejected, got %v", err)
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	m, cert := buildVerified(t)
	buf, err := Encode(m, cert)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var env envelope
	if err := msgpack.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	env.Body[0] ^= 0xff
	raw, _ := msgpack.Marshal(&env)
	if _, err := Decode(FromBytes("t", raw)); !errors.Is(err, ErrDigestMismatch) {
		t.Fatalf("want ErrDigestMismatch, got %v", err)
	}
}

func TestDecodeRejectsSchemaSkew(t *testing.T) {
	body := []byte("future")
	env := envelope{Schema: schemaVersion + 1, Digest: sha256.Sum256(body), Body: body}
	raw, _ := msgpack.Marshal(&env)
	if _, err := Decode(FromBytes("t", raw)); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("want ErrSchemaMismatch, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(FromBytes("t", []byte{0x00, 0x01, 0x02})); err == nil {
		t.Fatal("garbage must not decode")
	}
}

package verify

import "anvil/ir"

// Certificate is the opaque well-formedness token handed to a backend. It
// is only obtainable from a successful Verify call and is bound to the
// exact module it was issued for; mutating the module afterwards silently
// voids the guarantee, so certify last.
type Certificate struct {
	m  *ir.Module
	ok bool
}

func newCertificate(m *ir.Module) Certificate {
	return Certificate{m: m, ok: true}
}

// Valid reports whether the certificate was issued by a successful pass.
func (c Certificate) Valid() bool {
	return c.ok && c.m != nil
}

// Covers reports whether the certificate was issued for this exact module.
func (c Certificate) Covers(m *ir.Module) bool {
	return c.Valid() && c.m == m
}

// Package driver builds and verifies independent compilation units in
// parallel. Each unit gets a fresh Context, so units share no type arenas
// and never trip cross-context checks against each other.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"anvil/diag"
	"anvil/ir"
	"anvil/membuf"
	"anvil/verify"
)

// BuildFunc populates a module inside the fresh per-unit Context.
type BuildFunc func(ctx context.Context, ic *ir.Context) (*ir.Module, error)

// Unit is one independent compilation unit.
type Unit struct {
	Name  string
	Build BuildFunc
}

// Result is the per-unit outcome. Exactly one of Err or Module is set; a
// set Module always comes with its diagnostic bag, and with a certificate
// and an encoded buffer when verification succeeded.
type Result struct {
	Name   string
	Module *ir.Module
	Cert   verify.Certificate
	Bag    *diag.Bag
	Buffer *membuf.Buffer
	Err    error
}

// Options tunes a VerifyAll run.
type Options struct {
	// Jobs caps the number of concurrently building units. Zero or negative
	// means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics bounds each unit's bag. Zero means the verifier default.
	MaxDiagnostics int
	// Emit encodes every certified module into a membuf.Buffer.
	Emit bool
}

// VerifyAll builds every unit, verifies the result and optionally encodes
// it. Build failures land in the unit's Result, not in the returned error;
// only cancellation aborts the whole run. Results are index-aligned with
// units.
func VerifyAll(ctx context.Context, units []Unit, opts Options) ([]Result, error) {
	if len(units) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Index-addressed results, no mutex needed.
	results := make([]Result, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			results[i] = runUnit(gctx, u, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runUnit(ctx context.Context, u Unit, opts Options) Result {
	res := Result{Name: u.Name}
	if u.Build == nil {
		res.Err = fmt.Errorf("unit %q has no build function", u.Name)
		return res
	}

	ic := ir.NewContext()
	m, err := u.Build(ctx, ic)
	if err != nil {
		res.Err = fmt.Errorf("build unit %q: %w", u.Name, err)
		return res
	}
	if m == nil {
		res.Err = fmt.Errorf("build unit %q: no module produced", u.Name)
		return res
	}
	res.Module = m

	cert, bag := verify.Verify(m, verify.Options{MaxDiagnostics: opts.MaxDiagnostics})
	res.Cert = cert
	res.Bag = bag
	if !cert.Valid() || !opts.Emit {
		return res
	}

	buf, err := membuf.Encode(m, cert)
	if err != nil {
		res.Err = fmt.Errorf("encode unit %q: %w", u.Name, err)
		return res
	}
	res.Buffer = buf
	return res
}

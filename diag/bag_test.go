package diag

import (
	"math"
	"strings"
	"testing"
)

func TestBagCap(t *testing.T) {
	b := NewBag(2)
	if !b.Add(Diagnostic{Severity: SevError, Code: VerifyUnterminatedBlock}) {
		t.Fatalf("first add must succeed")
	}
	if !b.Add(Diagnostic{Severity: SevError, Code: VerifyUseNotDominated}) {
		t.Fatalf("second add must succeed")
	}
	if b.Add(Diagnostic{Severity: SevError, Code: VerifyPhiMissingPred}) {
		t.Fatalf("add past cap must be rejected")
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", b.Len())
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	b := NewBag(2)
	b.Add(Diagnostic{Severity: SevError, Code: VerifyUnterminatedBlock})
	b.Add(Diagnostic{Severity: SevError, Code: VerifyUseNotDominated})
	other := NewBag(2)
	other.Add(Diagnostic{Severity: SevError, Code: VerifyPhiMissingPred})
	b.Merge(other)
	if b.Len() != 3 || b.Cap() != 3 {
		t.Fatalf("expected len 3 cap 3, got len %d cap %d", b.Len(), b.Cap())
	}
}

func TestBagMergeCapSaturates(t *testing.T) {
	fill := func(n int) *Bag {
		b := NewBag(n)
		for i := 0; i < n; i++ {
			b.Add(Diagnostic{Severity: SevError, Code: VerifyUseNotDominated})
		}
		return b
	}
	b := fill(40000)
	b.Merge(fill(40000))
	if b.Cap() != math.MaxUint16 {
		t.Fatalf("merged cap must saturate at %d, got %d", math.MaxUint16, b.Cap())
	}
	if b.Len() != 80000 {
		t.Fatalf("merge must keep every item, got %d", b.Len())
	}
	if b.Add(Diagnostic{Severity: SevError, Code: VerifyUseNotDominated}) {
		t.Fatalf("add past saturated cap must be rejected")
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(8)
	b.Add(Diagnostic{Severity: SevWarning, Code: VerifyUnreachableBlock})
	if b.HasErrors() {
		t.Fatalf("warnings are not errors")
	}
	b.Add(Diagnostic{Severity: SevError, Code: VerifyUnterminatedBlock})
	if !b.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(8)
	b.Add(Diagnostic{Severity: SevError, Code: VerifyUseNotDominated, Primary: Loc{Func: "g", Block: 1, Instr: 0}})
	b.Add(Diagnostic{Severity: SevError, Code: VerifyUnterminatedBlock, Primary: Loc{Func: "f", Block: 2, Instr: -1}})
	b.Add(Diagnostic{Severity: SevError, Code: VerifyUnterminatedBlock, Primary: Loc{Func: "f", Block: 0, Instr: -1}})
	b.Sort()
	items := b.Items()
	if items[0].Primary.Func != "f" || items[0].Primary.Block != 0 {
		t.Fatalf("unexpected order: %+v", items[0].Primary)
	}
	if items[2].Primary.Func != "g" {
		t.Fatalf("unexpected order: %+v", items[2].Primary)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(8)
	loc := Loc{Func: "f", Block: 0, Instr: 1}
	b.Add(Diagnostic{Severity: SevError, Code: VerifyUseNotDominated, Primary: loc})
	b.Add(Diagnostic{Severity: SevError, Code: VerifyUseNotDominated, Primary: loc})
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("expected 1 after dedup, got %d", b.Len())
	}
}

func TestLocString(t *testing.T) {
	cases := []struct {
		loc  Loc
		want string
	}{
		{Loc{}, "<module>"},
		{Loc{Func: "f", Block: -1, Instr: -1}, "f"},
		{Loc{Func: "f", Block: 2, Instr: -1}, "f:bb2"},
		{Loc{Func: "f", Block: 2, Instr: 5}, "f:bb2:5"},
	}
	for _, tc := range cases {
		if got := tc.loc.String(); got != tc.want {
			t.Errorf("Loc%+v = %q, want %q", tc.loc, got, tc.want)
		}
	}
}

func TestRenderPlain(t *testing.T) {
	b := NewBag(4)
	b.Add(Diagnostic{
		Severity: SevError,
		Code:     VerifyUnterminatedBlock,
		Message:  "block has no terminator",
		Primary:  Loc{Func: "main", Block: 0, Instr: -1},
	})
	var sb strings.Builder
	if err := Render(&sb, b, RenderOptions{NoColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"ERROR", "ANV3002", "main:bb0", "block has no terminator"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

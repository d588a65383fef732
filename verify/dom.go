package verify

import "anvil/ir"

// cfg caches per-function control-flow facts for one verification pass:
// predecessor sets, reachability from entry and the dominator tree.
type cfg struct {
	blocks []*ir.Block
	preds  [][]int // by block index, deduplicated
	reach  []bool
	rpo    []int // reachable block indexes in reverse postorder
	rpoNum []int // position in rpo, -1 for unreachable
	idom   []int // immediate dominator by block index, entry maps to itself
}

func newCFG(f *ir.Func) *cfg {
	blocks := f.Blocks()
	n := len(blocks)
	g := &cfg{
		blocks: blocks,
		preds:  make([][]int, n),
		reach:  make([]bool, n),
		rpoNum: make([]int, n),
		idom:   make([]int, n),
	}
	for i := range g.rpoNum {
		g.rpoNum[i] = -1
		g.idom[i] = -1
	}
	if n == 0 {
		return g
	}

	// Depth-first postorder from the entry; reversing it gives RPO.
	var post []int
	var dfs func(i int)
	dfs = func(i int) {
		g.reach[i] = true
		for _, s := range blocks[i].Succs() {
			if !g.reach[s.Index()] {
				dfs(s.Index())
			}
		}
		post = append(post, i)
	}
	dfs(0)
	g.rpo = make([]int, 0, len(post))
	for i := len(post) - 1; i >= 0; i-- {
		g.rpo = append(g.rpo, post[i])
	}
	for num, b := range g.rpo {
		g.rpoNum[b] = num
	}

	// Predecessors are structural: edges from unreachable blocks count too,
	// they just contribute nothing to dominance.
	for i := range blocks {
		for _, s := range blocks[i].Succs() {
			si := s.Index()
			if !contains(g.preds[si], i) {
				g.preds[si] = append(g.preds[si], i)
			}
		}
	}

	g.computeDominators()
	return g
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// computeDominators runs the iterative Cooper–Harvey–Kennedy data-flow over
// reverse postorder. Loops converge in a couple of passes; back edges never
// confuse the intersection walk because it always climbs toward the entry.
func (g *cfg) computeDominators() {
	if len(g.rpo) == 0 {
		return
	}
	entry := g.rpo[0]
	g.idom[entry] = entry
	changed := true
	for changed {
		changed = false
		for _, b := range g.rpo[1:] {
			newIdom := -1
			for _, p := range g.preds[b] {
				if g.idom[p] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = p
				} else {
					newIdom = g.intersect(p, newIdom)
				}
			}
			if newIdom != -1 && g.idom[b] != newIdom {
				g.idom[b] = newIdom
				changed = true
			}
		}
	}
}

func (g *cfg) intersect(a, b int) int {
	for a != b {
		for g.rpoNum[a] > g.rpoNum[b] {
			a = g.idom[a]
		}
		for g.rpoNum[b] > g.rpoNum[a] {
			b = g.idom[b]
		}
	}
	return a
}

// dominates reports whether block a dominates block b. Both must be
// reachable; a block dominates itself.
func (g *cfg) dominates(a, b int) bool {
	for {
		if b == a {
			return true
		}
		next := g.idom[b]
		if next == b || next == -1 {
			return false
		}
		b = next
	}
}

// Package ir builds and owns typed intermediate representation: contexts,
// modules, functions, basic blocks and instructions.
//
// Construction fails fast: every builder operation validates operand types
// and cursor position before mutating anything, so a rejected call never
// leaves a partially appended instruction. Whole-graph properties that need
// the finished control-flow graph (dominance, phi completeness,
// reachability) are checked later by the verify package.
//
// One Context must only be mutated from one goroutine at a time; mutating
// entry points also serialize internally. Independent contexts share no
// state and are safe to use concurrently.
package ir

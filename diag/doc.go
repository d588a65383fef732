// Package diag defines the diagnostic model shared by construction and
// verification: severities, stable ANVxxxx codes, IR locations and the Bag
// accumulator. Rendering is line-oriented and deterministic after Sort.
package diag

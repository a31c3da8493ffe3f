// File: doc.go
// Title: fx Boundary Adapter Documentation
// Description: Flat export of the AST to a foreign heap and its release.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial boundary adapter

/*
Package boundary hands a parsed forest to a consumer outside the Go heap.

Export copies every node into a Heap: strings become independently
allocated NUL-terminated buffers, children become separately allocated
nodes and lists (parameters, chain links, call arguments) become an
address/count pair over a contiguous block. Every node carries its own
line, column and file name. Once Export returns, the caller owns the
whole graph.

Release walks a root produced by Export with the same shape and frees
each allocation exactly once, children before the block that holds their
addresses. Zero-length lists have no block and are skipped.

Two heaps are provided: CHeap allocates with C malloc and lays nodes out
as the fx_node struct from fx_node.h; TrackingHeap lives in Go memory
and records every allocation so tests can prove that nothing leaks and
nothing is freed twice.

	forest, err := boundary.Export(boundary.CHeap{}, exprs)
	...
	boundary.Release(boundary.CHeap{}, forest.Ptr, forest.Len)
*/
package boundary

// File: heap.go
// Title: Foreign Heap Interface
// Description: Allocator abstraction the exporter writes through.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial interface

package boundary

// Heap allocates memory owned by the consumer. Every Alloc* result is a
// single block released with one Free call. Indexes address elements of
// a block returned by AllocNodes or AllocStrings.
type Heap interface {
	// AllocString copies s into a NUL-terminated buffer
	AllocString(s string) Ptr
	LoadString(p Ptr) string

	// AllocNodes returns a zeroed block of n contiguous nodes
	AllocNodes(n int) Ptr
	StoreNode(block Ptr, i int, node Node)
	LoadNode(block Ptr, i int) Node

	// AllocStrings returns a zeroed block of n string addresses
	AllocStrings(n int) Ptr
	StoreStringAt(block Ptr, i int, s Ptr)
	LoadStringAt(block Ptr, i int) Ptr

	Free(p Ptr)
}

// File: tracking.go
// Title: Tracking Heap
// Description: Pure Go Heap that records every allocation. Addresses are
//              never reused, so a second Free of the same block and any
//              access after Free are detected and reported through Err.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package boundary

import (
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	fxerror "github.com/msto63/fx/foundation/core/error"
)

type blockKind int

const (
	blockString blockKind = iota
	blockNodes
	blockStrings
)

type block struct {
	kind  blockKind
	str   string
	nodes []Node
	ptrs  []Ptr
}

// TrackingHeap is safe for concurrent use
type TrackingHeap struct {
	mu     sync.Mutex
	next   Ptr
	live   map[Ptr]*block
	allocs int
	frees  int
	errs   *multierror.Error
}

// NewTrackingHeap creates an empty heap
func NewTrackingHeap() *TrackingHeap {
	return &TrackingHeap{live: make(map[Ptr]*block)}
}

func (h *TrackingHeap) alloc(b *block) Ptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next += 0x10
	h.live[h.next] = b
	h.allocs++
	return h.next
}

// lookup returns the live block at p. Must be called with mu held.
func (h *TrackingHeap) lookup(p Ptr, kind blockKind, op string) *block {
	b, ok := h.live[p]
	if !ok {
		h.fail(op, p, "address is not allocated")
		return nil
	}
	if b.kind != kind {
		h.fail(op, p, "block has the wrong shape")
		return nil
	}
	return b
}

func (h *TrackingHeap) fail(op string, p Ptr, message string) {
	h.errs = multierror.Append(h.errs, fxerror.New(message).
		WithCode(fxerror.CodeBoundary).
		WithOperation(op).
		WithDetail("address", uintptr(p)))
}

func (h *TrackingHeap) AllocString(s string) Ptr {
	return h.alloc(&block{kind: blockString, str: s})
}

func (h *TrackingHeap) LoadString(p Ptr) string {
	if p == 0 {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if b := h.lookup(p, blockString, "LoadString"); b != nil {
		return b.str
	}
	return ""
}

func (h *TrackingHeap) AllocNodes(n int) Ptr {
	return h.alloc(&block{kind: blockNodes, nodes: make([]Node, n)})
}

func (h *TrackingHeap) StoreNode(p Ptr, i int, node Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b := h.lookup(p, blockNodes, "StoreNode"); b != nil {
		if i < 0 || i >= len(b.nodes) {
			h.fail("StoreNode", p, "index out of range")
			return
		}
		b.nodes[i] = node
	}
}

func (h *TrackingHeap) LoadNode(p Ptr, i int) Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b := h.lookup(p, blockNodes, "LoadNode"); b != nil {
		if i < 0 || i >= len(b.nodes) {
			h.fail("LoadNode", p, "index out of range")
			return Node{}
		}
		return b.nodes[i]
	}
	return Node{}
}

func (h *TrackingHeap) AllocStrings(n int) Ptr {
	return h.alloc(&block{kind: blockStrings, ptrs: make([]Ptr, n)})
}

func (h *TrackingHeap) StoreStringAt(p Ptr, i int, s Ptr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b := h.lookup(p, blockStrings, "StoreStringAt"); b != nil {
		if i < 0 || i >= len(b.ptrs) {
			h.fail("StoreStringAt", p, "index out of range")
			return
		}
		b.ptrs[i] = s
	}
}

func (h *TrackingHeap) LoadStringAt(p Ptr, i int) Ptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b := h.lookup(p, blockStrings, "LoadStringAt"); b != nil {
		if i < 0 || i >= len(b.ptrs) {
			h.fail("LoadStringAt", p, "index out of range")
			return 0
		}
		return b.ptrs[i]
	}
	return 0
}

// Free releases p. Freeing an unknown or already freed address is
// recorded as an error.
func (h *TrackingHeap) Free(p Ptr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.live[p]; !ok {
		h.fail("Free", p, "double free or foreign address")
		return
	}
	delete(h.live, p)
	h.frees++
}

// Live returns the number of blocks not yet freed
func (h *TrackingHeap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Allocations returns the number of blocks ever allocated
func (h *TrackingHeap) Allocations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocs
}

// Frees returns the number of successful Free calls
func (h *TrackingHeap) Frees() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frees
}

// Leaks returns the addresses still live, in allocation order
func (h *TrackingHeap) Leaks() []Ptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Ptr, 0, len(h.live))
	for p := range h.live {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Err returns every misuse seen so far, or nil
func (h *TrackingHeap) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errs.ErrorOrNil()
}

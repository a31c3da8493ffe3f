// File: cheap.go
// Title: C Heap
// Description: Heap backed by C malloc/free. Nodes use the fx_node layout
//              from fx_node.h so C consumers can walk the tree directly.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

//go:build cgo

package boundary

/*
#include <stdlib.h>
#include <string.h>
#include "fx_node.h"
*/
import "C"

import (
	"unsafe"

	"github.com/msto63/fx/foundation/fx/ast"
)

const (
	nodeSize = unsafe.Sizeof(C.fx_node{})
	slotSize = unsafe.Sizeof((*C.char)(nil))
)

// CHeap allocates on the C heap. It holds no state; blocks are released
// with C free.
type CHeap struct{}

func (CHeap) AllocString(s string) Ptr {
	return Ptr(unsafe.Pointer(C.CString(s)))
}

func (CHeap) LoadString(p Ptr) string {
	if p == 0 {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(p)))
}

func (CHeap) AllocNodes(n int) Ptr {
	return Ptr(C.calloc(C.size_t(n), C.size_t(nodeSize)))
}

func nodeAt(block Ptr, i int) *C.fx_node {
	return (*C.fx_node)(unsafe.Add(unsafe.Pointer(block), uintptr(i)*nodeSize))
}

func (CHeap) StoreNode(block Ptr, i int, node Node) {
	c := nodeAt(block, i)
	c.tag = C.uint8_t(node.Tag)
	c.is_float = 0
	if node.IsFloat {
		c.is_float = 1
	}
	c.rank = C.uint8_t(node.Rank)
	c.return_type = C.uint8_t(node.ReturnType)
	c.line = C.uint32_t(node.Line)
	c.column = C.uint32_t(node.Column)
	c.filename = (*C.char)(unsafe.Pointer(node.File))
	c.int_value = C.int64_t(node.Int)
	c.float_value = C.double(node.Float)
	c.name = (*C.char)(unsafe.Pointer(node.Name))
	c.left = (*C.fx_node)(unsafe.Pointer(node.Left))
	c.right = (*C.fx_node)(unsafe.Pointer(node.Right))
	c.list = unsafe.Pointer(node.List)
	c.len = C.size_t(node.Len)
}

func (CHeap) LoadNode(block Ptr, i int) Node {
	c := nodeAt(block, i)
	return Node{
		Tag:        Tag(c.tag),
		IsFloat:    c.is_float != 0,
		Rank:       ast.Rank(c.rank),
		ReturnType: ast.ReturnType(c.return_type),
		Line:       uint32(c.line),
		Column:     uint32(c.column),
		File:       Ptr(unsafe.Pointer(c.filename)),
		Int:        int64(c.int_value),
		Float:      float64(c.float_value),
		Name:       Ptr(unsafe.Pointer(c.name)),
		Left:       Ptr(unsafe.Pointer(c.left)),
		Right:      Ptr(unsafe.Pointer(c.right)),
		List:       Ptr(c.list),
		Len:        int(c.len),
	}
}

func (CHeap) AllocStrings(n int) Ptr {
	return Ptr(C.calloc(C.size_t(n), C.size_t(slotSize)))
}

func slotAt(block Ptr, i int) **C.char {
	return (**C.char)(unsafe.Add(unsafe.Pointer(block), uintptr(i)*slotSize))
}

func (CHeap) StoreStringAt(block Ptr, i int, s Ptr) {
	*slotAt(block, i) = (*C.char)(unsafe.Pointer(s))
}

func (CHeap) LoadStringAt(block Ptr, i int) Ptr {
	return Ptr(unsafe.Pointer(*slotAt(block, i)))
}

func (CHeap) Free(p Ptr) {
	C.free(unsafe.Pointer(p))
}

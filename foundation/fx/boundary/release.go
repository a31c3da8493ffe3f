// File: release.go
// Title: Forest Release
// Description: Frees a graph produced by Export by mirroring its shape.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial implementation

package boundary

// Release frees the count nodes at ptr and everything they own. Children
// are freed before the block that holds their addresses. ptr must come
// from Export on the same heap and must not have been released; this is
// not checked.
func Release(heap Heap, ptr Ptr, count int) {
	if count == 0 || ptr == 0 {
		return
	}
	releaseList(heap, ptr, count)
}

func releaseList(heap Heap, block Ptr, count int) {
	for i := 0; i < count; i++ {
		releaseNode(heap, heap.LoadNode(block, i))
	}
	heap.Free(block)
}

func releaseChild(heap Heap, block Ptr) {
	if block != 0 {
		releaseList(heap, block, 1)
	}
}

// releaseNode frees what node owns, not the node itself
func releaseNode(heap Heap, node Node) {
	releaseString(heap, node.File)
	releaseString(heap, node.Name)
	releaseChild(heap, node.Left)
	releaseChild(heap, node.Right)

	if node.Len == 0 || node.List == 0 {
		return
	}
	if node.Tag.hasStringList() {
		for i := 0; i < node.Len; i++ {
			releaseString(heap, heap.LoadStringAt(node.List, i))
		}
		heap.Free(node.List)
		return
	}
	releaseList(heap, node.List, node.Len)
}

func releaseString(heap Heap, p Ptr) {
	if p != 0 {
		heap.Free(p)
	}
}

// ReleaseString frees a single string allocated on heap, such as the
// output file name handed out next to a forest
func ReleaseString(heap Heap, p Ptr) {
	releaseString(heap, p)
}

// File: node.go
// Title: Flat Node Representation
// Description: Go mirror of the fx_node layout exchanged with consumers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial node layout

package boundary

import "github.com/msto63/fx/foundation/fx/ast"

// Ptr is an address in a Heap. Zero is the null address.
type Ptr uintptr

// Tag selects the AST variant held by a Node
type Tag uint8

const (
	TagNumber Tag = iota + 1
	TagString
	TagDefinition
	TagChain
	TagBinary
	TagWhen
	TagCall
	TagVariable
)

// String returns the tag name
func (t Tag) String() string {
	switch t {
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	case TagDefinition:
		return "definition"
	case TagChain:
		return "chain"
	case TagBinary:
		return "binary"
	case TagWhen:
		return "when"
	case TagCall:
		return "call"
	case TagVariable:
		return "variable"
	default:
		return "invalid"
	}
}

// hasStringList reports whether List holds string addresses instead of
// inline nodes
func (t Tag) hasStringList() bool {
	return t == TagDefinition
}

// Node is one flat expression. Field use per tag matches fx_node.h.
type Node struct {
	Tag        Tag
	IsFloat    bool
	Rank       ast.Rank
	ReturnType ast.ReturnType
	Line       uint32
	Column     uint32
	File       Ptr
	Int        int64
	Float      float64
	Name       Ptr
	Left       Ptr
	Right      Ptr
	List       Ptr
	Len        int
}

// Forest is the exported root: Len nodes stored contiguously at Ptr
type Forest struct {
	Ptr Ptr
	Len int
}

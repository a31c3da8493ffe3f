// Package ast defines the located syntax tree of the fx language.
//
// Package: ast
// Title: fx Abstract Syntax Tree
// Description: One struct per expression variant behind the sealed Expr
//              interface. Every node carries the diag.Location of the token
//              it was built from. Children are owned by exactly one parent.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.1.0: Initial node set, visitor, Inspect and map views
package ast

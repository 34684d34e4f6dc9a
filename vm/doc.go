// Package vm implements the SOL25 object-message engine.
//
// This package contains:
//   - the Value sum type and boxing into object instances
//   - the class table and inheritance-chain dispatch
//   - a tree-walking evaluator over pkg/ast
//   - primitive implementations for Object, Integer, String, True, False,
//     Nil and Block
package vm

// Package ast defines the SOL25 program tree consumed by the interpreter.
//
// A Program is a forest of classes. Every user method has exactly one body
// Block; every Block holds ordered parameters and ordered statements; every
// Statement evaluates one Expr and optionally stores it into a variable.
package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Literal class tags.
const (
	LiteralInteger = "Integer"
	LiteralString  = "String"
	LiteralTrue    = "True"
	LiteralFalse   = "False"
	LiteralNil     = "Nil"
	LiteralClass   = "class"
)

// Program is the root of a parsed SOL25 program.
type Program struct {
	Language    string   `cbor:"language,omitempty" json:"language,omitempty"`
	Description string   `cbor:"description,omitempty" json:"description,omitempty"`
	Classes     []*Class `cbor:"classes" json:"classes"`
}

// Class is a user class declaration.
type Class struct {
	Name    string    `cbor:"name" json:"name"`
	Parent  string    `cbor:"parent,omitempty" json:"parent,omitempty"` // empty for a root class
	Methods []*Method `cbor:"methods" json:"methods"`
}

// Method binds a selector to a body block.
type Method struct {
	Selector string `cbor:"selector" json:"selector"`
	Body     *Block `cbor:"body" json:"body"`
}

// Block is a parameterised statement list. Method bodies and block
// literals share this representation.
type Block struct {
	Arity      int          `cbor:"arity" json:"arity"`
	Parameters []Parameter  `cbor:"parameters,omitempty" json:"parameters,omitempty"`
	Statements []*Statement `cbor:"statements,omitempty" json:"statements,omitempty"`
}

// Parameter is a formal block parameter.
type Parameter struct {
	Order int    `cbor:"order" json:"order"`
	Name  string `cbor:"name" json:"name"`
}

// Statement evaluates Expr and, when Target is set, assigns the result.
type Statement struct {
	Order  int    `cbor:"order" json:"order"`
	Target string `cbor:"target,omitempty" json:"target,omitempty"`
	Expr   *Expr  `cbor:"expr" json:"expr"`
}

// Expr is one of a literal, a variable reference, a nested block, or a
// message send. Exactly one field is set.
type Expr struct {
	Literal *Literal `cbor:"literal,omitempty" json:"literal,omitempty"`
	Var     string   `cbor:"var,omitempty" json:"var,omitempty"`
	Block   *Block   `cbor:"block,omitempty" json:"block,omitempty"`
	Send    *Send    `cbor:"send,omitempty" json:"send,omitempty"`
}

// ExprKind identifies which variant of Expr is populated.
type ExprKind int

const (
	ExprInvalid ExprKind = iota
	ExprLiteral
	ExprVar
	ExprBlock
	ExprSend
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "literal"
	case ExprVar:
		return "var"
	case ExprBlock:
		return "block"
	case ExprSend:
		return "send"
	default:
		return "invalid"
	}
}

// Kind reports the populated variant.
func (e *Expr) Kind() ExprKind {
	switch {
	case e == nil:
		return ExprInvalid
	case e.Literal != nil:
		return ExprLiteral
	case e.Block != nil:
		return ExprBlock
	case e.Send != nil:
		return ExprSend
	case e.Var != "":
		return ExprVar
	default:
		return ExprInvalid
	}
}

// Literal carries the raw literal text and its built-in class tag.
type Literal struct {
	Class string `cbor:"class" json:"class"`
	Value string `cbor:"value" json:"value"`
}

// Send is a message send. Args[0] (Order 0) is the receiver expression;
// the remaining arguments follow in Order.
type Send struct {
	Selector string `cbor:"selector" json:"selector"`
	Args     []*Arg `cbor:"args" json:"args"`
}

// Arg is an ordered send argument.
type Arg struct {
	Order int   `cbor:"order" json:"order"`
	Expr  *Expr `cbor:"expr" json:"expr"`
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// SelectorArity returns the number of arguments a selector takes,
// which is the number of ':' characters it contains.
func SelectorArity(selector string) int {
	return strings.Count(selector, ":")
}

// ParameterNames returns the parameter names in order.
func (b *Block) ParameterNames() []string {
	names := make([]string, len(b.Parameters))
	for i, p := range b.Parameters {
		names[i] = p.Name
	}
	return names
}

// Class returns the class declaration with the given name, or nil.
func (p *Program) Class(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Method returns the method with the given selector, or nil.
func (c *Class) Method(selector string) *Method {
	for _, m := range c.Methods {
		if m.Selector == selector {
			return m
		}
	}
	return nil
}

// String implements the Stringer interface.
func (c *Class) String() string {
	if c.Parent == "" {
		return c.Name
	}
	return fmt.Sprintf("%s : %s", c.Name, c.Parent)
}

// ---------------------------------------------------------------------------
// Well-formedness
// ---------------------------------------------------------------------------

// Check reports the first structural hole in the tree: a nil node, a
// method without a body, an expression with no variant or several, or a
// send without a receiver. Trees built by the parser always pass.
func (p *Program) Check() error {
	for i, c := range p.Classes {
		if c == nil {
			return fmt.Errorf("class %d is null", i)
		}
		for j, m := range c.Methods {
			if m == nil {
				return fmt.Errorf("class %s: method %d is null", c.Name, j)
			}
			if m.Body == nil {
				return fmt.Errorf("%s>>%s: missing body", c.Name, m.Selector)
			}
			if err := m.Body.check(); err != nil {
				return fmt.Errorf("%s>>%s: %w", c.Name, m.Selector, err)
			}
		}
	}
	return nil
}

func (b *Block) check() error {
	for i, s := range b.Statements {
		if s == nil {
			return fmt.Errorf("statement %d is null", i)
		}
		if err := s.Expr.check(); err != nil {
			return fmt.Errorf("statement %d: %w", s.Order, err)
		}
	}
	return nil
}

func (e *Expr) check() error {
	if e == nil {
		return fmt.Errorf("expression is null")
	}
	n := 0
	for _, set := range []bool{e.Literal != nil, e.Var != "", e.Block != nil, e.Send != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("expression has %d variants, want 1", n)
	}
	switch e.Kind() {
	case ExprBlock:
		return e.Block.check()
	case ExprSend:
		if len(e.Send.Args) == 0 {
			return fmt.Errorf("send #%s has no receiver", e.Send.Selector)
		}
		for i, a := range e.Send.Args {
			if a == nil {
				return fmt.Errorf("send #%s: argument %d is null", e.Send.Selector, i)
			}
			if err := a.Expr.check(); err != nil {
				return fmt.Errorf("send #%s: %w", e.Send.Selector, err)
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Normalization
// ---------------------------------------------------------------------------

// Normalize sorts parameters, statements and send arguments of every block
// in the program by their declared order. Document order carries no meaning;
// only the order attributes do.
func (p *Program) Normalize() {
	for _, c := range p.Classes {
		for _, m := range c.Methods {
			m.Body.Normalize()
		}
	}
}

// Normalize sorts the block and all nested blocks in place.
func (b *Block) Normalize() {
	if b == nil {
		return
	}
	sort.SliceStable(b.Parameters, func(i, j int) bool {
		return b.Parameters[i].Order < b.Parameters[j].Order
	})
	sort.SliceStable(b.Statements, func(i, j int) bool {
		return b.Statements[i].Order < b.Statements[j].Order
	})
	for _, s := range b.Statements {
		s.Expr.normalize()
	}
}

func (e *Expr) normalize() {
	switch e.Kind() {
	case ExprBlock:
		e.Block.Normalize()
	case ExprSend:
		sort.SliceStable(e.Send.Args, func(i, j int) bool {
			return e.Send.Args[i].Order < e.Send.Args[j].Order
		})
		for _, a := range e.Send.Args {
			a.Expr.normalize()
		}
	}
}

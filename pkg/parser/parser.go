// Package parser reads the SOL25 XML program representation into an
// ast.Program.
package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/sol/pkg/ast"
)

// Language is the only accepted value of the program language attribute.
const Language = "SOL25"

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// ErrorKind distinguishes malformed documents from well-formed documents
// with an unexpected shape.
type ErrorKind int

const (
	// FormatError: the input is not well-formed XML.
	FormatError ErrorKind = iota
	// StructureError: well-formed XML that is not a valid program tree.
	StructureError
)

func (k ErrorKind) String() string {
	if k == FormatError {
		return "malformed XML"
	}
	return "unexpected XML structure"
}

// Error is a front-end failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func structuref(format string, args ...any) *Error {
	return &Error{Kind: StructureError, Message: fmt.Sprintf(format, args...)}
}

// ---------------------------------------------------------------------------
// Document shape
// ---------------------------------------------------------------------------

type xmlProgram struct {
	XMLName     xml.Name   `xml:"program"`
	Language    string     `xml:"language,attr"`
	Description string     `xml:"description,attr"`
	Classes     []xmlClass `xml:"class"`
	Other       []xmlAny   `xml:",any"`
}

type xmlClass struct {
	Name    *string     `xml:"name,attr"`
	Parent  string      `xml:"parent,attr"`
	Methods []xmlMethod `xml:"method"`
	Other   []xmlAny    `xml:",any"`
}

type xmlMethod struct {
	Selector *string    `xml:"selector,attr"`
	Blocks   []xmlBlock `xml:"block"`
	Other    []xmlAny   `xml:",any"`
}

type xmlBlock struct {
	Arity      *string        `xml:"arity,attr"`
	Parameters []xmlParameter `xml:"parameter"`
	Assigns    []xmlAssign    `xml:"assign"`
	Other      []xmlAny       `xml:",any"`
}

type xmlParameter struct {
	Order *string `xml:"order,attr"`
	Name  *string `xml:"name,attr"`
}

type xmlAssign struct {
	Order *string   `xml:"order,attr"`
	Vars  []xmlVar  `xml:"var"`
	Exprs []xmlExpr `xml:"expr"`
	Other []xmlAny  `xml:",any"`
}

type xmlVar struct {
	Name *string `xml:"name,attr"`
}

type xmlLiteral struct {
	Class *string `xml:"class,attr"`
	Value *string `xml:"value,attr"`
}

type xmlExpr struct {
	Literals []xmlLiteral `xml:"literal"`
	Vars     []xmlVar     `xml:"var"`
	Blocks   []xmlBlock   `xml:"block"`
	Sends    []xmlSend    `xml:"send"`
	Other    []xmlAny     `xml:",any"`
}

type xmlSend struct {
	Selector *string   `xml:"selector,attr"`
	Exprs    []xmlExpr `xml:"expr"`
	Args     []xmlArg  `xml:"arg"`
	Other    []xmlAny  `xml:",any"`
}

type xmlArg struct {
	Order *string   `xml:"order,attr"`
	Exprs []xmlExpr `xml:"expr"`
}

type xmlAny struct {
	XMLName xml.Name
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// Parse reads a SOL25 XML document. The returned program is normalized.
func Parse(r io.Reader) (*ast.Program, error) {
	dec := xml.NewDecoder(r)

	var doc xmlProgram
	if err := dec.Decode(&doc); err != nil {
		return nil, classify(err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	prog, err := convertProgram(&doc)
	if err != nil {
		return nil, err
	}
	prog.Normalize()
	return prog, nil
}

// ParseBytes parses an in-memory document.
func ParseBytes(data []byte) (*ast.Program, error) {
	return Parse(bytes.NewReader(data))
}

// ParseFile parses the document at path. Failing to read the file is not
// a parser *Error.
func ParseFile(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return ParseBytes(data)
}

// classify maps decoder errors onto error kinds. Syntax errors and empty
// input are malformed XML; anything else means the document decoded but
// did not fit the program shape.
func classify(err error) error {
	var syntax *xml.SyntaxError
	switch {
	case errors.As(err, &syntax), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &Error{Kind: FormatError, Message: "cannot parse document", Err: err}
	}
	return &Error{Kind: StructureError, Message: "cannot decode program", Err: err}
}

// expectEOF rejects content after the root element.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &Error{Kind: FormatError, Message: "trailing content", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return &Error{Kind: FormatError, Message: fmt.Sprintf("second root element <%s>", t.Name.Local)}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return &Error{Kind: FormatError, Message: "text after root element"}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func convertProgram(doc *xmlProgram) (*ast.Program, error) {
	if doc.Language != Language {
		return nil, structuref("program language %q, want %q", doc.Language, Language)
	}
	if err := noOther(doc.Other, "program"); err != nil {
		return nil, err
	}

	prog := &ast.Program{Language: doc.Language, Description: doc.Description}
	for i := range doc.Classes {
		c, err := convertClass(&doc.Classes[i])
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, c)
	}
	return prog, nil
}

func convertClass(x *xmlClass) (*ast.Class, error) {
	name, err := required(x.Name, "class", "name")
	if err != nil {
		return nil, err
	}
	if err := noOther(x.Other, "class "+name); err != nil {
		return nil, err
	}

	c := &ast.Class{Name: name, Parent: x.Parent}
	for i := range x.Methods {
		m, err := convertMethod(&x.Methods[i], name)
		if err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, m)
	}
	return c, nil
}

func convertMethod(x *xmlMethod, className string) (*ast.Method, error) {
	selector, err := required(x.Selector, "method", "selector")
	if err != nil {
		return nil, err
	}
	where := className + ">>" + selector
	if err := noOther(x.Other, where); err != nil {
		return nil, err
	}
	if len(x.Blocks) != 1 {
		return nil, structuref("%s: want exactly one block, have %d", where, len(x.Blocks))
	}

	body, err := convertBlock(&x.Blocks[0], where)
	if err != nil {
		return nil, err
	}
	return &ast.Method{Selector: selector, Body: body}, nil
}

func convertBlock(x *xmlBlock, where string) (*ast.Block, error) {
	arityText, err := required(x.Arity, "block", "arity")
	if err != nil {
		return nil, err
	}
	arity, err := number(arityText, "block arity", 0)
	if err != nil {
		return nil, err
	}
	if err := noOther(x.Other, where); err != nil {
		return nil, err
	}
	if arity != len(x.Parameters) {
		return nil, structuref("%s: block arity %d but %d parameters", where, arity, len(x.Parameters))
	}

	b := &ast.Block{Arity: arity}
	for _, p := range x.Parameters {
		orderText, err := required(p.Order, "parameter", "order")
		if err != nil {
			return nil, err
		}
		order, err := number(orderText, "parameter order", 1)
		if err != nil {
			return nil, err
		}
		name, err := required(p.Name, "parameter", "name")
		if err != nil {
			return nil, err
		}
		b.Parameters = append(b.Parameters, ast.Parameter{Order: order, Name: name})
	}

	for i := range x.Assigns {
		s, err := convertAssign(&x.Assigns[i], where)
		if err != nil {
			return nil, err
		}
		b.Statements = append(b.Statements, s)
	}
	return b, nil
}

func convertAssign(x *xmlAssign, where string) (*ast.Statement, error) {
	orderText, err := required(x.Order, "assign", "order")
	if err != nil {
		return nil, err
	}
	order, err := number(orderText, "assign order", 1)
	if err != nil {
		return nil, err
	}
	if err := noOther(x.Other, where); err != nil {
		return nil, err
	}
	if len(x.Vars) != 1 || len(x.Exprs) != 1 {
		return nil, structuref("%s: assign %d wants one var and one expr", where, order)
	}
	target, err := required(x.Vars[0].Name, "var", "name")
	if err != nil {
		return nil, err
	}

	e, err := convertExpr(&x.Exprs[0], where)
	if err != nil {
		return nil, err
	}
	return &ast.Statement{Order: order, Target: target, Expr: e}, nil
}

func convertExpr(x *xmlExpr, where string) (*ast.Expr, error) {
	if err := noOther(x.Other, where); err != nil {
		return nil, err
	}
	if n := len(x.Literals) + len(x.Vars) + len(x.Blocks) + len(x.Sends); n != 1 {
		return nil, structuref("%s: expr wants exactly one child, have %d", where, n)
	}

	switch {
	case len(x.Literals) == 1:
		l := x.Literals[0]
		class, err := required(l.Class, "literal", "class")
		if err != nil {
			return nil, err
		}
		value, err := required(l.Value, "literal", "value")
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Literal: &ast.Literal{Class: class, Value: value}}, nil

	case len(x.Vars) == 1:
		name, err := required(x.Vars[0].Name, "var", "name")
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Var: name}, nil

	case len(x.Blocks) == 1:
		b, err := convertBlock(&x.Blocks[0], where)
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Block: b}, nil
	}

	s, err := convertSend(&x.Sends[0], where)
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Send: s}, nil
}

func convertSend(x *xmlSend, where string) (*ast.Send, error) {
	selector, err := required(x.Selector, "send", "selector")
	if err != nil {
		return nil, err
	}
	if err := noOther(x.Other, where); err != nil {
		return nil, err
	}
	if len(x.Exprs) != 1 {
		return nil, structuref("%s: send #%s wants one receiver expr, have %d", where, selector, len(x.Exprs))
	}
	if want := ast.SelectorArity(selector); len(x.Args) != want {
		return nil, structuref("%s: send #%s wants %d args, have %d", where, selector, want, len(x.Args))
	}

	recv, err := convertExpr(&x.Exprs[0], where)
	if err != nil {
		return nil, err
	}
	s := &ast.Send{Selector: selector, Args: []*ast.Arg{{Order: 0, Expr: recv}}}

	for _, a := range x.Args {
		orderText, err := required(a.Order, "arg", "order")
		if err != nil {
			return nil, err
		}
		order, err := number(orderText, "arg order", 1)
		if err != nil {
			return nil, err
		}
		if len(a.Exprs) != 1 {
			return nil, structuref("%s: arg %d wants one expr, have %d", where, order, len(a.Exprs))
		}
		e, err := convertExpr(&a.Exprs[0], where)
		if err != nil {
			return nil, err
		}
		s.Args = append(s.Args, &ast.Arg{Order: order, Expr: e})
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Attribute helpers
// ---------------------------------------------------------------------------

func required(attr *string, element, name string) (string, error) {
	if attr == nil {
		return "", structuref("<%s> missing %s attribute", element, name)
	}
	return *attr, nil
}

// number parses a decimal attribute no smaller than least.
func number(text, what string, least int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < least {
		return 0, structuref("invalid %s %q", what, text)
	}
	return n, nil
}

func noOther(other []xmlAny, where string) error {
	if len(other) > 0 {
		return structuref("%s: unexpected element <%s>", where, other[0].XMLName.Local)
	}
	return nil
}

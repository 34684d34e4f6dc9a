package vm

import (
	"strconv"
	"strings"
	"testing"

	"github.com/chazu/sol/pkg/ast"
)

// ---------------------------------------------------------------------------
// AST builders
// ---------------------------------------------------------------------------

func lit(class, value string) *ast.Expr {
	return &ast.Expr{Literal: &ast.Literal{Class: class, Value: value}}
}

func intLit(n int) *ast.Expr { return lit(ast.LiteralInteger, strconv.Itoa(n)) }
func strLit(s string) *ast.Expr { return lit(ast.LiteralString, s) }
func classLit(name string) *ast.Expr { return lit(ast.LiteralClass, name) }
func ref(name string) *ast.Expr { return &ast.Expr{Var: name} }

func send(recv *ast.Expr, selector string, args ...*ast.Expr) *ast.Expr {
	s := &ast.Send{Selector: selector, Args: []*ast.Arg{{Order: 0, Expr: recv}}}
	for i, a := range args {
		s.Args = append(s.Args, &ast.Arg{Order: i + 1, Expr: a})
	}
	return &ast.Expr{Send: s}
}

func stmt(e *ast.Expr) *ast.Statement { return &ast.Statement{Expr: e} }

func assign(target string, e *ast.Expr) *ast.Statement {
	return &ast.Statement{Target: target, Expr: e}
}

func blk(params []string, stmts ...*ast.Statement) *ast.Block {
	b := &ast.Block{Arity: len(params)}
	for i, p := range params {
		b.Parameters = append(b.Parameters, ast.Parameter{Order: i + 1, Name: p})
	}
	for i, s := range stmts {
		s.Order = i + 1
		b.Statements = append(b.Statements, s)
	}
	return b
}

func blockExpr(params []string, stmts ...*ast.Statement) *ast.Expr {
	return &ast.Expr{Block: blk(params, stmts...)}
}

func method(selector string, body *ast.Block) *ast.Method {
	return &ast.Method{Selector: selector, Body: body}
}

func class(name, parent string, methods ...*ast.Method) *ast.Class {
	return &ast.Class{Name: name, Parent: parent, Methods: methods}
}

func program(classes ...*ast.Class) *ast.Program {
	return &ast.Program{Language: "SOL25", Classes: classes}
}

// printExpr is "<e> print".
func printExpr(e *ast.Expr) *ast.Statement {
	return stmt(send(e, "print"))
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	vm     *VM
	stdout *strings.Builder
	stderr *strings.Builder
}

func newHarness(t *testing.T, input string, classes ...*ast.Class) *harness {
	t.Helper()
	h := &harness{stdout: &strings.Builder{}, stderr: &strings.Builder{}}
	h.vm = NewVM(Config{
		Stdout: h.stdout,
		Stderr: h.stderr,
		Stdin:  NewLineReader(strings.NewReader(input)),
	})
	if err := h.vm.Load(program(classes...)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return h
}

// evalMain runs stmts as the body of Main>>run and returns its result.
func evalMain(t *testing.T, stmts ...*ast.Statement) (Value, *harness, error) {
	t.Helper()
	h := newHarness(t, "", class("Main", "Object", method("run", blk(nil, stmts...))))
	v, err := h.vm.Send(ClassRef("Main"), "run")
	return v, h, err
}

// mustEval is evalMain for programs expected to succeed.
func mustEval(t *testing.T, stmts ...*ast.Statement) (*Object, *harness) {
	t.Helper()
	v, h, err := evalMain(t, stmts...)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return h.vm.Box(v), h
}

func expectKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got no error", want)
	}
	if got := KindOf(err); got != want {
		t.Errorf("KindOf(%v) = %s, want %s", err, got, want)
	}
}

// expectPanicKind runs fn and checks that it raises an error of kind want.
func expectPanicKind(t *testing.T, want ErrorKind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		expectKind(t, catch(recover()), want)
	}()
	fn()
}

func intValue(t *testing.T, obj *Object) int64 {
	t.Helper()
	n, ok := obj.Payload().(Int)
	if !ok {
		t.Fatalf("payload of %s = %#v, want Int", obj.ClassName(), obj.Payload())
	}
	return int64(n)
}

func strValue(t *testing.T, obj *Object) string {
	t.Helper()
	s, ok := obj.Payload().(Str)
	if !ok {
		t.Fatalf("payload of %s = %#v, want Str", obj.ClassName(), obj.Payload())
	}
	return string(s)
}

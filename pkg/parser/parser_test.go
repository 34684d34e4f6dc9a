package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/sol/pkg/ast"
)

const helloXML = `<?xml version="1.0" encoding="UTF-8"?>
<program language="SOL25" description="prints 7">
  <class name="Main" parent="Object">
    <method selector="run">
      <block arity="0">
        <assign order="2">
          <var name="_"/>
          <expr>
            <send selector="print">
              <expr><var name="s"/></expr>
            </send>
          </expr>
        </assign>
        <assign order="1">
          <var name="s"/>
          <expr>
            <send selector="asString">
              <expr>
                <send selector="plus:">
                  <expr><literal class="Integer" value="3"/></expr>
                  <arg order="1"><expr><literal class="Integer" value="4"/></expr></arg>
                </send>
              </expr>
            </send>
          </expr>
        </assign>
      </block>
    </method>
  </class>
</program>`

func TestParseHello(t *testing.T) {
	prog, err := ParseBytes([]byte(helloXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prog.Language != "SOL25" || prog.Description != "prints 7" {
		t.Errorf("program attrs = %q %q", prog.Language, prog.Description)
	}
	main := prog.Class("Main")
	if main == nil {
		t.Fatal("Main not parsed")
	}
	if main.Parent != "Object" {
		t.Errorf("Main parent = %q, want Object", main.Parent)
	}
	run := main.Method("run")
	if run == nil {
		t.Fatal("run not parsed")
	}

	stmts := run.Body.Statements
	if len(stmts) != 2 {
		t.Fatalf("statements = %d, want 2", len(stmts))
	}
	// Normalized by order.
	if stmts[0].Order != 1 || stmts[0].Target != "s" {
		t.Errorf("first statement = %d %q, want 1 s", stmts[0].Order, stmts[0].Target)
	}

	asString := stmts[0].Expr.Send
	if asString == nil || asString.Selector != "asString" {
		t.Fatalf("first expr = %+v, want asString send", stmts[0].Expr)
	}
	plus := asString.Args[0].Expr.Send
	if plus == nil || plus.Selector != "plus:" || len(plus.Args) != 2 {
		t.Fatalf("receiver = %+v, want plus: with receiver and one arg", asString.Args[0].Expr)
	}
	if lit := plus.Args[1].Expr.Literal; lit == nil || lit.Class != ast.LiteralInteger || lit.Value != "4" {
		t.Errorf("plus: arg = %+v, want Integer 4", plus.Args[1].Expr)
	}
}

func TestParseBlocksAndParameters(t *testing.T) {
	src := `<program language="SOL25">
  <class name="Main" parent="Object">
    <method selector="with:and:">
      <block arity="2">
        <parameter order="2" name="b"/>
        <parameter order="1" name="a"/>
        <assign order="1">
          <var name="blk"/>
          <expr>
            <block arity="1">
              <parameter order="1" name="x"/>
              <assign order="1"><var name="y"/><expr><var name="x"/></expr></assign>
            </block>
          </expr>
        </assign>
      </block>
    </method>
  </class>
</program>`
	prog, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	body := prog.Class("Main").Method("with:and:").Body
	if got := strings.Join(body.ParameterNames(), ","); got != "a,b" {
		t.Errorf("parameters = %q, want a,b", got)
	}
	inner := body.Statements[0].Expr.Block
	if inner == nil || inner.Arity != 1 || inner.ParameterNames()[0] != "x" {
		t.Fatalf("inner block = %+v", body.Statements[0].Expr)
	}
	if inner.Statements[0].Expr.Var != "x" {
		t.Errorf("inner statement = %+v, want var x", inner.Statements[0].Expr)
	}
}

func TestParseArgumentOrder(t *testing.T) {
	src := `<program language="SOL25">
  <class name="Main" parent="Object">
    <method selector="run">
      <block arity="0">
        <assign order="1">
          <var name="r"/>
          <expr>
            <send selector="startsWith:endsBefore:">
              <arg order="2"><expr><literal class="Integer" value="3"/></expr></arg>
              <expr><literal class="String" value="hello"/></expr>
              <arg order="1"><expr><literal class="Integer" value="1"/></expr></arg>
            </send>
          </expr>
        </assign>
      </block>
    </method>
  </class>
</program>`
	prog, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	args := prog.Class("Main").Method("run").Body.Statements[0].Expr.Send.Args
	want := []string{"hello", "1", "3"}
	for i, a := range args {
		if a.Order != i || a.Expr.Literal.Value != want[i] {
			t.Errorf("arg %d = %d %q, want %d %q", i, a.Order, a.Expr.Literal.Value, i, want[i])
		}
	}
}

func TestParseEntitiesInLiterals(t *testing.T) {
	src := `<program language="SOL25"><class name="Main" parent="Object"><method selector="run"><block arity="0">
<assign order="1"><var name="s"/><expr><literal class="String" value="a&lt;b&apos;c\n"/></expr></assign>
</block></method></class></program>`
	prog, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := prog.Class("Main").Method("run").Body.Statements[0].Expr.Literal.Value
	if got != `a<b'c\n` {
		t.Errorf("literal = %q, want %q", got, `a<b'c\n`)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
	}{
		{"empty", ``, FormatError},
		{"unclosed", `<program language="SOL25">`, FormatError},
		{"mismatched", `<program language="SOL25"></class>`, FormatError},
		{"two roots", `<program language="SOL25"/><program language="SOL25"/>`, FormatError},
		{"wrong root", `<prog language="SOL25"/>`, StructureError},
		{"wrong language", `<program language="SOL26"/>`, StructureError},
		{"unknown child", `<program language="SOL25"><klass/></program>`, StructureError},
		{"class without name", `<program language="SOL25"><class parent="Object"/></program>`, StructureError},
		{"method without block", `<program language="SOL25"><class name="A"><method selector="m"/></class></program>`, StructureError},
		{"bad arity", `<program language="SOL25"><class name="A"><method selector="m"><block arity="x"/></method></class></program>`, StructureError},
		{"arity mismatch", `<program language="SOL25"><class name="A"><method selector="m:"><block arity="1"/></method></class></program>`, StructureError},
		{"bad order", `<program language="SOL25"><class name="A"><method selector="m"><block arity="0">
			<assign order="0"><var name="x"/><expr><var name="y"/></expr></assign></block></method></class></program>`, StructureError},
		{"empty expr", `<program language="SOL25"><class name="A"><method selector="m"><block arity="0">
			<assign order="1"><var name="x"/><expr/></assign></block></method></class></program>`, StructureError},
		{"unknown expr", `<program language="SOL25"><class name="A"><method selector="m"><block arity="0">
			<assign order="1"><var name="x"/><expr><float value="1"/></expr></assign></block></method></class></program>`, StructureError},
		{"send arg count", `<program language="SOL25"><class name="A"><method selector="m"><block arity="0">
			<assign order="1"><var name="x"/><expr><send selector="plus:"><expr><var name="y"/></expr></send></expr></assign></block></method></class></program>`, StructureError},
		{"literal without value", `<program language="SOL25"><class name="A"><method selector="m"><block arity="0">
			<assign order="1"><var name="x"/><expr><literal class="Integer"/></expr></assign></block></method></class></program>`, StructureError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.src))
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want *parser.Error", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("kind = %s, want %s (%v)", perr.Kind, tt.kind, err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.xml")
	if err := os.WriteFile(path, []byte(helloXML), 0o644); err != nil {
		t.Fatal(err)
	}
	prog, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if prog.Class("Main") == nil {
		t.Error("Main not parsed")
	}

	_, err = ParseFile(filepath.Join(dir, "missing.xml"))
	var perr *Error
	if err == nil || errors.As(err, &perr) {
		t.Errorf("missing file error = %v, want a plain I/O error", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error should wrap os.ErrNotExist, got %v", err)
	}
}

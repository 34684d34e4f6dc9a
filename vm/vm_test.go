package vm

import (
	"strings"
	"sync"
	"testing"

	"github.com/chazu/sol/pkg/ast"
)

// ---------------------------------------------------------------------------
// VM bootstrap tests
// ---------------------------------------------------------------------------

func TestNewVM(t *testing.T) {
	vm := NewVM(Config{})
	if vm.Classes == nil {
		t.Fatal("Classes should be initialized")
	}
	if vm.ID == "" {
		t.Error("ID should be set")
	}
	if other := NewVM(Config{}); other.ID == vm.ID {
		t.Error("VM IDs should be unique")
	}
}

func TestVMBootstrapClasses(t *testing.T) {
	vm := NewVM(Config{})

	for _, name := range []string{
		ObjectClassName, IntegerClassName, StringClassName,
		TrueClassName, FalseClassName, NilClassName, BlockClassName,
	} {
		c := vm.Classes.Lookup(name)
		if c == nil {
			t.Errorf("%s class not bootstrapped", name)
			continue
		}
		if name == ObjectClassName {
			if c.Parent != "" {
				t.Errorf("Object parent = %q, want root", c.Parent)
			}
			continue
		}
		if c.Parent != ObjectClassName {
			t.Errorf("%s parent = %q, want Object", name, c.Parent)
		}
	}
	if vm.Classes.Len() != 7 {
		t.Errorf("Len() = %d, want 7", vm.Classes.Len())
	}
}

// ---------------------------------------------------------------------------
// Program runs
// ---------------------------------------------------------------------------

func TestRunPrintsSeven(t *testing.T) {
	h := newHarness(t, "",
		class("Main", "Object", method("run", blk(nil,
			printExpr(send(send(intLit(3), "plus:", intLit(4)), "asString")),
		))),
	)
	if err := h.vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := h.stdout.String(); got != "7" {
		t.Errorf("output = %q, want %q", got, "7")
	}
	if h.stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", h.stderr.String())
	}
}

func TestRunMissingMain(t *testing.T) {
	h := newHarness(t, "",
		class("Helper", "Object", method("run", blk(nil, printExpr(strLit("ran"))))),
	)
	err := h.vm.Run()
	expectKind(t, err, KindMissingEntry)
	if h.stdout.Len() != 0 {
		t.Errorf("stdout = %q, nothing should run", h.stdout.String())
	}
	if !strings.Contains(h.stderr.String(), "Main") {
		t.Errorf("stderr = %q, want a diagnostic naming Main", h.stderr.String())
	}
}

func TestRunMissingRunMethod(t *testing.T) {
	h := newHarness(t, "", class("Main", "Object"))
	expectKind(t, h.vm.Run(), KindDoesNotUnderstand)
}

func TestRunCustomEntry(t *testing.T) {
	out := &strings.Builder{}
	vm := NewVM(Config{Stdout: out, EntryClass: "App", EntrySelector: "start"})
	err := vm.Load(program(
		class("App", "Object", method("start", blk(nil, printExpr(strLit("started"))))),
	))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "started" {
		t.Errorf("output = %q, want %q", got, "started")
	}
}

func TestMainMayInheritRun(t *testing.T) {
	h := newHarness(t, "",
		class("Base", "Object", method("run", blk(nil, printExpr(strLit("inherited"))))),
		class("Main", "Base"),
	)
	if err := h.vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := h.stdout.String(); got != "inherited" {
		t.Errorf("output = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Program assembly
// ---------------------------------------------------------------------------

func TestLoadRejectsCycles(t *testing.T) {
	vm := NewVM(Config{})
	err := vm.Load(program(
		class("A", "B"),
		class("B", "A"),
	))
	expectKind(t, err, KindHierarchy)
}

func TestLoadRejectsBodylessMethod(t *testing.T) {
	vm := NewVM(Config{})
	err := vm.Load(program(class("A", "Object", &ast.Method{Selector: "m"})))
	expectKind(t, err, KindInternal)
}

func TestLoadRejectsNullStatement(t *testing.T) {
	vm := NewVM(Config{})
	err := vm.Load(program(class("Main", "Object", method("run", &ast.Block{
		Statements: []*ast.Statement{nil},
	}))))
	expectKind(t, err, KindInternal)
}

func TestLoadUnknownParentIsDeferred(t *testing.T) {
	h := newHarness(t, "", class("Main", "Missing", method("run", blk(nil))))
	if err := h.vm.Run(); err != nil {
		t.Errorf("Run = %v, own methods still resolve", err)
	}
	_, err := h.vm.Send(ClassRef("Main"), "asString")
	expectKind(t, err, KindDoesNotUnderstand)
}

func TestUserClassReplacesBuiltin(t *testing.T) {
	h := newHarness(t, "",
		class("String", "Object", method("shout", blk(nil, stmt(intLit(1))))),
	)
	v, err := h.vm.Send(ClassRef("String"), "shout")
	if err != nil {
		t.Fatalf("shout: %v", err)
	}
	if got := intValue(t, h.vm.Box(v)); got != 1 {
		t.Errorf("shout = %d", got)
	}
	// The replacement has none of the built-in protocol.
	_, err = h.vm.Send(ClassRef("String"), "print")
	expectKind(t, err, KindDoesNotUnderstand)
}

// ---------------------------------------------------------------------------
// Send API
// ---------------------------------------------------------------------------

func TestSendNatives(t *testing.T) {
	vm := NewVM(Config{})

	v, err := vm.Send(Int(20), "divBy:", Int(4))
	if err != nil {
		t.Fatalf("divBy: %v", err)
	}
	if got := intValue(t, vm.Box(v)); got != 5 {
		t.Errorf("20 divBy: 4 = %d", got)
	}

	if _, err := vm.Send(Int(1), "plus:"); KindOf(err) != KindValue {
		t.Errorf("missing argument err = %v, want value error", err)
	}
	if _, err := vm.Send(ClassRef("Nope"), "new"); KindOf(err) != KindType {
		t.Errorf("unknown class err = %v, want type error", err)
	}
}

func TestStrayPanicIsInternal(t *testing.T) {
	vm := NewVM(Config{})
	vm.Classes.Lookup(ObjectClassName).AddMethod0("boom", func(vm *VM, recv *Object) Value {
		panic("boom")
	})
	_, err := vm.Send(Int(1), "boom")
	expectKind(t, err, KindInternal)
}

func TestIndependentVMs(t *testing.T) {
	var wg sync.WaitGroup
	outputs := make([]string, 8)
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := &strings.Builder{}
			vm := NewVM(Config{Stdout: out})
			err := vm.Load(program(class("Main", "Object", method("run", blk(nil,
				stmt(send(intLit(i+1), "timesRepeat:", blockExpr([]string{"n"},
					printExpr(send(ref("n"), "asString"))))),
			)))))
			if err == nil {
				err = vm.Run()
			}
			if err != nil {
				outputs[i] = err.Error()
				return
			}
			outputs[i] = out.String()
		}(i)
	}
	wg.Wait()

	want := ""
	for i, got := range outputs {
		want += string(rune('1' + i))
		if got != want {
			t.Errorf("vm %d output = %q, want %q", i, got, want)
		}
	}
}

// faultyValue is a Value that Box has no case for.
type faultyValue struct{}

func (faultyValue) isValue() {}

func TestReceiverCoercionFaultIsTypeError(t *testing.T) {
	vm := NewVM(Config{})

	// A nil closure faults inside Box; the fault surfaces as a type error
	// naming the selector.
	var closure *Closure
	_, err := vm.Send(closure, "value")
	expectKind(t, err, KindType)
	if e, ok := err.(*Error); !ok || e.Selector != "value" {
		t.Errorf("err = %#v, want Selector value", err)
	}

	// A value Box does not know is a type error as well.
	_, err = vm.Send(faultyValue{}, "isNil")
	expectKind(t, err, KindType)

	if vm.Depth() != 0 {
		t.Errorf("Depth() = %d after failed coercion, want 0", vm.Depth())
	}
}

type failingWriter struct{}

func (failingWriter) WriteString(string) (int, error) {
	return 0, errWrite
}

var errWrite = &Error{Kind: KindInternal, Message: "sink closed"}

func TestPrintWriteFailure(t *testing.T) {
	vm := NewVM(Config{Stdout: failingWriter{}})
	_, err := vm.Send(Str("x"), "print")
	expectKind(t, err, KindInternal)
}

package vm

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/sol/pkg/ast"
)

var log = commonlog.GetLogger("sol.vm")

// Default entry point.
const (
	DefaultEntryClass    = "Main"
	DefaultEntrySelector = "run"
)

// ---------------------------------------------------------------------------
// VM: one program run
// ---------------------------------------------------------------------------

// Config holds the environment a VM runs against.
type Config struct {
	// Output sinks. Nil sinks discard.
	Stdout io.StringWriter
	Stderr io.StringWriter

	// Stdin feeds String read. Nil means end of input.
	Stdin InputReader

	// Entry point. Empty strings select Main and run.
	EntryClass    string
	EntrySelector string

	// MaxDepth bounds nested sends. 0 means no limit.
	MaxDepth int
}

// VM owns the class table, the True/False/Nil singletons and the I/O
// capabilities of a single program. VMs share nothing, so independent VMs
// may run in parallel.
type VM struct {
	ID      string
	Classes *ClassTable

	stdout io.StringWriter
	stderr io.StringWriter
	stdin  InputReader

	entryClass    string
	entrySelector string

	singletons map[string]*Object
	interp     *Interpreter
}

// NewVM creates a VM with the built-in classes registered.
func NewVM(cfg Config) *VM {
	vm := &VM{
		ID:            uuid.New().String(),
		Classes:       NewClassTable(),
		stdout:        cfg.Stdout,
		stderr:        cfg.Stderr,
		stdin:         cfg.Stdin,
		entryClass:    cfg.EntryClass,
		entrySelector: cfg.EntrySelector,
		singletons:    make(map[string]*Object, 3),
	}
	if vm.stdout == nil {
		vm.stdout = discard{}
	}
	if vm.stderr == nil {
		vm.stderr = discard{}
	}
	if vm.stdin == nil {
		vm.stdin = emptyInput{}
	}
	if vm.entryClass == "" {
		vm.entryClass = DefaultEntryClass
	}
	if vm.entrySelector == "" {
		vm.entrySelector = DefaultEntrySelector
	}
	vm.interp = newInterpreter(vm, cfg.MaxDepth)

	vm.bootstrap()
	return vm
}

type discard struct{}

func (discard) WriteString(s string) (int, error) { return len(s), nil }

// ---------------------------------------------------------------------------
// Bootstrap: built-in classes
// ---------------------------------------------------------------------------

func (vm *VM) bootstrap() {
	vm.Classes.Register(NewClass(ObjectClassName, ""))
	for _, name := range []string{
		IntegerClassName,
		StringClassName,
		TrueClassName,
		FalseClassName,
		NilClassName,
		BlockClassName,
	} {
		vm.Classes.Register(NewClass(name, ObjectClassName))
	}

	vm.registerObjectPrimitives()
	vm.registerIntegerPrimitives()
	vm.registerStringPrimitives()
	vm.registerBooleanPrimitives()
	vm.registerNilPrimitives()
	vm.registerBlockPrimitives()
}

// ---------------------------------------------------------------------------
// Program assembly and execution
// ---------------------------------------------------------------------------

// Load adds the classes of prog to the class table. A user class with the
// name of a built-in replaces it. Load fails if the resulting hierarchy
// contains a cycle.
func (vm *VM) Load(prog *ast.Program) error {
	if prog == nil {
		return &Error{Kind: KindInternal, Message: "nil program"}
	}
	if err := prog.Check(); err != nil {
		return &Error{Kind: KindInternal, Message: fmt.Sprintf("malformed program: %v", err)}
	}
	prog.Normalize()

	for _, decl := range prog.Classes {
		class := NewClass(decl.Name, decl.Parent)
		for _, m := range decl.Methods {
			class.AddMethod(NewUserMethod(m.Selector, m.Body))
		}
		if old := vm.Classes.Register(class); old != nil {
			log.Warningf("class %s replaces an existing definition", decl.Name)
		}
		log.Debugf("loaded class %s: %s", class, strings.Join(class.Selectors(), " "))
	}
	if err := vm.Classes.Validate(); err != nil {
		return err
	}
	log.Infof("loaded %d classes (%d total)", len(prog.Classes), vm.Classes.Len())
	return nil
}

// Run instantiates the entry class and sends it the entry selector. Any
// fatal error aborts the run; a one-line diagnostic is written to stderr and
// the error is returned.
func (vm *VM) Run() (err error) {
	defer func() {
		if err != nil {
			log.Errorf("run %s failed: %s", vm.ID, err)
			vm.stderr.WriteString(err.Error() + "\n")
		}
	}()

	if !vm.Classes.Has(vm.entryClass) {
		return &Error{Kind: KindMissingEntry, Message: fmt.Sprintf("class %s not found", vm.entryClass)}
	}
	entry := vm.Classes.Lookup(vm.entryClass)
	log.Infof("run %s: %s>>%s", vm.ID, vm.entryClass, vm.entrySelector)

	if _, err = vm.Send(vm.instantiate(entry), vm.entrySelector); err != nil {
		return err
	}
	log.Infof("run %s finished", vm.ID)
	return nil
}

// Send sends selector to receiver with args and returns the result. Fatal
// errors raised during evaluation are returned as *Error.
func (vm *VM) Send(receiver Value, selector string, args ...Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = catch(r)
		}
	}()
	return vm.interp.send(receiver, selector, args), nil
}

// Depth returns the number of sends currently active.
func (vm *VM) Depth() int {
	return vm.interp.depth
}

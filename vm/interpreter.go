package vm

import (
	"fmt"
	"strings"

	"github.com/chazu/sol/pkg/ast"
)

// ---------------------------------------------------------------------------
// Interpreter: tree-walking evaluator
// ---------------------------------------------------------------------------

// Interpreter walks method and block bodies. The Go call stack mirrors the
// message-send nesting; depth counts active sends.
type Interpreter struct {
	vm       *VM
	depth    int
	maxDepth int // 0 = unbounded
}

func newInterpreter(vm *VM, maxDepth int) *Interpreter {
	return &Interpreter{vm: vm, maxDepth: maxDepth}
}

// execute runs the statements of block in act and returns the value of the
// last one, or the Nil singleton for an empty block. Statements must already
// be in declared order (see ast.Program.Normalize).
func (i *Interpreter) execute(act *Activation, block *ast.Block) Value {
	var result Value = i.vm.Nil()
	for _, stmt := range block.Statements {
		result = i.evalStatement(act, stmt)
	}
	return result
}

func (i *Interpreter) evalStatement(act *Activation, stmt *ast.Statement) Value {
	v := i.eval(act, stmt.Expr)
	if stmt.Target != "" {
		act.Set(stmt.Target, v)
	}
	return v
}

// eval evaluates a single expression.
func (i *Interpreter) eval(act *Activation, e *ast.Expr) Value {
	switch e.Kind() {
	case ast.ExprLiteral:
		return i.evalLiteral(e.Literal)
	case ast.ExprVar:
		return i.evalVar(act, e.Var)
	case ast.ExprBlock:
		return &Closure{Block: e.Block, Self: act.Self}
	case ast.ExprSend:
		return i.evalSend(act, e.Send)
	}
	raise(KindInternal, "malformed expression")
	return nil
}

// ---------------------------------------------------------------------------
// Literals and variables
// ---------------------------------------------------------------------------

func (i *Interpreter) evalLiteral(lit *ast.Literal) Value {
	switch lit.Class {
	case ast.LiteralInteger:
		n, ok := parseInteger(lit.Value)
		if !ok {
			raise(KindValue, "invalid integer literal %q", lit.Value)
		}
		return i.vm.NewInteger(n)
	case ast.LiteralString:
		return i.vm.NewString(Unescape(lit.Value))
	case ast.LiteralTrue:
		return i.vm.Bool(true)
	case ast.LiteralFalse:
		return i.vm.Bool(false)
	case ast.LiteralNil:
		return i.vm.Nil()
	case ast.LiteralClass:
		return ClassRef(lit.Value)
	}
	raise(KindType, "unknown literal class %s", lit.Class)
	return nil
}

// Unescape resolves string literal escapes: \n, \\ and \'. Any other
// escaped character is emitted without its backslash; a trailing lone
// backslash is kept.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for j := 0; j < len(s); j++ {
		c := s[j]
		if c != '\\' || j == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		j++
		switch s[j] {
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[j])
		}
	}
	return b.String()
}

func (i *Interpreter) evalVar(act *Activation, name string) Value {
	if name == "nil" {
		return i.vm.Nil()
	}
	v, ok := act.Lookup(name)
	if !ok {
		raise(KindValue, "undefined variable %s", name)
	}
	return v
}

// ---------------------------------------------------------------------------
// Message sends
// ---------------------------------------------------------------------------

func (i *Interpreter) evalSend(act *Activation, s *ast.Send) Value {
	if len(s.Args) == 0 {
		raise(KindInternal, "send #%s has no receiver", s.Selector)
	}
	args := make([]Value, len(s.Args))
	for j, a := range s.Args {
		args[j] = i.eval(act, a.Expr)
	}

	// Class-side constructors on a bare class name.
	if ref, ok := args[0].(ClassRef); ok {
		switch s.Selector {
		case "new":
			fresh := i.vm.instantiate(i.vm.mustClass(string(ref)))
			return i.send(fresh, "new", nil)
		case "from:":
			class := i.vm.mustClass(string(ref))
			return i.vm.instantiateFrom(class, argAt(args[1:], 0, s.Selector))
		}
	}
	return i.send(args[0], s.Selector, args[1:])
}

// send dispatches selector to receiver.
func (i *Interpreter) send(receiver Value, selector string, args []Value) Value {
	recv := i.coerceReceiver(receiver, selector)

	if i.maxDepth > 0 && i.depth >= i.maxDepth {
		raise(KindInternal, "call depth limit %d exceeded sending #%s", i.maxDepth, selector)
	}
	i.depth++
	defer func() { i.depth-- }()

	method, owner := i.vm.Classes.FindMethod(recv.class, selector)
	if method == nil {
		return i.attributeProtocol(recv, selector, args)
	}

	self := recv.Self()
	if method.IsNative() {
		if method.Wildcard != nil {
			return method.Wildcard(i.vm, self, selector, args)
		}
		return method.Native(i.vm, self, args)
	}
	return i.invoke(self, recv.class, owner, method, args)
}

// coerceReceiver boxes the receiver. Host panics raised while doing so are
// reported as type errors.
func (i *Interpreter) coerceReceiver(receiver Value, selector string) (recv *Object) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				panic(e)
			}
			panic(&Error{
				Kind:     KindType,
				Message:  fmt.Sprintf("cannot convert receiver for #%s: %v", selector, r),
				Selector: selector,
			})
		}
	}()
	return i.vm.Box(receiver)
}

// invoke runs a user-defined method. super is bound to a view of self that
// dispatches from the parent of the receiver's class; for a send through a
// super view that is the view's class, so each super send climbs one level.
func (i *Interpreter) invoke(self *Object, class, owner *Class, method *Method, args []Value) Value {
	var super *Object
	if parent := i.vm.Classes.ParentOf(class); parent != nil {
		super = self.superView(parent)
	}
	log.Debugf("invoke %s>>%s on %s", owner.Name, method.Selector, self.ClassName())
	act := i.vm.newActivation(self, super, method.Body.ParameterNames(), args)
	return i.execute(act, method.Body)
}

// attributeProtocol is the fallback when no method resolves: "name:" with
// an argument sets an attribute and answers the receiver, "name" answers an
// existing attribute.
func (i *Interpreter) attributeProtocol(recv *Object, selector string, args []Value) Value {
	self := recv.Self()
	colons := strings.Count(selector, ":")
	switch {
	case colons == 1 && strings.HasSuffix(selector, ":") && len(args) >= 1:
		name := strings.TrimSuffix(selector, ":")
		log.Debugf("attribute set %s.%s", self.ClassName(), name)
		self.attrs[name] = args[0]
		return self
	case colons == 0:
		if v, ok := self.attrs[selector]; ok {
			log.Debugf("attribute get %s.%s", self.ClassName(), selector)
			return v
		}
	}
	log.Debugf("#%s not found along %s", selector, strings.Join(i.vm.Classes.Chain(recv.class), " -> "))
	raiseDNU(recv.ClassName(), selector)
	return nil
}

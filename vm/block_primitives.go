package vm

import "github.com/chazu/sol/pkg/ast"

// ---------------------------------------------------------------------------
// Block Primitives
// ---------------------------------------------------------------------------

func (vm *VM) registerBlockPrimitives() {
	c := vm.Classes.Lookup(BlockClassName)

	// value, value:, value:value:, ... all land here; the selector's colon
	// count must match the block's arity.
	c.SetWildcard(func(vm *VM, recv *Object, selector string, args []Value) Value {
		closure := closureOf(recv)
		if closure == nil {
			raiseDNU(recv.ClassName(), selector)
		}
		if n := ast.SelectorArity(selector); n != closure.Arity() || len(args) != n {
			raiseDNU(recv.ClassName(), selector)
		}
		return closure.call(vm, args)
	})

	// The receiver is re-evaluated before every iteration; the loop ends as
	// soon as it answers anything but True.
	c.AddMethod1("whileTrue:", func(vm *VM, recv *Object, body Value) Value {
		for vm.isTrue(vm.interp.send(recv, "value", nil)) {
			vm.interp.send(body, "value", nil)
		}
		return vm.Nil()
	})

	c.AddMethod0("isBlock", func(vm *VM, recv *Object) Value {
		return vm.Bool(true)
	})
}

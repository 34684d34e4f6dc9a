package vm

// ---------------------------------------------------------------------------
// True / False Primitives
// ---------------------------------------------------------------------------

func (vm *VM) registerBooleanPrimitives() {
	for _, name := range []string{TrueClassName, FalseClassName} {
		c := vm.Classes.Lookup(name)

		// Instance creation always answers the singleton.
		c.AddMethod0("new", func(vm *VM, recv *Object) Value {
			return vm.instantiate(recv.class)
		})

		c.AddMethod1("from:", func(vm *VM, recv *Object, _ Value) Value {
			return vm.instantiate(recv.class)
		})

		// Logic
		c.AddMethod0("not", func(vm *VM, recv *Object) Value {
			return vm.Bool(!recv.Inherits(TrueClassName))
		})

		// and: evaluates its block only when the receiver is True.
		c.AddMethod1("and:", func(vm *VM, recv *Object, block Value) Value {
			if !recv.Inherits(TrueClassName) {
				return vm.Bool(false)
			}
			return vm.booleanResult(vm.interp.send(block, "value", nil))
		})

		// or: evaluates its block only when the receiver is False.
		c.AddMethod1("or:", func(vm *VM, recv *Object, block Value) Value {
			if recv.Inherits(TrueClassName) {
				return recv
			}
			return vm.booleanResult(vm.interp.send(block, "value", nil))
		})

		// Only the selected branch is evaluated.
		c.AddMethod2("ifTrue:ifFalse:", func(vm *VM, recv *Object, ifTrue, ifFalse Value) Value {
			if recv.Inherits(TrueClassName) {
				return vm.interp.send(ifTrue, "value", nil)
			}
			return vm.interp.send(ifFalse, "value", nil)
		})
	}
}

// booleanResult passes True and False through and turns anything else into
// False.
func (vm *VM) booleanResult(v Value) Value {
	obj := vm.Box(v)
	if obj.Inherits(TrueClassName) || obj.Inherits(FalseClassName) {
		return obj
	}
	return vm.Bool(false)
}

// ---------------------------------------------------------------------------
// Nil Primitives
// ---------------------------------------------------------------------------

func (vm *VM) registerNilPrimitives() {
	c := vm.Classes.Lookup(NilClassName)

	c.AddMethod0("new", func(vm *VM, recv *Object) Value {
		return vm.Nil()
	})

	c.AddMethod1("from:", func(vm *VM, recv *Object, _ Value) Value {
		return vm.Nil()
	})

	c.AddMethod0("asString", func(vm *VM, recv *Object) Value {
		return vm.NewString("nil")
	})

	c.AddMethod0("isNil", func(vm *VM, recv *Object) Value {
		return vm.Bool(true)
	})
}

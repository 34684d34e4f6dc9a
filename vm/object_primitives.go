package vm

// ---------------------------------------------------------------------------
// Object Primitives (root class)
// ---------------------------------------------------------------------------

func (vm *VM) registerObjectPrimitives() {
	c := vm.Classes.Lookup(ObjectClassName)

	// Instance creation
	c.AddMethod0("new", func(vm *VM, recv *Object) Value {
		return vm.instantiate(recv.class)
	})

	c.AddMethod1("from:", func(vm *VM, recv *Object, arg Value) Value {
		return vm.instantiateFrom(recv.class, arg)
	})

	// Comparison
	c.AddMethod1("identicalTo:", func(vm *VM, recv *Object, arg Value) Value {
		return vm.Bool(vm.identical(recv, vm.Box(arg)))
	})

	c.AddMethod1("equalTo:", func(vm *VM, recv *Object, arg Value) Value {
		other := vm.Box(arg)
		if kind, ok := vm.singletonKind(recv); ok {
			otherKind, _ := vm.singletonKind(other)
			return vm.Bool(kind == otherKind)
		}
		if _, ok := vm.singletonKind(other); ok {
			return vm.Bool(false)
		}
		if !recv.HasAttrs() || !other.HasAttrs() {
			return vm.Bool(vm.identical(recv, other))
		}
		a, _ := recv.Attr(valueAttr)
		b, _ := other.Attr(valueAttr)
		return vm.Bool(valuesEqual(a, b))
	})

	// Conversion
	c.AddMethod0("asString", func(vm *VM, recv *Object) Value {
		return vm.NewString("")
	})

	// Type tests
	c.AddMethod0("isNumber", func(vm *VM, recv *Object) Value {
		return vm.Bool(false)
	})

	c.AddMethod0("isString", func(vm *VM, recv *Object) Value {
		return vm.Bool(false)
	})

	c.AddMethod0("isBlock", func(vm *VM, recv *Object) Value {
		return vm.Bool(false)
	})

	c.AddMethod0("isNil", func(vm *VM, recv *Object) Value {
		return vm.Bool(recv.Inherits(NilClassName))
	})
}

// singletonKind reports which of True, False or Nil obj's class descends from.
func (vm *VM) singletonKind(obj *Object) (string, bool) {
	for _, name := range []string{NilClassName, TrueClassName, FalseClassName} {
		if obj.Inherits(name) {
			return name, true
		}
	}
	return "", false
}

// identical is object identity, except that two instances of the same
// singleton kind are always identical.
func (vm *VM) identical(a, b *Object) bool {
	if ka, ok := vm.singletonKind(a); ok {
		kb, _ := vm.singletonKind(b)
		return ka == kb
	}
	return a.Self() == b.Self()
}

package vm

import "strconv"

// ---------------------------------------------------------------------------
// Integer Primitives
// ---------------------------------------------------------------------------

func (vm *VM) registerIntegerPrimitives() {
	c := vm.Classes.Lookup(IntegerClassName)

	// Comparison
	c.AddMethod1("equalTo:", func(vm *VM, recv *Object, arg Value) Value {
		if obj, ok := arg.(*Object); ok && !obj.Inherits(IntegerClassName) {
			return vm.Bool(false)
		}
		n, ok := vm.intOperand(arg)
		return vm.Bool(ok && n == selfInt(recv))
	})

	c.AddMethod1("greaterThan:", func(vm *VM, recv *Object, arg Value) Value {
		return vm.Bool(selfInt(recv) > vm.mustIntOperand(arg, "greaterThan:"))
	})

	// Arithmetic
	c.AddMethod1("plus:", func(vm *VM, recv *Object, arg Value) Value {
		return vm.NewInteger(selfInt(recv) + vm.mustIntOperand(arg, "plus:"))
	})

	c.AddMethod1("minus:", func(vm *VM, recv *Object, arg Value) Value {
		return vm.NewInteger(selfInt(recv) - vm.mustIntOperand(arg, "minus:"))
	})

	c.AddMethod1("multiplyBy:", func(vm *VM, recv *Object, arg Value) Value {
		return vm.NewInteger(selfInt(recv) * vm.mustIntOperand(arg, "multiplyBy:"))
	})

	c.AddMethod1("divBy:", func(vm *VM, recv *Object, arg Value) Value {
		d := vm.mustIntOperand(arg, "divBy:")
		if d == 0 {
			raise(KindValue, "division by zero")
		}
		return vm.NewInteger(selfInt(recv) / d)
	})

	// Conversion
	c.AddMethod0("asString", func(vm *VM, recv *Object) Value {
		return vm.NewString(strconv.FormatInt(selfInt(recv), 10))
	})

	c.AddMethod0("asInteger", func(vm *VM, recv *Object) Value {
		return recv
	})

	// Iteration
	c.AddMethod1("timesRepeat:", func(vm *VM, recv *Object, block Value) Value {
		var result Value = vm.Nil()
		for i := int64(1); i <= selfInt(recv); i++ {
			result = vm.interp.send(block, "value:", []Value{vm.NewInteger(i)})
		}
		return result
	})

	// Type tests
	c.AddMethod0("isNumber", func(vm *VM, recv *Object) Value {
		return vm.Bool(true)
	})
}

// selfInt returns the integer payload of an Integer instance, or 0 when the
// payload is missing or not integral.
func selfInt(recv *Object) int64 {
	n, _ := toInt(recv.Payload())
	return n
}

// intOperand extracts an integer from an Integer instance or a bare native
// value.
func (vm *VM) intOperand(arg Value) (int64, bool) {
	switch x := arg.(type) {
	case *Object:
		if !x.Inherits(IntegerClassName) {
			return 0, false
		}
		return toInt(x.Payload())
	case Int, Str:
		return toInt(x)
	}
	return 0, false
}

// mustIntOperand is intOperand for arithmetic: anything that is not an
// integer is a value error.
func (vm *VM) mustIntOperand(arg Value, selector string) int64 {
	n, ok := vm.intOperand(arg)
	if !ok {
		raise(KindValue, "#%s expects an Integer argument", selector)
	}
	return n
}

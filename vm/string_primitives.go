package vm

// ---------------------------------------------------------------------------
// String Primitives
// ---------------------------------------------------------------------------

func (vm *VM) registerStringPrimitives() {
	c := vm.Classes.Lookup(StringClassName)

	// I/O
	c.AddMethod0("read", func(vm *VM, recv *Object) Value {
		line, ok := vm.stdin.ReadString()
		if !ok {
			return vm.Nil()
		}
		return vm.NewString(line)
	})

	c.AddMethod0("print", func(vm *VM, recv *Object) Value {
		writeString(vm.stdout, payloadText(recv.Payload()))
		return recv
	})

	// Comparison
	c.AddMethod1("equalTo:", func(vm *VM, recv *Object, arg Value) Value {
		other := arg
		if obj, ok := arg.(*Object); ok {
			other = obj.Payload()
		}
		s, ok := other.(Str)
		return vm.Bool(ok && string(s) == selfString(recv))
	})

	// Conversion
	c.AddMethod0("asString", func(vm *VM, recv *Object) Value {
		return recv
	})

	c.AddMethod0("asInteger", func(vm *VM, recv *Object) Value {
		n, ok := parseInteger(selfString(recv))
		if !ok {
			return vm.Nil()
		}
		return vm.NewInteger(n)
	})

	// Manipulation
	c.AddMethod1("concatenateWith:", func(vm *VM, recv *Object, arg Value) Value {
		obj, ok := arg.(*Object)
		if !ok || !obj.Inherits(StringClassName) {
			if s, native := arg.(Str); native {
				return vm.NewString(selfString(recv) + string(s))
			}
			return vm.Nil()
		}
		return vm.NewString(selfString(recv) + selfString(obj))
	})

	// startsWith: is 1-based inclusive, endsBefore: 1-based exclusive.
	c.AddMethod2("startsWith:endsBefore:", func(vm *VM, recv *Object, from, to Value) Value {
		start, _ := vm.intOperand(from)
		end, _ := vm.intOperand(to)
		if start <= 0 || end <= 0 {
			return vm.Nil()
		}
		if end <= start {
			return vm.NewString("")
		}
		runes := []rune(selfString(recv))
		lo, hi := start-1, end-1
		if lo > int64(len(runes)) {
			lo = int64(len(runes))
		}
		if hi > int64(len(runes)) {
			hi = int64(len(runes))
		}
		return vm.NewString(string(runes[lo:hi]))
	})

	// Type tests
	c.AddMethod0("isString", func(vm *VM, recv *Object) Value {
		return vm.Bool(true)
	})
}

// selfString returns the text payload of a String instance.
func selfString(recv *Object) string {
	if s, ok := recv.Payload().(Str); ok {
		return string(s)
	}
	return ""
}

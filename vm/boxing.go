package vm

import "strconv"

// ---------------------------------------------------------------------------
// Boxing: native payloads <-> object instances
// ---------------------------------------------------------------------------

// Box converts any value into an object instance:
//   - Int, Str become fresh Integer/String instances with a "value" payload
//   - Bool, Nil become the per-VM True/False/Nil singletons
//   - a closure becomes its (cached) Block instance
//   - a class reference becomes a fresh instance of the named class
//
// An unknown class is a type error.
func (vm *VM) Box(v Value) *Object {
	switch x := v.(type) {
	case *Object:
		return x
	case Int:
		return vm.newBoxed(IntegerClassName, x)
	case Str:
		return vm.newBoxed(StringClassName, x)
	case Bool:
		if x {
			return vm.singleton(TrueClassName)
		}
		return vm.singleton(FalseClassName)
	case Nil, nil:
		return vm.singleton(NilClassName)
	case *Closure:
		if x.box == nil {
			x.box = vm.newBoxed(BlockClassName, x)
			x.box.attrs[blockAttr] = x
		}
		return x.box
	case ClassRef:
		return vm.instantiate(vm.mustClass(string(x)))
	}
	raise(KindType, "cannot box value of type %T", v)
	return nil
}

// NewInteger boxes a native integer.
func (vm *VM) NewInteger(n int64) *Object {
	return vm.newBoxed(IntegerClassName, Int(n))
}

// NewString boxes a native string.
func (vm *VM) NewString(s string) *Object {
	return vm.newBoxed(StringClassName, Str(s))
}

// Bool returns the True or False singleton.
func (vm *VM) Bool(b bool) *Object {
	return vm.Box(Bool(b))
}

// Nil returns the Nil singleton.
func (vm *VM) Nil() *Object {
	return vm.singleton(NilClassName)
}

func (vm *VM) newBoxed(className string, payload Value) *Object {
	obj := newObject(vm, vm.mustClass(className))
	obj.attrs[valueAttr] = payload
	return obj
}

// mustClass looks up a class or raises a type error.
func (vm *VM) mustClass(name string) *Class {
	c := vm.Classes.Lookup(name)
	if c == nil {
		raise(KindType, "class %s not found", name)
	}
	return c
}

// ---------------------------------------------------------------------------
// Flyweight singletons
// ---------------------------------------------------------------------------

func isSingletonClass(name string) bool {
	return name == TrueClassName || name == FalseClassName || name == NilClassName
}

// singleton returns the one instance of True, False or Nil for this VM,
// creating it on first use.
func (vm *VM) singleton(name string) *Object {
	if obj, ok := vm.singletons[name]; ok {
		return obj
	}
	obj := newObject(vm, vm.mustClass(name))
	switch name {
	case TrueClassName:
		obj.attrs[valueAttr] = Bool(true)
	case FalseClassName:
		obj.attrs[valueAttr] = Bool(false)
	default:
		obj.attrs[valueAttr] = Nil{}
	}
	vm.singletons[name] = obj
	return obj
}

// isTrue reports whether v is the True singleton (or boxes to it).
func (vm *VM) isTrue(v Value) bool {
	return vm.Box(v) == vm.singleton(TrueClassName)
}

// ---------------------------------------------------------------------------
// Instantiation
// ---------------------------------------------------------------------------

// instantiate creates an instance of class. True, False and Nil yield their
// singletons; Integer and String descendants start with a zero payload.
func (vm *VM) instantiate(class *Class) *Object {
	if isSingletonClass(class.Name) {
		return vm.singleton(class.Name)
	}
	obj := newObject(vm, class)
	switch {
	case vm.Classes.Inherits(class, IntegerClassName):
		obj.attrs[valueAttr] = Int(0)
	case vm.Classes.Inherits(class, StringClassName):
		obj.attrs[valueAttr] = Str("")
	}
	return obj
}

// instantiateFrom creates an instance of class seeded from arg. A boxed
// argument contributes its payload. Integer descendants require an integral
// value.
func (vm *VM) instantiateFrom(class *Class, arg Value) *Object {
	if isSingletonClass(class.Name) {
		return vm.singleton(class.Name)
	}
	payload := arg
	if obj, ok := arg.(*Object); ok {
		if p, has := obj.attrs[valueAttr]; has && IsNative(p) {
			payload = p
		}
	}
	if vm.Classes.Inherits(class, IntegerClassName) {
		n, ok := toInt(payload)
		if !ok {
			raise(KindValue, "cannot create %s from non-numeric value", class.Name)
		}
		payload = Int(n)
	}
	obj := newObject(vm, class)
	obj.attrs[valueAttr] = payload
	return obj
}

// ---------------------------------------------------------------------------
// Payload coercion
// ---------------------------------------------------------------------------

// toInt extracts an integer from a native Int or an integral Str.
func toInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case Int:
		return int64(x), true
	case Str:
		return parseInteger(string(x))
	}
	return 0, false
}

// parseInteger parses an optionally signed decimal integer. Surrounding
// whitespace is not numeric and makes the text invalid.
func parseInteger(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

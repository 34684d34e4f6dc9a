package vm

// ---------------------------------------------------------------------------
// Activation: execution state for one method or block invocation
// ---------------------------------------------------------------------------

// Activation is the frame of a single method or block invocation. Every call
// gets a fresh variable map, so recursive and nested invocations never see
// each other's bindings.
type Activation struct {
	Self       *Object
	Super      *Object // nil when the receiver's class has no parent, and in blocks
	Args       []Value
	Parameters []string
	vars       map[string]Value
}

// newActivation binds parameters to arguments (missing arguments bind to
// the Nil singleton) and seeds the pseudo-variables.
func (vm *VM) newActivation(self, super *Object, params []string, args []Value) *Activation {
	a := &Activation{
		Self:       self,
		Super:      super,
		Args:       args,
		Parameters: params,
		vars:       make(map[string]Value, len(params)+5),
	}
	for i, name := range params {
		if i < len(args) && args[i] != nil {
			a.vars[name] = args[i]
		} else {
			a.vars[name] = vm.Nil()
		}
	}
	a.vars["self"] = self
	a.vars["true"] = vm.Bool(true)
	a.vars["false"] = vm.Bool(false)
	a.vars["nil"] = vm.Nil()
	if super != nil {
		a.vars["super"] = super
	}
	return a
}

// Lookup returns the binding for name.
func (a *Activation) Lookup(name string) (Value, bool) {
	v, ok := a.vars[name]
	return v, ok
}

// Set binds name for the rest of this activation.
func (a *Activation) Set(name string, v Value) {
	a.vars[name] = v
}

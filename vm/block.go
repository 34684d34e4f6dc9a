package vm

import "github.com/chazu/sol/pkg/ast"

// Closure is an evaluated block literal: the block descriptor plus the
// receiver of the activation that evaluated it. Only self is captured;
// invoking the closure starts a brand-new activation.
type Closure struct {
	Block *ast.Block
	Self  *Object
	box   *Object // Block instance, created on first Box
}

// Arity returns the number of parameters the block declares.
func (c *Closure) Arity() int {
	return c.Block.Arity
}

// call invokes the closure with args in a fresh activation whose self is
// the captured receiver.
func (c *Closure) call(vm *VM, args []Value) Value {
	act := vm.newActivation(c.Self, nil, c.Block.ParameterNames(), args)
	return vm.interp.execute(act, c.Block)
}

// closureOf returns the closure carried by a boxed Block, or nil.
func closureOf(v Value) *Closure {
	switch x := v.(type) {
	case *Closure:
		return x
	case *Object:
		if c, ok := x.attrs[blockAttr].(*Closure); ok {
			return c
		}
	}
	return nil
}

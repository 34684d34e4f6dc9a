package vm

import "github.com/chazu/sol/pkg/ast"

// Method is a resolved method. Exactly one of Native, Wildcard or Body is set.
//
// Native handlers implement built-in behaviour. The Wildcard handler serves
// the whole value/value:/value:value:... family on Block and additionally
// receives the selector so it can recover the requested arity. Body is the
// block of a user-defined method.
type Method struct {
	Selector string
	Native   NativeFunc
	Wildcard WildcardFunc
	Body     *ast.Block
}

// NativeFunc implements a built-in method. recv is never a super view.
type NativeFunc func(vm *VM, recv *Object, args []Value) Value

// WildcardFunc implements a selector family.
type WildcardFunc func(vm *VM, recv *Object, selector string, args []Value) Value

// Method0Func is a native taking no arguments.
type Method0Func func(vm *VM, recv *Object) Value

// Method1Func is a native taking one argument.
type Method1Func func(vm *VM, recv *Object, arg Value) Value

// Method2Func is a native taking two arguments.
type Method2Func func(vm *VM, recv *Object, arg1, arg2 Value) Value

// IsNative reports whether m is implemented in Go.
func (m *Method) IsNative() bool {
	return m.Native != nil || m.Wildcard != nil
}

// Arity returns the number of arguments m takes.
func (m *Method) Arity() int {
	return ast.SelectorArity(m.Selector)
}

// ---------------------------------------------------------------------------
// Factory functions
// ---------------------------------------------------------------------------

// NewNativeMethod creates a variable-arity native method.
func NewNativeMethod(selector string, fn NativeFunc) *Method {
	return &Method{Selector: selector, Native: fn}
}

// NewMethod0 creates a zero-argument native method.
func NewMethod0(selector string, fn Method0Func) *Method {
	return NewNativeMethod(selector, func(vm *VM, recv *Object, args []Value) Value {
		return fn(vm, recv)
	})
}

// NewMethod1 creates a one-argument native method. A missing argument is a
// value error.
func NewMethod1(selector string, fn Method1Func) *Method {
	return NewNativeMethod(selector, func(vm *VM, recv *Object, args []Value) Value {
		return fn(vm, recv, argAt(args, 0, selector))
	})
}

// NewMethod2 creates a two-argument native method.
func NewMethod2(selector string, fn Method2Func) *Method {
	return NewNativeMethod(selector, func(vm *VM, recv *Object, args []Value) Value {
		return fn(vm, recv, argAt(args, 0, selector), argAt(args, 1, selector))
	})
}

// NewUserMethod creates a method from a parsed body block.
func NewUserMethod(selector string, body *ast.Block) *Method {
	return &Method{Selector: selector, Body: body}
}

func argAt(args []Value, i int, selector string) Value {
	if i >= len(args) || args[i] == nil {
		raise(KindValue, "missing argument %d for #%s", i+1, selector)
	}
	return args[i]
}

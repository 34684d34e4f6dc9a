package vm

import "sort"

// Object is an instance of a class.
//
// Attributes are a string-keyed map shared by reference: boxed primitives
// keep their native payload under "value", closures under "block", and user
// objects grow attributes through the generic setter protocol.
//
// A super view is an Object whose class is the parent of the defining class
// but whose attributes and origin are those of the real receiver.
type Object struct {
	class  *Class
	attrs  map[string]Value
	vm     *VM
	origin *Object // non-nil for super views
}

// newObject creates an empty instance of class owned by vm.
func newObject(vm *VM, class *Class) *Object {
	return &Object{class: class, attrs: make(map[string]Value), vm: vm}
}

// superView returns a view of obj that dispatches starting at class.
func (obj *Object) superView(class *Class) *Object {
	return &Object{class: class, attrs: obj.attrs, vm: obj.vm, origin: obj.Self()}
}

// Class returns the class used for dispatch.
func (obj *Object) Class() *Class {
	return obj.class
}

// ClassName returns the name of the object's class.
func (obj *Object) ClassName() string {
	if obj.class == nil {
		return "?"
	}
	return obj.class.Name
}

// VM returns the owning VM.
func (obj *Object) VM() *VM {
	return obj.vm
}

// Self returns the real receiver behind a super view, or obj itself.
func (obj *Object) Self() *Object {
	if obj.origin != nil {
		return obj.origin
	}
	return obj
}

// ---------------------------------------------------------------------------
// Attribute access
// ---------------------------------------------------------------------------

// Attr returns the named attribute.
func (obj *Object) Attr(name string) (Value, bool) {
	v, ok := obj.attrs[name]
	return v, ok
}

// SetAttr sets the named attribute.
func (obj *Object) SetAttr(name string, v Value) {
	obj.attrs[name] = v
}

// HasAttrs reports whether the object carries any attributes.
func (obj *Object) HasAttrs() bool {
	return len(obj.attrs) > 0
}

// AttrNames returns the attribute names in sorted order.
func (obj *Object) AttrNames() []string {
	names := make([]string, 0, len(obj.attrs))
	for name := range obj.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Payload returns the native value stored under "value", or Nil.
func (obj *Object) Payload() Value {
	if v, ok := obj.attrs[valueAttr]; ok && v != nil {
		return v
	}
	return Nil{}
}

// Inherits reports whether the object's class is, or descends from, name.
func (obj *Object) Inherits(name string) bool {
	return obj.vm.Classes.Inherits(obj.class, name)
}

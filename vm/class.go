package vm

import (
	"sort"
	"strings"
)

// Reserved class names.
const (
	ObjectClassName  = "Object"
	IntegerClassName = "Integer"
	StringClassName  = "String"
	TrueClassName    = "True"
	FalseClassName   = "False"
	NilClassName     = "Nil"
	BlockClassName   = "Block"
)

// ---------------------------------------------------------------------------
// Class
// ---------------------------------------------------------------------------

// Class describes a class: its name, its parent's name and its own methods.
// Parents are resolved by name through the ClassTable on every lookup, so a
// class may be declared before its parent.
type Class struct {
	Name     string
	Parent   string // empty for a root class
	methods  map[string]*Method
	wildcard *Method // selector-family handler, only on Block
}

// NewClass creates a class with an empty method table.
func NewClass(name, parent string) *Class {
	return &Class{Name: name, Parent: parent, methods: make(map[string]*Method)}
}

// AddMethod registers a method, replacing any previous one with the same selector.
func (c *Class) AddMethod(m *Method) {
	c.methods[m.Selector] = m
}

// AddMethod0 registers a zero-argument native method.
func (c *Class) AddMethod0(selector string, fn Method0Func) {
	c.AddMethod(NewMethod0(selector, fn))
}

// AddMethod1 registers a one-argument native method.
func (c *Class) AddMethod1(selector string, fn Method1Func) {
	c.AddMethod(NewMethod1(selector, fn))
}

// AddMethod2 registers a two-argument native method.
func (c *Class) AddMethod2(selector string, fn Method2Func) {
	c.AddMethod(NewMethod2(selector, fn))
}

// SetWildcard installs the handler for selectors beginning with "value".
func (c *Class) SetWildcard(fn WildcardFunc) {
	c.wildcard = &Method{Selector: "value*", Wildcard: fn}
}

// LocalMethod returns the method defined on this class only.
func (c *Class) LocalMethod(selector string) *Method {
	return c.methods[selector]
}

// Selectors returns this class's own selectors in sorted order.
func (c *Class) Selectors() []string {
	result := make([]string, 0, len(c.methods))
	for sel := range c.methods {
		result = append(result, sel)
	}
	sort.Strings(result)
	return result
}

// String implements the Stringer interface.
func (c *Class) String() string {
	return c.Name
}

// ---------------------------------------------------------------------------
// ClassTable: per-VM class registry
// ---------------------------------------------------------------------------

// ClassTable maps class names to classes and resolves inheritance.
// It is built once during program assembly and read-only afterwards.
type ClassTable struct {
	classes map[string]*Class
}

// NewClassTable creates an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{classes: make(map[string]*Class)}
}

// Register adds a class to the table.
// Returns the previous class with this name, or nil.
func (ct *ClassTable) Register(c *Class) *Class {
	old := ct.classes[c.Name]
	ct.classes[c.Name] = c
	return old
}

// Lookup finds a class by name.
func (ct *ClassTable) Lookup(name string) *Class {
	return ct.classes[name]
}

// Has returns true if a class with this name is registered.
func (ct *ClassTable) Has(name string) bool {
	_, ok := ct.classes[name]
	return ok
}

// Len returns the number of registered classes.
func (ct *ClassTable) Len() int {
	return len(ct.classes)
}

// Names returns all class names in sorted order.
func (ct *ClassTable) Names() []string {
	names := make([]string, 0, len(ct.classes))
	for name := range ct.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParentOf returns the parent class of c, or nil if c is a root or its
// parent is not registered.
func (ct *ClassTable) ParentOf(c *Class) *Class {
	if c.Parent == "" {
		return nil
	}
	return ct.classes[c.Parent]
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// FindMethod resolves selector starting at class. It returns the method and
// the class that defines it, or (nil, nil) when nothing in the chain
// understands the selector. A missing parent ends the search.
func (ct *ClassTable) FindMethod(class *Class, selector string) (*Method, *Class) {
	steps := 0
	for c := class; c != nil; c = ct.ParentOf(c) {
		if m := c.LocalMethod(selector); m != nil {
			return m, c
		}
		if c.Name == BlockClassName && c.wildcard != nil && strings.HasPrefix(selector, "value") {
			return c.wildcard, c
		}
		if steps++; steps > len(ct.classes) {
			raise(KindHierarchy, "inheritance cycle through class %s", class.Name)
		}
	}
	return nil, nil
}

// Inherits reports whether class is named name or descends from it.
func (ct *ClassTable) Inherits(class *Class, name string) bool {
	steps := 0
	for c := class; c != nil; c = ct.ParentOf(c) {
		if c.Name == name {
			return true
		}
		if steps++; steps > len(ct.classes) {
			return false
		}
	}
	return false
}

// Chain returns the class names from class up to its root.
func (ct *ClassTable) Chain(class *Class) []string {
	var chain []string
	for c := class; c != nil && len(chain) <= len(ct.classes); c = ct.ParentOf(c) {
		chain = append(chain, c.Name)
	}
	return chain
}

// Validate rejects inheritance cycles. Unknown parent names are allowed; they
// are reported lazily as dispatch failures.
func (ct *ClassTable) Validate() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(ct.classes))

	for _, name := range ct.Names() {
		var path []string
		c := ct.classes[name]
		for c != nil && state[c.Name] == unvisited {
			state[c.Name] = visiting
			path = append(path, c.Name)
			c = ct.ParentOf(c)
		}
		if c != nil && state[c.Name] == visiting {
			for len(path) > 0 && path[0] != c.Name {
				path = path[1:]
			}
			return &Error{
				Kind:    KindHierarchy,
				Message: "inheritance cycle: " + strings.Join(append(path, c.Name), " -> "),
				Class:   c.Name,
			}
		}
		for _, n := range path {
			state[n] = done
		}
	}
	return nil
}

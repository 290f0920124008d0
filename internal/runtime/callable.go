package runtime

import (
	"fmt"

	"lox/internal/ast"
)

// Function is a user-defined closure: a declaration paired with the
// environment captured at its declaration site (I5: closure immutability —
// this reference never changes for the function's lifetime).
type Function struct {
	decl          *ast.Function
	closure       *Environment
	isInitializer bool
}

func (f *Function) TypeName() string { return "function" }
func (f *Function) String() string   { return fmt.Sprintf("<fn %s>", f.decl.Name.Lexeme) }
func (f *Function) Arity() int       { return len(f.decl.Params) }

// Bind returns a new Function whose closure is a fresh environment
// enclosing this function's closure, with "this" bound to instance.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.closure)
	env.Define("this", instance)
	return &Function{decl: f.decl, closure: env, isInitializer: f.isInitializer}
}

func (f *Function) Call(interp *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	result, err := interp.executeBlock(f.decl.Body, env)
	if err != nil {
		return nil, err
	}

	if f.isInitializer {
		this, _ := f.closure.GetAt(0, "this")
		return this, nil
	}

	if result.signal == sigReturn {
		return result.value, nil
	}
	return NilVal{}, nil
}

// NativeFunction wraps a Go function as a Lox-callable value.
type NativeFunction struct {
	name  string
	arity int
	fn    func(interp *Interpreter, args []Value) (Value, error)
}

func (n *NativeFunction) TypeName() string { return "native function" }
func (n *NativeFunction) String() string   { return fmt.Sprintf("<native fn %s>", n.name) }
func (n *NativeFunction) Arity() int       { return n.arity }
func (n *NativeFunction) Call(interp *Interpreter, args []Value) (Value, error) {
	return n.fn(interp, args)
}

// Class is a runtime class value: name, optional superclass, and method
// table. Calling a Class constructs an Instance.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) TypeName() string { return "class" }
func (c *Class) String() string   { return c.Name }

// FindMethod looks up name on this class, walking the superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	if fn, ok := c.Methods[name]; ok {
		return fn, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// Arity equals the initializer's arity, or 0 if the class has none.
func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	instance := &Instance{class: c, fields: make(map[string]Value)}
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a runtime object: a reference to its Class plus a mutable
// field map, keyed by property lexeme (not literal — see Get/Set).
type Instance struct {
	class  *Class
	fields map[string]Value
}

func (i *Instance) TypeName() string { return "instance" }
func (i *Instance) String() string   { return i.class.Name + " instance" }

// Get implements property access: fields shadow methods, methods are bound
// to the instance on lookup.
func (i *Instance) Get(name string) (Value, error) {
	if val, ok := i.fields[name]; ok {
		return val, nil
	}
	if method, ok := i.class.FindMethod(name); ok {
		return method.Bind(i), nil
	}
	return nil, fmt.Errorf("Undefined property '%s'.", name)
}

// Set stores a value into the instance's field map.
func (i *Instance) Set(name string, value Value) {
	i.fields[name] = value
}

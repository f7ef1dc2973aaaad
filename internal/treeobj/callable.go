package treeobj

import (
	"fmt"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/loxerr"
)

// CallContext is the subset of the interpreter a Function needs to run
// its body. Implemented by *interpreter.Interpreter; kept as an
// interface here so treeobj never imports the interpreter package (it
// would otherwise be a cycle: interpreter holds treeobj.Objects).
type CallContext interface {
	// ExecuteBlock runs stmts in env and reports whether a return was
	// hit and, if so, its value.
	ExecuteBlock(stmts []ast.Stmt, env *Environment) (retVal Object, didReturn bool, err error)
}

// Callable is any Object that can appear as the callee of a CallExpr.
type Callable interface {
	Object
	Arity() int
	Call(ctx CallContext, args []Object) (Object, error)
}

// Call invokes the builtin directly; natives never touch the
// environment chain, so ctx goes unused.
func (f *NativeFn) Call(ctx CallContext, args []Object) (Object, error) {
	return f.Fn(args)
}

// Function is a user-defined function or method: its declaration, the
// environment it closed over at definition time, and whether it is a
// class's init method (whose return value is always the receiver).
type Function struct {
	Decl    *ast.FunDecl
	Closure *Environment
	IsInit  bool
}

func (f *Function) Type() Type     { return TFunction }
func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.Decl.Name) }
func (f *Function) Arity() int     { return len(f.Decl.Params) }

// Call pushes a fresh frame parented on the closure (not the caller's
// environment), binds parameters in order, and runs the body.
func (f *Function) Call(ctx CallContext, args []Object) (Object, error) {
	env := NewEnvironment(f.Closure)
	for i, p := range f.Decl.Params {
		env.Define(p.Lexeme, args[i])
	}

	retVal, didReturn, err := ctx.ExecuteBlock(f.Decl.Body, env)
	if err != nil {
		return nil, err
	}

	if f.IsInit {
		// An initializer always yields the receiver, regardless of an
		// explicit return (the resolver rejects `return <value>;` in
		// init, so didReturn here only ever means a bare `return;`).
		return f.Closure.GetAt(0, "this")
	}
	if didReturn {
		return retVal, nil
	}
	return NilValue, nil
}

// Bind produces a new callable closing over an environment holding
// `this`. Every access to a method produces a fresh bound callable -
// distinct accesses are not reference-equal.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Decl: f.Decl, Closure: env, IsInit: f.IsInit}
}

// Class is a Lox class: its name, optional superclass, and method table.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) Type() Type     { return TClass }
func (c *Class) String() string { return c.Name }

// FindMethod looks up name on c, then on its superclass chain.
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a new Instance, invoking init (if any) on it first.
func (c *Class) Call(ctx CallContext, args []Object) (Object, error) {
	instance := &Instance{Class: c, Fields: make(map[string]Object)}
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(instance).Call(ctx, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a class instance: its class plus its own field map.
type Instance struct {
	Class  *Class
	Fields map[string]Object
}

func (i *Instance) Type() Type     { return TInstance }
func (i *Instance) String() string { return i.Class.Name + " instance" }

// Get reads a field first, then falls back to a bound method.
func (i *Instance) Get(line int, name string) (Object, error) {
	if v, ok := i.Fields[name]; ok {
		return v, nil
	}
	if m := i.Class.FindMethod(name); m != nil {
		return m.Bind(i), nil
	}
	return nil, loxerr.NewRuntimeError(line, "Undefined property '"+name+"'.")
}

// Set creates or updates a field; methods cannot be set this way.
func (i *Instance) Set(name string, value Object) {
	i.Fields[name] = value
}

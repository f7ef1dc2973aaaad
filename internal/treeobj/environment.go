package treeobj

import "github.com/loxlang/golox/internal/loxerr"

// Environment is one frame of the lexical-scope chain: a mapping from
// name to value, plus a link to the enclosing frame. The global frame is
// the chain's tail (Parent == nil).
type Environment struct {
	Parent *Environment
	values map[string]Object
}

// NewEnvironment creates a frame enclosed by parent (nil for the global
// frame).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{Parent: parent, values: make(map[string]Object)}
}

// Define binds name to value in this frame, overwriting any prior
// binding of the same name - convenient for a REPL, where redeclaring a
// global should not be an error.
func (e *Environment) Define(name string, value Object) {
	e.values[name] = value
}

// Get looks up name, walking outward through enclosing frames. line is
// only used to annotate the runtime error on a miss.
func (e *Environment) Get(line int, name string) (Object, error) {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, loxerr.NewRuntimeError(line, "Undefined variable '"+name+"'.")
}

// Assign rebinds an already-declared name, walking outward. Assigning to
// an undefined global is a runtime error.
func (e *Environment) Assign(line int, name string, value Object) error {
	for env := e; env != nil; env = env.Parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return loxerr.NewRuntimeError(line, "Undefined variable '"+name+"'.")
}

// ancestor walks exactly distance parent links outward.
func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.Parent
	}
	return env
}

// GetAt reads name from the frame exactly distance scopes out - the
// resolver-annotated fast path that skips the walk-and-search in Get.
func (e *Environment) GetAt(distance int, name string) (Object, error) {
	env := e.ancestor(distance)
	if v, ok := env.values[name]; ok {
		return v, nil
	}
	return nil, loxerr.NewRuntimeError(0, "Undefined variable '"+name+"'.")
}

// AssignAt rebinds name in the frame exactly distance scopes out.
func (e *Environment) AssignAt(distance int, name string, value Object) {
	env := e.ancestor(distance)
	env.values[name] = value
}

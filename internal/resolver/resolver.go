// Package resolver performs a static lexical-resolution pass: for every
// variable-use site it records the number of enclosing scopes to walk
// at runtime, so the tree-walking evaluator never needs to re-derive it
// dynamically.
package resolver

import (
	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/loxerr"
	"github.com/loxlang/golox/internal/token"
)

type functionType int

const (
	funcNone functionType = iota
	funcFunction
	funcInitializer
	funcMethod
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// bindState tracks whether a name has been declared or fully defined in
// a scope, to diagnose `var a = a;` style self-reference.
type bindState int

const (
	declared bindState = iota
	defined
)

// Resolver walks an already-parsed Program and produces Locals: a map
// from every Variable/Assign/This/Super expression node to the number of
// enclosing scopes between its use site and its binding. A use site with
// no entry is a global lookup.
type Resolver struct {
	locals    map[ast.Expr]int
	scopes    []map[string]bindState
	funcType  functionType
	classType classType
	errs      loxerr.MultiError
}

// New creates an empty Resolver.
func New() *Resolver {
	return &Resolver{
		locals: make(map[ast.Expr]int),
	}
}

// Resolve runs the pass over program and returns the locals map together
// with any resolution errors collected (the whole program is rejected if
// any occurred).
func Resolve(program *ast.Program) (map[ast.Expr]int, error) {
	r := New()
	r.resolveStmts(program.Decls)
	if err := r.errs.AsError(); err != nil {
		return nil, err
	}
	return r.locals, nil
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bindState))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ClassDecl:
		r.classDecl(n)
	case *ast.FunDecl:
		r.declare(n.NameTok, n.Name)
		r.define(n.Name)
		r.resolveFunction(n, funcFunction)
	case *ast.VarDecl:
		r.declare(n.NameTok, n.Name)
		if n.Expr != nil {
			r.resolveExpr(n.Expr)
		}
		r.define(n.Name)
	case *ast.ExprStmt:
		r.resolveExpr(n.Expr)
	case *ast.IfStmt:
		r.resolveExpr(n.Condition)
		r.resolveStmt(n.ThenBranch)
		if n.ElseBranch != nil {
			r.resolveStmt(n.ElseBranch)
		}
	case *ast.PrintStmt:
		r.resolveExpr(n.Expr)
	case *ast.ReturnStmt:
		if r.funcType == funcNone {
			r.errs.Add(loxerr.NewResolveError(n.Keyword.Line, n.Keyword.Lexeme, "Can't return from top-level code."))
		}
		if n.Expr != nil {
			if r.funcType == funcInitializer {
				r.errs.Add(loxerr.NewResolveError(n.Keyword.Line, n.Keyword.Lexeme, "Can't return a value from an initializer."))
			}
			r.resolveExpr(n.Expr)
		}
	case *ast.WhileStmt:
		r.resolveExpr(n.Condition)
		r.resolveStmt(n.Body)
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(n.Decls)
		r.endScope()
	default:
		panic("resolver: unhandled statement node")
	}
}

func (r *Resolver) classDecl(c *ast.ClassDecl) {
	enclosingClass := r.classType
	r.classType = classClass

	r.declare(c.NameTok, c.Name)
	r.define(c.Name)

	if c.Superclass != nil {
		if c.Name == c.Superclass.Name.Lexeme {
			r.errs.Add(loxerr.NewResolveError(c.Superclass.Name.Line, c.Superclass.Name.Lexeme, "A class can't inherit from itself."))
		}
		r.classType = classSubclass
		r.resolveExpr(c.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = defined
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = defined

	for _, m := range c.Methods {
		fnType := funcMethod
		if m.Name == "init" {
			fnType = funcInitializer
		}
		r.resolveFunction(m, fnType)
	}

	r.endScope()

	if c.Superclass != nil {
		r.endScope()
	}

	r.classType = enclosingClass
}

func (r *Resolver) resolveFunction(fd *ast.FunDecl, fnType functionType) {
	enclosingFn := r.funcType
	r.funcType = fnType

	r.beginScope()
	for _, p := range fd.Params {
		r.declare(p, p.Lexeme)
		r.define(p.Lexeme)
	}
	r.resolveStmts(fd.Body)
	r.endScope()

	r.funcType = enclosingFn
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.AssignExpr:
		r.resolveExpr(n.Expr)
		r.resolveLocal(n, n.Name)
	case *ast.SetExpr:
		r.resolveExpr(n.Value)
		r.resolveExpr(n.Object)
	case *ast.ThisExpr:
		if r.classType == classNone {
			r.errs.Add(loxerr.NewResolveError(n.Keyword.Line, n.Keyword.Lexeme, "Can't use 'this' outside of a class."))
			return
		}
		r.resolveLocal(n, n.Keyword.Lexeme)
	case *ast.LogicOrExpr:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.LogicAndExpr:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.BinaryExpr:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.UnaryExpr:
		r.resolveExpr(n.Right)
	case *ast.CallExpr:
		r.resolveExpr(n.Callee)
		for _, a := range n.Args {
			r.resolveExpr(a)
		}
	case *ast.GetExpr:
		r.resolveExpr(n.Object)
	case *ast.LiteralExpr:
		// Nothing to resolve.
	case *ast.GroupExpr:
		r.resolveExpr(n.Group)
	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if state, ok := r.scopes[len(r.scopes)-1][n.Name.Lexeme]; ok && state == declared {
				r.errs.Add(loxerr.NewResolveError(n.Name.Line, n.Name.Lexeme, "Can't read local variable in its own initializer."))
			}
		}
		r.resolveLocal(n, n.Name.Lexeme)
	case *ast.SuperExpr:
		if r.classType == classNone {
			r.errs.Add(loxerr.NewResolveError(n.Keyword.Line, n.Keyword.Lexeme, "Can't use 'super' outside of a class."))
		} else if r.classType != classSubclass {
			r.errs.Add(loxerr.NewResolveError(n.Keyword.Line, n.Keyword.Lexeme, "Can't use 'super' in a class with no superclass."))
		}
		r.resolveLocal(n, n.Keyword.Lexeme)
	default:
		panic("resolver: unhandled expression node")
	}
}

// declare marks name as present-but-not-yet-initialized in the current
// scope. At global scope it is a no-op: redeclaration is allowed there.
// In any local scope, redeclaring an existing name is a resolution error.
func (r *Resolver) declare(tok token.Token, name string) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name]; ok {
		r.errs.Add(loxerr.NewResolveError(tok.Line, tok.Lexeme, "Already a variable with this name in this scope."))
	}
	scope[name] = declared
}

func (r *Resolver) resolveLocal(expr ast.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any local scope: treat as global, no distance recorded.
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = defined
}

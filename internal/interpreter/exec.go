package interpreter

import (
	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/loxerr"
	"github.com/loxlang/golox/internal/treeobj"
)

// execStmt runs one statement. The (value, didReturn) pair is how a
// `return` unwinds an arbitrary number of block frames back to its
// enclosing call - every frame this function pushes is popped before
// it returns, on every exit path.
func (i *Interpreter) execStmt(s ast.Stmt) (treeobj.Object, bool, error) {
	switch n := s.(type) {
	case *ast.ClassDecl:
		return nil, false, i.execClassDecl(n)
	case *ast.FunDecl:
		fn := &treeobj.Function{Decl: n, Closure: i.env}
		i.env.Define(n.Name, fn)
		return nil, false, nil
	case *ast.VarDecl:
		var val treeobj.Object = treeobj.NilValue
		if n.Expr != nil {
			v, err := i.eval(n.Expr)
			if err != nil {
				return nil, false, err
			}
			val = v
		}
		i.env.Define(n.Name, val)
		return nil, false, nil
	case *ast.ExprStmt:
		_, err := i.eval(n.Expr)
		return nil, false, err
	case *ast.PrintStmt:
		v, err := i.eval(n.Expr)
		if err != nil {
			return nil, false, err
		}
		i.print(v)
		return nil, false, nil
	case *ast.ReturnStmt:
		if n.Expr == nil {
			return treeobj.NilValue, true, nil
		}
		v, err := i.eval(n.Expr)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	case *ast.IfStmt:
		cond, err := i.eval(n.Condition)
		if err != nil {
			return nil, false, err
		}
		if treeobj.IsTruthy(cond) {
			return i.execStmt(n.ThenBranch)
		} else if n.ElseBranch != nil {
			return i.execStmt(n.ElseBranch)
		}
		return nil, false, nil
	case *ast.WhileStmt:
		for {
			cond, err := i.eval(n.Condition)
			if err != nil {
				return nil, false, err
			}
			if !treeobj.IsTruthy(cond) {
				return nil, false, nil
			}
			retVal, didReturn, err := i.execStmt(n.Body)
			if err != nil || didReturn {
				return retVal, didReturn, err
			}
		}
	case *ast.Block:
		return i.ExecuteBlock(n.Decls, treeobj.NewEnvironment(i.env))
	default:
		panic("interpreter: unhandled statement node")
	}
}

func (i *Interpreter) execClassDecl(c *ast.ClassDecl) error {
	var superclass *treeobj.Class
	if c.Superclass != nil {
		sc, err := i.eval(c.Superclass)
		if err != nil {
			return err
		}
		class, ok := sc.(*treeobj.Class)
		if !ok {
			return loxerr.NewRuntimeError(c.Superclass.Name.Line, "Superclass must be a class.")
		}
		superclass = class
	}

	i.env.Define(c.Name, treeobj.NilValue)

	env := i.env
	if c.Superclass != nil {
		env = treeobj.NewEnvironment(i.env)
		env.Define("super", superclass)
	}

	methods := make(map[string]*treeobj.Function, len(c.Methods))
	for _, m := range c.Methods {
		methods[m.Name] = &treeobj.Function{Decl: m, Closure: env, IsInit: m.Name == "init"}
	}

	class := &treeobj.Class{Name: c.Name, Superclass: superclass, Methods: methods}

	if c.Superclass != nil {
		_ = i.env.Assign(c.NameTok.Line, c.Name, class)
	} else {
		i.env.Define(c.Name, class)
	}
	return nil
}

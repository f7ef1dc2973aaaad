package interpreter

import (
	"strconv"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/loxerr"
	"github.com/loxlang/golox/internal/token"
	"github.com/loxlang/golox/internal/treeobj"
)

func (i *Interpreter) eval(e ast.Expr) (treeobj.Object, error) {
	switch n := e.(type) {
	case *ast.AssignExpr:
		return i.evalAssign(n)
	case *ast.SetExpr:
		return i.evalSet(n)
	case *ast.ThisExpr:
		return i.lookupVariable(n.Keyword, n)
	case *ast.LogicOrExpr:
		left, err := i.eval(n.Left)
		if err != nil {
			return nil, err
		}
		if treeobj.IsTruthy(left) {
			return left, nil
		}
		return i.eval(n.Right)
	case *ast.LogicAndExpr:
		left, err := i.eval(n.Left)
		if err != nil {
			return nil, err
		}
		if !treeobj.IsTruthy(left) {
			return left, nil
		}
		return i.eval(n.Right)
	case *ast.BinaryExpr:
		return i.evalBinary(n)
	case *ast.UnaryExpr:
		return i.evalUnary(n)
	case *ast.CallExpr:
		return i.evalCall(n)
	case *ast.GetExpr:
		return i.evalGet(n)
	case *ast.LiteralExpr:
		return i.evalLiteral(n)
	case *ast.GroupExpr:
		return i.eval(n.Group)
	case *ast.VariableExpr:
		return i.lookupVariable(n.Name, n)
	case *ast.SuperExpr:
		return i.evalSuper(n)
	default:
		panic("interpreter: unhandled expression node")
	}
}

func (i *Interpreter) evalLiteral(n *ast.LiteralExpr) (treeobj.Object, error) {
	switch n.Token.Type {
	case token.TRUE:
		return treeobj.Bool{Value: true}, nil
	case token.FALSE:
		return treeobj.Bool{Value: false}, nil
	case token.NIL:
		return treeobj.NilValue, nil
	case token.STRING:
		return treeobj.String{Value: n.Token.Literal}, nil
	case token.NUMBER:
		f, _ := strconv.ParseFloat(n.Token.Literal, 64)
		return treeobj.Number{Value: f}, nil
	default:
		panic("interpreter: unhandled literal token type")
	}
}

// lookupVariable resolves a Variable/This/Super use site using the
// resolver's recorded distance when present, falling back to a global
// lookup otherwise.
func (i *Interpreter) lookupVariable(name token.Token, node ast.Expr) (treeobj.Object, error) {
	if dist, ok := i.locals[node]; ok {
		return i.env.GetAt(dist, name.Lexeme)
	}
	return i.Globals.Get(name.Line, name.Lexeme)
}

func (i *Interpreter) evalAssign(n *ast.AssignExpr) (treeobj.Object, error) {
	val, err := i.eval(n.Expr)
	if err != nil {
		return nil, err
	}
	if dist, ok := i.locals[n]; ok {
		i.env.AssignAt(dist, n.Name, val)
		return val, nil
	}
	if err := i.Globals.Assign(n.NameTok.Line, n.Name, val); err != nil {
		return nil, err
	}
	return val, nil
}

func (i *Interpreter) evalUnary(n *ast.UnaryExpr) (treeobj.Object, error) {
	right, err := i.eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op.Type {
	case token.BANG:
		return treeobj.Bool{Value: !treeobj.IsTruthy(right)}, nil
	case token.MINUS:
		num, ok := right.(treeobj.Number)
		if !ok {
			return nil, loxerr.NewRuntimeError(n.Op.Line, "Operand must be a number.")
		}
		return treeobj.Number{Value: -num.Value}, nil
	default:
		panic("interpreter: unhandled unary operator")
	}
}

func (i *Interpreter) evalBinary(n *ast.BinaryExpr) (treeobj.Object, error) {
	left, err := i.eval(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op.Type {
	case token.PLUS:
		ls, lok := left.(treeobj.String)
		rs, rok := right.(treeobj.String)
		if lok && rok {
			return treeobj.String{Value: ls.Value + rs.Value}, nil
		}
		ln, lok := left.(treeobj.Number)
		rn, rok := right.(treeobj.Number)
		if lok && rok {
			return treeobj.Number{Value: ln.Value + rn.Value}, nil
		}
		return nil, loxerr.NewRuntimeError(n.Op.Line, "Operands must be two numbers or two strings.")
	case token.MINUS:
		a, b, err := numberOperands(n.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return treeobj.Number{Value: a - b}, nil
	case token.STAR:
		a, b, err := numberOperands(n.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return treeobj.Number{Value: a * b}, nil
	case token.SLASH:
		a, b, err := numberOperands(n.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return treeobj.Number{Value: a / b}, nil
	case token.GREATER:
		a, b, err := numberOperands(n.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return treeobj.Bool{Value: a > b}, nil
	case token.GREATER_EQUAL:
		a, b, err := numberOperands(n.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return treeobj.Bool{Value: a >= b}, nil
	case token.LESS:
		a, b, err := numberOperands(n.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return treeobj.Bool{Value: a < b}, nil
	case token.LESS_EQUAL:
		a, b, err := numberOperands(n.Op.Line, left, right)
		if err != nil {
			return nil, err
		}
		return treeobj.Bool{Value: a <= b}, nil
	case token.EQUAL_EQUAL:
		return treeobj.Bool{Value: treeobj.Equal(left, right)}, nil
	case token.BANG_EQUAL:
		return treeobj.Bool{Value: !treeobj.Equal(left, right)}, nil
	default:
		panic("interpreter: unhandled binary operator")
	}
}

func numberOperands(line int, left, right treeobj.Object) (float64, float64, error) {
	ln, lok := left.(treeobj.Number)
	rn, rok := right.(treeobj.Number)
	if !lok || !rok {
		return 0, 0, loxerr.NewRuntimeError(line, "Operands must be numbers.")
	}
	return ln.Value, rn.Value, nil
}

func (i *Interpreter) evalCall(n *ast.CallExpr) (treeobj.Object, error) {
	callee, err := i.eval(n.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]treeobj.Object, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := i.eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(treeobj.Callable)
	if !ok {
		return nil, loxerr.NewRuntimeError(n.Paren.Line, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, loxerr.NewRuntimeError(n.Paren.Line,
			fmtArityError(fn.Arity(), len(args)))
	}
	return fn.Call(i, args)
}

func fmtArityError(want, got int) string {
	return "Expected " + strconv.Itoa(want) + " arguments but got " + strconv.Itoa(got) + "."
}

func (i *Interpreter) evalGet(n *ast.GetExpr) (treeobj.Object, error) {
	obj, err := i.eval(n.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*treeobj.Instance)
	if !ok {
		return nil, loxerr.NewRuntimeError(n.Name.Line, "Only instances have properties.")
	}
	return instance.Get(n.Name.Line, n.Name.Lexeme)
}

func (i *Interpreter) evalSet(n *ast.SetExpr) (treeobj.Object, error) {
	obj, err := i.eval(n.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*treeobj.Instance)
	if !ok {
		return nil, loxerr.NewRuntimeError(n.Name.Line, "Only instances have fields.")
	}
	val, err := i.eval(n.Value)
	if err != nil {
		return nil, err
	}
	instance.Set(n.Name.Lexeme, val)
	return val, nil
}

func (i *Interpreter) evalSuper(n *ast.SuperExpr) (treeobj.Object, error) {
	dist, ok := i.locals[n]
	if !ok {
		return nil, loxerr.NewRuntimeError(n.Keyword.Line, "Can't resolve 'super' outside of a class.")
	}
	superVal, err := i.env.GetAt(dist, "super")
	if err != nil {
		return nil, err
	}
	super := superVal.(*treeobj.Class)

	thisVal, err := i.env.GetAt(dist-1, "this")
	if err != nil {
		return nil, err
	}
	instance := thisVal.(*treeobj.Instance)

	method := super.FindMethod(n.Method.Lexeme)
	if method == nil {
		return nil, loxerr.NewRuntimeError(n.Method.Line, "Undefined property '"+n.Method.Lexeme+"'.")
	}
	return method.Bind(instance), nil
}

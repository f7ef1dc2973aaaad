// Package parser implements the tree-walking engine's recursive-descent
// parser, producing the AST defined in internal/ast. Grammar is
// documented alongside the AST node types.
package parser

import (
	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/loxerr"
	"github.com/loxlang/golox/internal/token"
)

const maxParams = 255

// Parser turns a token stream into a Program, collecting (rather than
// aborting on) every syntax error it finds.
type Parser struct {
	tokens []token.Token
	idx    int
	errs   loxerr.MultiError
	panic  bool
}

// Parse parses the full token stream into a Program. Errors are
// collected, not fatal - the caller should refuse to run a program if
// the returned error is non-nil.
func Parse(tokens []token.Token) (*ast.Program, error) {
	p := &Parser{tokens: tokens}
	prog := &ast.Program{}
	for !p.atEnd() {
		if d := p.declaration(); d != nil {
			prog.Decls = append(prog.Decls, d)
		}
	}
	return prog, p.errs.AsError()
}

func (p *Parser) declaration() ast.Stmt {
	var d ast.Stmt
	switch {
	case p.match(token.CLASS):
		d = p.classDecl()
	case p.match(token.FUN):
		d = p.funDecl("function")
	case p.match(token.VAR):
		d = p.varDecl()
	default:
		d = p.statement()
	}
	if p.panic {
		p.synchronize()
		return nil
	}
	return d
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect class name.")

	var superclass *ast.VariableExpr
	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "Expect superclass name.")
		superclass = &ast.VariableExpr{Name: p.previous()}
	}

	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")

	var methods []*ast.FunDecl
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() && !p.panic {
		methods = append(methods, p.funDecl("method"))
	}

	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")

	return &ast.ClassDecl{Name: name.Lexeme, NameTok: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) funDecl(kind string) *ast.FunDecl {
	name := p.consume(token.IDENTIFIER, "Expect "+kind+" name.")
	p.consume(token.LEFT_PAREN, "Expect '(' after "+kind+" name.")

	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= maxParams {
				p.error("Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")

	p.consume(token.LEFT_BRACE, "Expect '{' before "+kind+" body.")
	body := p.blockDecls()

	return &ast.FunDecl{Name: name.Lexeme, NameTok: name, Params: params, Body: body}
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect variable name.")

	vd := &ast.VarDecl{Name: name.Lexeme, NameTok: name}
	if p.match(token.EQUAL) {
		vd.Expr = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return vd
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.LEFT_BRACE):
		return &ast.Block{Decls: p.blockDecls()}
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.ExprStmt{Expr: expr}
}

func (p *Parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	return &ast.PrintStmt{Expr: expr}
}

func (p *Parser) returnStmt() ast.Stmt {
	keyword := p.previous()
	var expr ast.Expr
	if !p.check(token.SEMICOLON) {
		expr = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.ReturnStmt{Keyword: keyword, Expr: expr}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after if condition.")

	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}
	return &ast.IfStmt{Condition: cond, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

func (p *Parser) whileStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")
	body := p.statement()
	return &ast.WhileStmt{Condition: cond, Body: body}
}

// forStmt desugars `for` into a `while`.
func (p *Parser) forStmt() ast.Stmt {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		initializer = nil
	case p.match(token.VAR):
		initializer = p.varDecl()
	default:
		initializer = p.exprStmt()
	}

	var condition ast.Expr
	if !p.check(token.SEMICOLON) {
		condition = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		increment = p.expression()
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if increment != nil {
		body = &ast.Block{Decls: []ast.Stmt{body, &ast.ExprStmt{Expr: increment}}}
	}
	if condition == nil {
		condition = &ast.LiteralExpr{Token: token.Token{Type: token.TRUE, Lexeme: "true"}, Value: "true"}
	}
	body = &ast.WhileStmt{Condition: condition, Body: body}

	if initializer != nil {
		body = &ast.Block{Decls: []ast.Stmt{initializer, body}}
	}
	return body
}

func (p *Parser) blockDecls() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RIGHT_BRACE) && !p.atEnd() {
		if d := p.declaration(); d != nil {
			stmts = append(stmts, d)
		}
		if p.panic {
			break
		}
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
	return stmts
}

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{Name: target.Name.Lexeme, NameTok: target.Name, Expr: value}
		case *ast.GetExpr:
			return &ast.SetExpr{Object: target.Object, Name: target.Name, Value: value}
		default:
			p.errorAt(equals, "Invalid assignment target.")
		}
	}

	return expr
}

func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	for p.match(token.OR) {
		op := p.previous()
		right := p.logicAnd()
		expr = &ast.LogicOrExpr{Left: expr, Right: right, Op: op}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = &ast.LogicAndExpr{Left: expr, Right: right, Op: op}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.EQUAL_EQUAL, token.BANG_EQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL) {
		op := p.previous()
		right := p.term()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right := p.factor()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.STAR, token.SLASH) {
		op := p.previous()
		right := p.unary()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.BANG, token.MINUS) {
		op := p.previous()
		right := p.unary()
		return &ast.UnaryExpr{Op: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.LEFT_PAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
			expr = &ast.GetExpr{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= maxParams {
				p.error("Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren := p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return &ast.CallExpr{Callee: callee, Paren: paren, Args: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.TRUE):
		t := p.previous()
		return &ast.LiteralExpr{Token: t, Value: "true"}
	case p.match(token.FALSE):
		t := p.previous()
		return &ast.LiteralExpr{Token: t, Value: "false"}
	case p.match(token.NIL):
		t := p.previous()
		return &ast.LiteralExpr{Token: t, Value: "nil"}
	case p.match(token.NUMBER):
		t := p.previous()
		return &ast.LiteralExpr{Token: t, Value: t.Literal}
	case p.match(token.STRING):
		t := p.previous()
		return &ast.LiteralExpr{Token: t, Value: t.Literal}
	case p.match(token.THIS):
		return &ast.ThisExpr{Keyword: p.previous()}
	case p.match(token.SUPER):
		keyword := p.previous()
		p.consume(token.DOT, "Expect '.' after 'super'.")
		method := p.consume(token.IDENTIFIER, "Expect superclass method name.")
		return &ast.SuperExpr{Keyword: keyword, Method: method}
	case p.match(token.LEFT_PAREN):
		group := p.expression()
		p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
		return &ast.GroupExpr{Group: group}
	case p.match(token.IDENTIFIER):
		return &ast.VariableExpr{Name: p.previous()}
	default:
		p.error("Expect expression.")
		return &ast.LiteralExpr{Token: p.current(), Value: "nil"}
	}
}

// --------------- helpers --------------- //

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t token.Type, msg string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.error(msg)
	return p.current()
}

func (p *Parser) check(t token.Type) bool {
	return !p.atEnd() && p.current().Type == t
}

func (p *Parser) advance() token.Token {
	tok := p.current()
	if !p.atEnd() {
		p.idx++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.current().Type == token.EOF
}

func (p *Parser) current() token.Token {
	return p.tokens[p.idx]
}

func (p *Parser) previous() token.Token {
	if p.idx > 0 {
		return p.tokens[p.idx-1]
	}
	return p.current()
}

func (p *Parser) error(msg string) {
	p.errorAt(p.current(), msg)
}

func (p *Parser) errorAt(tok token.Token, msg string) {
	p.panic = true
	p.errs.Add(loxerr.NewParseError(tok.Line, tok.Lexeme, tok.Type == token.EOF, msg))
}

// synchronize discards tokens until it reaches a likely statement
// boundary, so a single syntax error doesn't cascade into spurious ones.
func (p *Parser) synchronize() {
	p.panic = false
	p.advance()

	for !p.atEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}
		switch p.current().Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.RETURN:
			return
		}
		p.advance()
	}
}

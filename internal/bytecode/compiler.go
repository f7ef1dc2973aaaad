package bytecode

import (
	"strconv"

	"github.com/loxlang/golox/internal/loxerr"
	"github.com/loxlang/golox/internal/token"
)

const maxLocals = 256
const maxConstants = 255
const maxJump = 1 << 16

// Precedence climbs low-to-high: assignment binds loosest, primary
// expressions bind tightest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LEFT_PAREN:    {prefix: (*Compiler).grouping},
		token.MINUS:         {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		token.PLUS:          {infix: (*Compiler).binary, precedence: PrecTerm},
		token.SLASH:         {infix: (*Compiler).binary, precedence: PrecFactor},
		token.STAR:          {infix: (*Compiler).binary, precedence: PrecFactor},
		token.BANG:          {prefix: (*Compiler).unary},
		token.BANG_EQUAL:    {infix: (*Compiler).binary, precedence: PrecEquality},
		token.EQUAL_EQUAL:   {infix: (*Compiler).binary, precedence: PrecEquality},
		token.GREATER:       {infix: (*Compiler).binary, precedence: PrecComparison},
		token.GREATER_EQUAL: {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LESS:          {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LESS_EQUAL:    {infix: (*Compiler).binary, precedence: PrecComparison},
		token.IDENTIFIER:    {prefix: (*Compiler).variable},
		token.STRING:        {prefix: (*Compiler).string},
		token.NUMBER:        {prefix: (*Compiler).number},
		token.AND:           {infix: (*Compiler).and_, precedence: PrecAnd},
		token.OR:            {infix: (*Compiler).or_, precedence: PrecOr},
		token.TRUE:          {prefix: (*Compiler).literal},
		token.FALSE:         {prefix: (*Compiler).literal},
		token.NIL:           {prefix: (*Compiler).literal},
	}
}

func getRule(t token.Type) parseRule {
	return rules[t]
}

// local is one entry of the compiler's locals array; depth -1 marks
// "declared but not yet initialized".
type local struct {
	name  token.Token
	depth int
}

// Compiler turns a token stream directly into a Chunk, with no AST
// in between. Mirrors internal/parser's recursive-descent
// helper shapes (match/check/consume/advance/previous/current),
// extended with a Pratt prefix/infix rule table.
type Compiler struct {
	tokens []token.Token
	idx    int
	errs   loxerr.MultiError
	panic  bool

	chunk    *Chunk
	interner *InternSet

	locals     []local
	scopeDepth int
}

// Compile compiles the full token stream into a Chunk. Like the tree
// parser, syntax errors are collected rather than fatal; the caller
// should refuse to run the chunk if the returned error is non-nil.
func Compile(tokens []token.Token, interner *InternSet) (*Chunk, error) {
	c := &Compiler{tokens: tokens, chunk: NewChunk(), interner: interner}
	for !c.atEnd() {
		c.declaration()
		if c.panic {
			c.synchronize()
		}
	}
	c.emitOp(OpReturn)
	return c.chunk, c.errs.AsError()
}

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.errorAt(c.previous(), "Classes are not supported by the bytecode engine.")
	case c.match(token.FUN):
		c.errorAt(c.previous(), "Functions are not supported by the bytecode engine.")
	case c.match(token.VAR):
		c.varDecl()
	default:
		c.statement()
	}
}

func (c *Compiler) varDecl() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(OpNil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStmt()
	case c.match(token.IF):
		c.ifStmt()
	case c.match(token.WHILE):
		c.whileStmt()
	case c.match(token.FOR):
		c.forStmt()
	case c.match(token.RETURN):
		c.errorAt(c.previous(), "Can't return from top-level code.")
	case c.match(token.LEFT_BRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.exprStmt()
	}
}

func (c *Compiler) printStmt() {
	line := c.previous().Line
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOpAt(OpPrint, line)
}

func (c *Compiler) exprStmt() {
	line := c.current().Line
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOpAt(OpPop, line)
}

func (c *Compiler) block() {
	for !c.check(token.RIGHT_BRACE) && !c.atEnd() && !c.panic {
		c.declaration()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

func (c *Compiler) ifStmt() {
	line := c.previous().Line
	c.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(OpJumpIfFalse, line)
	c.emitOpAt(OpPop, line)
	c.statement()

	elseJump := c.emitJump(OpJump, line)
	c.patchJump(thenJump)
	c.emitOpAt(OpPop, line)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStmt() {
	line := c.previous().Line
	loopStart := len(c.chunk.Code)
	c.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpIfFalse, line)
	c.emitOpAt(OpPop, line)
	c.statement()
	c.emitLoop(loopStart, line)

	c.patchJump(exitJump)
	c.emitOpAt(OpPop, line)
}

func (c *Compiler) forStmt() {
	line := c.previous().Line
	c.beginScope()
	c.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDecl()
	default:
		c.exprStmt()
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if !c.check(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(OpJumpIfFalse, line)
		c.emitOpAt(OpPop, line)
	} else {
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
	}

	if !c.check(token.RIGHT_PAREN) {
		bodyJump := c.emitJump(OpJump, line)
		incrementStart := len(c.chunk.Code)
		c.expression()
		c.emitOpAt(OpPop, line)
		c.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart, line)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")
	}

	c.statement()
	c.emitLoop(loopStart, line)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOpAt(OpPop, line)
	}
	c.endScope()
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence is the Pratt engine's core loop.
func (c *Compiler) parsePrecedence(min Precedence) {
	c.advance()
	rule := getRule(c.previous().Type)
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := min <= PrecAssignment
	rule.prefix(c, canAssign)

	for !c.atEnd() && min <= getRule(c.current().Type).precedence {
		c.advance()
		infix := getRule(c.previous().Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.errorAt(c.previous(), "Invalid assignment target.")
	}
}

func (c *Compiler) number(canAssign bool) {
	tok := c.previous()
	f, _ := strconv.ParseFloat(tok.Literal, 64)
	c.emitConstantAt(Number(f), tok.Line)
}

func (c *Compiler) string(canAssign bool) {
	tok := c.previous()
	obj := c.interner.Intern(tok.Literal)
	c.emitConstantAt(ObjVal(obj), tok.Line)
}

func (c *Compiler) literal(canAssign bool) {
	tok := c.previous()
	switch tok.Type {
	case token.TRUE:
		c.emitOpAt(OpTrue, tok.Line)
	case token.FALSE:
		c.emitOpAt(OpFalse, tok.Line)
	case token.NIL:
		c.emitOpAt(OpNil, tok.Line)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	op := c.previous()
	c.parsePrecedence(PrecUnary)
	switch op.Type {
	case token.MINUS:
		c.emitOpAt(OpNegate, op.Line)
	case token.BANG:
		c.emitOpAt(OpNot, op.Line)
	}
}

// binary recurses at one precedence above the operator's own, so that
// e.g. `1 - 2 - 3` parses left-associatively.
func (c *Compiler) binary(canAssign bool) {
	op := c.previous()
	rule := getRule(op.Type)
	c.parsePrecedence(rule.precedence + 1)

	switch op.Type {
	case token.PLUS:
		c.emitOpAt(OpAdd, op.Line)
	case token.MINUS:
		c.emitOpAt(OpSub, op.Line)
	case token.STAR:
		c.emitOpAt(OpMul, op.Line)
	case token.SLASH:
		c.emitOpAt(OpDiv, op.Line)
	case token.EQUAL_EQUAL:
		c.emitOpAt(OpEqual, op.Line)
	case token.BANG_EQUAL:
		c.emitOpAt(OpEqual, op.Line)
		c.emitOpAt(OpNot, op.Line)
	case token.GREATER:
		c.emitOpAt(OpGreater, op.Line)
	case token.GREATER_EQUAL:
		c.emitOpAt(OpLess, op.Line)
		c.emitOpAt(OpNot, op.Line)
	case token.LESS:
		c.emitOpAt(OpLess, op.Line)
	case token.LESS_EQUAL:
		c.emitOpAt(OpGreater, op.Line)
		c.emitOpAt(OpNot, op.Line)
	}
}

func (c *Compiler) and_(canAssign bool) {
	line := c.previous().Line
	endJump := c.emitJump(OpJumpIfFalse, line)
	c.emitOpAt(OpPop, line)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(canAssign bool) {
	line := c.previous().Line
	elseJump := c.emitJump(OpJumpIfFalse, line)
	endJump := c.emitJump(OpJump, line)
	c.patchJump(elseJump)
	c.emitOpAt(OpPop, line)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous(), canAssign)
}

// namedVariable resolves a name to a local slot if resolveLocal finds
// one, otherwise a global keyed by an interned name constant.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp OpCode
	slot := c.resolveLocal(name)

	var arg int
	if slot != -1 {
		getOp, setOp = OpGetLocal, OpSetLocal
		arg = slot
	} else {
		getOp, setOp = OpGetGlobal, OpSetGlobal
		arg = c.identifierConstant(name)
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitOpAt(setOp, name.Line)
		c.chunk.Write(byte(arg), name.Line)
		return
	}
	c.emitOpAt(getOp, name.Line)
	c.chunk.Write(byte(arg), name.Line)
}

// resolveLocal walks locals backwards; depth == -1 on a name match
// means the variable is being read from inside its own initializer.
func (c *Compiler) resolveLocal(name token.Token) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.name.Lexeme == name.Lexeme {
			if l.depth == -1 {
				c.errorAt(name, "Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) identifierConstant(name token.Token) int {
	obj := c.interner.Intern(name.Lexeme)
	return c.makeConstant(ObjVal(obj), name.Line)
}

func (c *Compiler) parseVariable(msg string) int {
	name := c.consume(token.IDENTIFIER, msg)
	c.declareVariable(name)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) declareVariable(name token.Token) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name.Lexeme == name.Lexeme {
			c.errorAt(name, "A variable with this name already exists in this scope.")
		}
	}
	if len(c.locals) >= maxLocals {
		c.errorAt(name, "Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

func (c *Compiler) defineVariable(global int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpAt(OpDefineGlobal, c.previous().Line)
	c.chunk.Write(byte(global), c.previous().Line)
}

func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	line := c.previous().Line
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOpAt(OpPop, line)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) emitConstantAt(v Value, line int) {
	idx := c.makeConstant(v, line)
	c.emitOpAt(OpConstant, line)
	c.chunk.Write(byte(idx), line)
}

func (c *Compiler) makeConstant(v Value, line int) int {
	if len(c.chunk.Constants) >= maxConstants {
		c.errorAtLine(line, "Too many constants in one chunk.")
		return 0
	}
	return c.chunk.AddConstant(v)
}

func (c *Compiler) emitOp(op OpCode) {
	c.emitOpAt(op, c.previous().Line)
}

func (c *Compiler) emitOpAt(op OpCode, line int) {
	c.chunk.WriteOp(op, line)
}

// emitJump writes op followed by a two-byte placeholder, returning the
// placeholder's offset for patchJump to fill in later.
func (c *Compiler) emitJump(op OpCode, line int) int {
	c.emitOpAt(op, line)
	c.chunk.Write(0xff, line)
	c.chunk.Write(0xff, line)
	return len(c.chunk.Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk.Code) - offset - 2
	if jump > maxJump-1 {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk.Code[offset] = byte(jump >> 8)
	c.chunk.Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emitOpAt(OpLoop, line)
	offset := len(c.chunk.Code) - loopStart + 2
	if offset > maxJump-1 {
		c.error("Loop body too large.")
		return
	}
	c.chunk.Write(byte(offset>>8), line)
	c.chunk.Write(byte(offset), line)
}

// --------------- token-stream helpers, mirroring internal/parser --------------- //

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, msg string) token.Token {
	if c.check(t) {
		return c.advance()
	}
	c.error(msg)
	return c.current()
}

func (c *Compiler) check(t token.Type) bool {
	return !c.atEnd() && c.current().Type == t
}

func (c *Compiler) advance() token.Token {
	tok := c.current()
	if !c.atEnd() {
		c.idx++
	}
	return tok
}

func (c *Compiler) atEnd() bool {
	return c.current().Type == token.EOF
}

func (c *Compiler) current() token.Token {
	return c.tokens[c.idx]
}

func (c *Compiler) previous() token.Token {
	if c.idx > 0 {
		return c.tokens[c.idx-1]
	}
	return c.current()
}

func (c *Compiler) error(msg string) {
	c.errorAt(c.current(), msg)
}

func (c *Compiler) errorAt(tok token.Token, msg string) {
	c.panic = true
	c.errs.Add(loxerr.NewParseError(tok.Line, tok.Lexeme, tok.Type == token.EOF, msg))
}

func (c *Compiler) errorAtLine(line int, msg string) {
	c.panic = true
	c.errs.Add(loxerr.NewParseError(line, "", false, msg))
}

func (c *Compiler) synchronize() {
	c.panic = false
	c.advance()

	for !c.atEnd() {
		if c.previous().Type == token.SEMICOLON {
			return
		}
		switch c.current().Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.RETURN:
			return
		}
		c.advance()
	}
}

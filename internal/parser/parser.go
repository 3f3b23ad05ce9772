// Package parser implements a recursive-descent, precedence-climbing
// parser that turns a WPL token stream into the parse tree described
// in SPEC_FULL.md §6. Grounded on the teacher's internal/parser
// package (Pratt-style expression parsing via per-level precedence)
// but rewritten against WPL's much smaller grammar.
package parser

import (
	"fmt"

	"github.com/wplc/compiler/internal/ast"
	"github.com/wplc/compiler/internal/lexer"
	"github.com/wplc/compiler/internal/token"
)

// Parser consumes tokens from a Lexer one at a time, keeping a single
// token of lookahead.
type Parser struct {
	lex  *lexer.Lexer
	cur  token.Token
	next token.Token

	errors []error
}

// New returns a Parser ready to parse the given source.
func New(filename, src string) *Parser {
	p := &Parser{lex: lexer.New(filename, src)}
	p.cur = p.lex.Next()
	p.next = p.lex.Next()
	return p
}

// Errors returns any parse errors accumulated while parsing. A
// non-empty result means the returned tree may be incomplete.
func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) advance() token.Token {
	tok := p.cur
	p.cur = p.next
	p.next = p.lex.Next()
	return tok
}

func (p *Parser) at(t token.Type) bool { return p.cur.Type == t }

func (p *Parser) expect(t token.Type) token.Token {
	if !p.at(t) {
		p.errorf("expected %s, got %s %q", t, p.cur.Type, p.cur.Lexeme)
		return p.cur
	}
	return p.advance()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Errorf("%s: %s", p.cur.Pos, fmt.Sprintf(format, args...)))
}

// synchronize skips tokens until a likely statement/declaration
// boundary, so one parse error doesn't cascade into a wall of noise.
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.SEMI) {
			p.advance()
			return
		}
		if p.at(token.RBRACE) {
			return
		}
		p.advance()
	}
}

// ParseCompilationUnit parses the whole token stream into a
// CompilationUnit.
func (p *Parser) ParseCompilationUnit() *ast.CompilationUnit {
	start := p.cur.Pos
	cu := &ast.CompilationUnit{BaseNode: ast.BaseNode{StartPos: start}}
	for !p.at(token.EOF) {
		d := p.parseComponent()
		if d != nil {
			cu.Components = append(cu.Components, d)
		}
	}
	cu.EndPos = p.cur.Pos
	return cu
}

func (p *Parser) parseComponent() ast.Decl {
	switch p.cur.Type {
	case token.FUNC:
		return p.parseFunction()
	case token.PROC:
		return p.parseProcedure()
	case token.EXTERN:
		return p.parseExtern()
	case token.ARRAY:
		return p.parseArrayDeclaration()
	case token.BOOL_TYPE, token.INT_TYPE, token.STR_TYPE:
		return p.parseScalarDeclaration()
	default:
		p.errorf("unexpected token %s at top level", p.cur.Type)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseType() *ast.TypeNode {
	start := p.cur.Pos
	switch p.cur.Type {
	case token.BOOL_TYPE:
		p.advance()
		return &ast.TypeNode{BaseNode: ast.BaseNode{StartPos: start, EndPos: start}, Kind: ast.TypeBool}
	case token.INT_TYPE:
		p.advance()
		return &ast.TypeNode{BaseNode: ast.BaseNode{StartPos: start, EndPos: start}, Kind: ast.TypeInt}
	case token.STR_TYPE:
		p.advance()
		return &ast.TypeNode{BaseNode: ast.BaseNode{StartPos: start, EndPos: start}, Kind: ast.TypeStr}
	case token.ARRAY:
		p.advance()
		elem := p.parseType()
		return &ast.TypeNode{BaseNode: ast.BaseNode{StartPos: start, EndPos: p.cur.Pos}, Kind: ast.TypeArray, Element: elem}
	default:
		p.errorf("expected a type, got %s", p.cur.Type)
		return &ast.TypeNode{BaseNode: ast.BaseNode{StartPos: start, EndPos: start}, Kind: ast.TypeInt}
	}
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	if p.at(token.RPAREN) {
		return params
	}
	for {
		start := p.cur.Pos
		t := p.parseType()
		name := p.expect(token.IDENT)
		params = append(params, &ast.Param{BaseNode: ast.BaseNode{StartPos: start, EndPos: name.Pos}, Name: name.Lexeme, Type: t})
		if !p.at(token.COMMA) {
			break
		}
		p.advance()
	}
	return params
}

func (p *Parser) parseFunction() *ast.Function {
	start := p.cur.Pos
	p.expect(token.FUNC)
	name := p.expect(token.IDENT)
	p.expect(token.LPAREN)
	params := p.parseParams()
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	retType := p.parseType()
	body := p.parseBlock()
	return &ast.Function{
		BaseNode:   ast.BaseNode{StartPos: start, EndPos: body.EndPos},
		Name:       name.Lexeme,
		ReturnType: retType,
		Params:     params,
		Body:       body,
	}
}

func (p *Parser) parseProcedure() *ast.Procedure {
	start := p.cur.Pos
	p.expect(token.PROC)
	name := p.expect(token.IDENT)
	p.expect(token.LPAREN)
	params := p.parseParams()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.Procedure{
		BaseNode: ast.BaseNode{StartPos: start, EndPos: body.EndPos},
		Name:     name.Lexeme,
		Params:   params,
		Body:     body,
	}
}

func (p *Parser) parseExtern() *ast.ExternDecl {
	start := p.cur.Pos
	p.expect(token.EXTERN)
	switch p.cur.Type {
	case token.FUNC:
		p.advance()
		name := p.expect(token.IDENT)
		p.expect(token.LPAREN)
		params := p.parseParams()
		p.expect(token.RPAREN)
		p.expect(token.COLON)
		retType := p.parseType()
		end := p.expect(token.SEMI)
		return &ast.ExternDecl{BaseNode: ast.BaseNode{StartPos: start, EndPos: end.Pos}, Name: name.Lexeme, ReturnType: retType, Params: params}
	case token.PROC:
		p.advance()
		name := p.expect(token.IDENT)
		p.expect(token.LPAREN)
		params := p.parseParams()
		p.expect(token.RPAREN)
		end := p.expect(token.SEMI)
		return &ast.ExternDecl{BaseNode: ast.BaseNode{StartPos: start, EndPos: end.Pos}, Name: name.Lexeme, Params: params}
	default:
		p.errorf("expected func or proc after extern, got %s", p.cur.Type)
		p.synchronize()
		return &ast.ExternDecl{BaseNode: ast.BaseNode{StartPos: start, EndPos: start}}
	}
}

func (p *Parser) parseArrayDeclaration() *ast.ArrayDeclaration {
	start := p.cur.Pos
	p.expect(token.ARRAY)
	elemType := p.parseType()
	name := p.expect(token.IDENT)
	p.expect(token.LBRACKET)
	length := p.parseExpr()
	p.expect(token.RBRACKET)
	end := p.expect(token.SEMI)
	return &ast.ArrayDeclaration{
		BaseNode: ast.BaseNode{StartPos: start, EndPos: end.Pos},
		Type:     elemType,
		Name:     name.Lexeme,
		Length:   length,
	}
}

func (p *Parser) parseScalarDeclaration() *ast.ScalarDeclaration {
	start := p.cur.Pos
	t := p.parseType()
	var scalars []*ast.Scalar
	for {
		nameTok := p.expect(token.IDENT)
		s := &ast.Scalar{BaseNode: ast.BaseNode{StartPos: nameTok.Pos, EndPos: nameTok.Pos}, Name: nameTok.Lexeme}
		if p.at(token.ASSIGN) {
			p.advance()
			s.Init = p.parseExpr()
			s.EndPos = p.cur.Pos
		}
		scalars = append(scalars, s)
		if !p.at(token.COMMA) {
			break
		}
		p.advance()
	}
	end := p.expect(token.SEMI)
	return &ast.ScalarDeclaration{BaseNode: ast.BaseNode{StartPos: start, EndPos: end.Pos}, Type: t, Scalars: scalars}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.LBRACE).Pos
	blk := &ast.Block{BaseNode: ast.BaseNode{StartPos: start}}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		s := p.parseStatement()
		if s != nil {
			blk.Statements = append(blk.Statements, s)
		}
	}
	end := p.expect(token.RBRACE)
	blk.EndPos = end.Pos
	return blk
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.WHILE:
		return p.parseLoop()
	case token.IF:
		return p.parseConditional()
	case token.SELECT:
		return p.parseSelect()
	case token.RETURN:
		return p.parseReturn()
	case token.BOOL_TYPE, token.INT_TYPE, token.STR_TYPE:
		return p.parseScalarDeclaration()
	case token.ARRAY:
		return p.parseArrayDeclaration()
	case token.IDENT:
		if p.next.Type == token.LPAREN {
			return p.parseCallStmt()
		}
		return p.parseAssignment()
	default:
		p.errorf("unexpected token %s in statement", p.cur.Type)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseLoop() *ast.Loop {
	start := p.cur.Pos
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.Loop{BaseNode: ast.BaseNode{StartPos: start, EndPos: body.EndPos}, Cond: cond, Body: body}
}

func (p *Parser) parseConditional() *ast.Conditional {
	start := p.cur.Pos
	p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	yes := p.parseBlock()
	c := &ast.Conditional{BaseNode: ast.BaseNode{StartPos: start, EndPos: yes.EndPos}, Cond: cond, YesBlock: yes}
	if p.at(token.ELSE) {
		p.advance()
		no := p.parseBlock()
		c.NoBlock = no
		c.EndPos = no.EndPos
	}
	return c
}

func (p *Parser) parseSelect() *ast.Select {
	start := p.cur.Pos
	p.expect(token.SELECT)
	p.expect(token.LBRACE)
	sel := &ast.Select{BaseNode: ast.BaseNode{StartPos: start}}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		altStart := p.cur.Pos
		p.expect(token.LPAREN)
		guard := p.parseExpr()
		p.expect(token.RPAREN)
		p.expect(token.COLON)
		body := p.parseStatement()
		sel.Alts = append(sel.Alts, &ast.SelectAlt{
			BaseNode: ast.BaseNode{StartPos: altStart, EndPos: p.cur.Pos},
			Guard:    guard,
			Body:     body,
		})
	}
	end := p.expect(token.RBRACE)
	sel.EndPos = end.Pos
	return sel
}

func (p *Parser) parseReturn() *ast.Return {
	start := p.cur.Pos
	p.expect(token.RETURN)
	r := &ast.Return{BaseNode: ast.BaseNode{StartPos: start}}
	if !p.at(token.SEMI) {
		r.Value = p.parseExpr()
	}
	end := p.expect(token.SEMI)
	r.EndPos = end.Pos
	return r
}

func (p *Parser) parseCallStmt() *ast.CallStmt {
	call := p.parseCallExpr()
	end := p.expect(token.SEMI)
	return &ast.CallStmt{BaseNode: ast.BaseNode{StartPos: call.StartPos, EndPos: end.Pos}, Call: call}
}

func (p *Parser) parseAssignment() *ast.Assignment {
	start := p.cur.Pos
	a := &ast.Assignment{BaseNode: ast.BaseNode{StartPos: start}}
	for {
		nameTok := p.expect(token.IDENT)
		a.Targets = append(a.Targets, &ast.IdentExpr{BaseNode: ast.BaseNode{StartPos: nameTok.Pos, EndPos: nameTok.Pos}, Name: nameTok.Lexeme})
		p.expect(token.ASSIGN)
		a.Expressions = append(a.Expressions, p.parseExpr())
		if !p.at(token.COMMA) {
			break
		}
		p.advance()
	}
	end := p.expect(token.SEMI)
	a.EndPos = end.Pos
	return a
}

// --- expressions: precedence-climbing, lowest to highest ---
// or -> and -> equality -> relational -> additive -> multiplicative -> unary -> primary

func (p *Parser) parseExpr() ast.Expr { return p.parseOr() }

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(token.OR) {
		start := left.Pos()
		p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: right.End()}, Op: ast.OpOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.at(token.AND) {
		start := left.Pos()
		p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: right.End()}, Op: ast.OpAnd, Left: left, Right: right}
	}
	return left
}

// parseEquality consumes the bare `=` lexeme as the equality operator.
// WPL overloads `=` between assignment's target/value separator and
// expression-level equality; the two never collide because an
// assignment's target and its `=` separator are consumed directly by
// parseAssignment/parseScalarDeclaration, never through parseExpr — by
// the time control reaches here, any `=` still in the token stream is
// necessarily in expression position.
func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.at(token.ASSIGN) || p.at(token.NOTEQUAL) {
		op := ast.OpEqual
		if p.cur.Type == token.NOTEQUAL {
			op = ast.OpNotEqual
		}
		start := left.Pos()
		p.advance()
		right := p.parseRelational()
		left = &ast.BinaryExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: right.End()}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for p.at(token.LESS) || p.at(token.LEQ) || p.at(token.GREATER) || p.at(token.GEQ) {
		var op ast.BinaryOp
		switch p.cur.Type {
		case token.LESS:
			op = ast.OpLess
		case token.LEQ:
			op = ast.OpLeq
		case token.GREATER:
			op = ast.OpGreater
		default:
			op = ast.OpGeq
		}
		start := left.Pos()
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: right.End()}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := ast.OpAdd
		if p.cur.Type == token.MINUS {
			op = ast.OpSub
		}
		start := left.Pos()
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: right.End()}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.at(token.STAR) || p.at(token.SLASH) {
		op := ast.OpMul
		if p.cur.Type == token.SLASH {
			op = ast.OpDiv
		}
		start := left.Pos()
		p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: right.End()}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Type {
	case token.MINUS:
		start := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: operand.End()}, Op: ast.UnaryMinus, Operand: operand}
	case token.NOT:
		start := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: operand.End()}, Op: ast.UnaryNot, Operand: operand}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles the array-subscript/length forms layered onto
// a primary expression; WPL has no other postfix operators.
func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for p.at(token.LBRACKET) {
		start := e.Pos()
		p.advance()
		if p.at(token.RBRACKET) {
			end := p.advance()
			e = &ast.ArrayLengthExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: end.Pos}, Array: e}
			continue
		}
		idx := p.parseExpr()
		end := p.expect(token.RBRACKET)
		e = &ast.SubscriptExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: end.Pos}, Array: e, Index: idx}
	}
	return e
}

func (p *Parser) parseCallExpr() *ast.CallExpr {
	start := p.cur.Pos
	name := p.expect(token.IDENT)
	p.expect(token.LPAREN)
	var args []ast.Expr
	if !p.at(token.RPAREN) {
		for {
			args = append(args, p.parseExpr())
			if !p.at(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	end := p.expect(token.RPAREN)
	return &ast.CallExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: end.Pos}, Callee: name.Lexeme, Args: args}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.cur.Type {
	case token.TRUE:
		tok := p.advance()
		return &ast.ConstantExpr{BaseNode: ast.BaseNode{StartPos: tok.Pos, EndPos: tok.Pos}, Kind: ast.LiteralBool, Text: "true"}
	case token.FALSE:
		tok := p.advance()
		return &ast.ConstantExpr{BaseNode: ast.BaseNode{StartPos: tok.Pos, EndPos: tok.Pos}, Kind: ast.LiteralBool, Text: "false"}
	case token.INT_LIT:
		tok := p.advance()
		return &ast.ConstantExpr{BaseNode: ast.BaseNode{StartPos: tok.Pos, EndPos: tok.Pos}, Kind: ast.LiteralInt, Text: tok.Lexeme}
	case token.STR_LIT:
		tok := p.advance()
		return &ast.ConstantExpr{BaseNode: ast.BaseNode{StartPos: tok.Pos, EndPos: tok.Pos}, Kind: ast.LiteralStr, Text: tok.Lexeme}
	case token.LPAREN:
		start := p.cur.Pos
		p.advance()
		inner := p.parseExpr()
		end := p.expect(token.RPAREN)
		return &ast.ParenExpr{BaseNode: ast.BaseNode{StartPos: start, EndPos: end.Pos}, Inner: inner}
	case token.IDENT:
		if p.next.Type == token.LPAREN {
			return p.parseCallExpr()
		}
		tok := p.advance()
		return &ast.IdentExpr{BaseNode: ast.BaseNode{StartPos: tok.Pos, EndPos: tok.Pos}, Name: tok.Lexeme}
	default:
		p.errorf("unexpected token %s in expression", p.cur.Type)
		tok := p.advance()
		return &ast.IdentExpr{BaseNode: ast.BaseNode{StartPos: tok.Pos, EndPos: tok.Pos}, Name: tok.Lexeme}
	}
}

// Package parser builds the raw parsed tree for the source subset. It is
// the front-end collaborator of the core pipeline; full grammar coverage
// of the source language is out of scope.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/moonsmith/moonsmith/internal/ast"
	"github.com/moonsmith/moonsmith/internal/lexer"
)

// Error captures a parse error with location context.
type Error struct {
	Message string
	Span    lexer.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// Parser consumes a token stream and produces a raw tree.
type Parser struct {
	toks []lexer.Token
	pos  int
	errs []error
}

// Parse tokenizes and parses source text. On failure it returns the
// joined parse errors; the returned program is nil in that case.
func Parse(src string) (*ast.Program, error) {
	lx := lexer.New(src)
	toks := lx.Tokens()
	for _, lerr := range lx.Errors {
		return nil, lerr
	}

	p := &Parser{toks: toks}
	prog := p.parseProgram()
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return prog, nil
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }
func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) next() lexer.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(t lexer.TokenType) bool { return p.cur().Type == t }

// accept consumes the current token when it matches.
func (p *Parser) accept(t lexer.TokenType) bool {
	if p.at(t) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if p.at(t) {
		return p.next()
	}
	p.errorf(p.cur().Span, "expected %q, found %q", string(t), p.cur().Raw)
	return p.cur()
}

func (p *Parser) errorf(span lexer.Span, format string, args ...any) {
	p.errs = append(p.errs, &Error{Message: fmt.Sprintf(format, args...), Span: span})
}

// spanFrom widens a span from a start position to the end of the
// previously consumed token.
func (p *Parser) spanFrom(start lexer.Position) lexer.Span {
	end := start
	if p.pos > 0 {
		end = p.toks[p.pos-1].Span.End
	}
	return lexer.Span{Start: start, End: end}
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	start := p.cur().Span.Start
	for !p.at(lexer.EOF) {
		stmt := p.parseStmt()
		if stmt == nil {
			// Error recovery: skip the offending token.
			p.next()
			continue
		}
		prog.Body = append(prog.Body, stmt)
	}
	prog.Loc = p.spanFrom(start)
	return prog
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVarDecl(true)
	case lexer.FUNCTION:
		return p.parseFuncDecl(false)
	case lexer.ASYNC:
		if p.peek().Type == lexer.FUNCTION {
			p.next()
			return p.parseFuncDecl(true)
		}
		return p.parseExprStmt()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		tok := p.next()
		p.accept(lexer.SEMICOLON)
		return &ast.BreakStmt{Loc: tok.Span}
	case lexer.CONTINUE:
		tok := p.next()
		p.accept(lexer.SEMICOLON)
		return &ast.ContinueStmt{Loc: tok.Span}
	case lexer.THROW:
		tok := p.next()
		arg := p.parseExpr(precLowest)
		p.accept(lexer.SEMICOLON)
		return &ast.ThrowStmt{Arg: arg, Loc: p.spanFrom(tok.Span.Start)}
	case lexer.TRY:
		return p.parseTry()
	case lexer.SEMICOLON:
		p.next()
		return p.parseStmt()
	case lexer.EOF:
		p.errorf(p.cur().Span, "unexpected end of input")
		return nil
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	start := p.cur().Span.Start
	x := p.parseExpr(precLowest)
	if x == nil {
		return nil
	}
	p.accept(lexer.SEMICOLON)
	return &ast.ExprStmt{X: x, Loc: p.spanFrom(start)}
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.expect(lexer.LBRACE).Span.Start
	blk := &ast.BlockStmt{}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		stmt := p.parseStmt()
		if stmt == nil {
			p.next()
			continue
		}
		blk.List = append(blk.List, stmt)
	}
	p.expect(lexer.RBRACE)
	blk.Loc = p.spanFrom(start)
	return blk
}

// parseVarDecl parses a declaration statement. When consumeSemi is false
// the trailing semicolon is left alone (for-loop clauses).
func (p *Parser) parseVarDecl(consumeSemi bool) *ast.VarDecl {
	kindTok := p.next()
	decl := &ast.VarDecl{Kind: kindTok.Value}

	for {
		start := p.cur().Span.Start
		target := p.parseBindingTarget()
		d := &ast.VarDeclarator{Target: target}
		if p.accept(lexer.ASSIGN) {
			d.Init = p.parseExpr(precAssign + 1)
		}
		d.Loc = p.spanFrom(start)
		decl.Decls = append(decl.Decls, d)
		if !p.accept(lexer.COMMA) {
			break
		}
	}

	if consumeSemi {
		p.accept(lexer.SEMICOLON)
	}
	decl.Loc = p.spanFrom(kindTok.Span.Start)
	return decl
}

func (p *Parser) parseFuncDecl(async bool) ast.Stmt {
	start := p.expect(lexer.FUNCTION).Span.Start
	name := p.parseIdent()
	params := p.parseParams()
	body := p.parseBlock()
	return &ast.FuncDecl{
		Async:  async,
		Name:   name,
		Params: params,
		Body:   body,
		Loc:    p.spanFrom(start),
	}
}

func (p *Parser) parseParams() []ast.Expr {
	p.expect(lexer.LPAREN)
	var params []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		params = append(params, p.parseBindingTarget())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *Parser) parseIdent() *ast.Ident {
	tok := p.expect(lexer.IDENT)
	return &ast.Ident{Name: tok.Value, Loc: tok.Span}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.next().Span.Start
	p.expect(lexer.LPAREN)
	test := p.parseExpr(precLowest)
	p.expect(lexer.RPAREN)
	then := p.parseStmt()
	var alt ast.Stmt
	if p.accept(lexer.ELSE) {
		alt = p.parseStmt()
	}
	return &ast.IfStmt{Test: test, Then: then, Else: alt, Loc: p.spanFrom(start)}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.next().Span.Start
	p.expect(lexer.LPAREN)
	test := p.parseExpr(precLowest)
	p.expect(lexer.RPAREN)
	body := p.parseStmt()
	return &ast.WhileStmt{Test: test, Body: body, Loc: p.spanFrom(start)}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	start := p.next().Span.Start
	body := p.parseStmt()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	test := p.parseExpr(precLowest)
	p.expect(lexer.RPAREN)
	p.accept(lexer.SEMICOLON)
	return &ast.DoWhileStmt{Body: body, Test: test, Loc: p.spanFrom(start)}
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.next().Span.Start
	p.expect(lexer.LPAREN)

	// Distinguish for / for-in / for-of by the clause head.
	var init ast.Node
	if !p.at(lexer.SEMICOLON) {
		if p.at(lexer.VAR) || p.at(lexer.LET) || p.at(lexer.CONST) {
			init = p.parseVarDecl(false)
		} else {
			init = p.parseExpr(precLowest)
		}
	}

	if p.at(lexer.IN) || p.at(lexer.OF) {
		isOf := p.next().Type == lexer.OF
		right := p.parseExpr(precLowest)
		p.expect(lexer.RPAREN)
		body := p.parseStmt()
		if isOf {
			return &ast.ForOfStmt{Left: init, Right: right, Body: body, Loc: p.spanFrom(start)}
		}
		return &ast.ForInStmt{Left: init, Right: right, Body: body, Loc: p.spanFrom(start)}
	}

	p.expect(lexer.SEMICOLON)
	var test, post ast.Expr
	if !p.at(lexer.SEMICOLON) {
		test = p.parseExpr(precLowest)
	}
	p.expect(lexer.SEMICOLON)
	if !p.at(lexer.RPAREN) {
		post = p.parseExpr(precLowest)
	}
	p.expect(lexer.RPAREN)
	body := p.parseStmt()
	return &ast.ForStmt{Init: init, Test: test, Post: post, Body: body, Loc: p.spanFrom(start)}
}

func (p *Parser) parseSwitch() ast.Stmt {
	start := p.next().Span.Start
	p.expect(lexer.LPAREN)
	disc := p.parseExpr(precLowest)
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)

	sw := &ast.SwitchStmt{Disc: disc}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		caseStart := p.cur().Span.Start
		clause := &ast.CaseClause{}
		if p.accept(lexer.CASE) {
			clause.Test = p.parseExpr(precLowest)
		} else {
			p.expect(lexer.DEFAULT)
		}
		p.expect(lexer.COLON)
		for !p.at(lexer.CASE) && !p.at(lexer.DEFAULT) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			stmt := p.parseStmt()
			if stmt == nil {
				p.next()
				continue
			}
			clause.Body = append(clause.Body, stmt)
		}
		clause.Loc = p.spanFrom(caseStart)
		sw.Cases = append(sw.Cases, clause)
	}
	p.expect(lexer.RBRACE)
	sw.Loc = p.spanFrom(start)
	return sw
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.next().Span.Start
	var arg ast.Expr
	if !p.at(lexer.SEMICOLON) && !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		arg = p.parseExpr(precLowest)
	}
	p.accept(lexer.SEMICOLON)
	return &ast.ReturnStmt{Arg: arg, Loc: p.spanFrom(start)}
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.next().Span.Start
	body := p.parseBlock()
	stmt := &ast.TryStmt{Body: body}

	if p.at(lexer.CATCH) {
		catchStart := p.next().Span.Start
		clause := &ast.CatchClause{}
		if p.accept(lexer.LPAREN) {
			clause.Param = p.parseIdent()
			p.expect(lexer.RPAREN)
		}
		clause.Body = p.parseBlock()
		clause.Loc = p.spanFrom(catchStart)
		stmt.Catch = clause
	}
	if p.accept(lexer.FINALLY) {
		stmt.Finally = p.parseBlock()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.errorf(p.cur().Span, "try statement requires a catch or finally clause")
	}
	stmt.Loc = p.spanFrom(start)
	return stmt
}

// numberValue converts a numeric token's raw text.
func numberValue(tok lexer.Token) float64 {
	f, err := strconv.ParseFloat(tok.Raw, 64)
	if err != nil {
		return 0
	}
	return f
}

package parser

import (
	"github.com/moonsmith/moonsmith/internal/ast"
	"github.com/moonsmith/moonsmith/internal/lexer"
)

// Expression precedence levels, lowest binds loosest.
const (
	precLowest = iota
	precAssign
	precConditional
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPow
	precPrefix
	precPostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:         precAssign,
	lexer.PLUS_ASSIGN:    precAssign,
	lexer.MINUS_ASSIGN:   precAssign,
	lexer.STAR_ASSIGN:    precAssign,
	lexer.SLASH_ASSIGN:   precAssign,
	lexer.PERCENT_ASSIGN: precAssign,
	lexer.QUESTION:       precConditional,
	lexer.OR:             precOr,
	lexer.AND:            precAnd,
	lexer.EQ:             precEquality,
	lexer.NOT_EQ:         precEquality,
	lexer.STRICT_EQ:      precEquality,
	lexer.STRICT_NEQ:     precEquality,
	lexer.LT:             precComparison,
	lexer.LE:             precComparison,
	lexer.GT:             precComparison,
	lexer.GE:             precComparison,
	lexer.PLUS:           precSum,
	lexer.MINUS:          precSum,
	lexer.STAR:           precProduct,
	lexer.SLASH:          precProduct,
	lexer.PERCENT:        precProduct,
	lexer.POW:            precPow,
	lexer.INC:            precPostfix,
	lexer.DEC:            precPostfix,
	lexer.LPAREN:         precPostfix,
	lexer.LBRACKET:       precPostfix,
	lexer.DOT:            precPostfix,
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return precLowest
}

// parseExpr is the Pratt driver: parse a prefix form, then fold infix and
// postfix operators while they bind at least as tightly as minPrec.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for {
		prec := p.curPrecedence()
		if prec == precLowest || prec < minPrec {
			return left
		}
		left = p.parseInfix(left, prec)
		if left == nil {
			return nil
		}
	}
}

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.IDENT:
		p.next()
		return &ast.Ident{Name: tok.Value, Loc: tok.Span}
	case lexer.NUMBER:
		p.next()
		return &ast.Literal{Type: "number", Num: numberValue(tok), Raw: tok.Raw, Loc: tok.Span}
	case lexer.STRING:
		p.next()
		return &ast.Literal{Type: "string", Str: tok.Value, Raw: tok.Raw, Loc: tok.Span}
	case lexer.TRUE, lexer.FALSE:
		p.next()
		return &ast.Literal{Type: "boolean", Bool: tok.Type == lexer.TRUE, Raw: tok.Raw, Loc: tok.Span}
	case lexer.NULL:
		p.next()
		return &ast.Literal{Type: "null", Raw: tok.Raw, Loc: tok.Span}
	case lexer.MINUS, lexer.PLUS, lexer.BANG, lexer.TYPEOF:
		p.next()
		arg := p.parseExpr(precPrefix)
		return &ast.UnaryExpr{Op: opName(tok), Arg: arg, Loc: p.spanFrom(tok.Span.Start)}
	case lexer.INC, lexer.DEC:
		p.next()
		arg := p.parseExpr(precPrefix)
		return &ast.UpdateExpr{Op: tok.Raw, Prefix: true, Arg: arg, Loc: p.spanFrom(tok.Span.Start)}
	case lexer.AWAIT:
		p.next()
		arg := p.parseExpr(precPrefix)
		return &ast.AwaitExpr{Arg: arg, Loc: p.spanFrom(tok.Span.Start)}
	case lexer.NEW:
		return p.parseNew()
	case lexer.FUNCTION, lexer.ASYNC:
		return p.parseFuncExpr()
	case lexer.LPAREN:
		p.next()
		inner := p.parseExpr(precLowest)
		p.expect(lexer.RPAREN)
		return inner
	case lexer.LBRACKET:
		return p.parseArrayLit()
	case lexer.LBRACE:
		return p.parseObjectLit()
	default:
		p.errorf(tok.Span, "unexpected token %q in expression", tok.Raw)
		return nil
	}
}

// opName maps a token to its operator spelling. Keyword operators carry
// their keyword spelling rather than the upper-case token type.
func opName(tok lexer.Token) string {
	if tok.Type == lexer.TYPEOF {
		return "typeof"
	}
	return tok.Raw
}

func (p *Parser) parseInfix(left ast.Expr, prec int) ast.Expr {
	tok := p.cur()
	start := left.Span().Start

	switch tok.Type {
	case lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN,
		lexer.STAR_ASSIGN, lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN:
		p.next()
		// Right-associative.
		value := p.parseExpr(prec)
		return &ast.AssignExpr{Op: tok.Raw, Target: left, Value: value, Loc: p.spanFrom(start)}

	case lexer.QUESTION:
		p.next()
		then := p.parseExpr(precAssign)
		p.expect(lexer.COLON)
		alt := p.parseExpr(precAssign)
		return &ast.CondExpr{Test: left, Then: then, Else: alt, Loc: p.spanFrom(start)}

	case lexer.OR, lexer.AND:
		p.next()
		right := p.parseExpr(prec + 1)
		return &ast.LogicalExpr{Op: tok.Raw, Left: left, Right: right, Loc: p.spanFrom(start)}

	case lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NEQ,
		lexer.LT, lexer.LE, lexer.GT, lexer.GE,
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT:
		p.next()
		right := p.parseExpr(prec + 1)
		return &ast.BinaryExpr{Op: tok.Raw, Left: left, Right: right, Loc: p.spanFrom(start)}

	case lexer.POW:
		p.next()
		// Right-associative.
		right := p.parseExpr(prec)
		return &ast.BinaryExpr{Op: tok.Raw, Left: left, Right: right, Loc: p.spanFrom(start)}

	case lexer.INC, lexer.DEC:
		p.next()
		return &ast.UpdateExpr{Op: tok.Raw, Prefix: false, Arg: left, Loc: p.spanFrom(start)}

	case lexer.LPAREN:
		args := p.parseArgs()
		return &ast.CallExpr{Callee: left, Args: args, Loc: p.spanFrom(start)}

	case lexer.LBRACKET:
		p.next()
		idx := p.parseExpr(precLowest)
		p.expect(lexer.RBRACKET)
		return &ast.MemberExpr{Object: left, Property: idx, Computed: true, Loc: p.spanFrom(start)}

	case lexer.DOT:
		p.next()
		prop := p.parseIdent()
		return &ast.MemberExpr{Object: left, Property: prop, Loc: p.spanFrom(start)}

	default:
		p.errorf(tok.Span, "unexpected operator %q", tok.Raw)
		return nil
	}
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseExpr(precAssign))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parseNew() ast.Expr {
	start := p.expect(lexer.NEW).Span.Start

	// The callee is a member chain; the argument list, when present,
	// belongs to the new-expression itself.
	callee := p.parsePrefix()
	for p.at(lexer.DOT) || p.at(lexer.LBRACKET) {
		callee = p.parseInfix(callee, precPostfix)
	}

	var args []ast.Expr
	if p.at(lexer.LPAREN) {
		args = p.parseArgs()
	}
	return &ast.NewExpr{Callee: callee, Args: args, Loc: p.spanFrom(start)}
}

func (p *Parser) parseFuncExpr() ast.Expr {
	start := p.cur().Span.Start
	async := p.accept(lexer.ASYNC)
	p.expect(lexer.FUNCTION)

	var name *ast.Ident
	if p.at(lexer.IDENT) {
		name = p.parseIdent()
	}
	params := p.parseParams()
	body := p.parseBlock()
	return &ast.FuncExpr{Async: async, Name: name, Params: params, Body: body, Loc: p.spanFrom(start)}
}

func (p *Parser) parseArrayLit() ast.Expr {
	start := p.expect(lexer.LBRACKET).Span.Start
	lit := &ast.ArrayLit{}
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		if p.at(lexer.COMMA) {
			// Elision: record a hole.
			lit.Elems = append(lit.Elems, nil)
			p.next()
			continue
		}
		lit.Elems = append(lit.Elems, p.parseExpr(precAssign))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	lit.Loc = p.spanFrom(start)
	return lit
}

func (p *Parser) parseObjectLit() ast.Expr {
	start := p.expect(lexer.LBRACE).Span.Start
	lit := &ast.ObjectLit{}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		lit.Props = append(lit.Props, p.parseProperty(false))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	lit.Loc = p.spanFrom(start)
	return lit
}

// parseProperty parses one object entry. In pattern position the value is
// a binding target and a trailing "= default" wraps it in an
// AssignPattern.
func (p *Parser) parseProperty(pattern bool) *ast.Property {
	start := p.cur().Span.Start
	prop := &ast.Property{}

	switch {
	case p.at(lexer.LBRACKET):
		p.next()
		prop.Key = p.parseExpr(precLowest)
		p.expect(lexer.RBRACKET)
		prop.Computed = true
	case p.at(lexer.STRING):
		tok := p.next()
		prop.Key = &ast.Literal{Type: "string", Str: tok.Value, Raw: tok.Raw, Loc: tok.Span}
	case p.at(lexer.NUMBER):
		tok := p.next()
		prop.Key = &ast.Literal{Type: "number", Num: numberValue(tok), Raw: tok.Raw, Loc: tok.Span}
	default:
		prop.Key = p.parseIdent()
	}

	if p.accept(lexer.COLON) {
		if pattern {
			prop.Value = p.parseBindingTarget()
		} else {
			prop.Value = p.parseExpr(precAssign)
		}
	} else {
		ident, ok := prop.Key.(*ast.Ident)
		if !ok {
			p.errorf(p.cur().Span, "shorthand property requires an identifier key")
			ident = &ast.Ident{Loc: p.cur().Span}
		}
		prop.Value = &ast.Ident{Name: ident.Name, Loc: ident.Loc}
		prop.Shorthand = true
	}

	if pattern && p.accept(lexer.ASSIGN) {
		def := p.parseExpr(precAssign)
		prop.Value = &ast.AssignPattern{Target: prop.Value, Default: def, Loc: p.spanFrom(start)}
	}

	prop.Loc = p.spanFrom(start)
	return prop
}

// parseBindingTarget parses an identifier or destructuring pattern in a
// binding position (declarator target, function parameter, pattern
// element).
func (p *Parser) parseBindingTarget() ast.Expr {
	switch p.cur().Type {
	case lexer.IDENT:
		return p.parseIdent()
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	case lexer.LBRACE:
		return p.parseObjectPattern()
	default:
		p.errorf(p.cur().Span, "expected binding target, found %q", p.cur().Raw)
		tok := p.next()
		return &ast.Ident{Loc: tok.Span}
	}
}

func (p *Parser) parseArrayPattern() ast.Expr {
	start := p.expect(lexer.LBRACKET).Span.Start
	pat := &ast.ArrayPattern{}
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		if p.at(lexer.COMMA) {
			// Hole: the source slot is skipped and binds nothing.
			pat.Elems = append(pat.Elems, nil)
			p.next()
			continue
		}
		if p.at(lexer.ELLIPSIS) {
			restStart := p.next().Span.Start
			arg := p.parseBindingTarget()
			pat.Elems = append(pat.Elems, &ast.RestElement{Arg: arg, Loc: p.spanFrom(restStart)})
			if !p.accept(lexer.COMMA) {
				break
			}
			continue
		}
		pat.Elems = append(pat.Elems, p.parsePatternElement())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	pat.Loc = p.spanFrom(start)
	return pat
}

// parsePatternElement parses a binding target with an optional default.
func (p *Parser) parsePatternElement() ast.Expr {
	start := p.cur().Span.Start
	target := p.parseBindingTarget()
	if p.accept(lexer.ASSIGN) {
		def := p.parseExpr(precAssign)
		return &ast.AssignPattern{Target: target, Default: def, Loc: p.spanFrom(start)}
	}
	return target
}

func (p *Parser) parseObjectPattern() ast.Expr {
	start := p.expect(lexer.LBRACE).Span.Start
	pat := &ast.ObjectPattern{}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.at(lexer.ELLIPSIS) {
			restStart := p.next().Span.Start
			arg := p.parseBindingTarget()
			// Carried through as a property-position rest; the lowerer
			// decides whether the construct is supported.
			pat.Props = append(pat.Props, &ast.Property{
				Value: &ast.RestElement{Arg: arg, Loc: p.spanFrom(restStart)},
				Loc:   p.spanFrom(restStart),
			})
			if !p.accept(lexer.COMMA) {
				break
			}
			continue
		}
		pat.Props = append(pat.Props, p.parseProperty(true))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	pat.Loc = p.spanFrom(start)
	return pat
}

// Recursive descent parser for the toy language's single-function grammar.
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// Binary operators (assignment aside) are right-associative by construction:
// sum, product, and compare each recurse into themselves on the right-hand
// side rather than looping, so "a - b - c" parses as Sub(a, Sub(b, c)).
// Callers that need the flattened left-associative shape must do their own
// rewriting; this parser preserves the grammar's stated associativity.
package parser

import (
	"toyjit/ast"
	"toyjit/token"
)

type Parser struct {
	tokens []token.Token
	pos    int
}

// Make creates a Parser over a complete token stream, including the
// trailing EOF token the lexer appends.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

// peekAt looks ahead offset tokens without consuming anything. Requests
// past the end of the stream return the trailing EOF token.
func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isFinished() {
		p.pos++
	}
	return tok
}

func (p *Parser) isFinished() bool {
	return p.peek().Is(token.EOF)
}

func (p *Parser) check(tt token.TokenType) bool {
	return p.peek().Is(tt)
}

// match consumes the current token only if it has type tt, reporting
// whether it did.
func (p *Parser) match(tt token.TokenType) bool {
	if !p.check(tt) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tt token.TokenType, message string) (token.Token, error) {
	if !p.check(tt) {
		tok := p.peek()
		return token.Token{}, newSyntaxError(tok.Line, tok.Column, "%s, found %s", message, tok)
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// Function parses a single "fn name(params) -> (ret) { ... }" definition.
// It is the only public entry point — the grammar allows at most one
// function per compile call.
func Function(tokens []token.Token) (ast.Function, error) {
	p := Make(tokens)
	p.skipNewlines()

	if _, err := p.expect(token.FN, "expected 'fn'"); err != nil {
		return ast.Function{}, err
	}
	nameTok, err := p.expect(token.IDENTIFIER, "expected function name")
	if err != nil {
		return ast.Function{}, err
	}
	if _, err := p.expect(token.LPAREN, "expected '(' after function name"); err != nil {
		return ast.Function{}, err
	}
	var params []string
	if !p.check(token.RPAREN) {
		for {
			idTok, err := p.expect(token.IDENTIFIER, "expected parameter name")
			if err != nil {
				return ast.Function{}, err
			}
			params = append(params, idTok.Lexeme)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after parameter list"); err != nil {
		return ast.Function{}, err
	}
	if _, err := p.expect(token.ARROW, "expected '->' after parameter list"); err != nil {
		return ast.Function{}, err
	}
	if _, err := p.expect(token.LPAREN, "expected '(' before return variable"); err != nil {
		return ast.Function{}, err
	}
	retTok, err := p.expect(token.IDENTIFIER, "expected return variable name")
	if err != nil {
		return ast.Function{}, err
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after return variable"); err != nil {
		return ast.Function{}, err
	}
	if _, err := p.expect(token.LBRACE, "expected '{' to start function body"); err != nil {
		return ast.Function{}, err
	}
	if _, err := p.expect(token.NEWLINE, "expected newline after '{'"); err != nil {
		return ast.Function{}, err
	}
	body, err := p.statements()
	if err != nil {
		return ast.Function{}, err
	}
	if _, err := p.expect(token.RBRACE, "expected '}' to close function body"); err != nil {
		return ast.Function{}, err
	}
	p.skipNewlines()
	if !p.isFinished() {
		tok := p.peek()
		return ast.Function{}, newSyntaxError(tok.Line, tok.Column, "unexpected trailing input, found %s", tok)
	}

	return ast.Function{Name: nameTok.Lexeme, Params: params, Return: retTok.Lexeme, Body: body}, nil
}

// statements parses "stmt*" up to (but not consuming) the closing '}'.
func (p *Parser) statements() ([]ast.Expr, error) {
	var stmts []ast.Expr
	for !p.check(token.RBRACE) && !p.isFinished() {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, expr)
		if _, err := p.expect(token.NEWLINE, "expected newline after statement"); err != nil {
			return nil, err
		}
	}
	return stmts, nil
}

// expression is the entry point for a single statement's right-hand side.
// Precedence, low to high: if/while (keyword-led), assignment, comparison,
// additive, multiplicative, atom.
func (p *Parser) expression() (ast.Expr, error) {
	switch {
	case p.check(token.IF):
		return p.ifElse()
	case p.check(token.WHILE):
		return p.whileLoop()
	case p.check(token.IDENTIFIER) && p.peekAt(1).Is(token.ASSIGN):
		name := p.advance().Lexeme
		p.advance() // '='
		rhs, err := p.expression()
		if err != nil {
			return nil, err
		}
		return ast.Assign{Name: name, Rhs: rhs}, nil
	default:
		return p.compare()
	}
}

func (p *Parser) ifElse() (ast.Expr, error) {
	p.advance() // 'if'
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	thenBody, err := p.bracedBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ELSE, "expected 'else' — if without else is not supported"); err != nil {
		return nil, err
	}
	elseBody, err := p.bracedBlock()
	if err != nil {
		return nil, err
	}
	return ast.IfElse{Cond: cond, Then: thenBody, Else: elseBody}, nil
}

func (p *Parser) whileLoop() (ast.Expr, error) {
	p.advance() // 'while'
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.bracedBlock()
	if err != nil {
		return nil, err
	}
	return ast.WhileLoop{Cond: cond, Body: body}, nil
}

// bracedBlock parses "{" NL stmt* "}", used by both if/else branches and
// while bodies.
func (p *Parser) bracedBlock() ([]ast.Expr, error) {
	if _, err := p.expect(token.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.NEWLINE, "expected newline after '{'"); err != nil {
		return nil, err
	}
	stmts, err := p.statements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "expected '}'"); err != nil {
		return nil, err
	}
	return stmts, nil
}

// compare := sum ( cmpOp compare )?  — right-associative, optional.
func (p *Parser) compare() (ast.Expr, error) {
	lhs, err := p.sum()
	if err != nil {
		return nil, err
	}
	op, ok := cmpOpFor(p.peek().TokenType)
	if !ok {
		return lhs, nil
	}
	p.advance()
	rhs, err := p.compare()
	if err != nil {
		return nil, err
	}
	return ast.Compare{Op: op, Lhs: lhs, Rhs: rhs}, nil
}

func cmpOpFor(tt token.TokenType) (ast.CmpOp, bool) {
	switch tt {
	case token.EQUAL_EQUAL:
		return ast.Eq, true
	case token.NOT_EQUAL:
		return ast.Ne, true
	case token.LESS:
		return ast.Lt, true
	case token.LESS_EQUAL:
		return ast.Le, true
	case token.LARGER:
		return ast.Gt, true
	case token.LARGER_EQUAL:
		return ast.Ge, true
	default:
		return 0, false
	}
}

// sum := product ( ("+"|"-") sum )? — right-associative, optional.
func (p *Parser) sum() (ast.Expr, error) {
	lhs, err := p.product()
	if err != nil {
		return nil, err
	}
	switch {
	case p.match(token.ADD):
		rhs, err := p.sum()
		if err != nil {
			return nil, err
		}
		return ast.Binary{Op: ast.Add, Lhs: lhs, Rhs: rhs}, nil
	case p.match(token.SUB):
		rhs, err := p.sum()
		if err != nil {
			return nil, err
		}
		return ast.Binary{Op: ast.Sub, Lhs: lhs, Rhs: rhs}, nil
	default:
		return lhs, nil
	}
}

// product := atom ( ("*"|"/") product )? — right-associative, optional.
func (p *Parser) product() (ast.Expr, error) {
	lhs, err := p.atom()
	if err != nil {
		return nil, err
	}
	switch {
	case p.match(token.MULT):
		rhs, err := p.product()
		if err != nil {
			return nil, err
		}
		return ast.Binary{Op: ast.Mul, Lhs: lhs, Rhs: rhs}, nil
	case p.match(token.DIV):
		rhs, err := p.product()
		if err != nil {
			return nil, err
		}
		return ast.Binary{Op: ast.Div, Lhs: lhs, Rhs: rhs}, nil
	default:
		return lhs, nil
	}
}

// atom := "(" expr ")" | call | identifier | literal | "&" identifier
func (p *Parser) atom() (ast.Expr, error) {
	switch {
	case p.check(token.IDENTIFIER) && p.peekAt(1).Is(token.LPAREN):
		return p.call()
	case p.check(token.LPAREN):
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "expected ')' to close parenthesized expression"); err != nil {
			return nil, err
		}
		return inner, nil
	case p.check(token.IDENTIFIER):
		return ast.Identifier{Name: p.advance().Lexeme}, nil
	case p.check(token.INT):
		return ast.Literal{Value: p.advance().Lexeme}, nil
	case p.check(token.AMP):
		p.advance()
		idTok, err := p.expect(token.IDENTIFIER, "expected identifier after '&'")
		if err != nil {
			return nil, err
		}
		return ast.GlobalDataAddr{Name: idTok.Lexeme}, nil
	default:
		tok := p.peek()
		return nil, newSyntaxError(tok.Line, tok.Column, "expected expression, found %s", tok)
	}
}

func (p *Parser) call() (ast.Expr, error) {
	name := p.advance().Lexeme
	p.advance() // '('
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after call arguments"); err != nil {
		return nil, err
	}
	return ast.Call{Name: name, Args: args}, nil
}

// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package parser

import (
	"slices"
	"strconv"
	"strings"

	"github.com/qgl2/go-qgl2/pkg/qgl2/ast"
	"github.com/qgl2/go-qgl2/pkg/util/source"
	"github.com/qgl2/go-qgl2/pkg/util/source/lex"
)

// Parse accepts a given source file and parses it into a fresh arena, returning
// the identifier of the module node.  Parsing stops at the first syntax error.
func Parse(srcfile *source.File) (*ast.Arena, ast.NodeID, []source.SyntaxError) {
	parser := NewParser(srcfile)
	//
	root, errs := parser.Parse()
	//
	return parser.arena, root, errs
}

// Operator tokens and their source text.
var (
	compareOps = map[uint]string{
		EQUALS_EQUALS:       "==",
		NOT_EQUALS:          "!=",
		LESS_THAN:           "<",
		LESS_THAN_EQUALS:    "<=",
		GREATER_THAN:        ">",
		GREATER_THAN_EQUALS: ">=",
		KEYWORD_IN:          "in",
	}
	sumOps   = map[uint]string{ADD: "+", SUB: "-"}
	termOps  = map[uint]string{MUL: "*", DIV: "/", FLOOR_DIV: "//", REM: "%"}
	augOps   = map[uint]string{ADD_EQUALS: "+", SUB_EQUALS: "-", MUL_EQUALS: "*", DIV_EQUALS: "/"}
	unaryOps = map[uint]string{ADD: "+", SUB: "-"}
)

// ============================================================================
// Parser
// ============================================================================

// Parser is a recursive descent parser for the (Python-like) source language.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	arena   *ast.Arena
	// Position within the tokens
	index int
}

// NewParser constructs a new parser for a given source file.
func NewParser(srcfile *source.File) *Parser {
	return &Parser{srcfile, nil, ast.NewArena(), 0}
}

// Parse the given source file into a module node, or a syntax error.
func (p *Parser) Parse() (ast.NodeID, []source.SyntaxError) {
	var (
		body   []ast.NodeID
		stmts  []ast.NodeID
		errors []source.SyntaxError
	)
	// Convert source file into tokens
	if p.tokens, errors = Lex(*p.srcfile); len(errors) > 0 {
		return ast.NONE, errors
	}
	// Continue going until all consumed
	for p.lookahead().Kind != END_OF {
		if p.follows(INDENT) {
			return ast.NONE, p.syntaxErrors(p.lookahead(), "unexpected indent")
		} else if stmts, errors = p.parseStatement(); len(errors) > 0 {
			return ast.NONE, errors
		}
		//
		body = append(body, stmts...)
	}
	//
	module := p.arena.Add(ast.Node{
		Kind: ast.MODULE,
		Body: body,
		File: p.srcfile,
		Span: source.NewSpan(0, len(p.srcfile.Contents())),
	})
	//
	return module, nil
}

// Parse a statement, which may produce more than one node when simple
// statements are separated by semicolons.
func (p *Parser) parseStatement() ([]ast.NodeID, []source.SyntaxError) {
	var (
		stmt ast.NodeID
		errs []source.SyntaxError
	)
	//
	switch p.lookahead().Kind {
	case AT, KEYWORD_DEF:
		stmt, errs = p.parseFunction()
	case KEYWORD_IF:
		stmt, errs = p.parseIf()
	case KEYWORD_FOR:
		stmt, errs = p.parseFor()
	case KEYWORD_WHILE:
		stmt, errs = p.parseWhile()
	case KEYWORD_WITH:
		stmt, errs = p.parseWith()
	default:
		return p.parseSimpleStatements()
	}
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return []ast.NodeID{stmt}, nil
}

// Parse one or more simple statements on a single logical line.
func (p *Parser) parseSimpleStatements() ([]ast.NodeID, []source.SyntaxError) {
	var stmts []ast.NodeID
	//
	for {
		stmt, errs := p.parseSimpleStatement()
		//
		if len(errs) > 0 {
			return nil, errs
		}
		//
		stmts = append(stmts, stmt)
		//
		if !p.match(SEMICOLON) || p.follows(NEWLINE) {
			break
		}
	}
	//
	if _, errs := p.expect(NEWLINE); len(errs) > 0 {
		return nil, errs
	}
	//
	return stmts, nil
}

func (p *Parser) parseSimpleStatement() (ast.NodeID, []source.SyntaxError) {
	var (
		start = p.index
		lhs   ast.NodeID
		rhs   ast.NodeID
		errs  []source.SyntaxError
	)
	//
	switch p.lookahead().Kind {
	case KEYWORD_PASS:
		p.index++
		return p.add(ast.Node{Kind: ast.PASS}, start), nil
	case KEYWORD_RETURN:
		return p.parseReturn()
	case KEYWORD_IMPORT:
		return p.parseImport()
	case KEYWORD_FROM:
		return p.parseImportFrom()
	}
	// Expression, assignment or augmented assignment.
	if lhs, errs = p.parseExprList(); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	aug := augOps[p.lookahead().Kind]
	//
	switch {
	case p.follows(EQUALS):
		if errs = p.checkTarget(lhs); len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		p.index++
		//
		if rhs, errs = p.parseExprList(); len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		return p.add(ast.Node{Kind: ast.ASSIGN, Children: []ast.NodeID{lhs, rhs}}, start), nil
	case aug != "":
		if p.arena.Kind(lhs) != ast.NAME && p.arena.Kind(lhs) != ast.SUBSCRIPT {
			return ast.NONE, p.syntaxErrors(p.lookahead(), "invalid assignment target")
		}
		//
		p.index++
		//
		if rhs, errs = p.parseExpr(); len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		return p.add(ast.Node{Kind: ast.AUG_ASSIGN, Op: aug, Children: []ast.NodeID{lhs, rhs}}, start), nil
	default:
		return p.add(ast.Node{Kind: ast.EXPR_STMT, Children: []ast.NodeID{lhs}}, start), nil
	}
}

// Check an expression can be assigned to.
func (p *Parser) checkTarget(target ast.NodeID) []source.SyntaxError {
	node := p.arena.Node(target)
	//
	switch node.Kind {
	case ast.NAME, ast.SUBSCRIPT, ast.ATTRIBUTE:
		return nil
	case ast.TUPLE, ast.LIST:
		for _, c := range node.Children {
			if errs := p.checkTarget(c); len(errs) > 0 {
				return errs
			}
		}
		//
		return nil
	default:
		return []source.SyntaxError{*p.srcfile.SyntaxError(node.Span, "invalid assignment target")}
	}
}

func (p *Parser) parseReturn() (ast.NodeID, []source.SyntaxError) {
	var (
		start    = p.index
		children []ast.NodeID
	)
	// Parse return keyword
	if _, errs := p.expect(KEYWORD_RETURN); len(errs) > 0 {
		return ast.NONE, errs
	}
	// Parse optional value
	if !p.follows(NEWLINE, SEMICOLON) {
		value, errs := p.parseExprList()
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		children = append(children, value)
	}
	//
	return p.add(ast.Node{Kind: ast.RETURN, Children: children}, start), nil
}

func (p *Parser) parseImport() (ast.NodeID, []source.SyntaxError) {
	var (
		start   = p.index
		aliases []ast.NodeID
	)
	// Parse import keyword
	if _, errs := p.expect(KEYWORD_IMPORT); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	for first := true; first || p.match(COMMA); first = false {
		alias, errs := p.parseAlias(true)
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		aliases = append(aliases, alias)
	}
	//
	return p.add(ast.Node{Kind: ast.IMPORT, Children: aliases}, start), nil
}

func (p *Parser) parseImportFrom() (ast.NodeID, []source.SyntaxError) {
	var (
		start   = p.index
		level   = 0
		module  string
		aliases []ast.NodeID
		errs    []source.SyntaxError
	)
	// Parse from keyword
	if _, errs = p.expect(KEYWORD_FROM); len(errs) > 0 {
		return ast.NONE, errs
	}
	// Parse leading dots
	for p.match(DOT) {
		level++
	}
	// Module name is optional for relative imports
	if level == 0 || p.follows(IDENTIFIER) {
		if module, errs = p.parseDottedName(); len(errs) > 0 {
			return ast.NONE, errs
		}
	}
	//
	if _, errs = p.expect(KEYWORD_IMPORT); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	if p.follows(MUL) {
		alias := p.add(ast.Node{Kind: ast.ALIAS, Name: "*"}, p.index)
		p.index++
		aliases = append(aliases, alias)
	} else {
		bracketed := p.match(LBRACE)
		//
		for first := true; first || (p.match(COMMA) && !p.follows(RBRACE)); first = false {
			alias, errs := p.parseAlias(false)
			//
			if len(errs) > 0 {
				return ast.NONE, errs
			}
			//
			aliases = append(aliases, alias)
		}
		//
		if bracketed {
			if _, errs = p.expect(RBRACE); len(errs) > 0 {
				return ast.NONE, errs
			}
		}
	}
	//
	node := ast.Node{Kind: ast.IMPORT_FROM, Name: module, Level: level, Children: aliases}
	//
	return p.add(node, start), nil
}

// Parse "name [as name]", where the name may be dotted if permitted.
func (p *Parser) parseAlias(dotted bool) (ast.NodeID, []source.SyntaxError) {
	var (
		start        = p.index
		name, asName string
		errs         []source.SyntaxError
	)
	//
	if dotted {
		name, errs = p.parseDottedName()
	} else {
		name, errs = p.parseIdentifier()
	}
	//
	if len(errs) > 0 {
		return ast.NONE, errs
	} else if p.match(KEYWORD_AS) {
		if asName, errs = p.parseIdentifier(); len(errs) > 0 {
			return ast.NONE, errs
		}
	}
	//
	return p.add(ast.Node{Kind: ast.ALIAS, Name: name, AsName: asName}, start), nil
}

func (p *Parser) parseFunction() (ast.NodeID, []source.SyntaxError) {
	var (
		start    = p.index
		children []ast.NodeID
		name     string
		body     []ast.NodeID
		errs     []source.SyntaxError
	)
	// Parse decorators
	for p.follows(AT) {
		decorator, errs := p.parseDecorator()
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		children = append(children, decorator)
	}
	// Span of a function starts at the def keyword
	start = p.index
	// Parse function declaration
	if _, errs = p.expect(KEYWORD_DEF); len(errs) > 0 {
		return ast.NONE, errs
	} else if name, errs = p.parseIdentifier(); len(errs) > 0 {
		return ast.NONE, errs
	} else if _, errs = p.expect(LBRACE); len(errs) > 0 {
		return ast.NONE, errs
	}
	// Parse parameters until end brace
	for first := true; !p.follows(RBRACE); first = false {
		if !first {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return ast.NONE, errs
			} else if p.follows(RBRACE) {
				break
			}
		}
		//
		param, errs := p.parseParam()
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		children = append(children, param)
	}
	// Advance past ")"
	p.index++
	// Parse (and ignore) optional return annotation
	if p.match(RIGHTARROW) {
		if _, errs = p.parseExpr(); len(errs) > 0 {
			return ast.NONE, errs
		}
	}
	// Save span of the signature
	end := p.index
	// Parse body
	if body, errs = p.parseBlock(); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	return p.arena.Add(ast.Node{
		Kind:     ast.FUNCTION_DEF,
		Name:     name,
		Children: children,
		Body:     body,
		File:     p.srcfile,
		Span:     p.spanOf(start, end-1),
	}), nil
}

func (p *Parser) parseDecorator() (ast.NodeID, []source.SyntaxError) {
	var (
		start = p.index
		name  string
		args  []ast.NodeID
		flag  bool
		errs  []source.SyntaxError
	)
	//
	if _, errs = p.expect(AT); len(errs) > 0 {
		return ast.NONE, errs
	} else if name, errs = p.parseDottedName(); len(errs) > 0 {
		return ast.NONE, errs
	}
	// Parse optional arguments
	if p.follows(LBRACE) {
		flag = true
		//
		if args, errs = p.parseArguments(); len(errs) > 0 {
			return ast.NONE, errs
		}
	}
	//
	decorator := p.add(ast.Node{Kind: ast.DECORATOR, Name: name, Flag: flag, Children: args}, start)
	//
	if _, errs = p.expect(NEWLINE); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	return decorator, nil
}

func (p *Parser) parseParam() (ast.NodeID, []source.SyntaxError) {
	var (
		start      = p.index
		name       string
		annotation string
		children   []ast.NodeID
		errs       []source.SyntaxError
	)
	//
	if name, errs = p.parseIdentifier(); len(errs) > 0 {
		return ast.NONE, errs
	}
	// Parse optional annotation
	if p.match(COLON) {
		expr, errs := p.parseExpr()
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		annotation = p.arena.Format(expr)
	}
	// Parse optional default value
	if p.match(EQUALS) {
		value, errs := p.parseExpr()
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		children = append(children, value)
	}
	//
	return p.add(ast.Node{Kind: ast.PARAM, Name: name, Annotation: annotation, Children: children}, start), nil
}

func (p *Parser) parseIf() (ast.NodeID, []source.SyntaxError) {
	var (
		start  = p.index
		cond   ast.NodeID
		body   []ast.NodeID
		orelse []ast.NodeID
		errs   []source.SyntaxError
	)
	// Parse "if" or "elif"
	if !p.match(KEYWORD_IF) && !p.match(KEYWORD_ELIF) {
		return ast.NONE, p.syntaxErrors(p.lookahead(), "unexpected token")
	}
	//
	if cond, errs = p.parseExpr(); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	end := p.index
	//
	if body, errs = p.parseBlock(); len(errs) > 0 {
		return ast.NONE, errs
	}
	// Parse optional alternatives
	if p.follows(KEYWORD_ELIF) {
		var elif ast.NodeID
		//
		if elif, errs = p.parseIf(); len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		orelse = []ast.NodeID{elif}
	} else if p.match(KEYWORD_ELSE) {
		if orelse, errs = p.parseBlock(); len(errs) > 0 {
			return ast.NONE, errs
		}
	}
	//
	return p.arena.Add(ast.Node{
		Kind:     ast.IF,
		Children: []ast.NodeID{cond},
		Body:     body,
		Else:     orelse,
		File:     p.srcfile,
		Span:     p.spanOf(start, end-1),
	}), nil
}

func (p *Parser) parseFor() (ast.NodeID, []source.SyntaxError) {
	var (
		start            = p.index
		target, iterable ast.NodeID
		body             []ast.NodeID
		errs             []source.SyntaxError
	)
	//
	if _, errs = p.expect(KEYWORD_FOR); len(errs) > 0 {
		return ast.NONE, errs
	} else if target, errs = p.parseTargetList(); len(errs) > 0 {
		return ast.NONE, errs
	} else if _, errs = p.expect(KEYWORD_IN); len(errs) > 0 {
		return ast.NONE, errs
	} else if iterable, errs = p.parseExprList(); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	end := p.index
	//
	if body, errs = p.parseBlock(); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	return p.arena.Add(ast.Node{
		Kind:     ast.FOR,
		Children: []ast.NodeID{target, iterable},
		Body:     body,
		File:     p.srcfile,
		Span:     p.spanOf(start, end-1),
	}), nil
}

func (p *Parser) parseWhile() (ast.NodeID, []source.SyntaxError) {
	return p.parseCompound(KEYWORD_WHILE, ast.WHILE)
}

func (p *Parser) parseWith() (ast.NodeID, []source.SyntaxError) {
	return p.parseCompound(KEYWORD_WITH, ast.WITH)
}

// Parse a compound statement of the form "keyword expr: block".
func (p *Parser) parseCompound(keyword uint, kind ast.Kind) (ast.NodeID, []source.SyntaxError) {
	var (
		start = p.index
		expr  ast.NodeID
		body  []ast.NodeID
		errs  []source.SyntaxError
	)
	//
	if _, errs = p.expect(keyword); len(errs) > 0 {
		return ast.NONE, errs
	} else if expr, errs = p.parseExpr(); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	end := p.index
	//
	if body, errs = p.parseBlock(); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	return p.arena.Add(ast.Node{
		Kind:     kind,
		Children: []ast.NodeID{expr},
		Body:     body,
		File:     p.srcfile,
		Span:     p.spanOf(start, end-1),
	}), nil
}

// Parse ":" followed either by simple statements on the same line, or by an
// indented block of statements.
func (p *Parser) parseBlock() ([]ast.NodeID, []source.SyntaxError) {
	var body []ast.NodeID
	//
	if _, errs := p.expect(COLON); len(errs) > 0 {
		return nil, errs
	} else if !p.match(NEWLINE) {
		return p.parseSimpleStatements()
	} else if !p.follows(INDENT) {
		return nil, p.syntaxErrors(p.lookahead(), "expected an indented block")
	}
	// Advance past indent
	p.index++
	//
	for !p.match(DEDENT) {
		if p.follows(INDENT) {
			return nil, p.syntaxErrors(p.lookahead(), "unexpected indent")
		}
		//
		stmts, errs := p.parseStatement()
		//
		if len(errs) > 0 {
			return nil, errs
		}
		//
		body = append(body, stmts...)
	}
	//
	return body, nil
}

// ============================================================================
// Expressions
// ============================================================================

// Parse one or more comma-separated expressions, producing a tuple when there
// is more than one (or a trailing comma).
func (p *Parser) parseExprList() (ast.NodeID, []source.SyntaxError) {
	return p.parseSequence(p.parseExpr)
}

// Parse a loop target, which is a name or a comma-separated list of names.
func (p *Parser) parseTargetList() (ast.NodeID, []source.SyntaxError) {
	target, errs := p.parseSequence(p.parsePostfix)
	//
	if len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	return target, p.checkTarget(target)
}

func (p *Parser) parseSequence(parse func() (ast.NodeID, []source.SyntaxError)) (ast.NodeID, []source.SyntaxError) {
	var (
		start = p.index
		items []ast.NodeID
		comma bool
	)
	//
	for {
		item, errs := parse()
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		items = append(items, item)
		// Check for more
		if !p.match(COMMA) {
			break
		}
		//
		comma = true
		//
		if p.follows(EQUALS, NEWLINE, SEMICOLON, COLON, KEYWORD_IN, RBRACE, RSQUARE) {
			break
		}
	}
	//
	if !comma {
		return items[0], nil
	}
	//
	return p.add(ast.Node{Kind: ast.TUPLE, Children: items}, start), nil
}

func (p *Parser) parseExpr() (ast.NodeID, []source.SyntaxError) {
	return p.parseBoolean(KEYWORD_OR, "or", func() (ast.NodeID, []source.SyntaxError) {
		return p.parseBoolean(KEYWORD_AND, "and", p.parseNot)
	})
}

func (p *Parser) parseBoolean(keyword uint, op string,
	parse func() (ast.NodeID, []source.SyntaxError)) (ast.NodeID, []source.SyntaxError) {
	var start = p.index
	//
	lhs, errs := parse()
	//
	for len(errs) == 0 && p.match(keyword) {
		var rhs ast.NodeID
		//
		if rhs, errs = parse(); len(errs) == 0 {
			lhs = p.add(ast.Node{Kind: ast.BOOL_OP, Op: op, Children: []ast.NodeID{lhs, rhs}}, start)
		}
	}
	//
	return lhs, errs
}

func (p *Parser) parseNot() (ast.NodeID, []source.SyntaxError) {
	var start = p.index
	//
	if p.match(KEYWORD_NOT) {
		operand, errs := p.parseNot()
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		return p.add(ast.Node{Kind: ast.UNARY_OP, Op: "not", Children: []ast.NodeID{operand}}, start), nil
	}
	//
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.NodeID, []source.SyntaxError) {
	var start = p.index
	//
	lhs, errs := p.parseBinary(sumOps, p.parseTerm)
	//
	for len(errs) == 0 {
		var (
			op  string
			rhs ast.NodeID
		)
		// Determine comparator (if any)
		if p.follows(KEYWORD_NOT) && p.index+1 < len(p.tokens) && p.tokens[p.index+1].Kind == KEYWORD_IN {
			p.index += 2
			op = "not in"
		} else if cmp, ok := compareOps[p.lookahead().Kind]; ok {
			p.index++
			op = cmp
		} else {
			break
		}
		//
		if rhs, errs = p.parseBinary(sumOps, p.parseTerm); len(errs) == 0 {
			lhs = p.add(ast.Node{Kind: ast.COMPARE, Op: op, Children: []ast.NodeID{lhs, rhs}}, start)
		}
	}
	//
	return lhs, errs
}

func (p *Parser) parseTerm() (ast.NodeID, []source.SyntaxError) {
	return p.parseBinary(termOps, p.parseFactor)
}

// Parse a left-associative sequence of binary operations.
func (p *Parser) parseBinary(ops map[uint]string,
	parse func() (ast.NodeID, []source.SyntaxError)) (ast.NodeID, []source.SyntaxError) {
	var start = p.index
	//
	lhs, errs := parse()
	//
	for len(errs) == 0 {
		var rhs ast.NodeID
		//
		op, ok := ops[p.lookahead().Kind]
		//
		if !ok {
			break
		}
		//
		p.index++
		//
		if rhs, errs = parse(); len(errs) == 0 {
			lhs = p.add(ast.Node{Kind: ast.BIN_OP, Op: op, Children: []ast.NodeID{lhs, rhs}}, start)
		}
	}
	//
	return lhs, errs
}

func (p *Parser) parseFactor() (ast.NodeID, []source.SyntaxError) {
	var start = p.index
	//
	if op, ok := unaryOps[p.lookahead().Kind]; ok {
		p.index++
		//
		operand, errs := p.parseFactor()
		//
		if len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		return p.add(ast.Node{Kind: ast.UNARY_OP, Op: op, Children: []ast.NodeID{operand}}, start), nil
	}
	//
	return p.parsePower()
}

func (p *Parser) parsePower() (ast.NodeID, []source.SyntaxError) {
	var start = p.index
	//
	lhs, errs := p.parsePostfix()
	//
	if len(errs) == 0 && p.match(POW) {
		var rhs ast.NodeID
		// Right associative
		if rhs, errs = p.parseFactor(); len(errs) == 0 {
			lhs = p.add(ast.Node{Kind: ast.BIN_OP, Op: "**", Children: []ast.NodeID{lhs, rhs}}, start)
		}
	}
	//
	return lhs, errs
}

// Parse an atom followed by any number of calls, subscripts and attribute
// accesses.
func (p *Parser) parsePostfix() (ast.NodeID, []source.SyntaxError) {
	var start = p.index
	//
	expr, errs := p.parseAtom()
	//
	for len(errs) == 0 {
		switch p.lookahead().Kind {
		case LBRACE:
			var args []ast.NodeID
			//
			if args, errs = p.parseArguments(); len(errs) == 0 {
				children := append([]ast.NodeID{expr}, args...)
				expr = p.add(ast.Node{Kind: ast.CALL, Children: children}, start)
			}
		case LSQUARE:
			var index ast.NodeID
			//
			p.index++
			//
			if index, errs = p.parseExprList(); len(errs) > 0 {
				break
			} else if _, errs = p.expect(RSQUARE); len(errs) == 0 {
				expr = p.add(ast.Node{Kind: ast.SUBSCRIPT, Children: []ast.NodeID{expr, index}}, start)
			}
		case DOT:
			var name string
			//
			p.index++
			//
			if name, errs = p.parseIdentifier(); len(errs) == 0 {
				expr = p.add(ast.Node{Kind: ast.ATTRIBUTE, Name: name, Children: []ast.NodeID{expr}}, start)
			}
		default:
			return expr, nil
		}
	}
	//
	return ast.NONE, errs
}

// Parse a bracketed argument list, consisting of positional arguments followed
// by keyword arguments.
func (p *Parser) parseArguments() ([]ast.NodeID, []source.SyntaxError) {
	var (
		args    []ast.NodeID
		keyword bool
		errs    []source.SyntaxError
	)
	//
	if _, errs = p.expect(LBRACE); len(errs) > 0 {
		return nil, errs
	}
	//
	for first := true; !p.follows(RBRACE); first = false {
		var (
			start = p.index
			arg   ast.NodeID
		)
		//
		if !first {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return nil, errs
			} else if p.follows(RBRACE) {
				break
			}
			//
			start = p.index
		}
		// Check for keyword argument
		if p.follows(IDENTIFIER) && p.index+1 < len(p.tokens) && p.tokens[p.index+1].Kind == EQUALS {
			name := p.string(p.lookahead())
			p.index += 2
			//
			if arg, errs = p.parseExpr(); len(errs) > 0 {
				return nil, errs
			}
			//
			arg = p.add(ast.Node{Kind: ast.KEYWORD, Name: name, Children: []ast.NodeID{arg}}, start)
			keyword = true
		} else if keyword {
			return nil, p.syntaxErrors(p.lookahead(), "positional argument follows keyword argument")
		} else if arg, errs = p.parseExpr(); len(errs) > 0 {
			return nil, errs
		}
		//
		args = append(args, arg)
	}
	// Advance past ")"
	p.index++
	//
	return args, nil
}

func (p *Parser) parseAtom() (ast.NodeID, []source.SyntaxError) {
	var (
		start     = p.index
		lookahead = p.lookahead()
	)
	//
	switch lookahead.Kind {
	case IDENTIFIER:
		p.index++
		return p.add(ast.Node{Kind: ast.NAME, Name: p.string(lookahead)}, start), nil
	case NUMBER:
		p.index++
		//
		val, err := strconv.ParseInt(strings.ReplaceAll(p.string(lookahead), "_", ""), 0, 64)
		if err != nil {
			return ast.NONE, p.syntaxErrors(lookahead, "invalid number")
		}
		//
		return p.constant(ast.Literal{Kind: ast.INT_LIT, Int: val}, start), nil
	case FLOAT:
		p.index++
		//
		val, err := strconv.ParseFloat(strings.ReplaceAll(p.string(lookahead), "_", ""), 64)
		if err != nil {
			return ast.NONE, p.syntaxErrors(lookahead, "invalid number")
		}
		//
		return p.constant(ast.Literal{Kind: ast.FLOAT_LIT, Float: val}, start), nil
	case STRING:
		var builder strings.Builder
		// Adjacent strings are concatenated
		for p.follows(STRING) {
			builder.WriteString(unquote(p.string(p.lookahead())))
			p.index++
		}
		//
		return p.constant(ast.Literal{Kind: ast.STRING_LIT, String: builder.String()}, start), nil
	case KEYWORD_TRUE, KEYWORD_FALSE:
		p.index++
		return p.constant(ast.Literal{Kind: ast.BOOL_LIT, Bool: lookahead.Kind == KEYWORD_TRUE}, start), nil
	case KEYWORD_NONE:
		p.index++
		return p.constant(ast.Literal{Kind: ast.NONE_LIT}, start), nil
	case LBRACE:
		return p.parseBracketed()
	case LSQUARE:
		return p.parseList()
	default:
		return ast.NONE, p.syntaxErrors(lookahead, "unexpected token")
	}
}

// Parse a bracketed expression or tuple.
func (p *Parser) parseBracketed() (ast.NodeID, []source.SyntaxError) {
	var (
		start = p.index
		expr  ast.NodeID
		errs  []source.SyntaxError
	)
	// Advance past "("
	p.index++
	// Empty tuple
	if p.match(RBRACE) {
		return p.add(ast.Node{Kind: ast.TUPLE}, start), nil
	} else if expr, errs = p.parseExprList(); len(errs) > 0 {
		return ast.NONE, errs
	} else if _, errs = p.expect(RBRACE); len(errs) > 0 {
		return ast.NONE, errs
	}
	//
	return expr, nil
}

func (p *Parser) parseList() (ast.NodeID, []source.SyntaxError) {
	var (
		start = p.index
		items []ast.NodeID
		errs  []source.SyntaxError
	)
	// Advance past "["
	p.index++
	//
	for first := true; !p.follows(RSQUARE); first = false {
		var item ast.NodeID
		//
		if !first {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return ast.NONE, errs
			} else if p.follows(RSQUARE) {
				break
			}
		}
		//
		if item, errs = p.parseExpr(); len(errs) > 0 {
			return ast.NONE, errs
		}
		//
		items = append(items, item)
	}
	// Advance past "]"
	p.index++
	//
	return p.add(ast.Node{Kind: ast.LIST, Children: items}, start), nil
}

// ============================================================================
// Helpers
// ============================================================================

func (p *Parser) parseIdentifier() (string, []source.SyntaxError) {
	tok, errs := p.expect(IDENTIFIER)
	//
	if len(errs) > 0 {
		return "", errs
	}
	//
	return p.string(tok), nil
}

func (p *Parser) parseDottedName() (string, []source.SyntaxError) {
	var names []string
	//
	for first := true; first || p.match(DOT); first = false {
		name, errs := p.parseIdentifier()
		//
		if len(errs) > 0 {
			return "", errs
		}
		//
		names = append(names, name)
	}
	//
	return strings.Join(names, "."), nil
}

func (p *Parser) constant(lit ast.Literal, start int) ast.NodeID {
	return p.add(ast.Node{Kind: ast.CONSTANT, Value: lit}, start)
}

// Add a node spanning from a given token up to the most recently consumed one.
func (p *Parser) add(node ast.Node, start int) ast.NodeID {
	node.File = p.srcfile
	node.Span = p.spanOf(start, max(start, p.index-1))
	//
	return p.arena.Add(node)
}

// Get the text representing the given token as a string.
func (p *Parser) string(token lex.Token) string {
	start, end := token.Span.Start(), token.Span.End()
	return string(p.srcfile.Contents()[start:end])
}

// Lookahead returns the next token.  This must exist because EOF is always
// appended at the end of the token stream.
func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

// Expect reurns an arror if the next token is not what was expected.
func (p *Parser) expect(kind uint) (lex.Token, []source.SyntaxError) {
	lookahead := p.lookahead()
	//
	if lookahead.Kind != kind {
		errs := p.syntaxErrors(lookahead, "unexpected token")
		return lookahead, errs
	}
	//
	p.index++
	//
	return lookahead, nil
}

// Match attempts to match the given token.
func (p *Parser) match(kind uint) bool {
	if p.lookahead().Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

// Follows checks whether one of the given token kinds is next.
func (p *Parser) follows(options ...uint) bool {
	return slices.Contains(options, p.lookahead().Kind)
}

func (p *Parser) spanOf(firstToken, lastToken int) source.Span {
	//
	start := p.tokens[firstToken].Span.Start()
	end := p.tokens[lastToken].Span.End()
	//
	return source.NewSpan(start, max(start, end))
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcfile.SyntaxError(token.Span, msg)}
}

// Strip the quotes from a string literal and process escapes.
func unquote(text string) string {
	var (
		builder strings.Builder
		quotes  = 1
	)
	//
	if strings.HasPrefix(text, `"""`) || strings.HasPrefix(text, `'''`) {
		quotes = 3
	}
	//
	body := []rune(text[quotes : len(text)-quotes])
	//
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i+1 == len(body) {
			builder.WriteRune(body[i])
			continue
		}
		//
		i++
		//
		switch body[i] {
		case 'n':
			builder.WriteRune('\n')
		case 't':
			builder.WriteRune('\t')
		case '\n':
			// line continuation
		default:
			builder.WriteRune(body[i])
		}
	}
	//
	return builder.String()
}

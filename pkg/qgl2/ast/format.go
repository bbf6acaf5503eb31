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
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format returns the source form of an expression node.
func (p *Arena) Format(id NodeID) string {
	var builder strings.Builder
	//
	p.formatExpr(&builder, id)
	//
	return builder.String()
}

// Dump returns the source form of a statement (or module) node, indented by the
// given amount.  Inlined blocks are shown as "inline f:" headers.
func (p *Arena) Dump(id NodeID, indent int) string {
	var builder strings.Builder
	//
	if p.Kind(id) == MODULE {
		p.dumpBlock(&builder, p.Node(id).Body, indent)
	} else {
		p.dumpStmt(&builder, id, indent)
	}
	//
	return builder.String()
}

func (p *Arena) dumpBlock(out *strings.Builder, stmts []NodeID, indent int) {
	if len(stmts) == 0 {
		p.line(out, indent, "pass")
	}
	//
	for _, s := range stmts {
		p.dumpStmt(out, s, indent)
	}
}

func (p *Arena) dumpStmt(out *strings.Builder, id NodeID, indent int) {
	node := p.Node(id)
	//
	switch node.Kind {
	case FUNCTION_DEF:
		var params []string
		//
		for _, d := range p.Decorators(id) {
			p.line(out, indent, "@"+p.formatDecorator(d))
		}
		//
		for _, q := range p.Params(id) {
			params = append(params, p.formatParam(q))
		}
		//
		p.line(out, indent, fmt.Sprintf("def %s(%s):", node.Name, strings.Join(params, ", ")))
		p.dumpBlock(out, node.Body, indent+1)
	case PASS:
		p.line(out, indent, "pass")
	case RETURN:
		if len(node.Children) == 0 {
			p.line(out, indent, "return")
		} else {
			p.line(out, indent, "return "+p.Format(node.Children[0]))
		}
	case ASSIGN:
		p.line(out, indent, fmt.Sprintf("%s = %s", p.Format(node.Children[0]), p.Format(node.Children[1])))
	case AUG_ASSIGN:
		p.line(out, indent, fmt.Sprintf("%s %s= %s", p.Format(node.Children[0]), node.Op, p.Format(node.Children[1])))
	case EXPR_STMT:
		p.line(out, indent, p.Format(node.Children[0]))
	case IF:
		p.line(out, indent, fmt.Sprintf("if %s:", p.Format(node.Children[0])))
		p.dumpBlock(out, node.Body, indent+1)
		//
		if len(node.Else) > 0 {
			p.line(out, indent, "else:")
			p.dumpBlock(out, node.Else, indent+1)
		}
	case FOR:
		p.line(out, indent, fmt.Sprintf("for %s in %s:", p.Format(node.Children[0]), p.Format(node.Children[1])))
		p.dumpBlock(out, node.Body, indent+1)
	case WHILE:
		p.line(out, indent, fmt.Sprintf("while %s:", p.Format(node.Children[0])))
		p.dumpBlock(out, node.Body, indent+1)
	case WITH:
		p.line(out, indent, fmt.Sprintf("with %s:", p.Format(node.Children[0])))
		p.dumpBlock(out, node.Body, indent+1)
	case IMPORT:
		p.line(out, indent, "import "+p.formatAliases(node.Children))
	case IMPORT_FROM:
		module := strings.Repeat(".", node.Level) + node.Name
		p.line(out, indent, fmt.Sprintf("from %s import %s", module, p.formatAliases(node.Children)))
	case INLINED_BLOCK:
		p.line(out, indent, fmt.Sprintf("inline %s:", node.Name))
		p.dumpBlock(out, node.Body, indent+1)
	case INVALID, MODULE, DECORATOR, PARAM, ALIAS, NAME, CONSTANT, ATTRIBUTE, CALL, KEYWORD, SUBSCRIPT, LIST, TUPLE,
		UNARY_OP, BIN_OP, COMPARE, BOOL_OP:
		panic(fmt.Sprintf("%s is not a statement", node.Kind.String()))
	default:
		panic(fmt.Sprintf("unknown node kind %d", node.Kind))
	}
}

func (p *Arena) line(out *strings.Builder, indent int, text string) {
	out.WriteString(strings.Repeat("    ", indent))
	out.WriteString(text)
	out.WriteString("\n")
}

func (p *Arena) formatDecorator(id NodeID) string {
	node := p.Node(id)
	//
	if !node.Flag {
		return node.Name
	}
	//
	return fmt.Sprintf("%s(%s)", node.Name, p.formatList(node.Children))
}

func (p *Arena) formatParam(id NodeID) string {
	var (
		node = p.Node(id)
		text = node.Name
	)
	//
	if node.Annotation != "" {
		text = fmt.Sprintf("%s: %s", text, node.Annotation)
	}
	//
	if len(node.Children) > 0 {
		text = fmt.Sprintf("%s=%s", text, p.Format(node.Children[0]))
	}
	//
	return text
}

func (p *Arena) formatAliases(aliases []NodeID) string {
	var names []string
	//
	for _, a := range aliases {
		node := p.Node(a)
		//
		if node.AsName != "" {
			names = append(names, fmt.Sprintf("%s as %s", node.Name, node.AsName))
		} else {
			names = append(names, node.Name)
		}
	}
	//
	return strings.Join(names, ", ")
}

func (p *Arena) formatList(ids []NodeID) string {
	var items []string
	//
	for _, id := range ids {
		items = append(items, p.Format(id))
	}
	//
	return strings.Join(items, ", ")
}

func (p *Arena) formatExpr(out *strings.Builder, id NodeID) {
	node := p.Node(id)
	//
	switch node.Kind {
	case NAME:
		out.WriteString(node.Name)
	case CONSTANT:
		out.WriteString(FormatLiteral(node.Value))
	case ATTRIBUTE:
		p.formatOperand(out, node.Children[0])
		out.WriteString(".")
		out.WriteString(node.Name)
	case CALL:
		p.formatOperand(out, node.Children[0])
		out.WriteString("(")
		out.WriteString(p.formatList(node.Children[1:]))
		out.WriteString(")")
	case KEYWORD:
		out.WriteString(node.Name)
		out.WriteString("=")
		p.formatExpr(out, node.Children[0])
	case SUBSCRIPT:
		p.formatOperand(out, node.Children[0])
		out.WriteString("[")
		p.formatExpr(out, node.Children[1])
		out.WriteString("]")
	case LIST:
		out.WriteString("[")
		out.WriteString(p.formatList(node.Children))
		out.WriteString("]")
	case TUPLE:
		out.WriteString("(")
		out.WriteString(p.formatList(node.Children))
		//
		if len(node.Children) == 1 {
			out.WriteString(",")
		}
		//
		out.WriteString(")")
	case UNARY_OP:
		out.WriteString(node.Op)
		//
		if node.Op == "not" {
			out.WriteString(" ")
		}
		//
		p.formatOperand(out, node.Children[0])
	case BIN_OP, COMPARE, BOOL_OP:
		p.formatOperand(out, node.Children[0])
		out.WriteString(" ")
		out.WriteString(node.Op)
		out.WriteString(" ")
		p.formatOperand(out, node.Children[1])
	case INVALID, MODULE, FUNCTION_DEF, DECORATOR, PARAM, PASS, RETURN, ASSIGN, AUG_ASSIGN, EXPR_STMT, IF, FOR,
		WHILE, WITH, IMPORT, IMPORT_FROM, ALIAS, INLINED_BLOCK:
		panic(fmt.Sprintf("%s is not an expression", node.Kind.String()))
	default:
		panic(fmt.Sprintf("unknown node kind %d", node.Kind))
	}
}

// Operands which are themselves operators are bracketed.
func (p *Arena) formatOperand(out *strings.Builder, id NodeID) {
	switch p.Kind(id) {
	case UNARY_OP, BIN_OP, COMPARE, BOOL_OP:
		out.WriteString("(")
		p.formatExpr(out, id)
		out.WriteString(")")
	default:
		p.formatExpr(out, id)
	}
}

// FormatLiteral returns the source form of a literal.
func FormatLiteral(lit Literal) string {
	switch lit.Kind {
	case NONE_LIT:
		return "None"
	case INT_LIT:
		return strconv.FormatInt(lit.Int, 10)
	case FLOAT_LIT:
		text := strconv.FormatFloat(lit.Float, 'g', -1, 64)
		//
		if !strings.ContainsAny(text, ".eEn") {
			text += ".0"
		}
		//
		return text
	case STRING_LIT:
		return "'" + strings.ReplaceAll(lit.String, "'", "\\'") + "'"
	case BOOL_LIT:
		if lit.Bool {
			return "True"
		}
		//
		return "False"
	default:
		panic(fmt.Sprintf("unknown literal kind %d", lit.Kind))
	}
}

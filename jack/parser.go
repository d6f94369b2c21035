package jack

import (
	"bufio"
	"io"
	"slices"
	"strings"
)

// Node is a parse tree node: either a non-terminal with children, or a
// single token leaf.
type Node struct {
	Kind     string // Non-terminal name, empty for a token leaf.
	Token    *Token
	Children []*Node
}

// Find returns every node of the given kind under node, in source order.
func (node *Node) Find(kind string) (found []*Node) {
	if node.Kind == kind {
		found = append(found, node)
	}
	for _, child := range node.Children {
		found = append(found, child.Find(kind)...)
	}
	return
}

// WriteXML writes the parse tree as XML, indenting two spaces per level.
func (node *Node) WriteXML(output io.Writer) (err error) {
	w := bufio.NewWriter(output)
	node.writeXML(w, 0)
	err = w.Flush()
	return
}

func (node *Node) writeXML(w *bufio.Writer, depth int) {
	indent := strings.Repeat("  ", depth)
	if node.Token != nil {
		w.WriteString(indent + node.Token.XML() + "\n")
		return
	}

	w.WriteString(indent + "<" + node.Kind + ">\n")
	for _, child := range node.Children {
		child.writeXML(w, depth+1)
	}
	w.WriteString(indent + "</" + node.Kind + ">\n")
}

var binaryOps = []string{"+", "-", "*", "/", "&", "|", "<", ">", "="}

// parser is a recursive descent Jack parser. The first error sticks, and
// stops all further token matches.
type parser struct {
	tokens []Token
	pos    int
	err    error
}

// Parse parses the tokens of a single Jack class.
func Parse(tokens []Token) (root *Node, err error) {
	p := &parser{tokens: tokens}

	root = p.class()
	if p.err == nil && p.pos < len(p.tokens) {
		p.fail("end of class file")
	}

	err = p.err
	if err != nil {
		root = nil
	}
	return
}

// Analyze tokenizes and parses a Jack class.
func Analyze(input io.Reader) (root *Node, err error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return
	}

	root, err = Parse(tokens)
	return
}

func (p *parser) peekAt(offset int) (tok *Token) {
	if p.err == nil && p.pos+offset < len(p.tokens) {
		tok = &p.tokens[p.pos+offset]
	}
	return
}

// is returns true if the next token is of the kind, and is one of texts
// when any are given.
func (p *parser) is(kind TokenKind, texts ...string) bool {
	tok := p.peekAt(0)
	if tok == nil || tok.Kind != kind {
		return false
	}
	return len(texts) == 0 || slices.Contains(texts, tok.Text)
}

func (p *parser) fail(expected string) {
	if p.err != nil {
		return
	}

	tok := p.peekAt(0)
	if tok == nil {
		var lineno int
		if len(p.tokens) > 0 {
			lineno = p.tokens[len(p.tokens)-1].LineNo
		}
		p.err = ErrSyntax{LineNo: lineno, Expected: expected, Err: ErrUnexpectedEnd}
		return
	}

	p.err = ErrSyntax{LineNo: tok.LineNo, Token: tok.Text, Expected: expected, Err: ErrUnexpected}
}

// expect moves the next token into parent, if it matches.
func (p *parser) expect(parent *Node, kind TokenKind, texts ...string) {
	if !p.is(kind, texts...) {
		expected := kind.String()
		if len(texts) != 0 {
			expected = "'" + strings.Join(texts, "' or '") + "'"
		}
		p.fail(expected)
		return
	}

	parent.Children = append(parent.Children, &Node{Token: &p.tokens[p.pos]})
	p.pos++
}

func (p *parser) symbol(parent *Node, text ...string) {
	p.expect(parent, TOKEN_SYMBOL, text...)
}

func (p *parser) keyword(parent *Node, text ...string) {
	p.expect(parent, TOKEN_KEYWORD, text...)
}

func (p *parser) identifier(parent *Node) {
	p.expect(parent, TOKEN_IDENTIFIER)
}

func (p *parser) child(parent *Node, kind string) (node *Node) {
	node = &Node{Kind: kind}
	parent.Children = append(parent.Children, node)
	return
}

func (p *parser) class() (node *Node) {
	node = &Node{Kind: "class"}

	p.keyword(node, "class")
	p.identifier(node)
	p.symbol(node, "{")
	for p.is(TOKEN_KEYWORD, "static", "field") {
		p.classVarDec(node)
	}
	for p.is(TOKEN_KEYWORD, "constructor", "function", "method") {
		p.subroutineDec(node)
	}
	p.symbol(node, "}")

	return
}

// typeName matches int, char, boolean, a class name, and optionally void.
func (p *parser) typeName(parent *Node, void bool) {
	if p.is(TOKEN_KEYWORD, "int", "char", "boolean") || (void && p.is(TOKEN_KEYWORD, "void")) {
		p.keyword(parent)
		return
	}
	p.identifier(parent)
}

// nameList matches 'name (, name)*'.
func (p *parser) nameList(parent *Node) {
	p.identifier(parent)
	for p.is(TOKEN_SYMBOL, ",") {
		p.symbol(parent, ",")
		p.identifier(parent)
	}
}

func (p *parser) classVarDec(parent *Node) {
	node := p.child(parent, "classVarDec")

	p.keyword(node, "static", "field")
	p.typeName(node, false)
	p.nameList(node)
	p.symbol(node, ";")
}

func (p *parser) subroutineDec(parent *Node) {
	node := p.child(parent, "subroutineDec")

	p.keyword(node, "constructor", "function", "method")
	p.typeName(node, true)
	p.identifier(node)
	p.symbol(node, "(")
	p.parameterList(node)
	p.symbol(node, ")")
	p.subroutineBody(node)
}

func (p *parser) parameterList(parent *Node) {
	node := p.child(parent, "parameterList")
	if p.is(TOKEN_SYMBOL, ")") {
		return
	}

	p.typeName(node, false)
	p.identifier(node)
	for p.is(TOKEN_SYMBOL, ",") {
		p.symbol(node, ",")
		p.typeName(node, false)
		p.identifier(node)
	}
}

func (p *parser) subroutineBody(parent *Node) {
	node := p.child(parent, "subroutineBody")

	p.symbol(node, "{")
	for p.is(TOKEN_KEYWORD, "var") {
		p.varDec(node)
	}
	p.statements(node)
	p.symbol(node, "}")
}

func (p *parser) varDec(parent *Node) {
	node := p.child(parent, "varDec")

	p.keyword(node, "var")
	p.typeName(node, false)
	p.nameList(node)
	p.symbol(node, ";")
}

func (p *parser) statements(parent *Node) {
	node := p.child(parent, "statements")

	for {
		switch {
		case p.is(TOKEN_KEYWORD, "let"):
			p.letStatement(node)
		case p.is(TOKEN_KEYWORD, "if"):
			p.ifStatement(node)
		case p.is(TOKEN_KEYWORD, "while"):
			p.whileStatement(node)
		case p.is(TOKEN_KEYWORD, "do"):
			p.doStatement(node)
		case p.is(TOKEN_KEYWORD, "return"):
			p.returnStatement(node)
		default:
			return
		}
	}
}

func (p *parser) letStatement(parent *Node) {
	node := p.child(parent, "letStatement")

	p.keyword(node, "let")
	p.identifier(node)
	if p.is(TOKEN_SYMBOL, "[") {
		p.symbol(node, "[")
		p.expression(node)
		p.symbol(node, "]")
	}
	p.symbol(node, "=")
	p.expression(node)
	p.symbol(node, ";")
}

// block matches '{ statements }'.
func (p *parser) block(node *Node) {
	p.symbol(node, "{")
	p.statements(node)
	p.symbol(node, "}")
}

func (p *parser) ifStatement(parent *Node) {
	node := p.child(parent, "ifStatement")

	p.keyword(node, "if")
	p.symbol(node, "(")
	p.expression(node)
	p.symbol(node, ")")
	p.block(node)
	if p.is(TOKEN_KEYWORD, "else") {
		p.keyword(node, "else")
		p.block(node)
	}
}

func (p *parser) whileStatement(parent *Node) {
	node := p.child(parent, "whileStatement")

	p.keyword(node, "while")
	p.symbol(node, "(")
	p.expression(node)
	p.symbol(node, ")")
	p.block(node)
}

func (p *parser) doStatement(parent *Node) {
	node := p.child(parent, "doStatement")

	p.keyword(node, "do")
	p.subroutineCall(node)
	p.symbol(node, ";")
}

func (p *parser) returnStatement(parent *Node) {
	node := p.child(parent, "returnStatement")

	p.keyword(node, "return")
	if !p.is(TOKEN_SYMBOL, ";") {
		p.expression(node)
	}
	p.symbol(node, ";")
}

// subroutineCall matches 'name(...)' and 'target.name(...)'.
func (p *parser) subroutineCall(node *Node) {
	p.identifier(node)
	if p.is(TOKEN_SYMBOL, ".") {
		p.symbol(node, ".")
		p.identifier(node)
	}
	p.symbol(node, "(")
	p.expressionList(node)
	p.symbol(node, ")")
}

func (p *parser) expression(parent *Node) {
	node := p.child(parent, "expression")

	p.term(node)
	for p.is(TOKEN_SYMBOL, binaryOps...) {
		p.symbol(node)
		p.term(node)
	}
}

func (p *parser) term(parent *Node) {
	node := p.child(parent, "term")

	switch {
	case p.is(TOKEN_INT), p.is(TOKEN_STRING):
		p.expect(node, p.peekAt(0).Kind)
	case p.is(TOKEN_KEYWORD, "true", "false", "null", "this"):
		p.keyword(node)
	case p.is(TOKEN_SYMBOL, "("):
		p.symbol(node, "(")
		p.expression(node)
		p.symbol(node, ")")
	case p.is(TOKEN_SYMBOL, "-", "~"):
		p.symbol(node)
		p.term(node)
	case p.is(TOKEN_IDENTIFIER):
		next := p.peekAt(1)
		switch {
		case next != nil && next.Kind == TOKEN_SYMBOL && next.Text == "[":
			p.identifier(node)
			p.symbol(node, "[")
			p.expression(node)
			p.symbol(node, "]")
		case next != nil && next.Kind == TOKEN_SYMBOL && (next.Text == "(" || next.Text == "."):
			p.subroutineCall(node)
		default:
			p.identifier(node)
		}
	default:
		p.fail("term")
	}
}

func (p *parser) expressionList(parent *Node) {
	node := p.child(parent, "expressionList")
	if p.is(TOKEN_SYMBOL, ")") {
		return
	}

	p.expression(node)
	for p.is(TOKEN_SYMBOL, ",") {
		p.symbol(node, ",")
		p.expression(node)
	}
}

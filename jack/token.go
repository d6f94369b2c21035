// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package jack tokenizes and parses Jack, the object language compiled
// down to the VM code that vmtrans translates. The parse tree is written
// in the XML form used by Jack syntax analyzers.
package jack

import (
	"fmt"
	"strings"
)

// TokenKind is the lexical class of a token.
type TokenKind int

const (
	TOKEN_KEYWORD = TokenKind(iota)
	TOKEN_SYMBOL
	TOKEN_IDENTIFIER
	TOKEN_INT
	TOKEN_STRING
)

var tokenTags = [...]string{
	TOKEN_KEYWORD:    "keyword",
	TOKEN_SYMBOL:     "symbol",
	TOKEN_IDENTIFIER: "identifier",
	TOKEN_INT:        "integerConstant",
	TOKEN_STRING:     "stringConstant",
}

// String returns the XML tag of the token kind.
func (kind TokenKind) String() string {
	if int(kind) < len(tokenTags) {
		return tokenTags[kind]
	}
	return fmt.Sprintf("token(%d)", int(kind))
}

var keywords = map[string]bool{
	"class": true, "constructor": true, "function": true, "method": true,
	"field": true, "static": true, "var": true,
	"int": true, "char": true, "boolean": true, "void": true,
	"true": true, "false": true, "null": true, "this": true,
	"let": true, "do": true, "if": true, "else": true, "while": true, "return": true,
}

const symbols = "{}()[].,;+-*/&|<>=~"

// Token is a single Jack token.
type Token struct {
	Kind   TokenKind
	Text   string // Token text; string constants without their quotes.
	LineNo int    // Source line number.
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// XML returns the token as a single XML element.
func (tok Token) XML() string {
	return fmt.Sprintf("<%s> %s </%s>", tok.Kind, xmlEscaper.Replace(tok.Text), tok.Kind)
}

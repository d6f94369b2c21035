package jack

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdent(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// Tokenize splits Jack source into tokens, dropping whitespace and
// comments.
func Tokenize(input io.Reader) (tokens []Token, err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}
	src := string(data)

	lineno := 1
	var text string

	defer func() {
		if err != nil {
			tokens = nil
			err = ErrSyntax{LineNo: lineno, Token: text, Err: err}
		}
	}()

	for n := 0; n < len(src); {
		ch := src[n]
		rest := src[n:]

		switch {
		case ch == '\n':
			lineno++
			n++
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
			n++
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				end = len(rest)
			}
			n += end
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				text = "/*"
				err = ErrCommentUnterminated
				return
			}
			lineno += strings.Count(rest[:2+end], "\n")
			n += 2 + end + 2
		case ch == '"':
			end := strings.IndexAny(rest[1:], "\"\n")
			if end < 0 || rest[1+end] != '"' {
				text = `"`
				err = ErrStringUnterminated
				return
			}
			tokens = append(tokens, Token{Kind: TOKEN_STRING, Text: rest[1 : 1+end], LineNo: lineno})
			n += end + 2
		case strings.IndexByte(symbols, ch) >= 0:
			tokens = append(tokens, Token{Kind: TOKEN_SYMBOL, Text: rest[:1], LineNo: lineno})
			n++
		case isDigit(ch):
			end := 1
			for end < len(rest) && isIdent(rest[end]) {
				end++
			}
			text = rest[:end]
			var value uint64
			value, err = strconv.ParseUint(text, 10, 16)
			if err != nil {
				err = ErrTokenInvalid
				if strings.Trim(text, "0123456789") == "" {
					err = ErrIntegerRange
				}
				return
			}
			if value > 32767 {
				err = ErrIntegerRange
				return
			}
			tokens = append(tokens, Token{Kind: TOKEN_INT, Text: strconv.FormatUint(value, 10), LineNo: lineno})
			text = ""
			n += end
		case isIdentStart(ch):
			end := 1
			for end < len(rest) && isIdent(rest[end]) {
				end++
			}
			kind := TOKEN_IDENTIFIER
			if keywords[rest[:end]] {
				kind = TOKEN_KEYWORD
			}
			tokens = append(tokens, Token{Kind: kind, Text: rest[:end], LineNo: lineno})
			n += end
		default:
			text = rest[:1]
			err = ErrTokenInvalid
			return
		}
	}

	return
}

// WriteTokens writes tokens as a <tokens> XML document.
func WriteTokens(output io.Writer, tokens []Token) (err error) {
	w := bufio.NewWriter(output)

	fmt.Fprintln(w, "<tokens>")
	for _, tok := range tokens {
		fmt.Fprintln(w, tok.XML())
	}
	fmt.Fprintln(w, "</tokens>")

	err = w.Flush()
	return
}

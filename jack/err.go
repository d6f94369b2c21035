package jack

import (
	"errors"

	"github.com/ezrec/hack/translate"
)

var f = translate.From

var (
	// Tokenizer errors
	ErrTokenInvalid        = errors.New(f("token invalid"))
	ErrIntegerRange        = errors.New(f("integer constant out of range"))
	ErrStringUnterminated  = errors.New(f("string constant unterminated"))
	ErrCommentUnterminated = errors.New(f("comment unterminated"))

	// Parser errors
	ErrUnexpected    = errors.New(f("unexpected token"))
	ErrUnexpectedEnd = errors.New(f("unexpected end of input"))
)

// ErrSyntax locates a Jack tokenizer or parser error.
type ErrSyntax struct {
	LineNo   int
	Token    string // Offending token text, if any.
	Expected string // What the parser wanted instead, if known.
	Err      error
}

func (err ErrSyntax) Error() string {
	if len(err.Expected) != 0 {
		return f("line %d '%v' %v, expected %v", err.LineNo, err.Token, err.Err, err.Expected)
	}
	return f("line %d '%v' %v", err.LineNo, err.Token, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

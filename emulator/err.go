package emulator

import (
	"errors"

	"github.com/ezrec/hack/translate"
)

var f = translate.From

var (
	ErrHaltExpression = errors.New(f("halt expression"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Pc     uint16
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d pc %d %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

package vmtrans

import (
	"errors"

	"github.com/ezrec/hack/translate"
)

var f = translate.From

var (
	ErrCommandInvalid  = errors.New(f("vm command invalid"))
	ErrArgumentCount   = errors.New(f("vm argument count"))
	ErrSegmentInvalid  = errors.New(f("vm segment invalid"))
	ErrIndexRange      = errors.New(f("vm index out of range"))
	ErrPopConstant     = errors.New(f("vm pop to constant"))
	ErrNameInvalid     = errors.New(f("vm name invalid"))
	ErrModuleInvalid   = errors.New(f("vm module name invalid"))
	ErrReturnOutside   = errors.New(f("vm return outside of function"))
	ErrFunctionMissing = errors.New(f("vm bootstrap needs Sys.init"))
)

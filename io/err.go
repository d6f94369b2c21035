package io

import (
	"errors"

	"github.com/ezrec/hack/translate"
)

var f = translate.From

var (
	// Keyboard errors
	ErrKeyInvalid     = errors.New(f("key invalid"))
	ErrKeyScriptOrder = errors.New(f("key script out of order"))

	// Screen errors
	ErrPixelRange = errors.New(f("pixel out of range"))
)

package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEncoding        = errors.New("invalid utf-8 content")
)

// EncodingError reports an app file whose bytes are not valid UTF-8.
type EncodingError struct {
	Name   string
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: %s at byte %d", e.Name, ErrEncoding, e.Offset)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

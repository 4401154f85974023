package alphafix

import (
	"errors"
	"fmt"
)

var (
	ErrIO        = errors.New("io error")
	ErrDecode    = errors.New("decode error")
	ErrEncode    = errors.New("encode error")
	ErrGeometry  = errors.New("geometry error")
	ErrDimension = errors.New("dimension mismatch")
)

// TaskError reports which pair failed.
type TaskError struct {
	Task Task
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Task.Original, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

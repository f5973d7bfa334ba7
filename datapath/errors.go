package datapath

import (
	"errors"
	"fmt"
)

// ErrHalted is returned by every execute call after a fatal error.
var ErrHalted = errors.New("datapath halted")

// FatalError is an unrecoverable failure: an instruction with no control
// signal or ALU mapping, an unsupported coprocessor encoding, or a failed
// fetch under FetchFaultAbort. The datapath halts when it returns one.
type FatalError struct {
	Stage Stage
	PC    uint64
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error in stage %s at pc 0x%x: %v", e.Stage, e.PC, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err halted the datapath.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

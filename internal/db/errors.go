package db

import (
	"errors"
	"fmt"
)

// Op identifies the failed store operation.
type Op string

// Store operations.
const (
	OpHSet        Op = "hset"
	OpHGetAll     Op = "hgetall"
	OpDel         Op = "del"
	OpGet         Op = "get"
	OpSet         Op = "set"
	OpCreateIndex Op = "create_index"
	OpIndexInfo   Op = "index_info"
	OpSearch      Op = "search"
)

// ErrIndexExists is returned when creating an index that already exists.
var ErrIndexExists = errors.New("index already exists")

// Error wraps a store failure with its operation.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

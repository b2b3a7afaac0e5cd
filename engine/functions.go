package engine

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/colindex/composite"
	sqlite "modernc.org/sqlite"
)

// RegisterKeyFunctions registers colidx_key_part and colidx_key_arity with
// the driver so they are available on new connections opened after this
// call. They decode the composite row keys written by the index package:
//
//	SELECT colidx_key_part(row_key, 0) FROM colidx_columns WHERE namespace = 'UserByEmail'
//
// Registration runs once per process; later calls return the outcome of the
// first. Existing open connections will not see new functions.
func RegisterKeyFunctions(_ *sql.DB) error {
	registerOnce.Do(func() {
		registerErr = errors.Join(
			sqlite.RegisterDeterministicScalarFunction("colidx_key_part", 2, keyPartImpl),
			sqlite.RegisterDeterministicScalarFunction("colidx_key_arity", 1, keyArityImpl),
		)
	})
	return registerErr
}

var (
	registerOnce sync.Once
	registerErr  error
)

func asKey(arg driver.Value) (string, bool, error) {
	switch v := arg.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	default:
		return "", false, fmt.Errorf("colidx: unsupported argument type %T for key; want TEXT", arg)
	}
}

// keyPartImpl returns the n-th (0-based) value of a composite key, or NULL
// when n is out of range.
func keyPartImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("colidx_key_part: expected 2 arguments, got %d", len(args))
	}
	key, ok, err := asKey(args[0])
	if err != nil || !ok {
		return nil, err
	}
	n, ok := args[1].(int64)
	if !ok {
		return nil, fmt.Errorf("colidx_key_part: index must be INTEGER, got %T", args[1])
	}
	parts, err := composite.Decode(key)
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= int64(len(parts)) {
		return nil, nil
	}
	return parts[n], nil
}

func keyArityImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("colidx_key_arity: expected 1 argument, got %d", len(args))
	}
	key, ok, err := asKey(args[0])
	if err != nil || !ok {
		return nil, err
	}
	parts, err := composite.Decode(key)
	if err != nil {
		return nil, err
	}
	return int64(len(parts)), nil
}

package runner

import (
	"errors"

	"github.com/regdb/regdb/pkg/inspect"
	"github.com/regdb/regdb/pkg/materialize"
	"github.com/regdb/regdb/pkg/model"
	"github.com/regdb/regdb/pkg/store"
)

// errorKind classifies an operation error for scenario expectations.
// Operation errors are outputs, not step failures: a scenario asserts on
// them with `error: locked` and the like.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ErrKindNone
	case errors.Is(err, model.ErrLocked):
		return ErrKindLocked
	case errors.Is(err, model.ErrUnbuilt):
		return ErrKindUnbuilt
	case errors.Is(err, model.ErrFieldNotFound), errors.Is(err, inspect.ErrFieldNotFound):
		return ErrKindFieldNotFound
	case errors.Is(err, inspect.ErrNotWritable):
		return ErrKindNotWritable
	case errors.Is(err, inspect.ErrInvalidValue):
		return ErrKindInvalidValue
	case errors.Is(err, materialize.ErrNotFound), errors.Is(err, store.ErrNotFound),
		errors.Is(err, inspect.ErrRegisterNotFound), errors.Is(err, inspect.ErrBlockNotFound):
		return ErrKindNotFound
	case errors.Is(err, store.ErrConnection):
		return ErrKindConnection
	default:
		return ErrKindOther
	}
}

// withError records err in outputs. A nil err clears the message left by
// an earlier step.
func withError(outputs map[string]any, err error) map[string]any {
	if outputs == nil {
		outputs = make(map[string]any)
	}
	outputs[KeyError] = errorKind(err)
	outputs[KeyErrorMessage] = ""
	if err != nil {
		outputs[KeyErrorMessage] = err.Error()
	}
	return outputs
}

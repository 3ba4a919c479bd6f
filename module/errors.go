package module

import (
	"fmt"

	"github.com/fimoengine/fimo-std/ferr"
)

func errf(op string, base error, format string, args ...any) error {
	return fmt.Errorf("module: %s: "+format+": %w", append([]any{op}, append(args, base)...)...)
}

func invalidf(op, format string, args ...any) error {
	return errf(op, ferr.ErrInvalid, format, args...)
}

func notFoundf(op, format string, args ...any) error {
	return errf(op, ferr.ErrNotFound, format, args...)
}

func alreadyExistsf(op, format string, args ...any) error {
	return errf(op, ferr.ErrAlreadyExists, format, args...)
}

func permissionf(op, format string, args ...any) error {
	return errf(op, ferr.ErrPermission, format, args...)
}

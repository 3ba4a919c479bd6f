package graph

import (
	"fmt"

	"github.com/fimoengine/fimo-std/ferr"
)

func errNotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ferr.ErrNotFound)...)
}

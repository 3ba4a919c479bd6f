package tracing

import (
	"fmt"

	"github.com/fimoengine/fimo-std/ferr"
)

func permissionf(op, format string, args ...any) error {
	return fmt.Errorf("tracing: %s: "+format+": %w", append([]any{op}, append(args, ferr.ErrPermission)...)...)
}

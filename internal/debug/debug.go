//go:build debug

// Package debug includes debugging helpers for tracing allocator activity.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true when the compiler is building with the debug tag.
const Enabled = true

// Log prints a trace line for an allocator operation to stderr.
//
// ctx is an optional prefix format (and its args) identifying the
// allocator instance the operation belongs to, so related log lines can be
// grepped together.
func Log(ctx []any, op, format string, args ...any) {
	_, file, line, _ := runtime.Caller(1)
	file = filepath.Base(file)

	buf := new(strings.Builder)
	_, _ = fmt.Fprintf(buf, "%s:%d [g%04d", file, line, routine.Goid())
	if len(ctx) >= 1 {
		_, _ = fmt.Fprintf(buf, ", "+ctx[0].(string), ctx[1:]...)
	}
	_, _ = fmt.Fprintf(buf, "] %s: ", op)
	_, _ = fmt.Fprintf(buf, format, args...)
	_, _ = buf.WriteString("\n")

	_, _ = os.Stderr.WriteString(buf.String())
}

// Package invariant enforces programming-error checks. Built with the
// "debug" tag a violated invariant panics; otherwise it is logged and the
// caller clamps the offending value.
package invariant

import (
	"fmt"

	"github.com/kilianp07/vesselpower/core/logger"
)

// Check reports whether cond holds. A false cond panics in debug builds and
// is logged at error level otherwise.
func Check(log logger.Logger, cond bool, format string, args ...any) bool {
	if cond {
		return true
	}
	msg := fmt.Sprintf(format, args...)
	if strict {
		panic("invariant violated: " + msg)
	}
	logger.OrNop(log).Errorf("invariant violated: %s", msg)
	return false
}

// Strict reports whether violations panic.
func Strict() bool { return strict }

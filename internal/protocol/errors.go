package protocol

import (
	"errors"
	"fmt"

	"github.com/demesup/awale/internal/model"
)

// errInternal is reported for failures that carry no domain message
var errInternal = errors.New("internal server error")

// FormatError renders err as an error reply line. Domain errors carry
// their own message; anything else is reported generically.
func FormatError(err error) string {
	if model.KindOf(err) == model.KindInternal {
		return "ERROR: " + errInternal.Error()
	}
	return "ERROR: " + err.Error()
}

// usageError wraps ErrMissingArgument with the expected form of the command
func usageError(usage string) error {
	return fmt.Errorf("%w, usage: %s", model.ErrMissingArgument, usage)
}

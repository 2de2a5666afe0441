package errors

import "fmt"

// Wrap prefixes err with msg while preserving the original chain, so
// errors.Is() checks keep working. It returns nil when err is nil,
// letting call sites wrap inline:
//
//	if err := store.Titles(ctx); err != nil {
//	    return errors.Wrap(err, "load existing titles")
//	}
//
// Callers can still check for sentinel errors:
//
//	if errors.Is(err, errors.ErrCommandTimeout) {
//	    // Handle the timeout distinctly
//	}
//
// Wrap at package boundaries only; wrapping every call level nests the
// message past usefulness.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a format string, for context that carries values:
//
//	return errors.Wrapf(err, "run %s: insert post", runID)
//
// Like Wrap, it returns nil when err is nil and preserves the chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled reports whether ctx is already done, returning its error
// (context.Canceled or context.DeadlineExceeded) when it is and nil
// otherwise. Pipeline stages call it at entry so a run interrupted
// between stages stops before spawning an agent CLI or touching the
// corpus database.
//
// ctx.Err() alone does the job: it stays nil until Done closes, so no
// select is needed.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

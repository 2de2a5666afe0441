// Package proc runs external helper processes under a hard deadline.
//
// Every pipeline stage that shells out (the generation CLIs, the PHP
// corpus and insert helpers) funnels through the Runner interface so
// tests can substitute a fake and production code gets uniform timeout,
// environment, and partial-output semantics.
//
// On timeout the child's entire process group is killed. The generation
// CLIs are node wrappers that fork worker processes; killing only the
// direct child would leave those workers running and holding the output
// pipes open.
//
// Usage:
//
//	runner := proc.NewExecRunner()
//	result, err := runner.Run(ctx, proc.Command{
//	    Name:    "php",
//	    Args:    []string{"corpus_titles.php"},
//	    Timeout: 60 * time.Second,
//	})
//	if errors.Is(err, apperrors.ErrCommandTimeout) {
//	    // result still carries any partial stdout/stderr
//	}
package proc

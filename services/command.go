package services

import (
	"context"

	"github.com/medflow/intake/utils"
)

// command pairs a forward action with the compensation that undoes it, so
// rollback is a property of the command rather than hand-written at each
// call site. bestEffort commands may fail without aborting the sequence;
// their failure is logged and they are never compensated.
type command struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
	bestEffort bool
}

// runCommands executes the commands in order. On a non-best-effort failure
// it runs the compensations of the already-completed commands in reverse
// and returns the original error. Compensation failures are logged; there
// is nothing further to unwind them with.
func runCommands(ctx context.Context, cmds []command) error {
	var completed []command

	for _, cmd := range cmds {
		err := cmd.run(ctx)
		if err == nil {
			completed = append(completed, cmd)
			continue
		}

		if cmd.bestEffort {
			utils.Warn(ctx, "best-effort step failed", map[string]interface{}{
				"step":  cmd.name,
				"error": err.Error(),
			})
			continue
		}

		for i := len(completed) - 1; i >= 0; i-- {
			if completed[i].compensate == nil {
				continue
			}
			if cerr := completed[i].compensate(ctx); cerr != nil {
				utils.Error(ctx, "compensation failed", map[string]interface{}{
					"step":        completed[i].name,
					"failed_step": cmd.name,
					"error":       cerr.Error(),
					"cause":       err.Error(),
				})
			}
		}
		return err
	}

	return nil
}

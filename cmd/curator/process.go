package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizhub/curator/internal/domain/services"
)

type processFlags struct {
	max int
}

func newProcessCmd() *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Claim and repair queued work items",
		Long:  "Runs the processor loop: claims fix_format items, relocates structured-choice records to the test corpus or flags unreparable ones for manual review, and re-validates the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.max, "max", "n", 0, "Maximum items to process (0 = until none left)")

	return cmd
}

func runProcess(cmd *cobra.Command, flags processFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		// Recover claims abandoned by crashed bots before taking new work.
		recovery, err := newRecovery(d)
		if err != nil {
			return err
		}
		released, err := recovery.Sweep(ctx)
		if err != nil {
			return err
		}
		if released > 0 {
			fmt.Printf("Recovered %d stale claims\n", released)
		}

		processor := services.NewProcessor(d.Queue, d.Corpus, d.Ledger, d.Gate)

		processed := 0
		for flags.max == 0 || processed < flags.max {
			result, err := processor.ProcessNext(ctx)
			if err != nil {
				return err
			}
			if result == nil {
				break
			}
			processed++
			fmt.Printf("%s %s: %s\n", result.Outcome, result.Ref, result.Detail)
		}

		fmt.Printf("Processed %d items\n", processed)
		return nil
	})
}

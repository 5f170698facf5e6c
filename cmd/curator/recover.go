package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Release work items stuck in-progress past the staleness threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecover(cmd)
		},
	}
}

func runRecover(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		recovery, err := newRecovery(d)
		if err != nil {
			return err
		}

		released, err := recovery.Sweep(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Recovered %d stale claims\n", released)
		return nil
	})
}

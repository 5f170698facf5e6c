package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizhub/curator/internal/domain/services"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the corpus and enqueue remediation work for invalid records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd)
		},
	}
}

func runScan(cmd *cobra.Command) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		scanner := services.NewScanner(d.Corpus, d.Queue, d.Ledger, d.Gate)

		result, err := scanner.Scan(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Scanned %d records: %d enqueued, %d already queued\n",
			result.Scanned, result.Enqueued, result.Skipped)
		return nil
	})
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizhub/curator/internal/domain/entities"
)

type ledgerFlags struct {
	limit  int
	ref    string
	action string
}

func newLedgerCmd() *cobra.Command {
	var flags ledgerFlags

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show the audit ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(cmd, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultLedgerLimit, "Maximum entries to show")
	cmd.Flags().StringVarP(&flags.ref, "ref", "r", "", "Filter by record (channel/record)")
	cmd.Flags().StringVarP(&flags.action, "action", "a", "", "Filter by action (scan, relocate, flag, export, ...)")

	return cmd
}

func runLedger(cmd *cobra.Command, flags ledgerFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		var entries []entities.LedgerEntry
		var err error

		switch {
		case flags.ref != "":
			ref, parseErr := entities.ParseItemRef(flags.ref)
			if parseErr != nil {
				return parseErr
			}
			entries, err = d.Ledger.ListByRef(ctx, ref, flags.limit)
		case flags.action != "":
			entries, err = d.Ledger.ListByAction(ctx, flags.action, flags.limit)
		default:
			entries, err = d.Ledger.List(ctx, flags.limit)
		}
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No ledger entries")
			return nil
		}

		for _, entry := range entries {
			ref := entry.Ref.String()
			if entry.Ref.ChannelID == "" && entry.Ref.RecordID == "" {
				ref = "-"
			}
			fmt.Printf("%d  %s  %-14s %-16s %s\n",
				entry.ID,
				entry.CreatedAt.Format("2006-01-02 15:04:05"),
				entry.Actor,
				entry.Action,
				ref,
			)
		}
		return nil
	})
}

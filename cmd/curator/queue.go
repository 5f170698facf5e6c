package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizhub/curator/internal/domain/entities"
)

type queueFlags struct {
	status string
	limit  int
}

func newQueueCmd() *cobra.Command {
	var flags queueFlags

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show remediation queue state for operator triage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.status, "status", "s", "pending", "Status to list (pending, in-progress, done, failed)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultQueueLimit, "Maximum items to show")

	return cmd
}

func runQueue(cmd *cobra.Command, flags queueFlags) error {
	ctx := cmd.Context()

	status := entities.WorkStatus(flags.status)
	switch status {
	case entities.StatusPending, entities.StatusInProgress, entities.StatusDone, entities.StatusFailed:
	default:
		return fmt.Errorf("invalid status %q", flags.status)
	}

	return withDeps(func(d *Deps) error {
		counts, err := d.Queue.Counts(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Queue: %d pending, %d in-progress, %d done, %d failed\n\n",
			counts.Pending, counts.InProgress, counts.Done, counts.Failed)

		items, err := d.Queue.ListByStatus(ctx, status, flags.limit)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Printf("No %s items\n", status)
			return nil
		}

		for _, item := range items {
			line := fmt.Sprintf("[p%d] %s  %s  attempts=%d  %s",
				item.Priority, item.Ref, item.Action, item.Attempts, item.Reason)
			if item.Classification != "" {
				line += fmt.Sprintf("  (%s %.2f)", item.Classification, item.Score)
			}
			fmt.Println(line)
		}
		return nil
	})
}

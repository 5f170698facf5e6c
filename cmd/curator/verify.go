package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizhub/curator/internal/domain/services"
)

type verifyFlags struct {
	max int
}

func newVerifyCmd() *cobra.Command {
	var flags verifyFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Annotate pending work items with diagnostic scores",
		Long:  "Runs the advisory verifier loop: reads pending items, scores them, and records a refined classification without mutating any record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.max, "max", "n", 0, "Maximum items to annotate (0 = until none left)")

	return cmd
}

func runVerify(cmd *cobra.Command, flags verifyFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		verifier := services.NewVerifier(d.Queue, d.Corpus, d.Ledger, d.Gate)

		annotated := 0
		for flags.max == 0 || annotated < flags.max {
			item, err := verifier.VerifyNext(ctx)
			if err != nil {
				return err
			}
			if item == nil {
				break
			}
			annotated++
			fmt.Printf("annotated %s: %s (score %.2f)\n", item.Item.Ref, item.Classification, item.Score)
		}

		fmt.Printf("Annotated %d items\n", annotated)
		return nil
	})
}

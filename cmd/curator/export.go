package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quizhub/curator/internal/domain/services"
)

type exportFlags struct {
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build distributable bundles from valid records",
		Long:  "Validates every record at publish time and writes one bundle per channel, an aggregate bundle, the structured-test bundles, and a rejection report listing everything filtered out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory (default: export.dir from config)")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		outDir := flags.output
		if outDir == "" {
			outDir = d.Config.Export.Dir
		}

		exporter := services.NewExporter(d.Corpus, d.Ledger, d.Gate)

		result, err := exporter.Export(ctx, outDir)
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d records across %d channels to %s\n",
			result.Exported, result.Channels, result.OutputDir)
		if len(result.Rejected) == 0 {
			fmt.Println("No records rejected")
			return nil
		}
		fmt.Printf("Rejected %d records:\n", len(result.Rejected))
		for _, rej := range result.Rejected {
			fmt.Printf("  %s: %v\n", rej.Ref, rej.Issues)
		}
		return nil
	})
}

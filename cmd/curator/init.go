package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizhub/curator/internal/infrastructure/config"
	"github.com/quizhub/curator/internal/infrastructure/corpus/jsonstore"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a curator workspace in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

func runInit() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("workspace already initialized: %s", config.ConfigFilePath(cwd))
	}

	if err := config.WriteDefault(cwd); err != nil {
		return err
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	if err := jsonstore.New(cfg.Corpus.Dir).EnsureLayout(); err != nil {
		return err
	}

	fmt.Printf("Initialized curator workspace in %s\n", config.ConfigDir(cwd))
	return nil
}

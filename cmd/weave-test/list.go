package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/weavetest/internal/output"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List test suites and their steps",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, format, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dir, err := resolveTestPath(cfg.Path)
	if err != nil {
		return err
	}
	suites, err := loadSuites(dir, cfg)
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		return output.NewJSON(cmd.OutOrStdout()).RenderList(suites)
	}
	if len(suites) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching suites")
		return nil
	}
	return output.NewList(cmd.OutOrStdout()).RenderList(suites)
}

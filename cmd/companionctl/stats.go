package main

import (
	"context"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count users, states, activities and their relationships",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	stats, err := a.Stats(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, stats)
	}
	printf(cmd, "Users:       %d\n", stats.Users)
	printf(cmd, "States:      %d\n", stats.States)
	printf(cmd, "Activities:  %d\n", stats.Activities)
	printf(cmd, "TREATS:      %d\n", stats.Treats)
	printf(cmd, "EXPERIENCES: %d\n", stats.Experiences)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthands/companion/internal/logging"
	"github.com/agenthands/companion/internal/scheduler"
)

var trainDimensions int

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Snapshot the graph, train embeddings and persist them",
	Long: `Fetches every relationship from the graph store, computes spectral
embeddings for all nodes and replaces the embedding file.

Examples:
  companionctl train
  companionctl train --dimensions 16`,
	RunE: runTrain,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [cron-expression]",
	Short: "Retrain embeddings on a cron schedule until interrupted",
	Long: `Runs the training job on a schedule. The expression defaults to the
configured embedding.schedule and accepts descriptors such as "@every 6h".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchedule,
}

func init() {
	trainCmd.Flags().IntVarP(&trainDimensions, "dimensions", "d", 0, "embedding dimensions (default from config)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if trainDimensions > 0 {
		a.Pipeline.Dimensions = trainDimensions
	}

	report, err := a.Pipeline.Run(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, report)
	}
	printf(cmd, "Trained %d nodes (%d edges, %d components, %d communities) in %s\n",
		report.Nodes, report.Edges, report.Components, report.Communities, report.Duration.Round(time.Millisecond))
	if report.Saved {
		printf(cmd, "Embeddings (%d dimensions) saved to %s\n", report.Dimensions, report.Path)
	} else {
		printf(cmd, "Graph is empty, nothing saved\n")
	}
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	expr := a.Config.Embedding.Schedule
	if len(args) == 1 {
		expr = args[0]
	}
	if expr == "" {
		return fmt.Errorf("no schedule given and embedding.schedule is not configured")
	}

	sched := scheduler.New(logging.Component("scheduler"), 0)
	if err := sched.Add("retrain-embeddings", expr, a.Retrain); err != nil {
		return err
	}
	sched.Start()
	printf(cmd, "Retraining on schedule %q, press Ctrl+C to stop\n", expr)

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	sched.Stop(stopCtx)
	return nil
}

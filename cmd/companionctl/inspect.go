package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthands/companion/internal/core/embedding"
	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/logging"
)

var inspectPath string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the persisted embedding file",
	Long:  `Loads the embedding file without contacting the graph store and prints node counts per kind.`,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectPath, "file", "f", "", "embedding file (default from config)")
}

type inspectReport struct {
	Path       string         `json:"path"`
	Dimensions int            `json:"dimensions"`
	TrainedAt  time.Time      `json:"trained_at"`
	Nodes      int            `json:"nodes"`
	ByKind     map[string]int `json:"by_kind"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Embedding.Path
	if inspectPath != "" {
		path = inspectPath
	}

	space, err := embedding.NewFileStore(path, logging.Component("embedding")).Load()
	if err != nil {
		return err
	}

	report := inspectReport{
		Path:       path,
		Dimensions: space.Dimensions(),
		TrainedAt:  space.TrainedAt,
		Nodes:      space.Len(),
		ByKind:     make(map[string]int),
	}
	for kind, n := range space.CountByKind() {
		report.ByKind[kind.String()] = n
	}

	if jsonOutput {
		return printJSON(cmd, report)
	}
	printf(cmd, "File:       %s\n", report.Path)
	printf(cmd, "Trained at: %s\n", report.TrainedAt.Format(time.RFC3339))
	printf(cmd, "Dimensions: %d\n", report.Dimensions)
	printf(cmd, "Nodes:      %d\n", report.Nodes)
	for _, kind := range []model.NodeKind{model.KindUser, model.KindState, model.KindActivity, model.KindUnknown} {
		printf(cmd, "  %-10s %d\n", kind.String()+":", report.ByKind[kind.String()])
	}
	return nil
}

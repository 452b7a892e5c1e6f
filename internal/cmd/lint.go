package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/pipegen/internal/pipeline"
	"github.com/cameronsjo/pipegen/internal/ui"
)

// lintCmd validates the job graph of a generated pipeline.
var lintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Validate job dependencies of a pipeline file",
	Long: `Check that every job has a unique name, that passed constraints only name
jobs in the same pipeline, and that they form no cycle. Prints the jobs in
dependency order.`,
	Args: cobra.ExactArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read pipeline: %w", err)
	}

	doc, err := pipeline.DecodeDocument(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	order, err := pipeline.JobOrder(doc)
	if err != nil {
		return fmt.Errorf("lint %s: %w", args[0], err)
	}

	ui.Header("%s", args[0])
	for i, job := range order {
		ui.Step(i+1, "%s", job)
	}
	ui.Success("%d jobs, dependencies valid", len(order))
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/pipegen/internal/pipeline"
	"github.com/cameronsjo/pipegen/internal/ui"
)

// releaseCmd generates the composite release pipeline.
var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Generate the composite release pipeline",
	Long: `Render every clean and upgrade target from the release templates and merge
them after ert.yml into a single pipeline named after the product version.

Targets default to the standard suite and can be overridden in pipegen.yml.

Examples:
  pipegen release             # Write ci/pipelines/release/ert-<version>.yml
  pipegen release -n          # Print without writing
  pipegen release -d --lint   # Validate and diff against the existing file`,
	Args: cobra.NoArgs,
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().BoolP("dry-run", "n", false, "Show what would be generated without writing")
	releaseCmd.Flags().BoolP("diff", "d", false, "Show diff against the existing pipeline")
	releaseCmd.Flags().Bool("lint", false, "Validate job dependencies before writing")

	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	diff, _ := cmd.Flags().GetBool("diff")
	lint, _ := cmd.Flags().GetBool("lint")

	assembler := pipeline.NewSuiteAssembler(p.components, p.cfg.SuiteTargets())
	ctx := cmd.Context()

	if dryRun || diff || lint {
		out, err := assembler.BuildFullSuite(ctx)
		if err != nil {
			return fmt.Errorf("build release pipeline: %w", err)
		}
		if lint {
			if err := pipeline.ValidateJobGraph(out.Document); err != nil {
				return fmt.Errorf("lint %s: %w", out.Path, err)
			}
			ui.Success("%s: %d jobs, dependencies valid", out.Path, len(out.Document.Jobs()))
		}
		if shown, err := p.preview(cmd, out, dryRun, diff); shown || err != nil {
			return err
		}
	}

	targets := assembler.Targets()
	ui.Info("Generating release pipeline (%d clean, %d upgrade)", len(targets.Clean), len(targets.Upgrade))
	if err := p.write(func() (*pipeline.Output, error) { return assembler.FullSuitePipeline(ctx) }); err != nil {
		return fmt.Errorf("create release pipeline: %w", err)
	}
	return nil
}

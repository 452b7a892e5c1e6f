// Package cmd provides the CLI commands for pipegen.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/pipegen/internal/ui"
)

const version = "0.1.0"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pipegen",
	Short: "Generate Concourse pipelines for ERT feature branches and releases",
	Long: `pipegen - CI pipeline generator

Renders pipeline templates from ci/pipelines, injects IaaS-specific task
fragments, and writes feature branch or full release pipelines.

PIPELINE COMMANDS
  feature               Generate the pipeline for a feature branch
    --upgrade           Generate the upgrade pipeline instead
    --dry-run, -n       Print the pipeline without writing
    --diff, -d          Show diff against the existing pipeline
  release               Generate the composite release pipeline
    --lint              Validate job dependencies before writing
  lint <file>           Validate job dependencies of a pipeline file
  doctor                Check project templates and metadata

Defaults for feature flags are read from the environment and from a .env
file at the project root: BRANCH_NAME, IAAS_TYPE, ERT_INITIAL_FULL_VERSION,
OM_INITIAL_FULL_VERSION.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		noColor, _ := cmd.Flags().GetBool("no-color")
		ui.ConfigureColor(noColor)
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// versionCmd prints the pipegen version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pipegen version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pipegen version %s\n", version)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.AddCommand(versionCmd)

	// Version template
	rootCmd.SetVersionTemplate("pipegen version {{.Version}}\n")
}

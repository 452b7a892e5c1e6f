package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/pipegen/internal/pipeline"
	"github.com/cameronsjo/pipegen/internal/ui"
	"github.com/cameronsjo/pipegen/internal/vcs"
)

// featureCmd generates a feature branch pipeline.
var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Generate the pipeline for a feature branch",
	Long: `Render the feature pipeline template for one branch and IaaS.

The branch defaults to $BRANCH_NAME, then to the branch checked out in the
project repository. The branch name also names the pipeline.

Examples:
  pipegen feature --iaas aws                        # Clean install pipeline
  pipegen feature --iaas vsphere -n                 # Print without writing
  pipegen feature --iaas aws --upgrade \
    --ert-initial-full-version 1.4.2.0 \
    --om-initial-full-version 1.4.2.0               # Upgrade pipeline`,
	Args: cobra.NoArgs,
	RunE: runFeature,
}

func init() {
	featureCmd.Flags().StringP("branch", "b", "", "Feature branch name (default $BRANCH_NAME or current git branch)")
	featureCmd.Flags().String("iaas", "", "IaaS type: aws, vsphere, vcloud (default $IAAS_TYPE)")
	featureCmd.Flags().Bool("upgrade", false, "Generate the upgrade pipeline")
	featureCmd.Flags().String("ert-initial-full-version", "", "ERT version installed before upgrading (default $ERT_INITIAL_FULL_VERSION)")
	featureCmd.Flags().String("om-initial-full-version", "", "Ops Manager version installed before upgrading (default $OM_INITIAL_FULL_VERSION)")
	featureCmd.Flags().String("om-version", "", "Ops Manager MAJOR.MINOR (default product version)")
	featureCmd.Flags().BoolP("dry-run", "n", false, "Show what would be generated without writing")
	featureCmd.Flags().BoolP("diff", "d", false, "Show diff against the existing pipeline")

	rootCmd.AddCommand(featureCmd)
}

func runFeature(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	branch, err := featureBranch(cmd, p.cfg.Root)
	if err != nil {
		return err
	}

	omVersion, _ := cmd.Flags().GetString("om-version")
	req := pipeline.FeatureRequest{
		BranchName: branch,
		IaaSType:   flagOrEnv(cmd, "iaas", envIaaSType),
		OMVersion:  omVersion,
	}

	upgrade, _ := cmd.Flags().GetBool("upgrade")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	diff, _ := cmd.Flags().GetBool("diff")

	assembler := pipeline.NewFeatureAssembler(p.components)

	build := func() (*pipeline.Output, error) { return assembler.BuildPipeline(req) }
	create := func() (*pipeline.Output, error) { return assembler.CreatePipeline(req) }
	if upgrade {
		upgradeReq := pipeline.UpgradeRequest{
			FeatureRequest:        req,
			ERTInitialFullVersion: flagOrEnv(cmd, "ert-initial-full-version", envERTInitialFullVersion),
			OMInitialFullVersion:  flagOrEnv(cmd, "om-initial-full-version", envOMInitialFullVersion),
		}
		build = func() (*pipeline.Output, error) { return assembler.BuildUpgradePipeline(upgradeReq) }
		create = func() (*pipeline.Output, error) { return assembler.CreateUpgradePipeline(upgradeReq) }
	}

	if dryRun || diff {
		out, err := build()
		if err != nil {
			return fmt.Errorf("build feature pipeline: %w", err)
		}
		_, err = p.preview(cmd, out, dryRun, diff)
		return err
	}

	ui.Info("Generating pipeline for %s on %s", req.BranchName, req.IaaSType)
	if err := p.write(create); err != nil {
		return fmt.Errorf("create feature pipeline: %w", err)
	}
	return nil
}

// featureBranch resolves the branch from the flag, $BRANCH_NAME, or git.
func featureBranch(cmd *cobra.Command, root string) (string, error) {
	if branch := flagOrEnv(cmd, "branch", envBranchName); branch != "" {
		return branch, nil
	}

	branch, err := vcs.CurrentBranch(root)
	if err != nil {
		return "", fmt.Errorf("detect branch (use --branch): %w", err)
	}
	return branch, nil
}

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const (
	handcraft = `---
provides_product_versions:
- name: cf
  version: 1.5.0.0$PRERELEASE_VERSION$
`

	featureTemplate = `---
jobs:
- name: destroy-environment-{{pipeline_name}}
  plan:
  - get: environment
    resource: environment-{{environment_pool}}
  - task: destroy
    tags: [{{iaas_type}}]
- name: configure-ert-{{pipeline_name}}
  plan:
  - task: configure
    params:
      ERT_VERSION: "{{ert_version}}"
      OM_VERSION: "{{om_version}}"
`

	featureUpgradeTemplate = `---
jobs:
- name: install-{{pipeline_name}}
  plan:
  - task: install
    params:
      ERT_VERSION: "{{ert_initial_full_version}}"
      ERT_MINOR: "{{ert_initial_version}}"
      OM_VERSION: "{{om_initial_full_version}}"
- name: configure-ert-{{pipeline_name}}
  plan:
  - task: upgrade
    params:
      ERT_VERSION: "{{ert_version}}"
`

	ertTemplate = `---
resources:
- name: p-runtime
  type: git
jobs:
- name: build
  plan:
  - get: p-runtime
`

	releaseTemplate = `---
resources:
- name: environment-{{environment_pool}}
  type: pool
jobs:
- name: destroy-environment-{{pipeline_name}}
  plan:
  - get: environment
    resource: environment-{{environment_pool}}
  - task: destroy
    tags: [{{iaas_type}}]
- name: configure-ert-{{pipeline_name}}
  plan:
  - get: p-runtime
    passed: [destroy-environment-{{pipeline_name}}]
  - task: configure
`
)

// newProjectDir writes a minimal project tree and changes into it.
func newProjectDir(t *testing.T) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	files := map[string]string{
		"metadata_parts/handcraft.yml":                                  handcraft,
		"ci/pipelines/feature-pipeline-template.yml":                    featureTemplate,
		"ci/pipelines/feature-upgrade-template.yml":                     featureUpgradeTemplate,
		"ci/pipelines/release/template/ert.yml":                         ertTemplate,
		"ci/pipelines/release/template/clean.yml":                       releaseTemplate,
		"ci/pipelines/release/template/upgrade.yml":                     releaseTemplate,
		"ci/pipelines/release/template/aws-external-config.yml":         "- task: aws-external-config\n",
		"ci/pipelines/release/template/aws-external-config-upgrade.yml": "- task: aws-external-config-upgrade\n",
		"ci/pipelines/release/template/vcloud-delete-installation.yml":  "- task: delete-installation\n",
	}
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	}

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(originalWd) })
	require.NoError(t, os.Chdir(root))

	for _, env := range []string{envBranchName, envIaaSType, envERTInitialFullVersion, envOMInitialFullVersion} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}

	return root
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// executeCmd runs the root command with args and returns everything printed.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldOutput, oldNoColor := color.Output, color.NoColor
	t.Cleanup(func() {
		color.Output = oldOutput
		color.NoColor = oldNoColor
		resetFlags(rootCmd)
	})

	buf := new(bytes.Buffer)
	color.Output = buf

	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--no-color"}, args...))
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetContext(context.Background())

	err := rootCmd.Execute()
	return buf.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

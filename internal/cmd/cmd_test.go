package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/pipegen/internal/lock"
	"github.com/cameronsjo/pipegen/internal/pipeline"
)

func TestVersion(t *testing.T) {
	output, err := executeCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pipegen version 0.1.0\n", output)
}

func TestFeature_DryRun(t *testing.T) {
	root := newProjectDir(t)

	output, err := executeCmd(t, "feature", "--branch", "features/x", "--iaas", "vsphere", "-n")
	require.NoError(t, err)

	assert.Contains(t, output, "---\njobs:\n")
	assert.Contains(t, output, "name: destroy-environment-features/x")
	assert.Contains(t, output, "resource: environment-vsphere")
	assert.NoFileExists(t, filepath.Join(root, "ci", "pipelines", "features", "x", "pipeline.yml"))
}

func TestFeature_WritesPipeline(t *testing.T) {
	root := newProjectDir(t)

	output, err := executeCmd(t, "feature", "--branch", "features/x", "--iaas", "aws")
	require.NoError(t, err)
	assert.Contains(t, output, "wrote ci/pipelines/features/x/pipeline.yml (2 jobs)")

	written := readFile(t, filepath.Join(root, "ci", "pipelines", "features", "x", "pipeline.yml"))
	assert.Contains(t, written, "task: aws-external-config\n")
	assert.Contains(t, written, "resource: environment-aws\n")

	// lock released after writing
	assert.NoFileExists(t, lock.New(root, lockOperation).Path())
}

func TestFeature_EnvFileDefaults(t *testing.T) {
	root := newProjectDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("BRANCH_NAME=from-env\nIAAS_TYPE=vcloud\n"), 0644))

	output, err := executeCmd(t, "feature", "-n")
	require.NoError(t, err)
	assert.Contains(t, output, "name: destroy-environment-from-env")
	assert.Contains(t, output, "task: delete-installation")
}

func TestFeature_FlagOverridesEnv(t *testing.T) {
	newProjectDir(t)
	t.Setenv(envIaaSType, "vcloud")

	output, err := executeCmd(t, "feature", "--branch", "b", "--iaas", "vsphere", "-n")
	require.NoError(t, err)
	assert.NotContains(t, output, "delete-installation")
}

func TestFeature_Upgrade(t *testing.T) {
	newProjectDir(t)

	output, err := executeCmd(t, "feature",
		"--branch", "b", "--iaas", "aws", "--upgrade",
		"--ert-initial-full-version", "1.4.2.0",
		"--om-initial-full-version", "1.4.1.0-rc1",
		"-n")
	require.NoError(t, err)

	assert.Contains(t, output, "name: install-b")
	assert.Contains(t, output, "ERT_VERSION: 1.4.2.0")
	assert.Contains(t, output, "OM_VERSION: 1.4.1.0-rc1")
	assert.Contains(t, output, `ERT_MINOR: "1.4"`)
	assert.Contains(t, output, "task: aws-external-config-upgrade")
}

func TestFeature_UpgradeRequiresVersions(t *testing.T) {
	newProjectDir(t)

	_, err := executeCmd(t, "feature", "--branch", "b", "--iaas", "aws", "--upgrade", "-n")
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "ERTInitialFullVersion")
}

func TestFeature_NoBranch(t *testing.T) {
	newProjectDir(t)

	_, err := executeCmd(t, "feature", "--iaas", "aws", "-n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detect branch")
}

func TestFeature_Diff(t *testing.T) {
	root := newProjectDir(t)
	args := []string{"feature", "--branch", "b", "--iaas", "vsphere"}

	output, err := executeCmd(t, append(args, "-d")...)
	require.NoError(t, err)
	assert.Contains(t, output, "does not exist yet")

	_, err = executeCmd(t, args...)
	require.NoError(t, err)

	output, err = executeCmd(t, append(args, "-d")...)
	require.NoError(t, err)
	assert.Contains(t, output, "ci/pipelines/b/pipeline.yml is up to date")

	path := filepath.Join(root, "ci", "pipelines", "b", "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte("---\njobs: []\n"), 0644))

	output, err = executeCmd(t, append(args, "-d")...)
	require.NoError(t, err)
	assert.Contains(t, output, "--- ci/pipelines/b/pipeline.yml")
	assert.Contains(t, output, "destroy-environment-b")
}

func TestFeature_Locked(t *testing.T) {
	root := newProjectDir(t)

	held := lock.New(root, lockOperation)
	require.NoError(t, held.Acquire())
	defer held.Release()

	_, err := executeCmd(t, "feature", "--branch", "b", "--iaas", "vsphere")
	assert.ErrorIs(t, err, lock.ErrHeld)
	assert.NoFileExists(t, filepath.Join(root, "ci", "pipelines", "b", "pipeline.yml"))
}

func TestRelease_WritesAndLints(t *testing.T) {
	root := newProjectDir(t)

	output, err := executeCmd(t, "release")
	require.NoError(t, err)
	assert.Contains(t, output, "Generating release pipeline (4 clean, 3 upgrade)")
	assert.Contains(t, output, "wrote ci/pipelines/release/ert-1.5.yml")

	path := filepath.Join(root, "ci", "pipelines", "release", "ert-1.5.yml")
	written := readFile(t, path)
	assert.Contains(t, written, "name: build\n")
	assert.Contains(t, written, "name: "+pipeline.VerifyInternetlessJobName)
	assert.Contains(t, written, "name: configure-ert-aws-upgrade")

	output, err = executeCmd(t, "lint", path)
	require.NoError(t, err)
	assert.Contains(t, output, "[1] build")
	assert.Contains(t, output, "16 jobs, dependencies valid")
}

func TestRelease_LintDryRun(t *testing.T) {
	root := newProjectDir(t)

	output, err := executeCmd(t, "release", "--lint", "-n")
	require.NoError(t, err)
	assert.Contains(t, output, "dependencies valid")
	assert.Contains(t, output, "---\n")
	assert.NoFileExists(t, filepath.Join(root, "ci", "pipelines", "release", "ert-1.5.yml"))
}

func TestRelease_ConfiguredTargets(t *testing.T) {
	root := newProjectDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "pipegen.yml"), []byte(`
targets:
  clean:
    - pipeline_name: only
      iaas_type: vsphere
output:
  release: 'ci/pipelines/release/{{ .ProductVersion | replace "." "-" }}.yml'
`), 0644))

	output, err := executeCmd(t, "release")
	require.NoError(t, err)
	assert.Contains(t, output, "(1 clean, 0 upgrade)")
	assert.Contains(t, readFile(t, filepath.Join(root, "ci", "pipelines", "release", "1-5.yml")), "destroy-environment-only")
}

func TestLint_Cycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
jobs:
- name: a
  plan:
  - get: x
    passed: [b]
- name: b
  plan:
  - get: x
    passed: [a]
`), 0644))

	_, err := executeCmd(t, "lint", path)
	assert.ErrorIs(t, err, pipeline.ErrInvalidGraph)
}

func TestLint_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "lint", filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pipeline")
}

func TestDoctor(t *testing.T) {
	root := newProjectDir(t)

	output, err := executeCmd(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, output, "All required files present")

	require.NoError(t, os.Remove(filepath.Join(root, "ci", "pipelines", "release", "template", "ert.yml")))
	require.NoError(t, os.Remove(filepath.Join(root, "ci", "pipelines", "feature-upgrade-template.yml")))

	output, err = executeCmd(t, "doctor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 required files missing")
	assert.Contains(t, output, "ci/pipelines/release/template/ert.yml: needed by 'pipegen release'")
	assert.Contains(t, output, "feature-upgrade-template.yml")
}

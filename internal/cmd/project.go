package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/k14s/difflib"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/pipegen/internal/config"
	"github.com/cameronsjo/pipegen/internal/fileutil"
	"github.com/cameronsjo/pipegen/internal/lock"
	"github.com/cameronsjo/pipegen/internal/pipeline"
	"github.com/cameronsjo/pipegen/internal/ui"
)

// Environment variables providing flag defaults.
const (
	envBranchName            = "BRANCH_NAME"
	envIaaSType              = "IAAS_TYPE"
	envERTInitialFullVersion = "ERT_INITIAL_FULL_VERSION"
	envOMInitialFullVersion  = "OM_INITIAL_FULL_VERSION"
)

// lockOperation names the lock guarding pipeline writes.
const lockOperation = "generate"

// project is a loaded pipegen project ready to assemble pipelines.
type project struct {
	cfg        *config.Config
	sink       *fileutil.DirSink
	components pipeline.Components
}

// loadProject finds the project root, reads pipegen.yml and .env, and wires
// the pipeline components against the root directory.
func loadProject() (*project, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := config.LoadEnv(cfg.Root); err != nil {
		return nil, err
	}

	sink := fileutil.NewDirSink(cfg.Root)
	components, err := pipeline.NewComponents(os.DirFS(cfg.Root), cfg.Layout(), sink)
	if err != nil {
		return nil, err
	}

	return &project{cfg: cfg, sink: sink, components: components}, nil
}

// preview prints a built pipeline for --dry-run or diffs it for --diff.
// Returns false when neither flag is set.
func (p *project) preview(cmd *cobra.Command, out *pipeline.Output, dryRun, diff bool) (bool, error) {
	switch {
	case dryRun:
		_, err := cmd.OutOrStdout().Write(out.Data)
		return true, err
	case diff:
		return true, p.showDiff(cmd, out)
	}
	return false, nil
}

// showDiff compares a built pipeline against the file it would replace.
func (p *project) showDiff(cmd *cobra.Command, out *pipeline.Output) error {
	path, err := p.sink.Resolve(out.Path)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		ui.Warning("%s does not exist yet", out.Path)
	case err != nil:
		return fmt.Errorf("read %s: %w", out.Path, err)
	}

	if bytes.Equal(existing, out.Data) {
		ui.Success("%s is up to date", out.Path)
		return nil
	}

	ui.Header("--- %s", out.Path)
	ui.Diff(cmd.OutOrStdout(), difflib.PPDiff(splitLines(existing), splitLines(out.Data)))
	return nil
}

// write runs create under the generate lock and reports the written pipeline.
func (p *project) write(create func() (*pipeline.Output, error)) error {
	return lock.WithLock(p.cfg.Root, lockOperation, func() error {
		out, err := create()
		if err != nil {
			return err
		}
		ui.Wrote(out.Path, len(out.Document.Jobs()))
		return nil
	})
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// flagOrEnv returns the flag value, falling back to env when the flag was
// not set on the command line.
func flagOrEnv(cmd *cobra.Command, name, env string) string {
	value, _ := cmd.Flags().GetString(name)
	if cmd.Flags().Changed(name) {
		return value
	}
	if fromEnv := os.Getenv(env); fromEnv != "" {
		return fromEnv
	}
	return value
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/pipegen/internal/preflight"
	"github.com/cameronsjo/pipegen/internal/ui"
)

// doctorCmd checks that the project holds every template pipegen reads.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check project templates and metadata",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	ui.Header("Project %s", p.cfg.Root)
	warnings, errors := preflight.CheckAll(os.DirFS(p.cfg.Root), p.cfg.Layout())
	for _, w := range warnings {
		ui.Warning("%s", w)
	}
	for _, e := range errors {
		ui.Error("%s", e)
	}

	if len(errors) > 0 {
		return fmt.Errorf("%d required files missing", len(errors))
	}
	ui.Success("All required files present")
	return nil
}

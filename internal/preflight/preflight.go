// Package preflight checks that a project holds the files pipeline generation reads.
package preflight

import (
	"io/fs"

	"github.com/cameronsjo/pipegen/internal/pipeline"
)

// FileCheck is a template or metadata file and its purpose.
type FileCheck struct {
	Path     string
	Required bool   // false = warning only
	Hint     string // what needs the file
}

// Files lists the files layout expects. Release templates and metadata are
// required; feature templates only matter to the feature command.
func Files(layout pipeline.Layout) []FileCheck {
	release := "needed by 'pipegen release'"
	return []FileCheck{
		{Path: layout.MetadataFile, Required: true, Hint: "product metadata with provides_product_versions"},
		{Path: layout.ReleaseTemplate(pipeline.BaseTemplate), Required: true, Hint: release},
		{Path: layout.ReleaseTemplate(pipeline.CleanTemplate), Required: true, Hint: release},
		{Path: layout.ReleaseTemplate(pipeline.UpgradeTemplate), Required: true, Hint: release},
		{Path: layout.ReleaseTemplate(pipeline.FragmentAWSExternalConfig), Required: true, Hint: "AWS configure tasks"},
		{Path: layout.ReleaseTemplate(pipeline.FragmentAWSExternalConfigUpgrade), Required: true, Hint: "AWS upgrade configure tasks"},
		{Path: layout.ReleaseTemplate(pipeline.FragmentVCloudDeleteInstallation), Required: true, Hint: "vCloud destroy tasks"},
		{Path: layout.FeatureTemplate, Required: false, Hint: "needed by 'pipegen feature'"},
		{Path: layout.FeatureUpgradeTemplate, Required: false, Hint: "needed by 'pipegen feature --upgrade'"},
	}
}

// CheckFiles returns the files of layout missing from fsys.
func CheckFiles(fsys fs.FS, layout pipeline.Layout) []FileCheck {
	var missing []FileCheck

	for _, file := range Files(layout) {
		if !IsFileAvailable(fsys, file.Path) {
			missing = append(missing, file)
		}
	}

	return missing
}

// CheckAll performs all pre-flight checks and returns warnings and errors.
// Errors are for missing required files, warnings are for missing optional files.
func CheckAll(fsys fs.FS, layout pipeline.Layout) (warnings []string, errors []string) {
	for _, file := range CheckFiles(fsys, layout) {
		msg := file.Path + ": " + file.Hint
		if file.Required {
			errors = append(errors, msg)
		} else {
			warnings = append(warnings, msg)
		}
	}

	return warnings, errors
}

// IsFileAvailable reports whether name exists in fsys as a regular file.
func IsFileAvailable(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && info.Mode().IsRegular()
}

package pipeline

import (
	"fmt"
	"io/fs"
	"path"
)

// Template and output locations relative to the project root.
const (
	DefaultFeatureTemplate        = "ci/pipelines/feature-pipeline-template.yml"
	DefaultFeatureUpgradeTemplate = "ci/pipelines/feature-upgrade-template.yml"
	DefaultReleaseTemplateDir     = "ci/pipelines/release/template"
	DefaultMetadataFile           = "metadata_parts/handcraft.yml"

	// Release templates inside the release template directory.
	CleanTemplate   = "clean.yml"
	UpgradeTemplate = "upgrade.yml"
	BaseTemplate    = "ert.yml"
)

// Layout locates templates and outputs. All paths are slash-separated and
// relative to the project root.
type Layout struct {
	FeatureTemplate        string
	FeatureUpgradeTemplate string
	ReleaseTemplateDir     string
	MetadataFile           string

	// FeatureOutput returns the output path of a feature branch pipeline.
	FeatureOutput func(branch string) (string, error)

	// ReleaseOutput returns the output path of the composite release pipeline.
	ReleaseOutput func(productVersion string) (string, error)
}

// DefaultLayout returns the conventional repository layout.
func DefaultLayout() Layout {
	return Layout{
		FeatureTemplate:        DefaultFeatureTemplate,
		FeatureUpgradeTemplate: DefaultFeatureUpgradeTemplate,
		ReleaseTemplateDir:     DefaultReleaseTemplateDir,
		MetadataFile:           DefaultMetadataFile,
		FeatureOutput: func(branch string) (string, error) {
			return path.Join("ci/pipelines", branch, "pipeline.yml"), nil
		},
		ReleaseOutput: func(productVersion string) (string, error) {
			return path.Join("ci/pipelines/release", "ert-"+productVersion+".yml"), nil
		},
	}
}

// ReleaseTemplate returns the path of a file in the release template directory.
func (l Layout) ReleaseTemplate(name string) string {
	return path.Join(l.ReleaseTemplateDir, name)
}

// Sink persists generated documents.
type Sink interface {
	Write(path string, data []byte) error
}

// Output is a generated, serialized pipeline.
type Output struct {
	// Path is where the pipeline is written, relative to the project root.
	Path string

	// Document is the generated document.
	Document Document

	// Data is the serialized document.
	Data []byte
}

// Components are the collaborators shared by the assemblers.
type Components struct {
	// Templates is the project root.
	Templates fs.FS

	Renderer *Renderer
	Injector *Injector

	// Resolver maps a pipeline name and IaaS type to an environment pool.
	Resolver func(pipelineName, iaasType string) string

	Layout Layout
	Sink   Sink
}

// NewComponents wires the default renderer, resolver and an injector that
// reads fragments from the layout's release template directory.
func NewComponents(root fs.FS, layout Layout, sink Sink) (Components, error) {
	fragments, err := fs.Sub(root, layout.ReleaseTemplateDir)
	if err != nil {
		return Components{}, fmt.Errorf("open release template directory: %w", err)
	}

	return Components{
		Templates: root,
		Renderer:  NewRenderer(),
		Injector:  NewInjector(fragments),
		Resolver:  EnvironmentPool,
		Layout:    layout,
		Sink:      sink,
	}, nil
}

// readTemplate reads a template file from the project root.
func (c Components) readTemplate(name string) (string, error) {
	data, err := fs.ReadFile(c.Templates, name)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(data), nil
}

// productVersion reads the metadata file and extracts MAJOR.MINOR of the product.
func (c Components) productVersion() (string, error) {
	data, err := fs.ReadFile(c.Templates, c.Layout.MetadataFile)
	if err != nil {
		return "", fmt.Errorf("read metadata %s: %w", c.Layout.MetadataFile, err)
	}

	metadata, err := DecodeDocument(data)
	if err != nil {
		return "", fmt.Errorf("parse metadata %s: %w", c.Layout.MetadataFile, err)
	}

	if _, ok := metadata[fieldProvidesProductVersions]; !ok {
		return ProductVersionField(metadata)
	}
	return ExtractProductVersion(metadata)
}

// write serializes doc and hands it to the sink.
func (c Components) write(out *Output) error {
	if c.Sink == nil {
		return fmt.Errorf("write %s: no sink configured", out.Path)
	}
	if err := c.Sink.Write(out.Path, out.Data); err != nil {
		return fmt.Errorf("write %s: %w", out.Path, err)
	}
	return nil
}

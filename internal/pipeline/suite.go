package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Targets lists the pipelines generated for the full suite, per flavor.
type Targets struct {
	Clean   []Target `yaml:"clean" validate:"dive"`
	Upgrade []Target `yaml:"upgrade" validate:"dive"`
}

// DefaultTargets returns the pipelines of the standard release suite.
func DefaultTargets() Targets {
	return Targets{
		Clean: []Target{
			{PipelineName: "vsphere-clean", IaaSType: IaaSVSphere},
			{PipelineName: "aws-clean", IaaSType: IaaSAWS},
			{PipelineName: PipelineInternetless, IaaSType: IaaSVSphere},
			{PipelineName: "vcloud", IaaSType: IaaSVCloud},
		},
		Upgrade: []Target{
			{PipelineName: "vsphere-upgrade", IaaSType: IaaSVSphere},
			{PipelineName: PipelineAWSUpgrade, IaaSType: IaaSAWS},
			{PipelineName: "vcloud-upgrade", IaaSType: IaaSVCloud},
		},
	}
}

// All returns every target in generation order, clean pipelines first,
// with Flavor set.
func (t Targets) All() []Target {
	all := make([]Target, 0, len(t.Clean)+len(t.Upgrade))
	for _, target := range t.Clean {
		target.Flavor = FlavorClean
		all = append(all, target)
	}
	for _, target := range t.Upgrade {
		target.Flavor = FlavorUpgrade
		all = append(all, target)
	}
	return all
}

// SuiteAssembler builds the composite release pipeline covering every target.
type SuiteAssembler struct {
	c       Components
	targets Targets
}

// NewSuiteAssembler returns a SuiteAssembler generating targets.
func NewSuiteAssembler(c Components, targets Targets) *SuiteAssembler {
	return &SuiteAssembler{c: c, targets: targets}
}

// Targets returns the configured targets.
func (a *SuiteAssembler) Targets() Targets {
	return a.targets
}

// CleanPipelineJobs renders clean.yml for one pipeline and applies the
// IaaS rules, plus the internetless verification job.
func (a *SuiteAssembler) CleanPipelineJobs(pipelineName, iaasType string) (Document, error) {
	return a.PipelineJobs(Target{PipelineName: pipelineName, IaaSType: iaasType, Flavor: FlavorClean})
}

// UpgradePipelineJobs renders upgrade.yml for one pipeline and applies the
// IaaS rules.
func (a *SuiteAssembler) UpgradePipelineJobs(pipelineName, iaasType string) (Document, error) {
	return a.PipelineJobs(Target{PipelineName: pipelineName, IaaSType: iaasType, Flavor: FlavorUpgrade})
}

// PipelineJobs renders the template for target's flavor and applies the
// injector rules. The returned document is owned by the caller.
func (a *SuiteAssembler) PipelineJobs(target Target) (Document, error) {
	if err := Validate(target); err != nil {
		return nil, err
	}

	templateName := CleanTemplate
	if target.Flavor == FlavorUpgrade {
		templateName = UpgradeTemplate
	}
	templatePath := a.c.Layout.ReleaseTemplate(templateName)

	template, err := a.c.readTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	ctx := NewContext(map[string]string{
		KeyPipelineName:    target.PipelineName,
		KeyIaaSType:        target.IaaSType,
		KeyEnvironmentPool: a.c.Resolver(target.PipelineName, target.IaaSType),
	})

	doc, err := a.c.Renderer.RenderDocument(template, ctx)
	if err != nil {
		return nil, fmt.Errorf("render %s for %s: %w", templateName, target.PipelineName, err)
	}

	if err := a.c.Injector.Apply(doc, target); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", target.PipelineName, err)
	}

	return doc, nil
}

// BuildFullSuite generates every target and merges them after the base
// document. Targets are rendered concurrently; the merge runs once all of
// them have finished, in target order. Any failure aborts the whole build.
func (a *SuiteAssembler) BuildFullSuite(ctx context.Context) (*Output, error) {
	productVersion, err := a.c.productVersion()
	if err != nil {
		return nil, err
	}

	baseTemplate, err := a.c.readTemplate(a.c.Layout.ReleaseTemplate(BaseTemplate))
	if err != nil {
		return nil, err
	}
	base, err := DecodeDocument([]byte(baseTemplate))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", BaseTemplate, err)
	}

	targets := a.targets.All()
	docs := make([]Document, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := a.PipelineJobs(target)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate suite: %w", err)
	}

	composite, err := MergeComposite(base, docs...)
	if err != nil {
		return nil, fmt.Errorf("merge suite: %w", err)
	}

	data, err := EncodeDocument(composite)
	if err != nil {
		return nil, err
	}

	outPath, err := a.c.Layout.ReleaseOutput(productVersion)
	if err != nil {
		return nil, fmt.Errorf("release output path: %w", err)
	}

	return &Output{Path: outPath, Document: composite, Data: data}, nil
}

// FullSuitePipeline builds the composite release pipeline and writes it.
func (a *SuiteAssembler) FullSuitePipeline(ctx context.Context) (*Output, error) {
	out, err := a.BuildFullSuite(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.c.write(out); err != nil {
		return nil, err
	}
	return out, nil
}

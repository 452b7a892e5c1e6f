package pipeline

import "fmt"

// FeatureAssembler builds single-environment pipelines for a feature branch.
type FeatureAssembler struct {
	c Components
}

// NewFeatureAssembler returns a FeatureAssembler using c.
func NewFeatureAssembler(c Components) *FeatureAssembler {
	return &FeatureAssembler{c: c}
}

// ProductVersion returns MAJOR.MINOR of the product from the metadata file.
func (a *FeatureAssembler) ProductVersion() (string, error) {
	return a.c.productVersion()
}

// BuildPipeline renders the clean install pipeline for req without writing it.
func (a *FeatureAssembler) BuildPipeline(req FeatureRequest) (*Output, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	ctx, err := a.context(req)
	if err != nil {
		return nil, err
	}

	return a.build(req, ctx, a.c.Layout.FeatureTemplate, FlavorClean)
}

// CreatePipeline renders the clean install pipeline for req and writes it.
func (a *FeatureAssembler) CreatePipeline(req FeatureRequest) (*Output, error) {
	out, err := a.BuildPipeline(req)
	if err != nil {
		return nil, err
	}
	if err := a.c.write(out); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildUpgradePipeline renders the upgrade pipeline for req without writing it.
func (a *FeatureAssembler) BuildUpgradePipeline(req UpgradeRequest) (*Output, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	ctx, err := a.context(req.FeatureRequest)
	if err != nil {
		return nil, err
	}

	ertInitial, err := initialVersion(req.ERTInitialVersion, req.ERTInitialFullVersion)
	if err != nil {
		return nil, fmt.Errorf("ert initial version: %w", err)
	}
	omInitial, err := initialVersion(req.OMInitialVersion, req.OMInitialFullVersion)
	if err != nil {
		return nil, fmt.Errorf("om initial version: %w", err)
	}

	ctx = ctx.
		With(KeyERTInitialFullVersion, req.ERTInitialFullVersion).
		With(KeyOMInitialFullVersion, req.OMInitialFullVersion).
		With(KeyERTInitialVersion, ertInitial).
		With(KeyOMInitialVersion, omInitial)

	return a.build(req.FeatureRequest, ctx, a.c.Layout.FeatureUpgradeTemplate, FlavorUpgrade)
}

// CreateUpgradePipeline renders the upgrade pipeline for req and writes it.
func (a *FeatureAssembler) CreateUpgradePipeline(req UpgradeRequest) (*Output, error) {
	out, err := a.BuildUpgradePipeline(req)
	if err != nil {
		return nil, err
	}
	if err := a.c.write(out); err != nil {
		return nil, err
	}
	return out, nil
}

// context builds the parameters shared by both feature flows.
// The branch name doubles as the pipeline name.
func (a *FeatureAssembler) context(req FeatureRequest) (Context, error) {
	ertVersion, err := a.ProductVersion()
	if err != nil {
		return Context{}, err
	}

	omVersion := req.OMVersion
	if omVersion == "" {
		omVersion = ertVersion
	}

	return NewContext(map[string]string{
		KeyBranchName:      req.BranchName,
		KeyPipelineName:    req.BranchName,
		KeyIaaSType:        req.IaaSType,
		KeyOMVersion:       omVersion,
		KeyERTVersion:      ertVersion,
		KeyEnvironmentPool: a.c.Resolver(req.BranchName, req.IaaSType),
	}), nil
}

func (a *FeatureAssembler) build(req FeatureRequest, ctx Context, templatePath string, flavor Flavor) (*Output, error) {
	template, err := a.c.readTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	doc, err := a.c.Renderer.RenderDocument(template, ctx)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", templatePath, err)
	}

	switch req.IaaSType {
	case IaaSAWS:
		if err := a.c.Injector.AddAWSConfigureTasks(doc, req.BranchName, flavor.AWSFragment()); err != nil {
			return nil, err
		}
	case IaaSVCloud:
		if err := a.c.Injector.AddVCloudDeleteInstallationTasks(doc, req.BranchName); err != nil {
			return nil, err
		}
	}

	data, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}

	outPath, err := a.c.Layout.FeatureOutput(req.BranchName)
	if err != nil {
		return nil, fmt.Errorf("feature output path: %w", err)
	}

	return &Output{Path: outPath, Document: doc, Data: data}, nil
}

// initialVersion returns explicit when set, otherwise MAJOR.MINOR of full.
func initialVersion(explicit, full string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return MinorVersion(full)
}

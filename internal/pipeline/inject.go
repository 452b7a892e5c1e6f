package pipeline

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Fragment file names in the release template directory.
const (
	FragmentAWSExternalConfig        = "aws-external-config.yml"
	FragmentAWSExternalConfigUpgrade = "aws-external-config-upgrade.yml"
	FragmentVCloudDeleteInstallation = "vcloud-delete-installation.yml"
)

// VerifyInternetlessJobName is the job appended to internetless clean pipelines.
const VerifyInternetlessJobName = "verify-internetless"

// Fixed job positions. Templates put the environment teardown first and the
// ERT configuration second; jobs are looked up by name before falling back
// to these indices.
const (
	destroyJobIndex   = 0
	configureJobIndex = 1
	insertAt          = 1
)

// Flavor is a pipeline kind.
type Flavor string

const (
	// FlavorClean installs from scratch.
	FlavorClean Flavor = "clean"

	// FlavorUpgrade installs an initial version and upgrades it.
	FlavorUpgrade Flavor = "upgrade"
)

// AWSFragment returns the AWS fragment file used by a flavor.
func (f Flavor) AWSFragment() string {
	if f == FlavorUpgrade {
		return FragmentAWSExternalConfigUpgrade
	}
	return FragmentAWSExternalConfig
}

// Target identifies one generated pipeline.
type Target struct {
	PipelineName string `yaml:"pipeline_name" validate:"required"`
	IaaSType     string `yaml:"iaas_type" validate:"required"`
	Flavor       Flavor `yaml:"-"`
}

// ConfigureJobName is the name of the job that receives AWS tasks.
func ConfigureJobName(pipelineName string) string {
	return "configure-ert-" + pipelineName
}

// DestroyJobName is the name of the job that receives vCloud tasks.
func DestroyJobName(pipelineName string) string {
	return "destroy-environment-" + pipelineName
}

// Injector applies IaaS- and flavor-specific edits to rendered documents.
// Fragments are read from fsys on every call and never mutated.
//
// None of the edits are idempotent: applying one twice duplicates content.
type Injector struct {
	fsys fs.FS
}

// NewInjector returns an Injector that reads fragments from fsys.
func NewInjector(fsys fs.FS) *Injector {
	return &Injector{fsys: fsys}
}

// Apply runs every rule that matches target, in the order vCloud, AWS,
// internetless.
func (i *Injector) Apply(doc Document, target Target) error {
	if target.IaaSType == IaaSVCloud {
		if err := i.AddVCloudDeleteInstallationTasks(doc, target.PipelineName); err != nil {
			return err
		}
	}

	if target.IaaSType == IaaSAWS {
		if err := i.AddAWSConfigureTasks(doc, target.PipelineName, target.Flavor.AWSFragment()); err != nil {
			return err
		}
	}

	if target.Flavor == FlavorClean && target.PipelineName == PipelineInternetless {
		AddVerifyInternetlessJob(doc)
	}

	return nil
}

// AddAWSConfigureTasks inserts the steps of fragment right after the first
// step of the configure-ert job (jobs[1] when no job has that name).
func (i *Injector) AddAWSConfigureTasks(doc Document, pipelineName, fragment string) error {
	steps, err := i.LoadFragment(fragment)
	if err != nil {
		return err
	}

	job, err := findJob(doc, ConfigureJobName(pipelineName), configureJobIndex)
	if err != nil {
		return fmt.Errorf("add aws tasks: %w", err)
	}

	if err := insertSteps(job, insertAt, steps); err != nil {
		return fmt.Errorf("add aws tasks: %w", err)
	}

	return nil
}

// AddVCloudDeleteInstallationTasks splices the vCloud delete-installation
// steps into the destroy-environment job (jobs[0] when no job has that
// name), starting at position 1 and keeping their order.
func (i *Injector) AddVCloudDeleteInstallationTasks(doc Document, pipelineName string) error {
	steps, err := i.LoadFragment(FragmentVCloudDeleteInstallation)
	if err != nil {
		return err
	}

	job, err := findJob(doc, DestroyJobName(pipelineName), destroyJobIndex)
	if err != nil {
		return fmt.Errorf("add vcloud tasks: %w", err)
	}

	if err := insertSteps(job, insertAt, steps); err != nil {
		return fmt.Errorf("add vcloud tasks: %w", err)
	}

	return nil
}

// AddVerifyInternetlessJob appends the internetless verification job.
func AddVerifyInternetlessJob(doc Document) {
	doc[fieldJobs] = append(doc.Jobs(), verifyInternetlessJob())
}

func verifyInternetlessJob() map[string]any {
	return map[string]any{
		"name":          VerifyInternetlessJobName,
		"serial_groups": []any{PipelineInternetless},
		"plan": []any{
			map[string]any{"get": "p-runtime"},
			map[string]any{
				"get":      "environment",
				"resource": "environment-" + PipelineInternetless,
			},
			map[string]any{
				"task": "verify-no-internet-access",
				"file": "p-runtime/ci/tasks/verify-internetless.yml",
			},
		},
	}
}

// LoadFragment reads and parses a fragment into its list of steps.
// A fragment may hold a single step mapping or a sequence of step mappings.
func (i *Injector) LoadFragment(name string) ([]any, error) {
	data, err := fs.ReadFile(i.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read fragment %s: %w", name, err)
	}

	return ParseFragment(name, data)
}

// ParseFragment parses fragment data into a list of step mappings.
func ParseFragment(name string, data []byte) ([]any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedFragmentError{Name: name, Reason: "invalid YAML", Err: err}
	}

	switch v := raw.(type) {
	case map[string]any:
		return []any{v}, nil
	case []any:
		if len(v) == 0 {
			return nil, &MalformedFragmentError{Name: name, Reason: "empty step list"}
		}
		for idx, step := range v {
			if _, ok := step.(map[string]any); !ok {
				return nil, &MalformedFragmentError{
					Name:   name,
					Reason: fmt.Sprintf("item %d is %T, not a step mapping", idx, step),
				}
			}
		}
		return v, nil
	case nil:
		return nil, &MalformedFragmentError{Name: name, Reason: "empty document"}
	default:
		return nil, &MalformedFragmentError{Name: name, Reason: fmt.Sprintf("document is %T, not a step or step list", v)}
	}
}

// findJob returns the job called name, falling back to the job at index.
func findJob(doc Document, name string, index int) (map[string]any, error) {
	jobs := doc.Jobs()
	for _, j := range jobs {
		job, ok := j.(map[string]any)
		if !ok {
			continue
		}
		if n, _ := job[fieldName].(string); n == name {
			return job, nil
		}
	}

	if job := doc.Job(index); job != nil {
		return job, nil
	}

	return nil, &StructuralIndexError{Job: name, Index: index, Jobs: len(jobs)}
}

// insertSteps splices steps into job's plan at position at.
// The fragment steps are deep-copied so the fragment stays untouched.
func insertSteps(job map[string]any, at int, steps []any) error {
	name, _ := job[fieldName].(string)

	plan, ok := job[fieldPlan].([]any)
	if !ok {
		return &StructuralIndexError{Job: name, Index: at, What: "job has no plan sequence"}
	}
	if at > len(plan) {
		return &StructuralIndexError{Job: name, Index: at, What: fmt.Sprintf("plan has %d steps", len(plan))}
	}

	result := make([]any, 0, len(plan)+len(steps))
	result = append(result, plan[:at]...)
	for _, s := range steps {
		result = append(result, deepCopy(s))
	}
	result = append(result, plan[at:]...)

	job[fieldPlan] = result
	return nil
}

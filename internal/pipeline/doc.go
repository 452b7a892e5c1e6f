// Package pipeline generates CI pipeline documents from templates.
//
// Generation runs in three stages:
//
//   - Rendering: {{key}} placeholders in template text are replaced from a
//     Context, then the text is parsed as YAML
//   - Injection: IaaS-specific fragments are spliced into job plans
//     (AWS configure tasks, vCloud delete-installation tasks) and the
//     internetless verification job is appended
//   - Assembly: feature pipelines are written on their own; release
//     pipelines for every target are merged into one composite document
//
// # Templates
//
// A release template renders to a document whose first job tears down the
// environment and whose second job configures ERT:
//
//	jobs:
//	- name: destroy-environment-{{pipeline_name}}
//	  plan:
//	  - get: environment
//	    resource: environment-{{environment_pool}}
//	- name: configure-ert-{{pipeline_name}}
//	  plan:
//	  - task: configure
//	    tags: [{{iaas_type}}]
//
// Injection looks jobs up by those names and falls back to their positions.
//
// # Composite documents
//
// The release pipeline starts from ert.yml. Jobs of every generated
// pipeline follow the base jobs in target order; resources declared by
// several pipelines are kept once.
package pipeline

package pipeline

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a parsed pipeline document: nested map[string]any and []any values
// as produced by yaml.v3. The order of "jobs" and of each job's "plan" is
// significant and is never re-sorted.
type Document map[string]any

// Top-level and job-level keys of a pipeline document.
const (
	fieldJobs          = "jobs"
	fieldResources     = "resources"
	fieldResourceTypes = "resource_types"
	fieldName          = "name"
	fieldPlan          = "plan"
	fieldType          = "type"
	fieldSource        = "source"
	fieldPassed        = "passed"
)

// DecodeDocument parses YAML data into a Document.
// Empty input yields an empty, non-nil Document.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(Document)
	}
	return doc, nil
}

// EncodeDocument serializes doc as YAML with a leading document marker
// and two-space indentation.
func EncodeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(doc)); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	return buf.Bytes(), nil
}

// Jobs returns the document's job list, or nil if there is none.
func (d Document) Jobs() []any {
	jobs, _ := d[fieldJobs].([]any)
	return jobs
}

// JobNames returns the name of every job in order. Jobs without a string
// name contribute an empty string.
func (d Document) JobNames() []string {
	jobs := d.Jobs()
	names := make([]string, len(jobs))
	for i, j := range jobs {
		if job, ok := j.(map[string]any); ok {
			names[i], _ = job[fieldName].(string)
		}
	}
	return names
}

// Job returns the job at index i, or nil if it does not exist or is not a map.
func (d Document) Job(i int) map[string]any {
	jobs := d.Jobs()
	if i < 0 || i >= len(jobs) {
		return nil
	}
	job, _ := jobs[i].(map[string]any)
	return job
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(deepCopy(map[string]any(d)).(map[string]any))
}

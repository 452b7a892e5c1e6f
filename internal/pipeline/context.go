package pipeline

import "sort"

// Context keys referenced by the pipeline templates.
const (
	KeyPipelineName          = "pipeline_name"
	KeyIaaSType              = "iaas_type"
	KeyBranchName            = "branch_name"
	KeyOMVersion             = "om_version"
	KeyERTVersion            = "ert_version"
	KeyEnvironmentPool       = "environment_pool"
	KeyOMInitialVersion      = "om_initial_version"
	KeyERTInitialVersion     = "ert_initial_version"
	KeyOMInitialFullVersion  = "om_initial_full_version"
	KeyERTInitialFullVersion = "ert_initial_full_version"
)

// Context is an immutable set of template parameters.
// The zero value is an empty context.
type Context struct {
	values map[string]string
}

// NewContext copies values into a new Context.
func NewContext(values map[string]string) Context {
	c := Context{values: make(map[string]string, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// Lookup returns the value stored under key.
func (c Context) Lookup(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Get returns the value stored under key, or "" if absent.
func (c Context) Get(key string) string {
	return c.values[key]
}

// With returns a copy of c with key set to value.
func (c Context) With(key, value string) Context {
	next := NewContext(c.values)
	next.values[key] = value
	return next
}

// Len returns the number of parameters.
func (c Context) Len() int {
	return len(c.values)
}

// Keys returns the parameter names in sorted order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

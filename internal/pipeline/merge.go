package pipeline

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// fieldGroups holds Concourse job groups: [{name, jobs: [...]}].
const fieldGroups = "groups"

// DedupKeys are top-level lists whose entries are deduplicated by identity
// (name, type and source all equal). The first occurrence wins.
var DedupKeys = []string{fieldResourceTypes, fieldResources}

// MergeComposite combines the base document with generated documents.
// Merge semantics:
//   - jobs: base jobs, then each document's jobs in the order given
//   - resources, resource_types: concatenated, duplicates by identity dropped
//   - groups: groups with equal names have their job lists unioned
//   - any other key: the first document that sets it wins, base first
//
// Neither base nor docs are modified.
func MergeComposite(base Document, docs ...Document) (Document, error) {
	result := base.Clone()
	if result == nil {
		result = make(Document)
	}

	all := append([]Document{result}, docs...)

	for _, key := range DedupKeys {
		merged, err := dedupEntries(key, all)
		if err != nil {
			return nil, err
		}
		if merged != nil {
			result[key] = merged
		}
	}

	var jobs []any
	for _, doc := range all {
		for _, job := range doc.Jobs() {
			jobs = append(jobs, deepCopy(job))
		}
	}
	if jobs != nil {
		result[fieldJobs] = jobs
	}

	if groups := mergeGroups(all); groups != nil {
		result[fieldGroups] = groups
	}

	for _, doc := range docs {
		for key, value := range doc {
			if _, exists := result[key]; !exists {
				result[key] = deepCopy(value)
			}
		}
	}

	return result, nil
}

// dedupEntries concatenates the key list of every document, keeping only the
// first entry for each identity. Returns nil if no document has the key.
func dedupEntries(key string, docs []Document) ([]any, error) {
	var result []any
	seen := make(map[string]bool)
	found := false

	for _, doc := range docs {
		entries, ok := doc[key].([]any)
		if !ok {
			continue
		}
		found = true

		for _, entry := range entries {
			id, err := identity(entry)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			result = append(result, deepCopy(entry))
		}
	}

	if !found {
		return nil, nil
	}
	if result == nil {
		result = []any{}
	}
	return result, nil
}

// identity returns a canonical key for a resource from its name, type and
// source. yaml.v3 sorts mapping keys, so equal sources encode identically.
func identity(entry any) (string, error) {
	m, ok := entry.(map[string]any)
	if !ok {
		data, err := yaml.Marshal(entry)
		if err != nil {
			return "", fmt.Errorf("encode entry identity: %w", err)
		}
		return string(data), nil
	}

	data, err := yaml.Marshal(map[string]any{
		fieldName:   m[fieldName],
		fieldType:   m[fieldType],
		fieldSource: m[fieldSource],
	})
	if err != nil {
		return "", fmt.Errorf("encode identity of %v: %w", m[fieldName], err)
	}
	return string(data), nil
}

// mergeGroups unions the job lists of same-named groups, keeping first-seen
// group order. Returns nil if no document defines groups.
func mergeGroups(docs []Document) []any {
	var order []string
	byName := make(map[string]map[string]any)

	for _, doc := range docs {
		groups, ok := doc[fieldGroups].([]any)
		if !ok {
			continue
		}
		for _, g := range groups {
			group, ok := g.(map[string]any)
			if !ok {
				continue
			}
			name := fmt.Sprintf("%v", group[fieldName])

			existing, ok := byName[name]
			if !ok {
				byName[name] = deepCopy(group).(map[string]any)
				order = append(order, name)
				continue
			}

			baseJobs, _ := toStringSlice(existing[fieldJobs])
			newJobs, _ := toStringSlice(group[fieldJobs])
			existing[fieldJobs] = stringSliceUnion(baseJobs, newJobs)
		}
	}

	if order == nil {
		return nil
	}

	result := make([]any, len(order))
	for i, name := range order {
		result[i] = byName[name]
	}
	return result
}

// toStringSlice attempts to convert a value to []string.
// Returns the slice and true if successful, nil and false otherwise.
func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		result := make([]string, len(v))
		for i, item := range v {
			result[i] = fmt.Sprintf("%v", item)
		}
		return result, true
	default:
		return nil, false
	}
}

// stringSliceUnion returns the union of two string slices (no duplicates).
func stringSliceUnion(a, b []string) []any {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]any, 0, len(a)+len(b))

	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	return result
}

// deepCopy creates a deep copy of any value.
func deepCopy(value any) any {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case Document:
		return Document(deepCopy(map[string]any(v)).(map[string]any))
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = deepCopy(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = deepCopy(val)
		}
		return result
	case []string:
		result := make([]string, len(v))
		copy(result, v)
		return result
	default:
		// Primitive types are immutable, return as-is
		return value
	}
}

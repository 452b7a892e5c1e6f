package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Generation errors. Each typed error below matches its sentinel with errors.Is.
var (
	// ErrUnknownProduct indicates the metadata does not provide the expected product.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrMissingPlaceholder indicates a template references a key the context lacks.
	ErrMissingPlaceholder = errors.New("missing placeholder")

	// ErrMalformedFragment indicates a fragment is not a step or a list of steps.
	ErrMalformedFragment = errors.New("malformed fragment")

	// ErrStructuralIndex indicates an expected job or plan is absent from a document.
	ErrStructuralIndex = errors.New("structural index out of range")

	// ErrInvalidGraph indicates the jobs of a document do not form a valid DAG.
	ErrInvalidGraph = errors.New("invalid job graph")

	// ErrInvalidRequest indicates a generation request failed validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// UnknownProductError is returned when no provided product matches the expected name.
type UnknownProductError struct {
	Product string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product: no %q entry in provides_product_versions", e.Product)
}

func (e *UnknownProductError) Is(target error) bool { return target == ErrUnknownProduct }

// MissingPlaceholderError lists every placeholder that had no value in the context.
type MissingPlaceholderError struct {
	Keys []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("missing placeholders: {{%s}}", strings.Join(e.Keys, "}}, {{"))
}

func (e *MissingPlaceholderError) Is(target error) bool { return target == ErrMissingPlaceholder }

// MalformedFragmentError is returned when a fragment does not parse into steps.
type MalformedFragmentError struct {
	Name   string
	Reason string
	Err    error
}

func (e *MalformedFragmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed fragment %s: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed fragment %s: %s", e.Name, e.Reason)
}

func (e *MalformedFragmentError) Is(target error) bool { return target == ErrMalformedFragment }

func (e *MalformedFragmentError) Unwrap() error { return e.Err }

// StructuralIndexError is returned when a document is missing the job an edit targets.
// It usually means a template and the injector rules have drifted apart.
type StructuralIndexError struct {
	Job   string
	Index int
	Jobs  int
	What  string
}

func (e *StructuralIndexError) Error() string {
	if e.What != "" {
		return fmt.Sprintf("%s: job %q: %s", ErrStructuralIndex, e.Job, e.What)
	}
	return fmt.Sprintf("%s: job %q not found and no job at index %d (document has %d jobs)", ErrStructuralIndex, e.Job, e.Index, e.Jobs)
}

func (e *StructuralIndexError) Is(target error) bool { return target == ErrStructuralIndex }

// GraphError collects every problem found while linting a job graph.
type GraphError struct {
	Problems []string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("%s:\n  - %s", ErrInvalidGraph, strings.Join(e.Problems, "\n  - "))
}

func (e *GraphError) Is(target error) bool { return target == ErrInvalidGraph }

// InvalidRequestError names the request fields that failed validation.
type InvalidRequestError struct {
	Fields []string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, strings.Join(e.Fields, "; "))
}

func (e *InvalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

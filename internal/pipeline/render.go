package pipeline

import (
	"fmt"
	"regexp"
)

// placeholderPattern matches {{key}} placeholders, allowing inner whitespace.
var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Renderer substitutes {{key}} placeholders in template text.
// It holds no state and is safe for concurrent use.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render replaces every {{key}} placeholder with its value from ctx.
// Returns a *MissingPlaceholderError naming all keys absent from ctx.
// This operates on raw text BEFORE YAML parsing.
func (r *Renderer) Render(template string, ctx Context) (string, error) {
	var missing []string
	seen := make(map[string]bool)

	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]

		value, ok := ctx.Lookup(key)
		if !ok {
			if !seen[key] {
				seen[key] = true
				missing = append(missing, key)
			}
			return match
		}

		return value
	})

	if len(missing) > 0 {
		return "", &MissingPlaceholderError{Keys: missing}
	}

	return result, nil
}

// RenderDocument renders template and parses the result as a YAML document.
func (r *Renderer) RenderDocument(template string, ctx Context) (Document, error) {
	text, err := r.Render(template, ctx)
	if err != nil {
		return nil, err
	}

	doc, err := DecodeDocument([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse rendered template: %w", err)
	}

	return doc, nil
}

// Placeholders returns the distinct placeholder keys referenced by template,
// in order of first appearance.
func Placeholders(template string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

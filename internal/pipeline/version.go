package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ProductName is the product whose version drives release pipeline naming.
const ProductName = "cf"

// Metadata keys read from the product metadata document.
const (
	fieldProvidesProductVersions = "provides_product_versions"
	fieldProductVersion          = "product_version"
	fieldVersion                 = "version"
)

// dottedPrefix matches the leading dotted-numeric part of a version string,
// ignoring any suffix such as "$PRERELEASE_VERSION$".
var dottedPrefix = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*`)

// FullVersion returns the dotted-numeric prefix of raw, stripping any
// trailing non-digit/non-dot suffix.
func FullVersion(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	full := dottedPrefix.FindString(raw)
	if full == "" {
		return "", fmt.Errorf("invalid version %q: no dotted numeric prefix", raw)
	}
	return full, nil
}

// ParseVersion strips any suffix from raw and parses the remaining dotted version.
func ParseVersion(raw string) (*goversion.Version, error) {
	full, err := FullVersion(raw)
	if err != nil {
		return nil, err
	}

	v, err := goversion.NewVersion(full)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", raw, err)
	}

	return v, nil
}

// MinorVersion returns MAJOR.MINOR for a version such as "1.4.2.0" or
// "1.5.0.0$PRERELEASE_VERSION$". Upgrade pipelines derive their
// *_initial_version parameters with it.
func MinorVersion(raw string) (string, error) {
	v, err := ParseVersion(raw)
	if err != nil {
		return "", err
	}

	segments := v.Segments()
	return fmt.Sprintf("%d.%d", segments[0], segments[1]), nil
}

// ExtractProductVersion returns MAJOR.MINOR of the "cf" entry in the
// metadata's provides_product_versions list.
// Returns *UnknownProductError when no entry carries that name.
func ExtractProductVersion(metadata Document) (string, error) {
	return ExtractVersionOf(metadata, ProductName)
}

// ExtractVersionOf is ExtractProductVersion for an arbitrary product name.
func ExtractVersionOf(metadata Document, product string) (string, error) {
	entries, _ := metadata[fieldProvidesProductVersions].([]any)

	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := entry[fieldName].(string); name != product {
			continue
		}

		minor, err := MinorVersion(scalarString(entry[fieldVersion]))
		if err != nil {
			return "", fmt.Errorf("product %s: %w", product, err)
		}
		return minor, nil
	}

	return "", &UnknownProductError{Product: product}
}

// ProductVersionField returns MAJOR.MINOR of the top-level product_version scalar.
func ProductVersionField(metadata Document) (string, error) {
	raw, ok := metadata[fieldProductVersion]
	if !ok {
		return "", fmt.Errorf("metadata has no %s field", fieldProductVersion)
	}
	return MinorVersion(scalarString(raw))
}

// scalarString renders a decoded YAML scalar back to text.
// yaml.v3 decodes "1.5" as a float, so versions can arrive as numbers.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

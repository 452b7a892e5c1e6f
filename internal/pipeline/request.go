package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// fullVersionPattern matches MAJOR.MINOR.PATCH.BUILD with an optional
// non-numeric suffix.
var fullVersionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+\.[0-9]+([^0-9.].*)?$`)

// FeatureRequest describes a feature-branch clean install pipeline.
type FeatureRequest struct {
	// BranchName is the feature branch; it also names the pipeline.
	BranchName string `validate:"required"`

	// IaaSType selects IaaS-specific fragments and the environment pool.
	IaaSType string `validate:"required"`

	// OMVersion overrides om_version. Defaults to the product version.
	OMVersion string `validate:"omitempty,minorversion"`
}

// UpgradeRequest describes a feature-branch upgrade pipeline.
type UpgradeRequest struct {
	FeatureRequest

	// ERTInitialFullVersion is the ERT version installed before upgrading.
	ERTInitialFullVersion string `validate:"required,fullversion"`

	// OMInitialFullVersion is the Ops Manager version installed before upgrading.
	OMInitialFullVersion string `validate:"required,fullversion"`

	// ERTInitialVersion overrides the MAJOR.MINOR derived from ERTInitialFullVersion.
	ERTInitialVersion string `validate:"omitempty,minorversion"`

	// OMInitialVersion overrides the MAJOR.MINOR derived from OMInitialFullVersion.
	OMInitialVersion string `validate:"omitempty,minorversion"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// requestValidator returns the shared validator with the version tags registered.
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("fullversion", func(fl validator.FieldLevel) bool {
			return fullVersionPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("minorversion", func(fl validator.FieldLevel) bool {
			return minorVersionPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

var minorVersionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// Validate checks a request against its validate tags.
// Returns *InvalidRequestError listing each failing field.
func Validate(req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q (value %q)", fe.Field(), fe.Tag(), fmt.Sprintf("%v", fe.Value())))
	}
	return &InvalidRequestError{Fields: fields}
}

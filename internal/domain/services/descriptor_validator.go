// Package services implements the descriptor rules and report assembly.
package services

import (
	"fmt"
	"strings"

	"github.com/ochairo/plugincheck/internal/domain/entities"
	"github.com/ochairo/plugincheck/internal/domain/interfaces/gateways"
)

// Failure reasons produced by the descriptor rules
const (
	ReasonReadFailed         = "failed to read descriptor"
	ReasonInvalidRoot        = "invalid root element"
	ReasonNoVersion          = "version was not specified"
	ReasonIncorrectVersion   = "incorrect plugin version"
	ReasonNoVendor           = "no plugin vendor"
	ReasonIncorrectVendor    = "incorrect plugin vendor"
	ReasonNoVendorURL        = "no plugin vendor url"
	ReasonIncorrectVendorURL = "incorrect plugin vendor url"
)

// descriptorRule checks one aspect of a descriptor. It returns a non-empty
// reason when the descriptor violates the rule.
type descriptorRule func(v *DescriptorValidator, d *entities.Descriptor, expectedVersion string, out *entities.DescriptorCheck) string

// descriptorRules run in order; the first violation stops the check
var descriptorRules = []descriptorRule{
	checkRootElement,
	checkVersion,
	checkVendorName,
	checkVendorURL,
}

// DescriptorValidator applies the fixed descriptor rule set
type DescriptorValidator struct {
	parser gateways.DocumentParser
	policy entities.DescriptorPolicy
}

// NewDescriptorValidator creates a validator for the given policy
func NewDescriptorValidator(parser gateways.DocumentParser, policy entities.DescriptorPolicy) *DescriptorValidator {
	return &DescriptorValidator{
		parser: parser,
		policy: policy,
	}
}

// Validate parses data and runs the rules against it
func (v *DescriptorValidator) Validate(artifactName string, data []byte, expectedVersion string) (*entities.DescriptorCheck, error) {
	check := &entities.DescriptorCheck{}

	doc, err := v.parser.Parse(data)
	if err != nil {
		return check, entities.NewValidationFailure(artifactName, ReasonReadFailed, err)
	}

	descriptor := v.extract(doc)
	for _, rule := range descriptorRules {
		if reason := rule(v, descriptor, expectedVersion, check); reason != "" {
			return check, entities.NewValidationFailure(artifactName, reason, nil)
		}
	}

	for i := range check.Advisories {
		check.Advisories[i].Artifact = artifactName
	}

	return check, nil
}

// extract reads the fields the rules need out of a parsed document
func (v *DescriptorValidator) extract(doc gateways.Document) *entities.Descriptor {
	field := func(path string) entities.TextField {
		value, ok := doc.Text(path)
		return entities.TextField{Value: value, Present: ok}
	}

	return &entities.Descriptor{
		RootElement: doc.RootName(),
		Version:     field(entities.VersionPath),
		VendorName:  field(entities.VendorNamePath),
		VendorURL:   field(entities.VendorURLPath),
	}
}

func checkRootElement(v *DescriptorValidator, d *entities.Descriptor, _ string, _ *entities.DescriptorCheck) string {
	if d.RootElement != v.policy.RootElement {
		return ReasonInvalidRoot
	}
	return ""
}

func checkVersion(_ *DescriptorValidator, d *entities.Descriptor, expectedVersion string, out *entities.DescriptorCheck) string {
	if !d.Version.Present {
		return ReasonNoVersion
	}

	out.Version = d.Version.Value
	out.VersionFound = true

	if d.Version.Value != expectedVersion {
		return withValue(ReasonIncorrectVersion, d.Version.Value)
	}
	return ""
}

func checkVendorName(v *DescriptorValidator, d *entities.Descriptor, _ string, _ *entities.DescriptorCheck) string {
	if !d.VendorName.Present {
		return ReasonNoVendor
	}
	if !strings.Contains(d.VendorName.Value, v.policy.VendorName) {
		return withValue(ReasonIncorrectVendor, d.VendorName.Value)
	}
	return ""
}

// checkVendorURL accepts the secure prefix silently and the insecure one with
// an advisory; anything else fails
func checkVendorURL(v *DescriptorValidator, d *entities.Descriptor, _ string, out *entities.DescriptorCheck) string {
	if !d.VendorURL.Present {
		return ReasonNoVendorURL
	}

	url := d.VendorURL.Value
	switch {
	case strings.Contains(url, v.policy.VendorURLSecure):
		return ""
	case strings.Contains(url, v.policy.VendorURLInsecure):
		out.Advisories = append(out.Advisories, entities.Advisory{
			Message: fmt.Sprintf("vendor url %s should use %s", url, v.policy.VendorURLSecure),
		})
		return ""
	default:
		return withValue(ReasonIncorrectVendorURL, url)
	}
}

func withValue(reason, value string) string {
	return reason + ": " + value
}

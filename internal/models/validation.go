package models

import (
	"fmt"
	"net/url"
	"regexp"
)

var (
	// Slug pattern: 1-64 characters, lowercase alphanumeric with hyphens/underscores
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

	// OS tokens accepted in script metadata
	validOSTokens = map[string]bool{"linux": true, "windows": true}
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidateSlug validates a source, platform, or application slug
func ValidateSlug(field, slug string) error {
	if len(slug) == 0 {
		return &ValidationError{Field: field, Message: "slug is required"}
	}
	if len(slug) > 64 {
		return &ValidationError{Field: field, Message: "slug must be at most 64 characters"}
	}
	if !slugPattern.MatchString(slug) {
		return &ValidationError{Field: field, Message: "slug must match pattern ^[a-z0-9][a-z0-9_-]*$"}
	}
	return nil
}

// ValidateDisplayName validates a human-readable name
func ValidateDisplayName(name string) error {
	if len(name) == 0 {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > 128 {
		return &ValidationError{Field: "name", Message: "name must be at most 128 characters"}
	}
	return nil
}

// ValidateURL validates URL format (not reachability)
func ValidateURL(field, urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Field: field, Message: "URL must use http or https scheme"}
	}
	if parsed.Host == "" {
		return &ValidationError{Field: field, Message: "URL must include a host"}
	}
	return nil
}

// ValidateSource validates a source record
func ValidateSource(s *Source) error {
	if err := ValidateSlug("slug", s.Slug); err != nil {
		return err
	}
	if err := ValidateDisplayName(s.Name); err != nil {
		return err
	}
	// The script source synthesizes commands from per-package script URLs
	// and carries no shared install command.
	if len(s.InstallCmd) == 0 && s.Slug != "script" {
		return &ValidationError{Field: "installCmd", Message: "installCmd is required"}
	}
	if len(s.InstallCmd) > 512 {
		return &ValidationError{Field: "installCmd", Message: "installCmd must be at most 512 characters"}
	}
	if len(s.SetupCmd) > 1024 {
		return &ValidationError{Field: "setupCmd", Message: "setupCmd must be at most 1024 characters"}
	}
	if s.Priority < 0 {
		return &ValidationError{Field: "priority", Message: "priority must not be negative"}
	}
	if s.Website != "" {
		if err := ValidateURL("website", s.Website); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePlatform validates a platform record and its source associations.
// Source slug existence is checked by the catalog store, not here.
func ValidatePlatform(p *Platform) error {
	if err := ValidateSlug("slug", p.Slug); err != nil {
		return err
	}
	if err := ValidateDisplayName(p.Name); err != nil {
		return err
	}
	seen := make(map[string]bool)
	defaults := 0
	for _, ps := range p.Sources {
		if err := ValidateSlug("sources.source", ps.SourceSlug); err != nil {
			return err
		}
		if seen[ps.SourceSlug] {
			return &ValidationError{Field: "sources", Message: fmt.Sprintf("duplicate source %q", ps.SourceSlug)}
		}
		seen[ps.SourceSlug] = true
		if ps.Priority < 0 {
			return &ValidationError{Field: "sources.priority", Message: "priority must not be negative"}
		}
		if ps.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return &ValidationError{Field: "sources", Message: "at most one source may be flagged as default"}
	}
	return nil
}

// ValidatePackage validates a package and its optional metadata. The
// script-URL shape is validated here, at the data boundary, so command
// generation can consume it without re-checking.
func ValidatePackage(p *Package) error {
	if err := ValidateSlug("source", p.SourceSlug); err != nil {
		return err
	}
	if len(p.Identifier) == 0 {
		return &ValidationError{Field: "identifier", Message: "identifier is required"}
	}
	if len(p.Identifier) > 256 {
		return &ValidationError{Field: "identifier", Message: "identifier must be at most 256 characters"}
	}
	if p.Metadata != nil {
		for os, scriptURL := range p.Metadata.ScriptURLs {
			if !validOSTokens[os] {
				return &ValidationError{Field: "metadata.scriptUrls", Message: fmt.Sprintf("unknown os token %q (expected linux or windows)", os)}
			}
			if err := ValidateURL("metadata.scriptUrls."+os, scriptURL); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateApplication validates an application and all its packages
func ValidateApplication(a *Application) error {
	if err := ValidateSlug("id", a.ID); err != nil {
		return err
	}
	if err := ValidateDisplayName(a.Name); err != nil {
		return err
	}
	if a.Website != "" {
		if err := ValidateURL("website", a.Website); err != nil {
			return err
		}
	}
	if a.IconURL != "" {
		if err := ValidateURL("iconUrl", a.IconURL); err != nil {
			return err
		}
	}
	seen := make(map[string]bool)
	for i := range a.Packages {
		if err := ValidatePackage(&a.Packages[i]); err != nil {
			return err
		}
		if seen[a.Packages[i].SourceSlug] {
			return &ValidationError{Field: "packages", Message: fmt.Sprintf("duplicate package for source %q", a.Packages[i].SourceSlug)}
		}
		seen[a.Packages[i].SourceSlug] = true
	}
	return nil
}

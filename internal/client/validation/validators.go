package validation

import (
	"fmt"
	"strings"
)

// ValidatePackageSpec validates a package spec in "source=identifier" form
func ValidatePackageSpec(spec string) (source, identifier string, err error) {
	parts := strings.SplitN(spec, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid --package format. Expected 'source=identifier', got: '%s'", spec)
	}

	source = strings.TrimSpace(parts[0])
	identifier = strings.TrimSpace(parts[1])

	if source == "" {
		return "", "", fmt.Errorf("invalid --package format. Source cannot be empty in '%s'", spec)
	}
	if identifier == "" {
		return "", "", fmt.Errorf("invalid --package format. Identifier cannot be empty in '%s'", spec)
	}

	return source, identifier, nil
}

// ValidateScriptSpec validates a script URL spec in "os=url" form.
// Valid os tokens are "linux" and "windows".
func ValidateScriptSpec(spec string) (osToken, url string, err error) {
	parts := strings.SplitN(spec, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid --script format. Expected 'os=url', got: '%s'", spec)
	}

	osToken = strings.TrimSpace(parts[0])
	url = strings.TrimSpace(parts[1])

	if osToken != "linux" && osToken != "windows" {
		return "", "", fmt.Errorf("invalid --script os. Must be 'linux' or 'windows', got: '%s'", osToken)
	}
	if url == "" {
		return "", "", fmt.Errorf("invalid --script format. URL cannot be empty in '%s'", spec)
	}

	return osToken, url, nil
}

// ParseScriptSpecs parses a slice of "os=url" specs into a map
func ParseScriptSpecs(specs []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, spec := range specs {
		osToken, url, err := ValidateScriptSpec(spec)
		if err != nil {
			return nil, err
		}
		result[osToken] = url
	}
	return result, nil
}

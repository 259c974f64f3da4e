package models

// Source represents a package-distribution mechanism (a system package
// manager, a universal package format, or the script-based fallback).
// Shared reference data across all platforms that support it.
type Source struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	InstallCmd  string `json:"installCmd"`         // command prefix; package identifiers are appended
	RequireSudo bool   `json:"requireSudo"`
	SetupCmd    string `json:"setupCmd,omitempty"` // one-time setup (e.g. registering a repository)
	Priority    int    `json:"priority"`           // base priority, may be overridden per platform
}

// PlatformSource associates a platform with a source it supports
type PlatformSource struct {
	SourceSlug string `json:"source"`
	Priority   int    `json:"priority"`
	IsDefault  bool   `json:"isDefault"`
}

// Platform represents a target install environment (a Linux
// distribution or "windows"). The source list is ordered; that order is
// the enumeration baseline for deterministic command generation.
type Platform struct {
	Slug    string           `json:"slug"`
	Name    string           `json:"name"`
	Sources []PlatformSource `json:"sources"`
}

// PackageMetadata holds optional structured metadata attached to a
// package. Only ScriptURLs is consumed by command generation (script
// source); the remaining fields feed the catalog UI.
type PackageMetadata struct {
	ScriptURLs map[string]string `json:"scriptUrls,omitempty"` // os token ("linux"/"windows") -> script URL
	License    string            `json:"license,omitempty"`
	Version    string            `json:"version,omitempty"`
}

// Package represents one way to obtain an application through one source
type Package struct {
	SourceSlug  string           `json:"source"`
	Identifier  string           `json:"identifier"`
	IsAvailable bool             `json:"isAvailable"`
	Metadata    *PackageMetadata `json:"metadata,omitempty"`
}

// Application represents a catalog entry the user can request
type Application struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	IconURL     string    `json:"iconUrl,omitempty"`
	Packages    []Package `json:"packages"`
}

// Catalog is the root persisted document: all reference data command
// generation is resolved against
type Catalog struct {
	Sources      map[string]*Source      `json:"sources"`
	Platforms    map[string]*Platform    `json:"platforms"`
	Applications map[string]*Application `json:"applications"`
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		Sources:      make(map[string]*Source),
		Platforms:    make(map[string]*Platform),
		Applications: make(map[string]*Application),
	}
}

// SupportedSource is a source as seen from one platform: the shared
// source record joined with the platform-specific priority and default
// flag. This is the shape package selection works against.
type SupportedSource struct {
	Source    *Source `json:"source"`
	Priority  int     `json:"priority"`
	IsDefault bool    `json:"isDefault"`
}

// ResolvedPlatform is a platform with its supported sources fully
// joined, in the platform's association order
type ResolvedPlatform struct {
	Slug    string            `json:"slug"`
	Name    string            `json:"name"`
	Sources []SupportedSource `json:"sources"`
}

// FindPackage returns the application's package for the given source
// slug, or nil if the application has none
func (a *Application) FindPackage(sourceSlug string) *Package {
	for i := range a.Packages {
		if a.Packages[i].SourceSlug == sourceSlug {
			return &a.Packages[i]
		}
	}
	return nil
}

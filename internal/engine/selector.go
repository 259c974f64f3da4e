package engine

import (
	"fmt"

	"github.com/installdeck/installdeck/internal/models"
)

// Priority bonuses applied on top of the platform-source priority.
// The preferred-source bonus dominates any plausible base-priority spread
// so a user preference always overrides the platform's structural default.
const (
	preferredSourceBonus = 100
	defaultSourceBonus   = 5
)

// selectedPackage is the chosen package for one application together with
// its winning source and the computed priority that won
type selectedPackage struct {
	app       *models.Application
	pkg       *models.Package
	supported models.SupportedSource
	priority  int
}

// selectPackages picks at most one package per application. An application
// with no eligible package (none available, or none on a supported source)
// produces a warning and is skipped; selection continues for the rest.
//
// Ties resolve to the application's package enumeration order: the first
// package that reaches the maximum priority keeps the win. Catalog package
// order is stable, so identical inputs always select identically.
func selectPackages(platform *models.ResolvedPlatform, apps []*models.Application, preferredSource string) ([]selectedPackage, []string) {
	supported := make(map[string]models.SupportedSource, len(platform.Sources))
	for _, s := range platform.Sources {
		supported[s.Source.Slug] = s
	}

	var selected []selectedPackage
	var warnings []string

	for _, app := range apps {
		var best *selectedPackage

		for i := range app.Packages {
			pkg := &app.Packages[i]
			if !pkg.IsAvailable {
				continue
			}
			src, ok := supported[pkg.SourceSlug]
			if !ok {
				continue
			}

			priority := src.Priority
			if preferredSource != "" && pkg.SourceSlug == preferredSource {
				priority += preferredSourceBonus
			}
			if src.IsDefault {
				priority += defaultSourceBonus
			}

			// Strictly greater: first candidate wins ties
			if best == nil || priority > best.priority {
				best = &selectedPackage{
					app:       app,
					pkg:       pkg,
					supported: src,
					priority:  priority,
				}
			}
		}

		if best == nil {
			warnings = append(warnings, fmt.Sprintf("%s: No package available for %s", app.Name, platform.Name))
			continue
		}
		selected = append(selected, *best)
	}

	return selected, warnings
}

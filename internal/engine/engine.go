// Package engine implements the install command generation engine: given
// a resolved platform and a set of requested applications, it selects one
// package source per application, synthesizes shell command strings, and
// assembles them into a deterministic result.
//
// The engine is a pure, synchronous computation over data already fetched
// by its caller. It performs no I/O and holds no state between calls.
package engine

import (
	"errors"
	"log/slog"

	"github.com/installdeck/installdeck/internal/models"
)

var (
	// ErrNoSources is returned when the resolved platform supports no sources
	ErrNoSources = errors.New("platform has no supported sources")

	// ErrNoApplications is returned when the request resolved to zero known applications
	ErrNoApplications = errors.New("no matching applications")
)

// Request carries one generation call's resolved inputs. The platform and
// application lookups happen upstream; the engine never touches storage.
type Request struct {
	Platform        *models.ResolvedPlatform
	Applications    []*models.Application
	PreferredSource string // optional source slug the user prefers
	NixVariant      string // optional installer variant, meaningful for the nix source only
}

// BreakdownEntry summarizes which package identifiers one source contributed
type BreakdownEntry struct {
	Source   string   `json:"source"`
	Packages []string `json:"packages"`
}

// Result is the assembled output of one generation call
type Result struct {
	Commands      []string         `json:"commands"`
	SetupCommands []string         `json:"setupCommands"`
	Warnings      []string         `json:"warnings"`
	Breakdown     []BreakdownEntry `json:"breakdown"`
}

// Engine generates install commands from catalog reference data
type Engine struct {
	logger *slog.Logger
}

// New creates a new generation engine
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Generate runs the full pipeline: package selection, command synthesis,
// and result aggregation. Hard input errors (no sources, no applications)
// fail the call; per-application problems become warnings and the rest of
// the request still succeeds, possibly with empty command lists.
func (e *Engine) Generate(req Request) (*Result, error) {
	if req.Platform == nil || len(req.Platform.Sources) == 0 {
		return nil, ErrNoSources
	}
	if len(req.Applications) == 0 {
		return nil, ErrNoApplications
	}

	selected, warnings := selectPackages(req.Platform, req.Applications, req.PreferredSource)

	e.logger.Debug("Packages selected",
		"platform", req.Platform.Slug,
		"requested", len(req.Applications),
		"selected", len(selected),
		"warnings", len(warnings))

	result := synthesize(req.Platform, selected, req.NixVariant)

	// Selector warnings come first: they are emitted before any synthesis
	// work. The synthesizer always returns a non-nil slice, so reassign only
	// when there is something to prepend; warnings must marshal as [] when empty.
	if len(warnings) > 0 {
		result.Warnings = append(append([]string{}, warnings...), result.Warnings...)
	}

	e.logger.Debug("Commands generated",
		"platform", req.Platform.Slug,
		"commands", len(result.Commands),
		"setup_commands", len(result.SetupCommands),
		"warnings", len(result.Warnings))

	return result, nil
}

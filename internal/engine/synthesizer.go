package engine

import (
	"fmt"
	"path"
	"strings"

	"github.com/installdeck/installdeck/internal/models"
)

// Source slugs with bespoke synthesis behavior. Every other source follows
// the generic install-command rule.
const (
	ScriptSourceSlug = "script"
	NixSourceSlug    = "nix"
)

// Nix installer variants accepted in a request
const (
	NixVariantShell  = "nix-shell"
	NixVariantEnv    = "nix-env"
	NixVariantFlakes = "nix-flakes"
)

// sourceKind tags how a source's commands are synthesized
type sourceKind int

const (
	kindGeneric sourceKind = iota
	kindScript
	kindNix
)

// kindOf resolves the synthesis behavior for a source, once per source.
// Adding a future special-cased source is a change here, not in the
// synthesis loop.
func kindOf(slug string) sourceKind {
	switch slug {
	case ScriptSourceSlug:
		return kindScript
	case NixSourceSlug:
		return kindNix
	default:
		return kindGeneric
	}
}

// nixTemplate overrides the nix source's stock install and setup commands
// for one installer variant. AttrPrefix is applied per package identifier
// (nixpkgs attribute paths name packages individually, so a shared command
// prefix alone cannot express them).
type nixTemplate struct {
	InstallCmd string
	AttrPrefix string
	SetupCmd   string
}

// nixTemplates is the fixed variant table. Immutable; keyed by the
// caller-supplied variant token.
var nixTemplates = map[string]nixTemplate{
	NixVariantEnv: {
		InstallCmd: "nix-env -iA",
		AttrPrefix: "nixpkgs.",
		SetupCmd:   "nix-channel --update",
	},
	NixVariantFlakes: {
		InstallCmd: "nix profile install",
		AttrPrefix: "nixpkgs#",
		SetupCmd:   `nix-channel --update && echo "experimental-features = nix-command flakes" >> ~/.config/nix/nix.conf`,
	},
	NixVariantShell: {
		InstallCmd: "nix-shell -p",
	},
}

// nixTemplateFor returns the template for a variant token; nix-shell is
// the default for an absent or unrecognized token.
func nixTemplateFor(variant string) nixTemplate {
	if tpl, ok := nixTemplates[variant]; ok {
		return tpl
	}
	return nixTemplates[NixVariantShell]
}

// osToken maps a platform slug to the key used in script metadata: the
// literal "windows" platform, and "linux" for everything else.
func osToken(platformSlug string) string {
	if platformSlug == "windows" {
		return "windows"
	}
	return "linux"
}

// sourceGroup accumulates the selected packages of one source, in the
// order selection encountered them
type sourceGroup struct {
	supported models.SupportedSource
	selected  []selectedPackage
}

// synthesize turns selected packages into literal shell command strings
// and assembles the final result. Packages sharing a source collapse into
// one install invocation; the script source emits one command per package
// because each package resolves to its own download URL. Setup commands
// are added at most once per source, the first time that source produces
// a command group.
func synthesize(platform *models.ResolvedPlatform, selected []selectedPackage, nixVariant string) *Result {
	result := &Result{
		Commands:      []string{},
		SetupCommands: []string{},
		Warnings:      []string{},
		Breakdown:     []BreakdownEntry{},
	}

	// Stable grouping: groups appear in first-insertion order so command
	// order is reproducible for identical input
	var groups []*sourceGroup
	index := make(map[string]*sourceGroup)
	for _, sel := range selected {
		slug := sel.supported.Source.Slug
		group, ok := index[slug]
		if !ok {
			group = &sourceGroup{supported: sel.supported}
			index[slug] = group
			groups = append(groups, group)
		}
		group.selected = append(group.selected, sel)
	}

	setupSeen := make(map[string]bool)
	addSetup := func(slug, cmd string) {
		if cmd == "" || setupSeen[slug] {
			return
		}
		setupSeen[slug] = true
		result.SetupCommands = append(result.SetupCommands, cmd)
	}

	for _, group := range groups {
		source := group.supported.Source

		switch kindOf(source.Slug) {
		case kindScript:
			identifiers := synthesizeScript(platform, group, result)
			if len(identifiers) == 0 {
				continue
			}
			addSetup(source.Slug, source.SetupCmd)
			result.Breakdown = append(result.Breakdown, BreakdownEntry{
				Source:   source.Name,
				Packages: identifiers,
			})

		case kindNix:
			tpl := nixTemplateFor(nixVariant)
			identifiers := make([]string, 0, len(group.selected))
			installed := make([]string, 0, len(group.selected))
			for _, sel := range group.selected {
				identifiers = append(identifiers, sel.pkg.Identifier)
				installed = append(installed, tpl.AttrPrefix+sel.pkg.Identifier)
			}
			result.Commands = append(result.Commands, installCommand(tpl.InstallCmd, installed, source.RequireSudo))
			addSetup(source.Slug, tpl.SetupCmd)
			result.Breakdown = append(result.Breakdown, BreakdownEntry{
				Source:   source.Name,
				Packages: identifiers,
			})

		default:
			identifiers := make([]string, 0, len(group.selected))
			for _, sel := range group.selected {
				identifiers = append(identifiers, sel.pkg.Identifier)
			}
			result.Commands = append(result.Commands, installCommand(source.InstallCmd, identifiers, source.RequireSudo))
			addSetup(source.Slug, source.SetupCmd)
			result.Breakdown = append(result.Breakdown, BreakdownEntry{
				Source:   source.Name,
				Packages: identifiers,
			})
		}
	}

	return result
}

// synthesizeScript emits one command per script package. A package without
// a script URL for the target OS produces a warning and is skipped; the
// returned identifiers cover only the packages that produced commands.
func synthesizeScript(platform *models.ResolvedPlatform, group *sourceGroup, result *Result) []string {
	os := osToken(platform.Slug)

	var identifiers []string
	for _, sel := range group.selected {
		var scriptURL string
		if sel.pkg.Metadata != nil {
			scriptURL = sel.pkg.Metadata.ScriptURLs[os]
		}
		if scriptURL == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: No install script available for %s", sel.app.Name, os))
			continue
		}
		result.Commands = append(result.Commands, scriptCommand(os, scriptURL))
		identifiers = append(identifiers, sel.pkg.Identifier)
	}
	return identifiers
}

// scriptCommand builds the pipe-to-shell command for a script URL. On
// windows an executable download gets a two-step download-then-execute
// form; everything else is piped into the shell directly.
func scriptCommand(os, scriptURL string) string {
	if os == "windows" {
		if strings.HasSuffix(scriptURL, ".exe") {
			name := path.Base(scriptURL)
			return fmt.Sprintf(`Invoke-WebRequest -Uri "%s" -OutFile "%s"; Start-Process -FilePath ".\%s"`, scriptURL, name, name)
		}
		return fmt.Sprintf("irm %s | iex", scriptURL)
	}
	return fmt.Sprintf("curl -fsSL %s | bash", scriptURL)
}

// installCommand joins an install-command prefix with its package
// identifiers, prefixing sudo when the source requires it
func installCommand(installCmd string, identifiers []string, requireSudo bool) string {
	cmd := installCmd + " " + strings.Join(identifiers, " ")
	if requireSudo {
		cmd = "sudo " + cmd
	}
	return cmd
}

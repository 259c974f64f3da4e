package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/installdeck/installdeck/internal/models"
)

func testEngine() *Engine {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func aptSource() *models.Source {
	return &models.Source{
		Slug:        "apt",
		Name:        "APT",
		InstallCmd:  "apt install -y",
		RequireSudo: true,
		Priority:    10,
	}
}

func flatpakSource() *models.Source {
	return &models.Source{
		Slug:       "flatpak",
		Name:       "Flatpak",
		InstallCmd: "flatpak install -y flathub",
		SetupCmd:   "flatpak remote-add --if-not-exists flathub https://dl.flathub.org/repo/flathub.flatpakrepo",
		Priority:   5,
	}
}

func nixSource() *models.Source {
	return &models.Source{
		Slug:       "nix",
		Name:       "Nix",
		InstallCmd: "nix-shell -p",
		Priority:   7,
	}
}

func scriptSource() *models.Source {
	return &models.Source{
		Slug:     "script",
		Name:     "Install Script",
		Priority: 1,
	}
}

func ubuntuPlatform() *models.ResolvedPlatform {
	return &models.ResolvedPlatform{
		Slug: "ubuntu",
		Name: "Ubuntu",
		Sources: []models.SupportedSource{
			{Source: aptSource(), Priority: 10, IsDefault: true},
			{Source: flatpakSource(), Priority: 5},
			{Source: nixSource(), Priority: 7},
			{Source: scriptSource(), Priority: 1},
		},
	}
}

func app(id, name string, packages ...models.Package) *models.Application {
	return &models.Application{ID: id, Name: name, Packages: packages}
}

func pkg(source, identifier string) models.Package {
	return models.Package{SourceSlug: source, Identifier: identifier, IsAvailable: true}
}

func TestGenerate_NoSources(t *testing.T) {
	e := testEngine()

	_, err := e.Generate(Request{
		Platform:     &models.ResolvedPlatform{Slug: "bare", Name: "Bare"},
		Applications: []*models.Application{app("a", "A", pkg("apt", "a"))},
	})
	require.ErrorIs(t, err, ErrNoSources)

	_, err = e.Generate(Request{
		Platform:     nil,
		Applications: []*models.Application{app("a", "A")},
	})
	require.ErrorIs(t, err, ErrNoSources)
}

func TestGenerate_NoApplications(t *testing.T) {
	e := testEngine()

	_, err := e.Generate(Request{Platform: ubuntuPlatform()})
	require.ErrorIs(t, err, ErrNoApplications)
}

func TestGenerate_UbuntuScenario(t *testing.T) {
	e := testEngine()

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("firefox", "Firefox", pkg("apt", "firefox"), pkg("flatpak", "org.mozilla.firefox")),
			app("git", "Git", pkg("apt", "git")),
			app("vlc", "VLC", pkg("flatpak", "org.videolan.VLC")),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"sudo apt install -y firefox git",
		"flatpak install -y flathub org.videolan.VLC",
	}, result.Commands)
	assert.Equal(t, []string{
		"flatpak remote-add --if-not-exists flathub https://dl.flathub.org/repo/flathub.flatpakrepo",
	}, result.SetupCommands)
	assert.Empty(t, result.Warnings)

	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, BreakdownEntry{Source: "APT", Packages: []string{"firefox", "git"}}, result.Breakdown[0])
	assert.Equal(t, BreakdownEntry{Source: "Flatpak", Packages: []string{"org.videolan.VLC"}}, result.Breakdown[1])
}

func TestGenerate_PreferredSourceWins(t *testing.T) {
	e := testEngine()

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("firefox", "Firefox", pkg("apt", "firefox"), pkg("flatpak", "org.mozilla.firefox")),
		},
		PreferredSource: "flatpak",
	})
	require.NoError(t, err)

	// flatpak 5+100 beats apt 10+5
	assert.Equal(t, []string{"flatpak install -y flathub org.mozilla.firefox"}, result.Commands)
}

func TestGenerate_PreferredSourceWithoutPackageFallsBack(t *testing.T) {
	e := testEngine()

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("git", "Git", pkg("apt", "git")),
		},
		PreferredSource: "flatpak",
	})
	require.NoError(t, err)

	// Git has no flatpak package, so apt still wins
	assert.Equal(t, []string{"sudo apt install -y git"}, result.Commands)
	assert.Empty(t, result.Warnings)
}

func TestGenerate_DefaultBonusBreaksPriorityTie(t *testing.T) {
	e := testEngine()

	platform := &models.ResolvedPlatform{
		Slug: "fedora",
		Name: "Fedora",
		Sources: []models.SupportedSource{
			{Source: flatpakSource(), Priority: 8},
			{Source: nixSource(), Priority: 8, IsDefault: true},
		},
	}

	result, err := e.Generate(Request{
		Platform: platform,
		Applications: []*models.Application{
			app("htop", "htop", pkg("flatpak", "io.htop"), pkg("nix", "htop")),
		},
	})
	require.NoError(t, err)

	// nix 8+5 beats flatpak 8
	assert.Equal(t, []string{"nix-shell -p htop"}, result.Commands)
}

func TestGenerate_EqualPriorityFirstPackageWins(t *testing.T) {
	e := testEngine()

	platform := &models.ResolvedPlatform{
		Slug: "arch",
		Name: "Arch Linux",
		Sources: []models.SupportedSource{
			{Source: flatpakSource(), Priority: 6},
			{Source: nixSource(), Priority: 6},
		},
	}

	result, err := e.Generate(Request{
		Platform: platform,
		Applications: []*models.Application{
			app("htop", "htop", pkg("nix", "htop"), pkg("flatpak", "io.htop")),
		},
	})
	require.NoError(t, err)

	// Strictly-greater comparison keeps the first package seen
	assert.Equal(t, []string{"nix-shell -p htop"}, result.Commands)
}

func TestGenerate_SkipsUnavailablePackages(t *testing.T) {
	e := testEngine()

	unavailable := models.Package{SourceSlug: "apt", Identifier: "firefox", IsAvailable: false}
	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("firefox", "Firefox", unavailable, pkg("flatpak", "org.mozilla.firefox")),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"flatpak install -y flathub org.mozilla.firefox"}, result.Commands)
}

func TestGenerate_NoPackageWarning(t *testing.T) {
	e := testEngine()

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("git", "Git", pkg("apt", "git")),
			app("photoshop", "Photoshop", pkg("winget", "Adobe.Photoshop")),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sudo apt install -y git"}, result.Commands)
	assert.Equal(t, []string{"Photoshop: No package available for Ubuntu"}, result.Warnings)
	require.Len(t, result.Breakdown, 1)
}

func TestGenerate_WarningFreeResultKeepsEmptySlices(t *testing.T) {
	e := testEngine()

	result, err := e.Generate(Request{
		Platform:     ubuntuPlatform(),
		Applications: []*models.Application{app("git", "Git", pkg("apt", "git"))},
	})
	require.NoError(t, err)

	// Warnings must stay a non-nil empty slice so the API serializes []
	// rather than null, matching the other result fields.
	assert.NotNil(t, result.Warnings)
	assert.Empty(t, result.Warnings)
	assert.NotNil(t, result.Commands)
	assert.NotNil(t, result.SetupCommands)
	assert.NotNil(t, result.Breakdown)
}

func TestGenerate_AllUnmatchedStillSucceeds(t *testing.T) {
	e := testEngine()

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("photoshop", "Photoshop", pkg("winget", "Adobe.Photoshop")),
		},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Commands)
	assert.Empty(t, result.SetupCommands)
	assert.Equal(t, []string{"Photoshop: No package available for Ubuntu"}, result.Warnings)
	assert.Empty(t, result.Breakdown)
}

func TestGenerate_SetupCommandEmittedOnce(t *testing.T) {
	e := testEngine()

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("vlc", "VLC", pkg("flatpak", "org.videolan.VLC")),
			app("gimp", "GIMP", pkg("flatpak", "org.gimp.GIMP")),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"flatpak install -y flathub org.videolan.VLC org.gimp.GIMP"}, result.Commands)
	require.Len(t, result.SetupCommands, 1)
}

func TestGenerate_ScriptSourceLinux(t *testing.T) {
	e := testEngine()

	withScript := models.Package{
		SourceSlug:  "script",
		Identifier:  "rustup",
		IsAvailable: true,
		Metadata: &models.PackageMetadata{
			ScriptURLs: map[string]string{"linux": "https://sh.rustup.rs"},
		},
	}

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("rustup", "Rustup", withScript),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"curl -fsSL https://sh.rustup.rs | bash"}, result.Commands)
	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, BreakdownEntry{Source: "Install Script", Packages: []string{"rustup"}}, result.Breakdown[0])
}

func TestGenerate_ScriptSourceOnePerPackage(t *testing.T) {
	e := testEngine()

	first := models.Package{
		SourceSlug: "script", Identifier: "rustup", IsAvailable: true,
		Metadata: &models.PackageMetadata{ScriptURLs: map[string]string{"linux": "https://sh.rustup.rs"}},
	}
	second := models.Package{
		SourceSlug: "script", Identifier: "nvm", IsAvailable: true,
		Metadata: &models.PackageMetadata{ScriptURLs: map[string]string{"linux": "https://example.com/nvm.sh"}},
	}

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("rustup", "Rustup", first),
			app("nvm", "nvm", second),
		},
	})
	require.NoError(t, err)

	// Script packages never collapse into one invocation
	assert.Equal(t, []string{
		"curl -fsSL https://sh.rustup.rs | bash",
		"curl -fsSL https://example.com/nvm.sh | bash",
	}, result.Commands)
}

func TestGenerate_ScriptSourceMissingOSWarning(t *testing.T) {
	e := testEngine()

	windowsOnly := models.Package{
		SourceSlug: "script", Identifier: "tool", IsAvailable: true,
		Metadata: &models.PackageMetadata{ScriptURLs: map[string]string{"windows": "https://example.com/tool.ps1"}},
	}

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("tool", "Tool", windowsOnly),
		},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Commands)
	assert.Equal(t, []string{"Tool: No install script available for linux"}, result.Warnings)
	assert.Empty(t, result.Breakdown)
}

func TestGenerate_ScriptSourceWindows(t *testing.T) {
	e := testEngine()

	platform := &models.ResolvedPlatform{
		Slug: "windows",
		Name: "Windows",
		Sources: []models.SupportedSource{
			{Source: scriptSource(), Priority: 1, IsDefault: true},
		},
	}

	ps1 := models.Package{
		SourceSlug: "script", Identifier: "scoop", IsAvailable: true,
		Metadata: &models.PackageMetadata{ScriptURLs: map[string]string{"windows": "https://get.scoop.sh"}},
	}
	exe := models.Package{
		SourceSlug: "script", Identifier: "tool", IsAvailable: true,
		Metadata: &models.PackageMetadata{ScriptURLs: map[string]string{"windows": "https://example.com/tool.exe"}},
	}

	result, err := e.Generate(Request{
		Platform: platform,
		Applications: []*models.Application{
			app("scoop", "Scoop", ps1),
			app("tool", "Tool", exe),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"irm https://get.scoop.sh | iex",
		`Invoke-WebRequest -Uri "https://example.com/tool.exe" -OutFile "tool.exe"; Start-Process -FilePath ".\tool.exe"`,
	}, result.Commands)
}

func TestGenerate_NixVariants(t *testing.T) {
	e := testEngine()

	platform := &models.ResolvedPlatform{
		Slug: "nixos",
		Name: "NixOS",
		Sources: []models.SupportedSource{
			{Source: nixSource(), Priority: 10, IsDefault: true},
		},
	}
	apps := []*models.Application{
		app("htop", "htop", pkg("nix", "htop")),
		app("jq", "jq", pkg("nix", "jq")),
	}

	tests := []struct {
		variant   string
		command   string
		setup     []string
	}{
		{
			variant: "",
			command: "nix-shell -p htop jq",
			setup:   []string{},
		},
		{
			variant: NixVariantShell,
			command: "nix-shell -p htop jq",
			setup:   []string{},
		},
		{
			variant: NixVariantEnv,
			command: "nix-env -iA nixpkgs.htop nixpkgs.jq",
			setup:   []string{"nix-channel --update"},
		},
		{
			variant: NixVariantFlakes,
			command: "nix profile install nixpkgs#htop nixpkgs#jq",
			setup:   []string{`nix-channel --update && echo "experimental-features = nix-command flakes" >> ~/.config/nix/nix.conf`},
		},
	}

	for _, tt := range tests {
		name := tt.variant
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			result, err := e.Generate(Request{
				Platform:     platform,
				Applications: apps,
				NixVariant:   tt.variant,
			})
			require.NoError(t, err)
			assert.Equal(t, []string{tt.command}, result.Commands)
			assert.Equal(t, tt.setup, result.SetupCommands)
			// Breakdown carries raw identifiers, not variant-prefixed attributes
			require.Len(t, result.Breakdown, 1)
			assert.Equal(t, []string{"htop", "jq"}, result.Breakdown[0].Packages)
		})
	}
}

func TestGenerate_GroupOrderFollowsSelectionOrder(t *testing.T) {
	e := testEngine()

	result, err := e.Generate(Request{
		Platform: ubuntuPlatform(),
		Applications: []*models.Application{
			app("vlc", "VLC", pkg("flatpak", "org.videolan.VLC")),
			app("git", "Git", pkg("apt", "git")),
			app("gimp", "GIMP", pkg("flatpak", "org.gimp.GIMP")),
		},
	})
	require.NoError(t, err)

	// Flatpak appears first because the first selected package used it
	assert.Equal(t, []string{
		"flatpak install -y flathub org.videolan.VLC org.gimp.GIMP",
		"sudo apt install -y git",
	}, result.Commands)
	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "Flatpak", result.Breakdown[0].Source)
	assert.Equal(t, "APT", result.Breakdown[1].Source)
}

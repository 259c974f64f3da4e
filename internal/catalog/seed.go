package catalog

import "github.com/installdeck/installdeck/internal/models"

// SeedCatalog returns a starter catalog with the common package sources
// and platforms. It carries no applications; those are added through the
// API or CLI.
func SeedCatalog() *models.Catalog {
	data := models.NewCatalog()

	sources := []*models.Source{
		{
			Slug:        "apt",
			Name:        "APT",
			Description: "Debian and Ubuntu package manager",
			Website:     "https://wiki.debian.org/Apt",
			InstallCmd:  "apt install -y",
			RequireSudo: true,
			Priority:    10,
		},
		{
			Slug:        "dnf",
			Name:        "DNF",
			Description: "Fedora package manager",
			Website:     "https://docs.fedoraproject.org/en-US/quick-docs/dnf/",
			InstallCmd:  "dnf install -y",
			RequireSudo: true,
			Priority:    10,
		},
		{
			Slug:        "pacman",
			Name:        "Pacman",
			Description: "Arch Linux package manager",
			Website:     "https://wiki.archlinux.org/title/Pacman",
			InstallCmd:  "pacman -S --noconfirm",
			RequireSudo: true,
			Priority:    10,
		},
		{
			Slug:        "flatpak",
			Name:        "Flatpak",
			Description: "Sandboxed Linux application distribution",
			Website:     "https://flatpak.org",
			InstallCmd:  "flatpak install -y flathub",
			SetupCmd:    "flatpak remote-add --if-not-exists flathub https://flathub.org/repo/flathub.flatpakrepo",
			Priority:    5,
		},
		{
			Slug:        "snap",
			Name:        "Snap",
			Description: "Canonical's application distribution",
			Website:     "https://snapcraft.io",
			InstallCmd:  "snap install",
			RequireSudo: true,
			Priority:    4,
		},
		{
			Slug:        "brew",
			Name:        "Homebrew",
			Description: "The missing package manager for macOS and Linux",
			Website:     "https://brew.sh",
			InstallCmd:  "brew install",
			Priority:    8,
		},
		{
			Slug:        "winget",
			Name:        "WinGet",
			Description: "Windows package manager",
			Website:     "https://learn.microsoft.com/windows/package-manager/",
			InstallCmd:  "winget install -e --id",
			Priority:    10,
		},
		{
			Slug:        "choco",
			Name:        "Chocolatey",
			Description: "Windows community package manager",
			Website:     "https://chocolatey.org",
			InstallCmd:  "choco install -y",
			Priority:    8,
		},
		{
			Slug:        "scoop",
			Name:        "Scoop",
			Description: "Windows command-line installer",
			Website:     "https://scoop.sh",
			InstallCmd:  "scoop install",
			Priority:    6,
		},
		{
			Slug:        "nix",
			Name:        "Nix",
			Description: "Purely functional package manager",
			Website:     "https://nixos.org",
			InstallCmd:  "nix-shell -p",
			Priority:    7,
		},
		{
			Slug:        "script",
			Name:        "Install Script",
			Description: "Vendor-provided install scripts",
			Priority:    1,
		},
	}
	for _, s := range sources {
		data.Sources[s.Slug] = s
	}

	platforms := []*models.Platform{
		{
			Slug: "ubuntu",
			Name: "Ubuntu",
			Sources: []models.PlatformSource{
				{SourceSlug: "apt", Priority: 10, IsDefault: true},
				{SourceSlug: "flatpak", Priority: 5},
				{SourceSlug: "snap", Priority: 4},
				{SourceSlug: "nix", Priority: 3},
				{SourceSlug: "script", Priority: 1},
			},
		},
		{
			Slug: "debian",
			Name: "Debian",
			Sources: []models.PlatformSource{
				{SourceSlug: "apt", Priority: 10, IsDefault: true},
				{SourceSlug: "flatpak", Priority: 5},
				{SourceSlug: "nix", Priority: 3},
				{SourceSlug: "script", Priority: 1},
			},
		},
		{
			Slug: "fedora",
			Name: "Fedora",
			Sources: []models.PlatformSource{
				{SourceSlug: "dnf", Priority: 10, IsDefault: true},
				{SourceSlug: "flatpak", Priority: 5},
				{SourceSlug: "nix", Priority: 3},
				{SourceSlug: "script", Priority: 1},
			},
		},
		{
			Slug: "arch",
			Name: "Arch Linux",
			Sources: []models.PlatformSource{
				{SourceSlug: "pacman", Priority: 10, IsDefault: true},
				{SourceSlug: "flatpak", Priority: 5},
				{SourceSlug: "script", Priority: 1},
			},
		},
		{
			Slug: "windows",
			Name: "Windows",
			Sources: []models.PlatformSource{
				{SourceSlug: "winget", Priority: 10, IsDefault: true},
				{SourceSlug: "choco", Priority: 8},
				{SourceSlug: "scoop", Priority: 6},
				{SourceSlug: "script", Priority: 1},
			},
		},
	}
	for _, p := range platforms {
		data.Platforms[p.Slug] = p
	}

	return data
}

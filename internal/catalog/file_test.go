package catalog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/installdeck/installdeck/internal/models"
)

func newFileTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileCatalog_CreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.json")

	fc, err := NewFileCatalog(path, "", newFileTestLogger())
	require.NoError(t, err)
	defer fc.Close()

	// Missing file (and parent directory) is created on first load
	_, err = os.Stat(path)
	require.NoError(t, err)

	sources, err := fc.ListSources(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestFileCatalog_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	ctx := context.Background()

	fc, err := NewFileCatalog(path, "", newFileTestLogger())
	require.NoError(t, err)

	require.NoError(t, fc.CreateSource(ctx, testSource("apt")))
	require.NoError(t, fc.Close())

	// Reopen and verify the data survived
	fc2, err := NewFileCatalog(path, "", newFileTestLogger())
	require.NoError(t, err)
	defer fc2.Close()

	src, err := fc2.GetSource(ctx, "apt")
	require.NoError(t, err)
	assert.Equal(t, "apt install", src.InstallCmd)
}

func TestFileCatalog_FullLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	ctx := context.Background()

	fc, err := NewFileCatalog(path, "", newFileTestLogger())
	require.NoError(t, err)
	defer fc.Close()

	require.NoError(t, fc.CreateSource(ctx, testSource("apt")))
	require.NoError(t, fc.CreatePlatform(ctx, testPlatform("ubuntu", "apt")))
	require.NoError(t, fc.CreateApplication(ctx, &models.Application{ID: "git", Name: "Git"}))
	require.NoError(t, fc.CreatePackage(ctx, "git", &models.Package{SourceSlug: "apt", Identifier: "git", IsAvailable: true}))

	resolved, err := fc.ResolvePlatform(ctx, "ubuntu")
	require.NoError(t, err)
	require.Len(t, resolved.Sources, 1)

	apps, err := fc.GetApplications(ctx, []string{"git"})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.NotNil(t, apps[0].FindPackage("apt"))

	require.NoError(t, fc.DeletePackage(ctx, "git", "apt"))
	require.NoError(t, fc.DeleteApplication(ctx, "git"))
	require.NoError(t, fc.DeletePlatform(ctx, "ubuntu"))
	require.NoError(t, fc.DeleteSource(ctx, "apt"))
}

func TestFileCatalog_RejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileCatalog(path, "", newFileTestLogger())
	assert.Error(t, err)
}

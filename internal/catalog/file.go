package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/installdeck/installdeck/internal/models"
)

// FileCatalog implements Store using a local JSON file as backend. It
// embeds BaseCatalog for in-memory CRUD operations and persists via
// atomic temp-file + rename writes.
type FileCatalog struct {
	*BaseCatalog
	filePath string
}

// NewFileCatalog creates a new file-backed catalog.
// The token parameter is accepted but ignored for file storage (for factory compatibility).
func NewFileCatalog(filePath string, token string, logger *slog.Logger) (*FileCatalog, error) {
	if token != "" {
		logger.Warn("Catalog token provided but file storage does not use authentication",
			"file_path", filePath)
	}

	fc := &FileCatalog{
		BaseCatalog: NewBaseCatalog(logger),
		filePath:    filePath,
	}

	if err := fc.load(); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return fc, nil
}

// load reads the catalog from file or creates an empty catalog
func (fc *FileCatalog) load() error {
	if _, err := os.Stat(fc.filePath); os.IsNotExist(err) {
		fc.logger.Info("Catalog file not found, creating empty catalog",
			"file_path", fc.filePath)

		dir := filepath.Dir(fc.filePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}

		if err := fc.persist(); err != nil {
			return fmt.Errorf("failed to create catalog file: %w", err)
		}
		return nil
	}

	fileData, err := os.ReadFile(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	if err := fc.UnmarshalData(fileData); err != nil {
		return fmt.Errorf("failed to parse catalog file (invalid JSON syntax): %w", err)
	}

	data := fc.GetData()
	fc.logger.Info("Catalog file loaded",
		"file_path", fc.filePath,
		"source_count", len(data.Sources),
		"platform_count", len(data.Platforms),
		"application_count", len(data.Applications))

	return nil
}

// persist writes the catalog to file atomically (temp file + rename).
// NOTE: Called while BaseCatalog holds the lock during CRUD operations,
// so it uses marshalDataLocked(); load() calls it before any concurrent
// access exists.
func (fc *FileCatalog) persist() error {
	jsonData, err := fc.marshalDataLocked()
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	dir := filepath.Dir(fc.filePath)
	tempFile, err := os.CreateTemp(dir, ".catalog-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	// Ensure temp file cleanup on error
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tempFile = nil // disarm cleanup

	if err := os.Rename(tempPath, fc.filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// CreateSource creates a new source
func (fc *FileCatalog) CreateSource(ctx context.Context, s *models.Source) error {
	return fc.BaseCatalog.CreateSource(ctx, s, fc.persist)
}

// UpdateSource updates a source record
func (fc *FileCatalog) UpdateSource(ctx context.Context, s *models.Source) error {
	return fc.BaseCatalog.UpdateSource(ctx, s, fc.persist)
}

// DeleteSource deletes a source
func (fc *FileCatalog) DeleteSource(ctx context.Context, slug string) error {
	return fc.BaseCatalog.DeleteSource(ctx, slug, fc.persist)
}

// CreatePlatform creates a new platform
func (fc *FileCatalog) CreatePlatform(ctx context.Context, p *models.Platform) error {
	return fc.BaseCatalog.CreatePlatform(ctx, p, fc.persist)
}

// UpdatePlatform updates a platform
func (fc *FileCatalog) UpdatePlatform(ctx context.Context, p *models.Platform) error {
	return fc.BaseCatalog.UpdatePlatform(ctx, p, fc.persist)
}

// DeletePlatform deletes a platform
func (fc *FileCatalog) DeletePlatform(ctx context.Context, slug string) error {
	return fc.BaseCatalog.DeletePlatform(ctx, slug, fc.persist)
}

// CreateApplication creates a new application
func (fc *FileCatalog) CreateApplication(ctx context.Context, a *models.Application) error {
	return fc.BaseCatalog.CreateApplication(ctx, a, fc.persist)
}

// UpdateApplication updates an application
func (fc *FileCatalog) UpdateApplication(ctx context.Context, a *models.Application) error {
	return fc.BaseCatalog.UpdateApplication(ctx, a, fc.persist)
}

// DeleteApplication deletes an application and its packages
func (fc *FileCatalog) DeleteApplication(ctx context.Context, id string) error {
	return fc.BaseCatalog.DeleteApplication(ctx, id, fc.persist)
}

// CreatePackage adds a package to an application
func (fc *FileCatalog) CreatePackage(ctx context.Context, appID string, p *models.Package) error {
	return fc.BaseCatalog.CreatePackage(ctx, appID, p, fc.persist)
}

// DeletePackage removes an application's package for one source
func (fc *FileCatalog) DeletePackage(ctx context.Context, appID, sourceSlug string) error {
	return fc.BaseCatalog.DeletePackage(ctx, appID, sourceSlug, fc.persist)
}

// Close closes the catalog (no-op for file storage)
func (fc *FileCatalog) Close() error {
	return nil
}

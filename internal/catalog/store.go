package catalog

import (
	"context"
	"errors"

	"github.com/installdeck/installdeck/internal/models"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when attempting to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrStorageUnavailable is returned when catalog persistence fails
	ErrStorageUnavailable = errors.New("catalog storage unavailable")

	// ErrUnknownSource is returned when a platform or package references a source that does not exist
	ErrUnknownSource = errors.New("referenced source does not exist")

	// ErrSourceInUse is returned when deleting a source still referenced by platforms or packages
	ErrSourceInUse = errors.New("source is referenced by platforms or packages")
)

// Store defines the interface for catalog operations. The Resolve and
// GetApplications lookups feed command generation; the CRUD surface backs
// the admin API.
type Store interface {
	// Source operations
	CreateSource(ctx context.Context, s *models.Source) error
	GetSource(ctx context.Context, slug string) (*models.Source, error)
	UpdateSource(ctx context.Context, s *models.Source) error
	DeleteSource(ctx context.Context, slug string) error
	ListSources(ctx context.Context) ([]*models.Source, error)

	// Platform operations
	CreatePlatform(ctx context.Context, p *models.Platform) error
	GetPlatform(ctx context.Context, slug string) (*models.Platform, error)
	UpdatePlatform(ctx context.Context, p *models.Platform) error
	DeletePlatform(ctx context.Context, slug string) error
	ListPlatforms(ctx context.Context) ([]*models.Platform, error)

	// Application operations
	CreateApplication(ctx context.Context, a *models.Application) error
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	UpdateApplication(ctx context.Context, a *models.Application) error
	DeleteApplication(ctx context.Context, id string) error
	ListApplications(ctx context.Context) ([]*models.Application, error)

	// Package operations (nested under an application)
	CreatePackage(ctx context.Context, appID string, p *models.Package) error
	DeletePackage(ctx context.Context, appID, sourceSlug string) error

	// Generation lookups
	ResolvePlatform(ctx context.Context, slug string) (*models.ResolvedPlatform, error)
	GetApplications(ctx context.Context, ids []string) ([]*models.Application, error)

	// Close closes the catalog store
	Close() error
}

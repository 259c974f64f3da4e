package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/installdeck/installdeck/internal/models"
)

// OCICatalog implements Store backed by an OCI registry. The catalog
// document is pushed as a single-layer artifact tagged "latest"; every
// write pushes a new artifact version.
type OCICatalog struct {
	*BaseCatalog
	client *OCIClient
}

// NewOCICatalog creates a catalog store backed by the OCI reference encoded
// in the URI. A registry token is required.
func NewOCICatalog(uri *URI, token string, logger *slog.Logger) (*OCICatalog, error) {
	client, err := NewOCIClient(uri.OCIReference(), token, logger)
	if err != nil {
		return nil, err
	}

	oc := &OCICatalog{
		BaseCatalog: NewBaseCatalog(logger),
		client:      client,
	}
	if err := oc.load(context.Background()); err != nil {
		return nil, err
	}
	return oc, nil
}

// load pulls the catalog document, creating an empty artifact when the
// repository has none yet.
func (oc *OCICatalog) load(ctx context.Context) error {
	exists, err := oc.client.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		oc.logger.Info("Catalog artifact not found, creating empty catalog",
			"reference", oc.client.reference)
		oc.SetData(models.NewCatalog())
		data, err := oc.MarshalData()
		if err != nil {
			return fmt.Errorf("failed to marshal catalog: %w", err)
		}
		return oc.client.Push(ctx, data)
	}

	data, err := oc.client.Pull(ctx)
	if err != nil {
		return err
	}
	if err := oc.UnmarshalData(data); err != nil {
		return fmt.Errorf("failed to parse catalog artifact: %w", err)
	}

	oc.logger.Info("Catalog loaded from OCI registry",
		"reference", oc.client.reference,
		"sources", len(oc.data.Sources),
		"platforms", len(oc.data.Platforms),
		"applications", len(oc.data.Applications))
	return nil
}

// persist pushes the current catalog state. Callers hold the write lock,
// so marshalling must not re-acquire it. Push applies its own timeout.
func (oc *OCICatalog) persist() error {
	data, err := oc.marshalDataLocked()
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return oc.client.Push(context.Background(), data)
}

func (oc *OCICatalog) CreateSource(ctx context.Context, s *models.Source) error {
	return oc.BaseCatalog.CreateSource(ctx, s, oc.persist)
}

func (oc *OCICatalog) UpdateSource(ctx context.Context, s *models.Source) error {
	return oc.BaseCatalog.UpdateSource(ctx, s, oc.persist)
}

func (oc *OCICatalog) DeleteSource(ctx context.Context, slug string) error {
	return oc.BaseCatalog.DeleteSource(ctx, slug, oc.persist)
}

func (oc *OCICatalog) CreatePlatform(ctx context.Context, p *models.Platform) error {
	return oc.BaseCatalog.CreatePlatform(ctx, p, oc.persist)
}

func (oc *OCICatalog) UpdatePlatform(ctx context.Context, p *models.Platform) error {
	return oc.BaseCatalog.UpdatePlatform(ctx, p, oc.persist)
}

func (oc *OCICatalog) DeletePlatform(ctx context.Context, slug string) error {
	return oc.BaseCatalog.DeletePlatform(ctx, slug, oc.persist)
}

func (oc *OCICatalog) CreateApplication(ctx context.Context, a *models.Application) error {
	return oc.BaseCatalog.CreateApplication(ctx, a, oc.persist)
}

func (oc *OCICatalog) UpdateApplication(ctx context.Context, a *models.Application) error {
	return oc.BaseCatalog.UpdateApplication(ctx, a, oc.persist)
}

func (oc *OCICatalog) DeleteApplication(ctx context.Context, id string) error {
	return oc.BaseCatalog.DeleteApplication(ctx, id, oc.persist)
}

func (oc *OCICatalog) CreatePackage(ctx context.Context, appID string, p *models.Package) error {
	return oc.BaseCatalog.CreatePackage(ctx, appID, p, oc.persist)
}

func (oc *OCICatalog) DeletePackage(ctx context.Context, appID, sourceSlug string) error {
	return oc.BaseCatalog.DeletePackage(ctx, appID, sourceSlug, oc.persist)
}

// Close is a no-op; the OCI client holds no persistent connections.
func (oc *OCICatalog) Close() error {
	return nil
}

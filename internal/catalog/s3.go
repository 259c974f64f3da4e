package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/installdeck/installdeck/internal/models"
)

// S3Catalog implements Store backed by an S3-compatible object store.
// The full catalog document lives in a single JSON object; every write
// re-uploads it.
type S3Catalog struct {
	*BaseCatalog
	client *S3Client
}

// NewS3Catalog creates a catalog store backed by the bucket and key encoded
// in the URI. The token carries credentials in ACCESS_KEY:SECRET_KEY form.
func NewS3Catalog(uri *URI, token string, logger *slog.Logger) (*S3Catalog, error) {
	accessKey, secretKey, err := ParseS3Token(token)
	if err != nil {
		return nil, err
	}

	endpoint := uri.S3Endpoint()
	region := uri.S3Region()
	if region == "" {
		region = ExtractRegionFromEndpoint(endpoint)
	}

	client, err := NewS3Client(endpoint, uri.S3Bucket(), uri.S3Key(), accessKey, secretKey, uri.S3UseSSL(), region, logger)
	if err != nil {
		return nil, err
	}

	sc := &S3Catalog{
		BaseCatalog: NewBaseCatalog(logger),
		client:      client,
	}
	if err := sc.load(context.Background()); err != nil {
		return nil, err
	}
	return sc, nil
}

// load validates the bucket and downloads the catalog document, creating an
// empty one when the object does not exist yet.
func (sc *S3Catalog) load(ctx context.Context) error {
	if err := sc.client.ValidateBucket(ctx); err != nil {
		return err
	}

	exists, err := sc.client.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		sc.logger.Info("Catalog object not found, creating empty catalog",
			"bucket", sc.client.bucket,
			"key", sc.client.key)
		sc.SetData(models.NewCatalog())
		data, err := sc.MarshalData()
		if err != nil {
			return fmt.Errorf("failed to marshal catalog: %w", err)
		}
		return sc.client.Upload(ctx, data)
	}

	data, err := sc.client.Download(ctx)
	if err != nil {
		return err
	}
	if err := sc.UnmarshalData(data); err != nil {
		return fmt.Errorf("failed to parse catalog object: %w", err)
	}

	sc.logger.Info("Catalog loaded from S3",
		"bucket", sc.client.bucket,
		"key", sc.client.key,
		"sources", len(sc.data.Sources),
		"platforms", len(sc.data.Platforms),
		"applications", len(sc.data.Applications))
	return nil
}

// persist uploads the current catalog state. Callers hold the write lock,
// so marshalling must not re-acquire it. Upload applies its own timeout.
func (sc *S3Catalog) persist() error {
	data, err := sc.marshalDataLocked()
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return sc.client.Upload(context.Background(), data)
}

func (sc *S3Catalog) CreateSource(ctx context.Context, s *models.Source) error {
	return sc.BaseCatalog.CreateSource(ctx, s, sc.persist)
}

func (sc *S3Catalog) UpdateSource(ctx context.Context, s *models.Source) error {
	return sc.BaseCatalog.UpdateSource(ctx, s, sc.persist)
}

func (sc *S3Catalog) DeleteSource(ctx context.Context, slug string) error {
	return sc.BaseCatalog.DeleteSource(ctx, slug, sc.persist)
}

func (sc *S3Catalog) CreatePlatform(ctx context.Context, p *models.Platform) error {
	return sc.BaseCatalog.CreatePlatform(ctx, p, sc.persist)
}

func (sc *S3Catalog) UpdatePlatform(ctx context.Context, p *models.Platform) error {
	return sc.BaseCatalog.UpdatePlatform(ctx, p, sc.persist)
}

func (sc *S3Catalog) DeletePlatform(ctx context.Context, slug string) error {
	return sc.BaseCatalog.DeletePlatform(ctx, slug, sc.persist)
}

func (sc *S3Catalog) CreateApplication(ctx context.Context, a *models.Application) error {
	return sc.BaseCatalog.CreateApplication(ctx, a, sc.persist)
}

func (sc *S3Catalog) UpdateApplication(ctx context.Context, a *models.Application) error {
	return sc.BaseCatalog.UpdateApplication(ctx, a, sc.persist)
}

func (sc *S3Catalog) DeleteApplication(ctx context.Context, id string) error {
	return sc.BaseCatalog.DeleteApplication(ctx, id, sc.persist)
}

func (sc *S3Catalog) CreatePackage(ctx context.Context, appID string, p *models.Package) error {
	return sc.BaseCatalog.CreatePackage(ctx, appID, p, sc.persist)
}

func (sc *S3Catalog) DeletePackage(ctx context.Context, appID, sourceSlug string) error {
	return sc.BaseCatalog.DeletePackage(ctx, appID, sourceSlug, sc.persist)
}

// Close is a no-op; the S3 client holds no persistent connections.
func (sc *S3Catalog) Close() error {
	return nil
}

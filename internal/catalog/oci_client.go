package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"
)

// OCI timeout constants. Push gets more headroom; public registries can
// be slow to accept new manifests.
const (
	OCIPushTimeout = 60 * time.Second
	OCIPullTimeout = 30 * time.Second
)

// OCI media types for the catalog artifact
const (
	OCIArtifactType   = "application/vnd.installdeck.catalog.v1+json"
	OCILayerMediaType = "application/json"
	OCILayerTitle     = "catalog.json"
)

// OCIClient wraps oras-go for pushing and pulling the catalog artifact
type OCIClient struct {
	repository *remote.Repository
	reference  string // Full reference "registry/repo:latest"
	logger     *slog.Logger
}

// NewOCIClient creates a new OCI client for the given reference and token.
// The reference is in "registry/repo:tag" format (e.g. "ghcr.io/org/catalog:latest").
// The token is sent as a registry password: ghcr.io accepts a GitHub PAT
// this way, docker.io an access token.
func NewOCIClient(reference string, token string, logger *slog.Logger) (*OCIClient, error) {
	repo, err := remote.NewRepository(reference)
	if err != nil {
		logger.Error("Failed to create OCI repository",
			"reference", reference,
			"error", err)
		return nil, CategorizeOCIError(OpConnect, fmt.Errorf("invalid OCI reference %q: %w", reference, err))
	}

	if token != "" {
		repo.Client = &auth.Client{
			Client: retry.DefaultClient,
			Credential: func(ctx context.Context, reg string) (auth.Credential, error) {
				return auth.Credential{
					Username: "token",
					Password: token,
				}, nil
			},
		}
	}

	logger.Info("OCI client created",
		"reference", reference,
		"has_token", token != "")

	return &OCIClient{
		repository: repo,
		reference:  reference,
		logger:     logger,
	}, nil
}

// Pull retrieves the catalog document from the OCI repository.
func (c *OCIClient) Pull(ctx context.Context) ([]byte, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, OCIPullTimeout)
	defer cancel()

	store := memory.New()
	tag := c.repository.Reference.Reference

	manifestDesc, err := oras.Copy(ctx, c.repository, tag, store, "", oras.DefaultCopyOptions)
	if err != nil {
		c.logger.Error("OCI pull failed",
			"reference", c.reference,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, CategorizeOCIError(OpDownload, err)
	}

	manifestJSON, err := content.FetchAll(ctx, store, manifestDesc)
	if err != nil {
		return nil, CategorizeOCIError(OpDownload, fmt.Errorf("failed to fetch manifest: %w", err))
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
		return nil, CategorizeOCIError(OpDownload, fmt.Errorf("failed to parse manifest: %w", err))
	}
	if len(manifest.Layers) == 0 {
		return nil, CategorizeOCIError(OpDownload, fmt.Errorf("artifact has no layers"))
	}

	// The catalog document is always the first layer
	data, err := content.FetchAll(ctx, store, manifest.Layers[0])
	if err != nil {
		return nil, CategorizeOCIError(OpDownload, fmt.Errorf("failed to fetch catalog layer: %w", err))
	}

	c.logger.Info("OCI pull completed",
		"reference", c.reference,
		"size_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())
	return data, nil
}

// Push uploads the catalog document to the OCI repository as a single-layer
// artifact tagged with the reference's tag.
func (c *OCIClient) Push(ctx context.Context, data []byte) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, OCIPushTimeout)
	defer cancel()

	store := memory.New()
	tag := c.repository.Reference.Reference

	layerDesc := ocispec.Descriptor{
		MediaType: OCILayerMediaType,
		Digest:    digest.FromBytes(data),
		Size:      int64(len(data)),
		Annotations: map[string]string{
			ocispec.AnnotationTitle: OCILayerTitle,
		},
	}
	if err := store.Push(ctx, layerDesc, bytes.NewReader(data)); err != nil {
		return CategorizeOCIError(OpUpload, fmt.Errorf("failed to stage catalog layer: %w", err))
	}

	manifestDesc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, OCIArtifactType,
		oras.PackManifestOptions{
			Layers: []ocispec.Descriptor{layerDesc},
			ManifestAnnotations: map[string]string{
				ocispec.AnnotationCreated: time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return CategorizeOCIError(OpUpload, fmt.Errorf("failed to pack manifest: %w", err))
	}
	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return CategorizeOCIError(OpUpload, fmt.Errorf("failed to tag manifest: %w", err))
	}

	if _, err := oras.Copy(ctx, store, tag, c.repository, "", oras.DefaultCopyOptions); err != nil {
		c.logger.Error("OCI push failed",
			"reference", c.reference,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return CategorizeOCIError(OpUpload, err)
	}

	c.logger.Info("OCI push completed",
		"reference", c.reference,
		"size_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Exists checks if the artifact exists in the OCI repository.
func (c *OCIClient) Exists(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, OCIPullTimeout)
	defer cancel()

	_, err := c.repository.Resolve(ctx, c.repository.Reference.Reference)
	if err != nil {
		// Registries disagree on how "not found" looks: some return 404,
		// some NAME_UNKNOWN/MANIFEST_UNKNOWN error codes.
		errStr := err.Error()
		if containsHTTPStatus(errStr, 404) || containsHTTPStatus(errStr, 400) ||
			strings.HasSuffix(errStr, ": not found") ||
			strings.Contains(errStr, "NOT_FOUND") ||
			strings.Contains(errStr, "NAME_UNKNOWN") ||
			strings.Contains(errStr, "MANIFEST_UNKNOWN") {
			return false, nil
		}
		c.logger.Error("OCI existence check failed",
			"reference", c.reference,
			"error", err)
		return false, CategorizeOCIError(OpConnect, err)
	}
	return true, nil
}

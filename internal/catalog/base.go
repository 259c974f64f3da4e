package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/installdeck/installdeck/internal/models"
)

// BaseCatalog provides shared in-memory CRUD operations for all catalog
// backends. It handles locking, referential integrity, and data
// manipulation. Concrete backends (FileCatalog, S3Catalog, OCICatalog)
// embed this and provide their own persistence mechanisms.
type BaseCatalog struct {
	mu     sync.RWMutex
	data   *models.Catalog
	logger *slog.Logger
}

// NewBaseCatalog creates a new BaseCatalog with empty data
func NewBaseCatalog(logger *slog.Logger) *BaseCatalog {
	return &BaseCatalog{
		data:   models.NewCatalog(),
		logger: logger,
	}
}

// SetData sets the in-memory data (used by backends after loading)
func (b *BaseCatalog) SetData(data *models.Catalog) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
}

// GetData returns the current data (used by backends for persistence)
func (b *BaseCatalog) GetData() *models.Catalog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data
}

// MarshalData serializes the catalog to JSON.
// NOTE: Caller must NOT hold the lock - this method acquires its own lock.
// For use within locked contexts, use marshalDataLocked instead.
func (b *BaseCatalog) MarshalData() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return json.MarshalIndent(b.data, "", "  ")
}

// marshalDataLocked serializes data without acquiring lock.
// Caller MUST hold at least a read lock.
func (b *BaseCatalog) marshalDataLocked() ([]byte, error) {
	return json.MarshalIndent(b.data, "", "  ")
}

// UnmarshalData deserializes JSON data into the catalog
func (b *BaseCatalog) UnmarshalData(jsonData []byte) error {
	var data models.Catalog
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return err
	}
	// Initialize maps if nil
	if data.Sources == nil {
		data.Sources = make(map[string]*models.Source)
	}
	if data.Platforms == nil {
		data.Platforms = make(map[string]*models.Platform)
	}
	if data.Applications == nil {
		data.Applications = make(map[string]*models.Application)
	}
	b.mu.Lock()
	b.data = &data
	b.mu.Unlock()
	return nil
}

// PersistFunc is a callback function that backends implement for persistence
type PersistFunc func() error

// persistOrRollback runs the persist callback and invokes rollback when it
// fails, mapping the failure to ErrStorageUnavailable.
// Caller MUST hold the write lock.
func (b *BaseCatalog) persistOrRollback(persist PersistFunc, rollback func(), operation, key string) error {
	if persist == nil {
		return nil
	}
	if err := persist(); err != nil {
		rollback()
		b.logger.Error("Catalog write failed",
			"operation", operation,
			"resource", key,
			"error", err)
		return ErrStorageUnavailable
	}
	return nil
}

// ----- Source operations -----

// CreateSource creates a new source in memory; the persist callback is
// called after the in-memory operation succeeds. If persist fails, the
// in-memory change is rolled back.
func (b *BaseCatalog) CreateSource(ctx context.Context, s *models.Source, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.data.Sources[s.Slug]; exists {
		return ErrAlreadyExists
	}

	b.data.Sources[s.Slug] = s

	if err := b.persistOrRollback(persist, func() { delete(b.data.Sources, s.Slug) }, "create_source", s.Slug); err != nil {
		return err
	}

	b.logger.Info("Source created", "source", s.Slug)
	return nil
}

// GetSource retrieves a source by slug
func (b *BaseCatalog) GetSource(ctx context.Context, slug string) (*models.Source, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	source, exists := b.data.Sources[slug]
	if !exists {
		return nil, ErrNotFound
	}
	return source, nil
}

// UpdateSource updates a source record
func (b *BaseCatalog) UpdateSource(ctx context.Context, s *models.Source, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, exists := b.data.Sources[s.Slug]
	if !exists {
		return ErrNotFound
	}

	b.data.Sources[s.Slug] = s

	if err := b.persistOrRollback(persist, func() { b.data.Sources[s.Slug] = existing }, "update_source", s.Slug); err != nil {
		return err
	}

	b.logger.Info("Source updated", "source", s.Slug)
	return nil
}

// DeleteSource deletes a source. A source still referenced by a platform
// or an application package cannot be deleted.
func (b *BaseCatalog) DeleteSource(ctx context.Context, slug string, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	source, exists := b.data.Sources[slug]
	if !exists {
		return ErrNotFound
	}

	for _, platform := range b.data.Platforms {
		for _, ps := range platform.Sources {
			if ps.SourceSlug == slug {
				return ErrSourceInUse
			}
		}
	}
	for _, app := range b.data.Applications {
		if app.FindPackage(slug) != nil {
			return ErrSourceInUse
		}
	}

	delete(b.data.Sources, slug)

	if err := b.persistOrRollback(persist, func() { b.data.Sources[slug] = source }, "delete_source", slug); err != nil {
		return err
	}

	b.logger.Info("Source deleted", "source", slug)
	return nil
}

// ListSources returns all sources ordered by slug
func (b *BaseCatalog) ListSources(ctx context.Context) ([]*models.Source, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sources := make([]*models.Source, 0, len(b.data.Sources))
	for _, s := range b.data.Sources {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Slug < sources[j].Slug })
	return sources, nil
}

// ----- Platform operations -----

// CreatePlatform creates a new platform. Every referenced source must exist.
func (b *BaseCatalog) CreatePlatform(ctx context.Context, p *models.Platform, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.data.Platforms[p.Slug]; exists {
		return ErrAlreadyExists
	}
	if err := b.checkPlatformSourcesLocked(p); err != nil {
		return err
	}

	b.data.Platforms[p.Slug] = p

	if err := b.persistOrRollback(persist, func() { delete(b.data.Platforms, p.Slug) }, "create_platform", p.Slug); err != nil {
		return err
	}

	b.logger.Info("Platform created", "platform", p.Slug, "source_count", len(p.Sources))
	return nil
}

// GetPlatform retrieves a platform by slug
func (b *BaseCatalog) GetPlatform(ctx context.Context, slug string) (*models.Platform, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	platform, exists := b.data.Platforms[slug]
	if !exists {
		return nil, ErrNotFound
	}
	return platform, nil
}

// UpdatePlatform updates a platform and its source associations
func (b *BaseCatalog) UpdatePlatform(ctx context.Context, p *models.Platform, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, exists := b.data.Platforms[p.Slug]
	if !exists {
		return ErrNotFound
	}
	if err := b.checkPlatformSourcesLocked(p); err != nil {
		return err
	}

	b.data.Platforms[p.Slug] = p

	if err := b.persistOrRollback(persist, func() { b.data.Platforms[p.Slug] = existing }, "update_platform", p.Slug); err != nil {
		return err
	}

	b.logger.Info("Platform updated", "platform", p.Slug, "source_count", len(p.Sources))
	return nil
}

// DeletePlatform deletes a platform
func (b *BaseCatalog) DeletePlatform(ctx context.Context, slug string, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	platform, exists := b.data.Platforms[slug]
	if !exists {
		return ErrNotFound
	}

	delete(b.data.Platforms, slug)

	if err := b.persistOrRollback(persist, func() { b.data.Platforms[slug] = platform }, "delete_platform", slug); err != nil {
		return err
	}

	b.logger.Info("Platform deleted", "platform", slug)
	return nil
}

// ListPlatforms returns all platforms ordered by slug
func (b *BaseCatalog) ListPlatforms(ctx context.Context) ([]*models.Platform, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	platforms := make([]*models.Platform, 0, len(b.data.Platforms))
	for _, p := range b.data.Platforms {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i].Slug < platforms[j].Slug })
	return platforms, nil
}

// checkPlatformSourcesLocked verifies every source association references
// an existing source record. Caller MUST hold the lock.
func (b *BaseCatalog) checkPlatformSourcesLocked(p *models.Platform) error {
	for _, ps := range p.Sources {
		if _, ok := b.data.Sources[ps.SourceSlug]; !ok {
			return ErrUnknownSource
		}
	}
	return nil
}

// ----- Application operations -----

// CreateApplication creates a new application. Every package must
// reference an existing source.
func (b *BaseCatalog) CreateApplication(ctx context.Context, a *models.Application, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.data.Applications[a.ID]; exists {
		return ErrAlreadyExists
	}
	if err := b.checkApplicationSourcesLocked(a); err != nil {
		return err
	}

	b.data.Applications[a.ID] = a

	if err := b.persistOrRollback(persist, func() { delete(b.data.Applications, a.ID) }, "create_application", a.ID); err != nil {
		return err
	}

	b.logger.Info("Application created", "application", a.ID, "package_count", len(a.Packages))
	return nil
}

// GetApplication retrieves an application by id
func (b *BaseCatalog) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	app, exists := b.data.Applications[id]
	if !exists {
		return nil, ErrNotFound
	}
	return app, nil
}

// UpdateApplication updates an application and its packages
func (b *BaseCatalog) UpdateApplication(ctx context.Context, a *models.Application, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, exists := b.data.Applications[a.ID]
	if !exists {
		return ErrNotFound
	}
	if err := b.checkApplicationSourcesLocked(a); err != nil {
		return err
	}

	b.data.Applications[a.ID] = a

	if err := b.persistOrRollback(persist, func() { b.data.Applications[a.ID] = existing }, "update_application", a.ID); err != nil {
		return err
	}

	b.logger.Info("Application updated", "application", a.ID, "package_count", len(a.Packages))
	return nil
}

// DeleteApplication deletes an application and all its packages
func (b *BaseCatalog) DeleteApplication(ctx context.Context, id string, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	app, exists := b.data.Applications[id]
	if !exists {
		return ErrNotFound
	}

	delete(b.data.Applications, id)

	if err := b.persistOrRollback(persist, func() { b.data.Applications[id] = app }, "delete_application", id); err != nil {
		return err
	}

	b.logger.Info("Application deleted", "application", id, "packages_deleted", len(app.Packages))
	return nil
}

// ListApplications returns all applications ordered by id
func (b *BaseCatalog) ListApplications(ctx context.Context) ([]*models.Application, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	apps := make([]*models.Application, 0, len(b.data.Applications))
	for _, a := range b.data.Applications {
		apps = append(apps, a)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}

// checkApplicationSourcesLocked verifies every package references an
// existing source record. Caller MUST hold the lock.
func (b *BaseCatalog) checkApplicationSourcesLocked(a *models.Application) error {
	for i := range a.Packages {
		if _, ok := b.data.Sources[a.Packages[i].SourceSlug]; !ok {
			return ErrUnknownSource
		}
	}
	return nil
}

// ----- Package operations -----

// CreatePackage adds a package to an application. One package per source
// per application; the source must exist.
func (b *BaseCatalog) CreatePackage(ctx context.Context, appID string, p *models.Package, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	app, exists := b.data.Applications[appID]
	if !exists {
		return ErrNotFound
	}
	if _, ok := b.data.Sources[p.SourceSlug]; !ok {
		return ErrUnknownSource
	}
	if app.FindPackage(p.SourceSlug) != nil {
		return ErrAlreadyExists
	}

	app.Packages = append(app.Packages, *p)

	rollback := func() { app.Packages = app.Packages[:len(app.Packages)-1] }
	if err := b.persistOrRollback(persist, rollback, "create_package", appID+"/"+p.SourceSlug); err != nil {
		return err
	}

	b.logger.Info("Package created",
		"application", appID,
		"source", p.SourceSlug,
		"identifier", p.Identifier)
	return nil
}

// DeletePackage removes an application's package for one source
func (b *BaseCatalog) DeletePackage(ctx context.Context, appID, sourceSlug string, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	app, exists := b.data.Applications[appID]
	if !exists {
		return ErrNotFound
	}

	idx := -1
	for i := range app.Packages {
		if app.Packages[i].SourceSlug == sourceSlug {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	removed := app.Packages[idx]
	app.Packages = append(app.Packages[:idx], app.Packages[idx+1:]...)

	rollback := func() {
		app.Packages = append(app.Packages[:idx], append([]models.Package{removed}, app.Packages[idx:]...)...)
	}
	if err := b.persistOrRollback(persist, rollback, "delete_package", appID+"/"+sourceSlug); err != nil {
		return err
	}

	b.logger.Info("Package deleted", "application", appID, "source", sourceSlug)
	return nil
}

// ----- Generation lookups -----

// ResolvePlatform returns the platform with its supported sources joined
// against the shared source records, in the platform's association order.
// An association whose source record no longer exists is skipped with a
// warning; the catalog enforces integrity at write time, so this only
// happens with hand-edited data.
func (b *BaseCatalog) ResolvePlatform(ctx context.Context, slug string) (*models.ResolvedPlatform, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	platform, exists := b.data.Platforms[slug]
	if !exists {
		return nil, ErrNotFound
	}

	resolved := &models.ResolvedPlatform{
		Slug:    platform.Slug,
		Name:    platform.Name,
		Sources: make([]models.SupportedSource, 0, len(platform.Sources)),
	}
	for _, ps := range platform.Sources {
		source, ok := b.data.Sources[ps.SourceSlug]
		if !ok {
			b.logger.Warn("Platform references unknown source, skipping",
				"platform", slug,
				"source", ps.SourceSlug)
			continue
		}
		resolved.Sources = append(resolved.Sources, models.SupportedSource{
			Source:    source,
			Priority:  ps.Priority,
			IsDefault: ps.IsDefault,
		})
	}
	return resolved, nil
}

// GetApplications returns the known applications among ids, in request
// order with duplicates removed. Unknown ids are ignored; the caller
// decides whether an empty result is an error.
func (b *BaseCatalog) GetApplications(ctx context.Context, ids []string) ([]*models.Application, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]bool, len(ids))
	apps := make([]*models.Application, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if app, ok := b.data.Applications[id]; ok {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

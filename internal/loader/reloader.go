package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/cms-admin/internal/storage"
)

// Reloader fetches the configured source and publishes the parsed result.
type Reloader struct {
	loader *Loader
	source Source
	store  storage.Storage
	logger *zap.Logger
	clock  func() time.Time
}

// NewReloader binds a loader and source to store.
func NewReloader(l *Loader, src Source, store storage.Storage, logger *zap.Logger) *Reloader {
	return &Reloader{
		loader: l,
		source: src,
		store:  store,
		logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Reload replaces the stored snapshot. On failure the previous snapshot is
// left untouched.
func (r *Reloader) Reload(ctx context.Context) (storage.Snapshot, error) {
	start := r.clock()
	cfg, err := r.loader.LoadConfig(ctx, r.source)
	if err != nil {
		r.logger.Warn("cms config reload failed",
			zap.String("source", r.source.String()),
			zap.Error(err),
		)
		return storage.Snapshot{}, err
	}

	snapshot := storage.Snapshot{
		Config:   cfg,
		Source:   r.source.String(),
		LoadedAt: r.clock(),
	}
	if err := r.store.Replace(snapshot); err != nil {
		return storage.Snapshot{}, fmt.Errorf("store config: %w", err)
	}

	r.logger.Info("cms config loaded",
		zap.String("source", snapshot.Source),
		zap.Int("site_items", len(cfg.Site)),
		zap.Int("records", len(cfg.Records)),
		zap.Duration("duration", snapshot.LoadedAt.Sub(start)),
	)
	return snapshot, nil
}

// Source reports where the reloader reads from.
func (r *Reloader) Source() Source {
	return r.source
}

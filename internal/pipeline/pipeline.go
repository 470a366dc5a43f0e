// Package pipeline wires the fibs components into the harvest, workflow and
// bootstrap runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ppiankov/fibs/internal/cache"
	"github.com/ppiankov/fibs/internal/extract"
	"github.com/ppiankov/fibs/internal/extract/adapters"
	"github.com/ppiankov/fibs/internal/index"
	"github.com/ppiankov/fibs/internal/model"
	"github.com/ppiankov/fibs/internal/store"
	"go.uber.org/zap"
)

// Pipeline holds the collaborators shared by every run
type Pipeline struct {
	config    *model.Config
	logger    *zap.Logger
	store     store.Datastore
	blobs     store.BlobStore
	source    adapters.PageSource
	extractor *extract.Extractor
	builder   index.Builder
	progress  io.Writer // nil disables progress bars
}

// Deps overrides collaborators. Zero fields are built from the config.
type Deps struct {
	Store    store.Datastore
	Blobs    store.BlobStore
	Source   adapters.PageSource
	Builder  index.Builder
	Progress io.Writer
}

// New builds a pipeline from cfg
func New(ctx context.Context, cfg *model.Config, logger *zap.Logger, deps Deps) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	segmenter, err := extract.NewSegmenter(cfg.Extract.Segmenter)
	if err != nil {
		return nil, fmt.Errorf("segmenter: %w", err)
	}

	p := &Pipeline{
		config:    cfg,
		logger:    logger,
		store:     deps.Store,
		blobs:     deps.Blobs,
		source:    deps.Source,
		builder:   deps.Builder,
		progress:  deps.Progress,
		extractor: extract.NewExtractor(segmenter, extract.OptionsFromConfig(cfg.Extract)),
	}

	if p.builder == nil {
		if p.builder, err = index.New(cfg.Index); err != nil {
			return nil, err
		}
	}
	if p.source == nil {
		wiki := cfg.Wikipedia
		fetcher := NewFetcher(FetcherOptions{
			Timeout:        wiki.Timeout,
			UserAgent:      wiki.UserAgent,
			MaxBytes:       wiki.MaxBodyBytes,
			RequestsPerSec: wiki.RequestsPerSec,
			Burst:          wiki.Burst,
			RespectRobots:  wiki.RespectRobots,
			HTTPProxy:      wiki.HTTPProxy,
			HTTPSProxy:     wiki.HTTPSProxy,
		})
		p.source = adapters.NewWikipediaSource(fetcher, wiki.Language, wiki.BaseURL)
	}
	if p.store == nil || p.blobs == nil {
		db, blobs, err := store.Open(ctx, cfg.Store, cfg.Paths.FirebaseConfig)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if p.store == nil {
			p.store = db
		} else {
			_ = db.Close()
		}
		if p.blobs == nil {
			p.blobs = blobs
		} else {
			_ = blobs.Close()
		}
	}
	return p, nil
}

// Snapshots returns the run snapshot cache for name
func (p *Pipeline) Snapshots(name string) *cache.Snapshots {
	cfg := p.config.Cache
	layered := cache.NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.TTL)
	return cache.NewSnapshots(layered, name, cfg.TTL)
}

// Close releases the store clients
func (p *Pipeline) Close() error {
	return errors.Join(p.store.Close(), p.blobs.Close())
}

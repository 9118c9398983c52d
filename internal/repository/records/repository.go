// Package records owns the persisted production record collection: a single
// JSON array on disk, rewritten in full on every mutation.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/hnafiah/rekapbot/internal/domain/models"
)

// ErrStoreCorrupt indicates the store file no longer decodes as a record
// sequence. ErrStoreWrite indicates the full rewrite failed.
var (
	ErrStoreCorrupt = errors.New("record store corrupt")
	ErrStoreWrite   = errors.New("record store write failed")
)

// ErrNotFound indicates the referenced record id is absent.
var ErrNotFound = errors.New("record not found")

// Repository is a file-backed store for ProductionRecord sequences. All
// mutations run the load→mutate→save cycle under one mutex, so two
// concurrent commands can never overwrite each other's changes.
type Repository struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewRepository opens (and if necessary initializes) the store file.
func NewRepository(path string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := atomic.WriteFile(path, bytes.NewReader([]byte("[]"))); err != nil {
			return nil, fmt.Errorf("initialize store file %s: %w", path, err)
		}
		logger.Info("initialized empty record store", zap.String("path", path))
	} else if err != nil {
		return nil, fmt.Errorf("stat store file %s: %w", path, err)
	}

	return &Repository{path: path, logger: logger}, nil
}

// Load reads the entire persisted collection.
func (r *Repository) Load(ctx context.Context) ([]models.ProductionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

// Save overwrites the entire persisted collection.
func (r *Repository) Save(ctx context.Context, recs []models.ProductionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(ctx, recs)
}

// Mutate runs one store cycle: the collection is loaded, handed to fn, and
// the returned sequence persisted, all while holding the store mutex. When
// fn returns an error nothing is written and the error is passed through.
func (r *Repository) Mutate(ctx context.Context, fn func([]models.ProductionRecord) ([]models.ProductionRecord, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.loadLocked(ctx)
	if err != nil {
		return err
	}

	mutated, err := fn(recs)
	if err != nil {
		return err
	}

	return r.saveLocked(ctx, mutated)
}

// FindByID returns the position and value of the record with the given id.
// Legacy records persisted without an id are never matched.
func FindByID(recs []models.ProductionRecord, id string) (int, models.ProductionRecord, bool) {
	if id == "" {
		return -1, models.ProductionRecord{}, false
	}
	for i, rec := range recs {
		if rec.ID == id {
			return i, rec, true
		}
	}
	return -1, models.ProductionRecord{}, false
}

func (r *Repository) loadLocked(ctx context.Context) ([]models.ProductionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		// Deleted out from under us; same as never initialized.
		return []models.ProductionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file %s: %w", r.path, err)
	}

	var recs []models.ProductionRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStoreCorrupt, r.path, err)
	}

	if recs == nil {
		recs = []models.ProductionRecord{}
	}
	return recs, nil
}

func (r *Repository) saveLocked(ctx context.Context, recs []models.ProductionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if recs == nil {
		recs = []models.ProductionRecord{}
	}

	raw, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStoreWrite, err)
	}

	if err := atomic.WriteFile(r.path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	r.logger.Debug("record store saved", zap.Int("records", len(recs)))
	return nil
}

package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mercadito/models"

	"golang.org/x/sync/singleflight"
)

// Dataset is the full reference data snapshot. Callers never receive a
// partially loaded one.
type Dataset struct {
	Categories []models.Category
	Products   []models.Product
}

// DatasetRepository reads the two JSON collections once and caches them
// for the process lifetime. Concurrent cold-start callers collapse into a
// single read.
type DatasetRepository struct {
	dir   string
	mu    sync.RWMutex
	cache *Dataset
	sfg   singleflight.Group
}

func NewDatasetRepository(dir string) *DatasetRepository {
	return &DatasetRepository{dir: dir}
}

func (r *DatasetRepository) Load(ctx context.Context) (*Dataset, error) {
	r.mu.RLock()
	cached := r.cache
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := r.sfg.Do("load", func() (interface{}, error) {
		r.mu.RLock()
		cached := r.cache
		r.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var ds Dataset
		if err := r.readJSON("categories.json", &ds.Categories); err != nil {
			return nil, err
		}
		if err := r.readJSON("products.json", &ds.Products); err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache = &ds
		r.mu.Unlock()
		return &ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// ResetCache forces the next Load to re-read from disk.
func (r *DatasetRepository) ResetCache() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}

func (r *DatasetRepository) readJSON(file string, v interface{}) error {
	raw, err := os.ReadFile(filepath.Join(r.dir, file))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", models.ErrDataUnavailable, file, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", models.ErrDataUnavailable, file, err)
	}
	return nil
}

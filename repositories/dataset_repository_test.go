package repositories

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"mercadito/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	categoriesJSON = `[{"id": 1, "name": "Lácteos", "slug": "lacteos"}]`
	productsJSON   = `[
		{"id": "a", "name": "Leche Entera", "brand": "La Serenísima",
		 "price": 100.5, "currency": "ARS", "category_id": 1},
		{"id": "b", "name": "Yogur", "brand": null,
		 "price": null, "currency": "ARS", "category_id": 1}
	]`
)

func writeDataDir(t *testing.T, categories, products string) string {
	t.Helper()
	dir := t.TempDir()
	if categories != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.json"), []byte(categories), 0o644))
	}
	if products != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(products), 0o644))
	}
	return dir
}

func TestDatasetRepositoryLoad(t *testing.T) {
	dir := writeDataDir(t, categoriesJSON, productsJSON)
	repo := NewDatasetRepository(dir)

	ds, err := repo.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Categories, 1)
	assert.Equal(t, models.Category{ID: 1, Name: "Lácteos", Slug: "lacteos"}, ds.Categories[0])

	require.Len(t, ds.Products, 2)
	leche := ds.Products[0]
	require.NotNil(t, leche.Brand)
	assert.Equal(t, "La Serenísima", *leche.Brand)
	require.NotNil(t, leche.Price)
	assert.Equal(t, 100.5, *leche.Price)
	assert.Equal(t, 1, leche.CategoryID)

	yogur := ds.Products[1]
	assert.Nil(t, yogur.Brand)
	assert.Nil(t, yogur.Price)
}

func TestDatasetRepositoryCachesUntilReset(t *testing.T) {
	dir := writeDataDir(t, categoriesJSON, productsJSON)
	repo := NewDatasetRepository(dir)

	first, err := repo.Load(context.Background())
	require.NoError(t, err)

	// a file change is invisible while the cache holds
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(`[]`), 0o644))
	again, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, again)

	repo.ResetCache()
	fresh, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fresh.Products)
}

func TestDatasetRepositoryMissingFile(t *testing.T) {
	dir := writeDataDir(t, categoriesJSON, "")
	repo := NewDatasetRepository(dir)

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestDatasetRepositoryMalformedFile(t *testing.T) {
	dir := writeDataDir(t, categoriesJSON, `{"not": "an array"`)
	repo := NewDatasetRepository(dir)

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)

	// the failure is not cached, a repaired file loads fine
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(productsJSON), 0o644))
	ds, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Products, 2)
}

func TestDatasetRepositoryConcurrentLoads(t *testing.T) {
	dir := writeDataDir(t, categoriesJSON, productsJSON)
	repo := NewDatasetRepository(dir)

	const n = 20
	results := make([]*Dataset, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := repo.Load(context.Background())
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

package services

import (
	"context"

	"mercadito/models"
	"mercadito/repositories"
)

// CatalogService exposes every read over the static dataset. All
// operations are idempotent and safe to cache.
type CatalogService struct {
	datasets *repositories.DatasetRepository
}

func NewCatalogService(datasets *repositories.DatasetRepository) *CatalogService {
	return &CatalogService{datasets: datasets}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	ds, err := s.datasets.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Categories, nil
}

func (s *CatalogService) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	ds, err := s.datasets.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range ds.Categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	ds, err := s.datasets.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range ds.Categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

// ListProducts runs the full-catalog search. An unresolvable CategorySlug
// leaves the catalog unfiltered (RunQuery handles the fallback).
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*models.ProductListing, error) {
	ds, err := s.datasets.Load(ctx)
	if err != nil {
		return nil, err
	}
	listing := RunQuery(ds, q)
	return &listing, nil
}

// ListCategoryProducts scopes the query to one category id. An id that
// matches no category simply yields an empty listing.
func (s *CatalogService) ListCategoryProducts(ctx context.Context, categoryID int, q ProductQuery) (*models.ProductListing, error) {
	q.CategoryID = categoryID
	q.CategorySlug = ""
	return s.ListProducts(ctx, q)
}

func (s *CatalogService) GetProductByID(ctx context.Context, id string) (*models.ProductDetail, error) {
	ds, err := s.datasets.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range ds.Products {
		if p.ID == id {
			detail := models.ProductDetail{Product: p}
			for _, c := range ds.Categories {
				if c.ID == p.CategoryID {
					category := c
					detail.Category = &category
					break
				}
			}
			return &detail, nil
		}
	}
	return nil, models.ErrNotFound
}

package services

import (
	"math"
	"sort"
	"strings"

	"mercadito/models"
	"mercadito/repositories"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	DefaultPageSize = 24
	DefaultSort     = "name_asc"
)

var allowedSorts = map[string]bool{
	"name_asc":   true,
	"name_desc":  true,
	"price_asc":  true,
	"price_desc": true,
}

// ProductQuery carries every filter/sort/paginate parameter. Zero values
// mean "no filter"; Page and PageSize are expected pre-coerced to
// positive values by the caller.
type ProductQuery struct {
	Query        string
	CategoryID   int
	CategorySlug string
	MinPrice     *float64
	MaxPrice     *float64
	Sort         string
	Page         int
	PageSize     int
}

// NormalizeSort maps unrecognized sort values to the default.
func NormalizeSort(sort string) string {
	sort = strings.ToLower(strings.TrimSpace(sort))
	if !allowedSorts[sort] {
		return DefaultSort
	}
	return sort
}

// RunQuery filters, sorts, facets and paginates one dataset snapshot. It
// is pure: identical inputs over the same snapshot yield identical output.
//
// Stage order matters: category filter, price bounds, text match, sort,
// then facets and price range over the filtered set, then pagination.
func RunQuery(ds *repositories.Dataset, q ProductQuery) models.ProductListing {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	// A slug that resolves nowhere leaves the catalog unfiltered, same as
	// the categoryId zero value.
	categoryID := q.CategoryID
	if categoryID == 0 && q.CategorySlug != "" {
		for _, c := range ds.Categories {
			if c.Slug == q.CategorySlug {
				categoryID = c.ID
				break
			}
		}
	}

	lower := cases.Lower(language.Spanish)
	term := lower.String(strings.TrimSpace(q.Query))
	contains := func(s string) bool {
		return strings.Contains(lower.String(s), term)
	}

	filtered := make([]models.Product, 0, len(ds.Products))
	for _, p := range ds.Products {
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		price := math.Inf(1)
		if p.Price != nil {
			price = *p.Price
		}
		if q.MinPrice != nil && price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && price > *q.MaxPrice {
			continue
		}
		if term != "" {
			if !contains(p.Name) && (p.Brand == nil || !contains(*p.Brand)) {
				continue
			}
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, NormalizeSort(q.Sort))

	return models.ProductListing{
		Page: paginate(filtered, page, pageSize),
		Facets: models.Facets{
			Categories: categoriesFacet(ds.Categories, filtered),
			PriceRange: priceRange(filtered),
		},
	}
}

// sortProducts orders in place. Names compare under Spanish collation
// with base sensitivity; missing-price items land last under both price
// directions, the direction only applies between numeric prices.
func sortProducts(items []models.Product, sortKey string) {
	field, dir, _ := strings.Cut(sortKey, "_")
	asc := dir != "desc"

	if field == "price" {
		sort.SliceStable(items, func(i, j int) bool {
			pi, pj := items[i].Price, items[j].Price
			if pi == nil || pj == nil {
				return pi != nil && pj == nil
			}
			if asc {
				return *pi < *pj
			}
			return *pj < *pi
		})
		return
	}

	col := collate.New(language.Spanish, collate.Loose)
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return col.CompareString(items[i].Name, items[j].Name) < 0
		}
		return col.CompareString(items[j].Name, items[i].Name) < 0
	})
}

// categoriesFacet counts the filtered set per category, drops zero-count
// categories and orders by localized name.
func categoriesFacet(categories []models.Category, items []models.Product) []models.CategoryFacet {
	countByID := make(map[int]int)
	for _, p := range items {
		countByID[p.CategoryID]++
	}

	facets := make([]models.CategoryFacet, 0, len(categories))
	for _, c := range categories {
		if countByID[c.ID] == 0 {
			continue
		}
		facets = append(facets, models.CategoryFacet{
			ID:    c.ID,
			Name:  c.Name,
			Slug:  c.Slug,
			Count: countByID[c.ID],
		})
	}

	col := collate.New(language.Spanish)
	sort.SliceStable(facets, func(i, j int) bool {
		return col.CompareString(facets[i].Name, facets[j].Name) < 0
	})
	return facets
}

// priceRange spans the numeric prices of the filtered set only.
func priceRange(items []models.Product) models.PriceRange {
	var min, max *float64
	for _, p := range items {
		if p.Price == nil {
			continue
		}
		v := *p.Price
		if min == nil || v < *min {
			min = &v
		}
		if max == nil || v > *max {
			max = &v
		}
	}
	return models.PriceRange{Min: min, Max: max}
}

func paginate[T any](items []T, page, pageSize int) models.Page[T] {
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return models.Page[T]{
		Total:    len(items),
		Page:     page,
		PageSize: pageSize,
		Items:    items[start:end],
	}
}

package services

import (
	"testing"

	"mercadito/models"
	"mercadito/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }
func sptr(s string) *string   { return &s }

func product(id, name string, price *float64, categoryID int) models.Product {
	return models.Product{
		ID:         id,
		Name:       name,
		Price:      price,
		Currency:   "ARS",
		CategoryID: categoryID,
	}
}

func testDataset() *repositories.Dataset {
	return &repositories.Dataset{
		Categories: []models.Category{
			{ID: 1, Name: "Lácteos", Slug: "lacteos"},
			{ID: 2, Name: "Bebidas", Slug: "bebidas"},
			{ID: 3, Name: "Almacén", Slug: "almacen"},
		},
		Products: []models.Product{
			product("a", "Leche Entera", fptr(100), 1),
			product("b", "Yogur Natural", nil, 1),
			product("c", "Agua Mineral", fptr(50), 2),
			product("d", "Gaseosa Cola", fptr(200), 2),
			product("e", "Yerba Mate", fptr(500), 3),
		},
	}
}

func names(items []models.Product) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Name
	}
	return out
}

func TestNormalizeSort(t *testing.T) {
	assert.Equal(t, "name_asc", NormalizeSort(""))
	assert.Equal(t, "name_asc", NormalizeSort("bogus"))
	assert.Equal(t, "name_asc", NormalizeSort("name_bogus"))
	assert.Equal(t, "price_desc", NormalizeSort("PRICE_DESC"))
	assert.Equal(t, "name_desc", NormalizeSort(" name_desc "))
}

func TestRunQueryNameSortIsCaseInsensitive(t *testing.T) {
	ds := &repositories.Dataset{
		Categories: []models.Category{{ID: 1, Name: "Almacén", Slug: "almacen"}},
		Products: []models.Product{
			product("z", "Zeta", fptr(1), 1),
			product("a", "ana", fptr(2), 1),
		},
	}

	listing := RunQuery(ds, ProductQuery{Sort: "name_asc"})
	assert.Equal(t, []string{"ana", "Zeta"}, names(listing.Items))

	listing = RunQuery(ds, ProductQuery{Sort: "name_desc"})
	assert.Equal(t, []string{"Zeta", "ana"}, names(listing.Items))
}

func TestRunQueryNullPriceSortsLastBothDirections(t *testing.T) {
	ds := &repositories.Dataset{
		Categories: []models.Category{{ID: 1, Name: "Almacén", Slug: "almacen"}},
		Products: []models.Product{
			product("n", "Sin Precio", nil, 1),
			product("m", "Medio", fptr(50), 1),
			product("b", "Barato", fptr(10), 1),
		},
	}

	asc := RunQuery(ds, ProductQuery{Sort: "price_asc"})
	assert.Equal(t, []string{"Barato", "Medio", "Sin Precio"}, names(asc.Items))

	desc := RunQuery(ds, ProductQuery{Sort: "price_desc"})
	assert.Equal(t, []string{"Medio", "Barato", "Sin Precio"}, names(desc.Items))
}

func TestRunQueryPriceDescNullTrailsRegardlessOfName(t *testing.T) {
	ds := &repositories.Dataset{
		Categories: []models.Category{{ID: 1, Name: "Almacén", Slug: "almacen"}},
		Products: []models.Product{
			product("z", "Zeta", nil, 1),
			product("a", "ana", fptr(50), 1),
			product("n", "Ñandú", fptr(10), 1),
		},
	}

	desc := RunQuery(ds, ProductQuery{Sort: "price_desc"})
	assert.Equal(t, []string{"ana", "Ñandú", "Zeta"}, names(desc.Items))

	asc := RunQuery(ds, ProductQuery{Sort: "price_asc"})
	assert.Equal(t, []string{"Ñandú", "ana", "Zeta"}, names(asc.Items))
}

func TestRunQueryPagination(t *testing.T) {
	ds := testDataset()

	page1 := RunQuery(ds, ProductQuery{Page: 1, PageSize: 2})
	assert.Equal(t, 5, page1.Total)
	assert.Len(t, page1.Items, 2)

	page3 := RunQuery(ds, ProductQuery{Page: 3, PageSize: 2})
	assert.Equal(t, 5, page3.Total)
	assert.Len(t, page3.Items, 1)

	beyond := RunQuery(ds, ProductQuery{Page: 9, PageSize: 2})
	assert.Equal(t, 5, beyond.Total)
	assert.Empty(t, beyond.Items)

	// non-positive values fall back to the defaults
	defaulted := RunQuery(ds, ProductQuery{Page: -1, PageSize: 0})
	assert.Equal(t, 1, defaulted.Page.Page)
	assert.Equal(t, DefaultPageSize, defaulted.PageSize)
}

func TestRunQueryCategoryFilter(t *testing.T) {
	ds := testDataset()

	byID := RunQuery(ds, ProductQuery{CategoryID: 2, Sort: "price_asc"})
	assert.Equal(t, 2, byID.Total)
	assert.Equal(t, []string{"Agua Mineral", "Gaseosa Cola"}, names(byID.Items))

	bySlug := RunQuery(ds, ProductQuery{CategorySlug: "bebidas", Sort: "price_asc"})
	assert.Equal(t, byID.Items, bySlug.Items)
}

func TestRunQueryUnknownSlugLeavesCatalogUnfiltered(t *testing.T) {
	ds := testDataset()
	listing := RunQuery(ds, ProductQuery{CategorySlug: "no-such-slug"})
	assert.Equal(t, len(ds.Products), listing.Total)
}

func TestRunQueryTextFilterMatchesNameOrBrand(t *testing.T) {
	ds := &repositories.Dataset{
		Categories: []models.Category{{ID: 1, Name: "Bebidas", Slug: "bebidas"}},
		Products: []models.Product{
			{ID: "a", Name: "Gaseosa Cola", Brand: sptr("Coca-Cola"), Price: fptr(10), Currency: "ARS", CategoryID: 1},
			{ID: "b", Name: "Yerba Mate", Brand: sptr("Taragüi"), Price: fptr(20), Currency: "ARS", CategoryID: 1},
			{ID: "c", Name: "Agua", Brand: nil, Price: fptr(30), Currency: "ARS", CategoryID: 1},
		},
	}

	byBrand := RunQuery(ds, ProductQuery{Query: "COCA"})
	assert.Equal(t, []string{"Gaseosa Cola"}, names(byBrand.Items))

	withDiacritics := RunQuery(ds, ProductQuery{Query: "TARAGÜI"})
	assert.Equal(t, []string{"Yerba Mate"}, names(withDiacritics.Items))

	none := RunQuery(ds, ProductQuery{Query: "inexistente"})
	assert.Zero(t, none.Total)
}

func TestRunQueryPriceBounds(t *testing.T) {
	ds := testDataset()

	// null price counts as +Inf: it survives a lower bound but never an
	// upper bound
	lower := RunQuery(ds, ProductQuery{CategoryID: 1, MinPrice: fptr(50)})
	assert.Equal(t, 2, lower.Total)

	upper := RunQuery(ds, ProductQuery{CategoryID: 1, MaxPrice: fptr(1000)})
	assert.Equal(t, []string{"Leche Entera"}, names(upper.Items))

	band := RunQuery(ds, ProductQuery{MinPrice: fptr(50), MaxPrice: fptr(200), Sort: "price_asc"})
	assert.Equal(t, []string{"Agua Mineral", "Leche Entera", "Gaseosa Cola"}, names(band.Items))
}

func TestRunQueryFacetsReflectFilteredSet(t *testing.T) {
	ds := testDataset()

	listing := RunQuery(ds, ProductQuery{MaxPrice: fptr(100)})
	require.Len(t, listing.Facets.Categories, 2)

	// sorted by localized name: Bebidas before Lácteos
	assert.Equal(t, "Bebidas", listing.Facets.Categories[0].Name)
	assert.Equal(t, 2, listing.Facets.Categories[0].Count)
	assert.Equal(t, "Lácteos", listing.Facets.Categories[1].Name)
	assert.Equal(t, 1, listing.Facets.Categories[1].Count)

	// Almacén has no product under 100, so no zero-count entry
	for _, f := range listing.Facets.Categories {
		assert.NotEqual(t, "Almacén", f.Name)
	}
}

func TestRunQueryPriceRangeFromFilteredSetOnly(t *testing.T) {
	ds := &repositories.Dataset{
		Categories: []models.Category{
			{ID: 1, Name: "Lácteos", Slug: "lacteos"},
			{ID: 2, Name: "Bebidas", Slug: "bebidas"},
		},
		Products: []models.Product{
			product("a", "Queso", fptr(100), 1),
			product("b", "Leche", fptr(200), 1),
			product("c", "Gaseosa", fptr(9999), 2),
		},
	}

	listing := RunQuery(ds, ProductQuery{CategoryID: 1})
	require.NotNil(t, listing.Facets.PriceRange.Min)
	require.NotNil(t, listing.Facets.PriceRange.Max)
	assert.Equal(t, 100.0, *listing.Facets.PriceRange.Min)
	assert.Equal(t, 200.0, *listing.Facets.PriceRange.Max)
}

func TestRunQueryPriceRangeNullWhenNoNumericPrices(t *testing.T) {
	ds := &repositories.Dataset{
		Categories: []models.Category{{ID: 1, Name: "Carnes", Slug: "carnes"}},
		Products:   []models.Product{product("a", "Pollo", nil, 1)},
	}

	listing := RunQuery(ds, ProductQuery{})
	assert.Nil(t, listing.Facets.PriceRange.Min)
	assert.Nil(t, listing.Facets.PriceRange.Max)
}

func TestRunQueryLacteosScenario(t *testing.T) {
	ds := &repositories.Dataset{
		Categories: []models.Category{{ID: 1, Name: "Lácteos", Slug: "lacteos"}},
		Products: []models.Product{
			product("a", "Leche", fptr(100), 1),
			product("b", "Yogur", nil, 1),
		},
	}

	listing := RunQuery(ds, ProductQuery{CategorySlug: "lacteos"})
	assert.Equal(t, 2, listing.Total)

	require.NotNil(t, listing.Facets.PriceRange.Min)
	require.NotNil(t, listing.Facets.PriceRange.Max)
	assert.Equal(t, 100.0, *listing.Facets.PriceRange.Min)
	assert.Equal(t, 100.0, *listing.Facets.PriceRange.Max)

	require.Len(t, listing.Facets.Categories, 1)
	assert.Equal(t, models.CategoryFacet{ID: 1, Name: "Lácteos", Slug: "lacteos", Count: 2}, listing.Facets.Categories[0])
}

func TestRunQueryIsDeterministic(t *testing.T) {
	ds := testDataset()
	q := ProductQuery{Query: "a", Sort: "price_desc", Page: 1, PageSize: 3}

	first := RunQuery(ds, q)
	second := RunQuery(ds, q)
	assert.Equal(t, first, second)
}

package models

type Page[T any] struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Items    []T `json:"items"`
}

type CategoryFacet struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type Facets struct {
	Categories []CategoryFacet `json:"categories"`
	PriceRange PriceRange      `json:"priceRange"`
}

// ProductListing is the payload of every product list/search endpoint:
// one page of products plus facets computed over the whole filtered set.
type ProductListing struct {
	Page[Product]
	Facets Facets `json:"facets"`
}

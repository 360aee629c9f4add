package models

type Product struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Brand      *string  `json:"brand"`
	Price      *float64 `json:"price"`
	Currency   string   `json:"currency"`
	Image      *string  `json:"image"`
	CategoryID int      `json:"category_id"`
}

// ProductDetail is a product joined with its resolved category. The
// category is null when category_id points nowhere.
type ProductDetail struct {
	Product
	Category *Category `json:"category"`
}

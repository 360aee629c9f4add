package controllers

import (
	"errors"
	"strconv"

	"mercadito/models"
	"mercadito/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	catalog *services.CatalogService
}

func NewCategoryController(catalog *services.CatalogService) *CategoryController {
	return &CategoryController{catalog: catalog}
}

// categoryListing embeds the resolved category into the listing payload,
// the shape of the per-category product endpoints.
type categoryListing struct {
	Category models.Category `json:"category"`
	models.ProductListing
}

// @Summary List categories
// @Description Get all catalog categories
// @Tags Categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (ctrl *CategoryController) GetAllCategories(c *gin.Context) {
	categories, err := ctrl.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	c.Header("Cache-Control", "public, s-maxage=300, stale-while-revalidate=60")
	c.JSON(200, categories)
}

// @Summary Get category by id
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Category
// @Failure 404 {object} map[string]string
// @Router /categories/{id} [get]
func (ctrl *CategoryController) GetCategoryByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(404, gin.H{"error": "Category not found"})
		return
	}

	category, err := ctrl.catalog.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(404, gin.H{"error": "Category not found"})
			return
		}
		respondCatalogError(c, err)
		return
	}
	c.Header("Cache-Control", "public, s-maxage=300, stale-while-revalidate=60")
	c.JSON(200, category)
}

// @Summary Get category by slug
// @Tags Categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} models.Category
// @Failure 404 {object} map[string]string
// @Router /categories/slug/{slug} [get]
func (ctrl *CategoryController) GetCategoryBySlug(c *gin.Context) {
	category, err := ctrl.catalog.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(404, gin.H{"error": "Category not found"})
			return
		}
		respondCatalogError(c, err)
		return
	}
	c.Header("Cache-Control", "public, s-maxage=300, stale-while-revalidate=60")
	c.JSON(200, category)
}

// @Summary List products in a category
// @Description Filter, sort and paginate the category's products
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Param q query string false "Search term"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param sort query string false "Sort" Enums(name_asc, name_desc, price_asc, price_desc)
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(24)
// @Success 200 {object} models.ProductListing
// @Failure 400 {object} map[string]string
// @Router /categories/{id}/products [get]
func (ctrl *CategoryController) GetCategoryProducts(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid category id"})
		return
	}

	if serveCachedListing(c) {
		return
	}

	listing, err := ctrl.catalog.ListCategoryProducts(c.Request.Context(), id, buildProductQuery(c))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	respondListing(c, listing)
}

// @Summary List products in a category by slug
// @Tags Categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} models.ProductListing
// @Failure 404 {object} map[string]string
// @Router /categories/slug/{slug}/products [get]
func (ctrl *CategoryController) GetCategoryProductsBySlug(c *gin.Context) {
	category, err := ctrl.catalog.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(404, gin.H{"error": "Category not found"})
			return
		}
		respondCatalogError(c, err)
		return
	}

	if serveCachedListing(c) {
		return
	}

	listing, err := ctrl.catalog.ListCategoryProducts(c.Request.Context(), category.ID, buildProductQuery(c))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	respondListing(c, categoryListing{Category: *category, ProductListing: *listing})
}

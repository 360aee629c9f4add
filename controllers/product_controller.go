package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"mercadito/config"
	"mercadito/middleware"
	"mercadito/models"
	"mercadito/services"
	"mercadito/utils"

	"github.com/gin-gonic/gin"
)

const listingCacheTTL = 2 * time.Minute

type ProductController struct {
	catalog    *services.CatalogService
	suggesters *services.SuggesterPool
}

func NewProductController(catalog *services.CatalogService, suggesters *services.SuggesterPool) *ProductController {
	return &ProductController{catalog: catalog, suggesters: suggesters}
}

func listingCacheKey(c *gin.Context) string {
	return "mm_listing:" + c.Request.URL.Path + "?" + c.Request.URL.RawQuery
}

// serveCachedListing replays a cached listing response when redis holds
// one. Listing reads tolerate a short staleness window; the dataset is
// static anyway.
func serveCachedListing(c *gin.Context) bool {
	if config.RedisClient == nil {
		return false
	}
	cached, err := config.RedisClient.Get(c.Request.Context(), listingCacheKey(c)).Bytes()
	if err != nil {
		return false
	}
	c.Header("Cache-Control", "public, s-maxage=120, stale-while-revalidate=60")
	c.Data(200, "application/json; charset=utf-8", cached)
	return true
}

func respondListing(c *gin.Context, payload interface{}) {
	c.Header("Cache-Control", "public, s-maxage=120, stale-while-revalidate=60")
	c.JSON(200, payload)

	if config.RedisClient != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			config.RedisClient.Set(ctx, listingCacheKey(c), raw, listingCacheTTL)
		}
	}
}

func respondCatalogError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrDataUnavailable) {
		c.JSON(503, gin.H{"error": "dataset unavailable"})
		return
	}
	c.JSON(500, gin.H{"error": "internal error"})
}

// @Summary List or search products
// @Description Filter, sort and paginate the whole catalog
// @Tags Products
// @Produce json
// @Param q query string false "Search term (matches name or brand)"
// @Param categoryId query int false "Category ID"
// @Param categorySlug query string false "Category slug"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param sort query string false "Sort" Enums(name_asc, name_desc, price_asc, price_desc)
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(24)
// @Success 200 {object} models.ProductListing
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	if serveCachedListing(c) {
		return
	}

	query := buildProductQuery(c)
	query.CategoryID = utils.ToInt(c.Query("categoryId"), 0)
	query.CategorySlug = strings.TrimSpace(c.Query("categorySlug"))

	listing, err := ctrl.catalog.ListProducts(c.Request.Context(), query)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	respondListing(c, listing)
}

// @Summary Get product by id
// @Description Product joined with its resolved category
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductDetail
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	detail, err := ctrl.catalog.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(404, gin.H{"error": "Product not found"})
			return
		}
		respondCatalogError(c, err)
		return
	}
	c.Header("Cache-Control", "public, s-maxage=300, stale-while-revalidate=60")
	c.JSON(200, detail)
}

// @Summary Search suggestions
// @Description Up to 3 products for the typed term; a newer request
// cancels the one in flight
// @Tags Products
// @Produce json
// @Param q query string true "Search term (min 3 chars)"
// @Success 200 {object} map[string]interface{}
// @Router /suggestions [get]
func (ctrl *ProductController) GetSuggestions(c *gin.Context) {
	suggester := ctrl.suggesters.For(c.GetString(middleware.ProfileKey))
	items, err := suggester.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// superseded by a newer query; stale result discarded
			c.JSON(200, gin.H{"items": []models.Product{}})
			return
		}
		respondCatalogError(c, err)
		return
	}
	if items == nil {
		items = []models.Product{}
	}
	c.JSON(200, gin.H{"items": items})
}

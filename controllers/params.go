package controllers

import (
	"strings"

	"mercadito/services"
	"mercadito/utils"

	"github.com/gin-gonic/gin"
)

// buildProductQuery collects the shared listing params. Category scoping
// is layered on top by the specific handler.
func buildProductQuery(c *gin.Context) services.ProductQuery {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		query = strings.TrimSpace(c.Query("q"))
	}

	return services.ProductQuery{
		Query:    query,
		MinPrice: utils.ToFloat(c.Query("minPrice")),
		MaxPrice: utils.ToFloat(c.Query("maxPrice")),
		Sort:     c.Query("sort"),
		Page:     utils.ToInt(c.Query("page"), 1),
		PageSize: utils.ToInt(c.Query("pageSize"), services.DefaultPageSize),
	}
}

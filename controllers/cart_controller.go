package controllers

import (
	"mercadito/middleware"
	"mercadito/models"
	"mercadito/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartManager
}

func NewCartController(carts *services.CartManager) *CartController {
	return &CartController{carts: carts}
}

type addItemRequest struct {
	Product  models.Product `json:"product"`
	Quantity *float64       `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *float64 `json:"quantity"`
}

func (ctrl *CartController) store(c *gin.Context) *services.CartStore {
	return ctrl.carts.Store(c.GetString(middleware.ProfileKey))
}

func (ctrl *CartController) respondCart(c *gin.Context, status int) {
	cart := ctrl.store(c).Cart(c.Request.Context())
	c.JSON(status, gin.H{"cart": cart, "totalItems": cart.TotalItems()})
}

// @Summary Get cart
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	ctrl.respondCart(c, 200)
}

// @Summary Add item to cart
// @Description Merges the quantity into an existing line, clamped at 999
// @Tags Cart
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	if req.Product.ID == "" {
		c.JSON(400, gin.H{"error": "product id is required"})
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = int(*req.Quantity)
	}

	ctrl.store(c).AddItem(c.Request.Context(), req.Product, qty)
	ctrl.respondCart(c, 200)
}

// @Summary Set line quantity
// @Description Clamps into [0,999]; zero removes the line
// @Tags Cart
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /cart/items/{itemId} [patch]
func (ctrl *CartController) SetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(400, gin.H{"error": "quantity is required"})
		return
	}

	// fractional input truncates toward zero
	ctrl.store(c).SetQuantity(c.Request.Context(), c.Param("itemId"), int(*req.Quantity))
	ctrl.respondCart(c, 200)
}

// @Summary Remove item from cart
// @Tags Cart
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {object} map[string]interface{}
// @Router /cart/items/{itemId} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	ctrl.store(c).RemoveItem(c.Request.Context(), c.Param("itemId"))
	ctrl.respondCart(c, 200)
}

// @Summary Clear cart
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	ctrl.store(c).Clear(c.Request.Context())
	ctrl.respondCart(c, 200)
}

package controllers

import (
	"errors"

	"mercadito/middleware"
	"mercadito/models"
	"mercadito/services"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

func respondCheckoutError(c *gin.Context, err error) {
	var validation *models.ValidationError
	switch {
	case errors.Is(err, services.ErrCartEmpty):
		c.JSON(409, gin.H{"error": "cart is empty"})
	case errors.Is(err, services.ErrNoActiveCheckout):
		c.JSON(404, gin.H{"error": "no active checkout"})
	case errors.Is(err, services.ErrWrongStep):
		c.JSON(409, gin.H{"error": "wrong checkout step"})
	case errors.As(err, &validation):
		c.JSON(422, gin.H{"error": "validation failed", "fields": validation.Fields})
	default:
		c.JSON(500, gin.H{"error": "internal error"})
	}
}

// @Summary Current checkout step
// @Tags Checkout
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /checkout [get]
func (ctrl *CheckoutController) GetState(c *gin.Context) {
	step, err := ctrl.checkout.Step(c.GetString(middleware.ProfileKey))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(200, gin.H{"step": step})
}

// @Summary Start checkout
// @Description Rejected while the persisted cart is empty
// @Tags Checkout
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /checkout/start [post]
func (ctrl *CheckoutController) Start(c *gin.Context) {
	step, err := ctrl.checkout.Start(c.Request.Context(), c.GetString(middleware.ProfileKey))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(200, gin.H{"step": step})
}

// @Summary Submit user info step
// @Tags Checkout
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Router /checkout/user [post]
func (ctrl *CheckoutController) SubmitUserInfo(c *gin.Context) {
	var form models.UserInfoForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	step, err := ctrl.checkout.SubmitUserInfo(c.Request.Context(), c.GetString(middleware.ProfileKey), form)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(200, gin.H{"step": step})
}

// @Summary Submit address step
// @Tags Checkout
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Router /checkout/address [post]
func (ctrl *CheckoutController) SubmitAddress(c *gin.Context) {
	var form models.AddressForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	step, err := ctrl.checkout.SubmitAddress(c.GetString(middleware.ProfileKey), form)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(200, gin.H{"step": step})
}

// @Summary Submit payment step
// @Tags Checkout
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Router /checkout/payment [post]
func (ctrl *CheckoutController) SubmitPayment(c *gin.Context) {
	var form models.PaymentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	step, err := ctrl.checkout.SubmitPayment(c.GetString(middleware.ProfileKey), form)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(200, gin.H{"step": step})
}

// @Summary Step back in the wizard
// @Tags Checkout
// @Produce json
// @Success 200 {object} map[string]string
// @Router /checkout/back [post]
func (ctrl *CheckoutController) Back(c *gin.Context) {
	step, err := ctrl.checkout.Back(c.GetString(middleware.ProfileKey))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(200, gin.H{"step": step})
}

// @Summary Confirm checkout
// @Description Snapshots the cart into an order, clears the cart
// @Tags Checkout
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /checkout/confirm [post]
func (ctrl *CheckoutController) Confirm(c *gin.Context) {
	orderID, err := ctrl.checkout.Confirm(c.Request.Context(), c.GetString(middleware.ProfileKey))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(200, gin.H{"orderId": orderID})
}

// @Summary Get order snapshot
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (ctrl *CheckoutController) GetOrder(c *gin.Context) {
	order, err := ctrl.checkout.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(404, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(503, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(200, order)
}

// @Summary Acknowledge order
// @Description Deletes the transient snapshot and clears the cart again
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]bool
// @Router /orders/{id} [delete]
func (ctrl *CheckoutController) AcknowledgeOrder(c *gin.Context) {
	_ = ctrl.checkout.Acknowledge(c.Request.Context(), c.GetString(middleware.ProfileKey), c.Param("id"))
	c.JSON(200, gin.H{"ok": true})
}

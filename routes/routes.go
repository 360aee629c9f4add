package routes

import (
	"time"

	"mercadito/config"
	"mercadito/controllers"
	"mercadito/libs"
	"mercadito/middleware"
	"mercadito/repositories"
	"mercadito/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const suggestionLimit = 3

func SetupRoutes(router *gin.Engine) {
	datasets := repositories.NewDatasetRepository(config.AppConfig.DataDir)
	analytics := libs.NewAnalytics()

	var (
		cartStorage    repositories.CartStorage
		profileStorage repositories.ProfileStorage
		orderStorage   repositories.OrderStorage
	)
	if config.RedisClient != nil {
		cartStorage = repositories.NewRedisCartStorage(config.RedisClient)
		profileStorage = repositories.NewRedisProfileStorage(config.RedisClient)
		orderStorage = repositories.NewRedisOrderStorage(config.RedisClient)
	} else {
		cartStorage = repositories.NewMemoryCartStorage()
		profileStorage = repositories.NewMemoryProfileStorage()
		orderStorage = repositories.NewMemoryOrderStorage()
	}

	catalog := services.NewCatalogService(datasets)
	suggesters := services.NewSuggesterPool(catalog, suggestionLimit)
	carts := services.NewCartManager(cartStorage, analytics)
	checkout := services.NewCheckoutService(cartStorage, carts, profileStorage, orderStorage, analytics)

	categoryCtrl := controllers.NewCategoryController(catalog)
	productCtrl := controllers.NewProductController(catalog, suggesters)
	cartCtrl := controllers.NewCartController(carts)
	checkoutCtrl := controllers.NewCheckoutController(checkout)
	profileCtrl := controllers.NewProfileController(profileStorage)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=60")
		c.JSON(200, gin.H{"ok": true, "ts": time.Now().UnixMilli()})
	})

	api.GET("/categories", categoryCtrl.GetAllCategories)
	api.GET("/categories/:id", categoryCtrl.GetCategoryByID)
	api.GET("/categories/:id/products", categoryCtrl.GetCategoryProducts)
	api.GET("/categories/slug/:slug", categoryCtrl.GetCategoryBySlug)
	api.GET("/categories/slug/:slug/products", categoryCtrl.GetCategoryProductsBySlug)

	api.GET("/products", productCtrl.GetAllProducts)
	api.GET("/products/:id", productCtrl.GetProductByID)

	// everything below is scoped to a browser-profile analog
	session := api.Group("/")
	session.Use(middleware.ProfileMiddleware())
	{
		session.GET("/suggestions", productCtrl.GetSuggestions)

		session.GET("/cart", cartCtrl.GetCart)
		session.POST("/cart/items", cartCtrl.AddItem)
		session.PATCH("/cart/items/:itemId", cartCtrl.SetQuantity)
		session.DELETE("/cart/items/:itemId", cartCtrl.RemoveItem)
		session.DELETE("/cart", cartCtrl.ClearCart)

		session.GET("/profile", profileCtrl.GetProfile)
		session.PUT("/profile", profileCtrl.UpdateProfile)

		session.GET("/checkout", checkoutCtrl.GetState)
		session.POST("/checkout/start", checkoutCtrl.Start)
		session.POST("/checkout/user", checkoutCtrl.SubmitUserInfo)
		session.POST("/checkout/address", checkoutCtrl.SubmitAddress)
		session.POST("/checkout/payment", checkoutCtrl.SubmitPayment)
		session.POST("/checkout/back", checkoutCtrl.Back)
		session.POST("/checkout/confirm", checkoutCtrl.Confirm)

		session.GET("/orders/:id", checkoutCtrl.GetOrder)
		session.DELETE("/orders/:id", checkoutCtrl.AcknowledgeOrder)
	}
}

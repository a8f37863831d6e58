// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/blog"
	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/chat"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/favorite"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/domain/report"
	"github.com/optommarket/backend/internal/domain/upload"
	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/interfaces/http/handlers"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
	"github.com/optommarket/backend/internal/pkg/pdf"
)

// Services are the domain services the routes dispatch to
type Services struct {
	Products   *product.Service
	Carts      *cart.Service
	Discounts  *discount.Service
	Orders     *order.Service
	Users      *user.Service
	Favorites  *favorite.Service
	Blog       *blog.Service
	Chat       *chat.Service
	Activities *activity.Recorder
	Reports    *report.Service
	Uploads    *upload.Service
	Invoices   *pdf.Service
}

// SetupRoutes registers every /api route. All routes see the cart session
// and, when a valid token is sent, the signed-in user.
func SetupRoutes(api *gin.RouterGroup, svc *Services, authn *middleware.Authenticator, cfg *config.Config, log *logrus.Logger) {
	api.Use(middleware.CartSession(cfg), authn.OptionalAuth())

	SetupCatalogRoutes(api, svc, log)
	SetupCartRoutes(api, svc, log)
	SetupOrderRoutes(api, svc, log)
	SetupAuthRoutes(api, svc, authn, cfg, log)
	SetupContentRoutes(api, svc, authn, log)

	admin := api.Group("/admin")
	admin.Use(authn.AdminAuth())
	SetupAdminRoutes(admin, svc, log)
}

// SetupCatalogRoutes sets up category and product routes
func SetupCatalogRoutes(rg *gin.RouterGroup, svc *Services, log *logrus.Logger) {
	categoryHandler := handlers.NewCategoryHandler(svc.Products, log)
	productHandler := handlers.NewProductHandler(svc.Products, log)

	rg.GET("/categories", categoryHandler.GetCategories)
	rg.GET("/categories/:slug", categoryHandler.GetCategory)
	rg.GET("/products", productHandler.GetProducts)
	rg.GET("/products/:slug", productHandler.GetProduct)
}

// SetupCartRoutes sets up the session cart and discount preview routes
func SetupCartRoutes(rg *gin.RouterGroup, svc *Services, log *logrus.Logger) {
	cartHandler := handlers.NewCartHandler(svc.Carts, log)
	discountHandler := handlers.NewDiscountHandler(svc.Discounts, svc.Orders, log)

	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("", cartHandler.AddToCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.PUT("/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/:id", cartHandler.RemoveFromCart)
	}

	rg.POST("/discounts/apply", discountHandler.ApplyDiscount)
}

// SetupOrderRoutes sets up checkout and order lookup routes. Guests reach
// the orders placed from their cart session.
func SetupOrderRoutes(rg *gin.RouterGroup, svc *Services, log *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(svc.Orders, svc.Invoices, log)

	orders := rg.Group("/orders")
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/invoice", orderHandler.GetInvoice)
	}
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, svc *Services, authn *middleware.Authenticator, cfg *config.Config, log *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(svc.Users, cfg, log)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authn.RequireAuth(), authHandler.Me)
	}
}

// SetupContentRoutes sets up favorites, blog, chat and tracking routes
func SetupContentRoutes(rg *gin.RouterGroup, svc *Services, authn *middleware.Authenticator, log *logrus.Logger) {
	favoriteHandler := handlers.NewFavoriteHandler(svc.Favorites, log)
	blogHandler := handlers.NewBlogHandler(svc.Blog, log)
	chatHandler := handlers.NewChatHandler(svc.Chat, log)
	activityHandler := handlers.NewActivityHandler(svc.Activities)

	favorites := rg.Group("/favorites")
	favorites.Use(authn.RequireAuth())
	{
		favorites.GET("", favoriteHandler.ListFavorites)
		favorites.POST("", favoriteHandler.AddFavorite)
		favorites.DELETE("/:productId", favoriteHandler.RemoveFavorite)
	}

	rg.GET("/blog", blogHandler.ListPosts)
	rg.GET("/blog/:slug", blogHandler.GetPost)

	rg.POST("/chat/messages", chatHandler.SendMessage)
	rg.GET("/chat/messages", chatHandler.GetMessages)

	rg.POST("/activities", activityHandler.Track)
}

// SetupAdminRoutes sets up admin-only routes. The group is already behind AdminAuth.
func SetupAdminRoutes(admin *gin.RouterGroup, svc *Services, log *logrus.Logger) {
	categoryHandler := handlers.NewCategoryHandler(svc.Products, log)
	productHandler := handlers.NewProductHandler(svc.Products, log)
	discountHandler := handlers.NewDiscountHandler(svc.Discounts, svc.Orders, log)
	orderHandler := handlers.NewOrderHandler(svc.Orders, svc.Invoices, log)
	blogHandler := handlers.NewBlogHandler(svc.Blog, log)
	chatHandler := handlers.NewChatHandler(svc.Chat, log)
	userHandler := handlers.NewUserAdminHandler(svc.Users, log)
	uploadHandler := handlers.NewUploadHandler(svc.Uploads, log)
	reportHandler := handlers.NewReportHandler(svc.Reports, log)

	categories := admin.Group("/categories")
	{
		categories.GET("", categoryHandler.AdminListCategories)
		categories.POST("", categoryHandler.CreateCategory)
		categories.PUT("/:id", categoryHandler.UpdateCategory)
		categories.DELETE("/:id", categoryHandler.DeleteCategory)
	}

	products := admin.Group("/products")
	{
		products.GET("", productHandler.AdminListProducts)
		products.GET("/:id", productHandler.AdminGetProduct)
		products.POST("", productHandler.CreateProduct)
		products.PUT("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}

	discounts := admin.Group("/discounts")
	{
		discounts.GET("", discountHandler.ListDiscounts)
		discounts.POST("", discountHandler.CreateDiscount)
		discounts.PUT("/:id", discountHandler.UpdateDiscount)
		discounts.DELETE("/:id", discountHandler.DeleteDiscount)
	}

	orders := admin.Group("/orders")
	{
		orders.GET("", orderHandler.AdminListOrders)
		orders.GET("/:id", orderHandler.AdminGetOrder)
		orders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
		orders.PUT("/:id/payment-status", orderHandler.UpdatePaymentStatus)
	}

	posts := admin.Group("/blog")
	{
		posts.GET("", blogHandler.AdminListPosts)
		posts.POST("", blogHandler.CreatePost)
		posts.PUT("/:id", blogHandler.UpdatePost)
		posts.DELETE("/:id", blogHandler.DeletePost)
	}

	chatGroup := admin.Group("/chat")
	{
		chatGroup.GET("", chatHandler.AdminListMessages)
		chatGroup.POST("/reply", chatHandler.Reply)
		chatGroup.PUT("/:sessionId/read", chatHandler.MarkRead)
	}

	users := admin.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.PUT("/:id/role", userHandler.UpdateUserRole)
	}

	admin.POST("/uploads", uploadHandler.UploadImage)

	reports := admin.Group("/reports")
	{
		reports.GET("/summary", reportHandler.Summary)
		reports.GET("/user-activity", reportHandler.UserActivity)
		reports.GET("/sales", reportHandler.Sales)
		reports.GET("/sales/export", reportHandler.ExportSales)
		reports.GET("/popular-products", reportHandler.PopularProducts)
		reports.GET("/search-terms", reportHandler.SearchTerms)
	}
}

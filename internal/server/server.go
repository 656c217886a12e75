// Package server wires services, handlers and middleware into the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"spendwise/internal/config"
	"spendwise/internal/handlers"
	"spendwise/internal/middleware"
	"spendwise/internal/services"

	_ "spendwise/internal/docs" // Import swagger docs
)

// Services holds every service the router exposes.
type Services struct {
	Users      services.UserServicer
	Categories services.CategoryServicer
	Expenses   services.ExpenseServicer
	Analytics  services.AnalyticsServicer
	Reports    services.ReportServicer
	Digests    services.DigestServicer
}

// NewServices builds the service graph on db. The analytics service is
// subscribed to notifier so cached dashboards are dropped after writes.
func NewServices(db *gorm.DB, cfg *config.Config, notifier *services.ChangeNotifier, publisher services.DigestPublisher, now services.Clock) *Services {
	categories := services.NewCategoryService(db, notifier)
	expenses := services.NewExpenseService(db, categories, notifier)

	userOpts := []services.UserOption{
		services.WithDefaultCurrency(cfg.DefaultCurrency),
		services.WithUserClock(now),
		services.WithUserNotifier(notifier),
	}
	if cfg.SeedSampleExpenses {
		userOpts = append(userOpts, services.WithSampleExpenses(expenses))
	}
	users := services.NewUserService(db, userOpts...)

	analytics := services.NewAnalyticsService(expenses, categories, users,
		services.WithClock(now),
		services.WithLocation(cfg.Location),
		services.WithDashboardCache(cfg.DashboardCacheSize, cfg.DashboardCacheTTL),
	)
	notifier.Subscribe(analytics)

	return &Services{
		Users:      users,
		Categories: categories,
		Expenses:   expenses,
		Analytics:  analytics,
		Reports:    services.NewReportService(expenses, categories, users, now),
		Digests:    services.NewDigestService(users, expenses, categories, publisher, now, cfg.Location),
	}
}

// NewRouter builds the gin engine with all routes.
func NewRouter(cfg *config.Config, svc *Services) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	digestHandler := handlers.NewDigestHandler(svc.Digests)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Internal job routes
	internal := v1.Group("/internal", middleware.APIKeyMiddleware(cfg.PipelineAPIKey))
	internal.POST("/digests/run", digestHandler.RunMonthlyDigest)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/preferences", authHandler.UpdatePreferences)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetUserExpenses)
	expenses.GET("/:id", expenseHandler.GetExpenseByID)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	analytics := protected.Group("/analytics")
	analytics.GET("/dashboard", analyticsHandler.GetDashboard)
	analytics.GET("/summary", analyticsHandler.GetSummary)
	analytics.GET("/trends", analyticsHandler.GetTrends)
	analytics.GET("/month-over-month", analyticsHandler.GetMonthOverMonth)

	reports := protected.Group("/reports")
	reports.GET("", reportHandler.GetReport)
	reports.GET("/export", reportHandler.ExportCSV)

	return router
}

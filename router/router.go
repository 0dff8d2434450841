package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/controllers"
	"github.com/kendall-kelly/printshop-api/metrics"
	"github.com/kendall-kelly/printshop-api/middleware"
	"go.uber.org/zap"
)

// SetupRouter builds the HTTP API. m may be nil, in which case no metrics are recorded or exposed.
func SetupRouter(cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(gin.CustomRecovery(recovery))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(zap.L()))
	r.Use(m.Middleware())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "Route not found"},
		})
	})

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)
		v1.POST("/auth/login", controllers.Login)
		v1.POST("/auth/logout", controllers.Logout)
	}

	staff := v1.Group("")
	staff.Use(middleware.EnsureValidSession(cfg), middleware.LoadCurrentUser())
	{
		staff.GET("/auth/me", controllers.Me)
		staff.GET("/dashboard", controllers.Dashboard)
		staff.GET("/search", controllers.Search)

		staff.GET("/customers", controllers.ListCustomers)
		staff.POST("/customers", controllers.CreateCustomer)
		staff.GET("/customers/:id", controllers.GetCustomer)
		staff.PUT("/customers/:id", controllers.UpdateCustomer)

		staff.GET("/products", controllers.ListProducts)
		staff.GET("/products/:id", controllers.GetProduct)
		staff.POST("/products", controllers.CreateProduct)
		staff.PUT("/products/:id", controllers.UpdateProduct)
		staff.GET("/materials", controllers.ListMaterials)
		staff.GET("/materials/:id", controllers.GetMaterial)
		staff.POST("/materials", controllers.CreateMaterial)
		staff.PUT("/materials/:id", controllers.UpdateMaterial)
		staff.POST("/materials/:id/stock", controllers.UpdateMaterialStock)

		staff.GET("/orders", controllers.ListOrders)
		staff.POST("/orders", controllers.CreateOrder)
		staff.POST("/orders/quotes", controllers.CreateQuote)
		staff.GET("/orders/:id", controllers.GetOrder)
		staff.PUT("/orders/:id", controllers.UpdateOrder)
		staff.POST("/orders/:id/approve", controllers.ApproveOrder)
		staff.POST("/orders/:id/deliver", controllers.DeliverOrder)
		staff.POST("/orders/:id/cancel", controllers.CancelOrder)
		staff.POST("/orders/:id/jobs", controllers.AddJob)
		staff.POST("/orders/:id/invoices", controllers.CreateInvoice)

		staff.GET("/jobs/:id", controllers.GetJob)
		staff.PUT("/jobs/:id", controllers.UpdateJob)
		staff.GET("/jobs/:id/artwork", controllers.GetJobArtwork)
		staff.GET("/jobs/:id/events", controllers.GetJobEvents)
		staff.POST("/jobs/:id/notes", controllers.AddJobNote)
		staff.POST("/jobs/:id/status", controllers.UpdateJobStatus)
		staff.POST("/jobs/:id/schedule", controllers.ScheduleJob)
		staff.POST("/jobs/:id/complete", controllers.CompleteJob)
		staff.POST("/jobs/:id/quality-check", controllers.QualityCheckJob)
		staff.POST("/jobs/:id/materials", controllers.RecordMaterialUsage)

		staff.GET("/production/board", controllers.ProductionBoard)
		staff.GET("/production/schedule", controllers.ProductionSchedule)

		staff.GET("/invoices", controllers.ListInvoices)
		staff.GET("/invoices/dashboard", controllers.InvoiceDashboard)
		staff.GET("/invoices/:id", controllers.GetInvoice)
		staff.PUT("/invoices/:id", controllers.UpdateInvoice)
		staff.POST("/invoices/:id/payments", controllers.RecordPayment)
		staff.POST("/invoices/:id/send", controllers.SendInvoice)
		staff.POST("/invoices/:id/overdue", controllers.MarkInvoiceOverdue)
		staff.POST("/invoices/:id/cancel", controllers.CancelInvoice)

		staff.GET("/reports/orders", controllers.OrderReport)
		staff.GET("/reports/production", controllers.ProductionReport)
		staff.GET("/reports/invoices", controllers.InvoiceReport)

		staff.GET("/uploads/*key", controllers.GetUploadedArtwork)
	}

	admin := staff.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", controllers.ListUsers)
		admin.POST("/users", controllers.CreateUser)
		admin.GET("/users/:id", controllers.GetUser)
		admin.POST("/users/:id/password", controllers.ResetUserPassword)
		admin.POST("/users/:id/activate", controllers.ActivateUser)
		admin.POST("/users/:id/deactivate", controllers.DeactivateUser)

		admin.DELETE("/products/:id", controllers.DeleteProduct)
		admin.DELETE("/materials/:id", controllers.DeleteMaterial)

		admin.DELETE("/jobs/:id", controllers.DeleteJob)
		admin.POST("/invoices/mark-overdue", controllers.SweepOverdueInvoices)
	}

	return r
}

func recovery(c *gin.Context, recovered interface{}) {
	zap.L().Error("panic recovered",
		zap.Any("panic", recovered),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString("request_id")))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   gin.H{"code": "INTERNAL_ERROR", "message": "An unexpected error occurred"},
	})
}

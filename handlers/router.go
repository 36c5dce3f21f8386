package handlers

import (
	"net/http"

	"github.com/createwith/invoicepdf/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the invoice routes behind CORS, request ids and request
// logging.
func NewRouter(invoices *InvoiceHandler, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS())

	router.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not found")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "invoicepdf",
		})
	})

	router.POST("/", invoices.GeneratePDF)

	api := router.Group("/api/v1/invoices")
	{
		api.POST("/pdf", invoices.GeneratePDF)
		api.POST("/preview", invoices.Preview)
		api.POST("/markdown", invoices.Markdown)
	}

	return router
}

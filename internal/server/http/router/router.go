package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tgreer/familysite/internal/metrics"
	"github.com/tgreer/familysite/internal/server/http/handlers"
	"github.com/tgreer/familysite/internal/server/http/middleware"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Setup configures gin router with handlers and middleware.
func Setup(
	facade handlers.PaymentsFacade,
	verifier handlers.SignatureVerifier,
	recorder *metrics.Recorder,
	health HealthChecker,
	logger *slog.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	webhookHandler := handlers.NewWebhookHandler(facade, verifier, recorder, logger)
	orderHandler := handlers.NewOrderHandler(facade)
	duesHandler := handlers.NewDuesHandler(facade)
	donationHandler := handlers.NewDonationHandler(facade)

	engine.POST("/webhooks/square", webhookHandler.Receive)

	engine.GET("/healthz", func(c *gin.Context) {
		if err := health.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{})))

	api := engine.Group("/api")

	// Donations are guest-allowed; a valid session just links the donation.
	donations := api.Group("/donations")
	donations.Use(middleware.AuthOptional(facade))
	donations.POST("", donationHandler.Create)
	donations.GET("/:id", donationHandler.Get)
	donations.POST("/:id/confirm", donationHandler.Confirm)

	member := api.Group("")
	member.Use(middleware.AuthRequired(facade))
	member.POST("/orders", orderHandler.Create)
	member.GET("/orders/:id", orderHandler.Get)
	member.POST("/orders/:id/confirm", orderHandler.Confirm)
	member.POST("/dues/batches", duesHandler.CreateBatch)
	member.POST("/dues/batches/:batchID/confirm", duesHandler.ConfirmBatch)
	member.GET("/dues", duesHandler.ListYear)
	member.POST("/admin/dues", duesHandler.RecordManual)

	return engine
}

// Package dashboard serves the kiosk and staff JSON API.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickoil/kiosk/internal/messenger"
	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
)

// SlipCreator posts settlement slips for a completed order. Implemented by
// the erp client and by test doubles.
type SlipCreator interface {
	CreateSalesSlip(db *gorm.DB, o *models.Order) (string, error)
}

// StartOpts holds configuration for the API server. ERP and Sender are
// optional: when nil, order completion skips settlement and notification.
type StartOpts struct {
	DB     *gorm.DB
	Port   int
	Out    io.Writer
	ERP    SlipCreator
	Sender messenger.Sender
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("dashboard: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Kiosk API running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

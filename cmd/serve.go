package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/createwith/invoicepdf/compose"
	"github.com/createwith/invoicepdf/config"
	"github.com/createwith/invoicepdf/handlers"
	"github.com/createwith/invoicepdf/models"
	"github.com/createwith/invoicepdf/normalize"
	"github.com/createwith/invoicepdf/render"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var flagPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the invoice HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagPort, "port", "", "Listen port (default: $PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagPort != "" {
		cfg.Port = flagPort
	}

	log, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	engine, err := render.New(cfg.RenderEngine, render.Options{
		BrowserURL:  cfg.BrowserURL,
		BrowserBin:  cfg.BrowserBin,
		NoSandbox:   cfg.NoSandbox,
		Concurrency: cfg.RenderConcurrency,
	})
	if err != nil {
		return fmt.Errorf("starting %s render engine: %w", cfg.RenderEngine, err)
	}
	defer engine.Close()

	org := models.DefaultOrganization()
	invoices := handlers.NewInvoiceHandler(handlers.InvoiceHandlerOptions{
		Normalizer:    normalize.New(org),
		Composer:      compose.New(org.Brand),
		PDF:           engine,
		Markdown:      render.NewMarkdownEngine(),
		RenderTimeout: cfg.RenderTimeout,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		Logger:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(invoices, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).WithField("engine", cfg.RenderEngine).Info("starting invoice API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

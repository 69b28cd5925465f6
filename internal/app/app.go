// Package app wires the storefront together and runs the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aym0707/storefront/internal/cart"
	"github.com/aym0707/storefront/internal/catalog"
	"github.com/aym0707/storefront/internal/checkout"
	"github.com/aym0707/storefront/internal/httpapi"
	"github.com/aym0707/storefront/internal/localstore"
	"github.com/aym0707/storefront/internal/search"
	"github.com/aym0707/storefront/internal/share"
	"github.com/aym0707/storefront/internal/upstream"
	"github.com/aym0707/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	kv, err := localstore.Open(cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "open local store")
	}

	source := upstream.NewClient(upstream.Config{
		BaseURL:    cfg.Source.BaseURL,
		BaseID:     cfg.Source.BaseID,
		Table:      cfg.Source.Table,
		APIKey:     cfg.Source.APIKey,
		MaxRecords: cfg.Source.MaxRecords,
	})

	store := catalog.NewStore(source, kv, lg.Named("catalog"))
	ledger := cart.NewLedger(store, kv, lg.Named("cart"))
	idx := search.NewIndex(store)
	finalizer := checkout.NewFinalizer(store, ledger, lg.Named("checkout"))
	builder := share.NewBuilder(cfg.WhatsAppNumber)

	// Initial load is best-effort; the snapshot fallback inside Load covers
	// an offline start, and /api/products/refresh can retry later.
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Source.FetchTimeout)
	if err := store.Load(loadCtx); err != nil {
		lg.Warn("initial catalog load failed", zap.Error(err))
	}
	cancel()

	h := httpapi.NewHandler(
		httpapi.Config{RefreshTimeout: cfg.Source.FetchTimeout},
		store, ledger, idx, finalizer, builder,
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(h.Routes(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
			}),
			httpmiddleware.RateLimit(httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.LogRequests(),
		),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"pesantren/internal/actions"
	"pesantren/internal/auth"
	"pesantren/internal/cache"
	"pesantren/internal/cms"
	"pesantren/internal/config"
	"pesantren/internal/database"
	"pesantren/internal/handlers"
	"pesantren/internal/middleware"
	"pesantren/internal/reader"
	"pesantren/internal/revalidate"
	"pesantren/internal/router"
	"pesantren/internal/sections"
	"pesantren/internal/session"
	"pesantren/internal/settings"
	"pesantren/internal/slug"
	"pesantren/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Connect to PostgreSQL.
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db, database.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			return err
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	pageStore := store.NewPageStore(db)
	sectionStore := store.NewSectionStore(db)
	settingStore := store.NewSiteSettingStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	site, err := settings.Load(ctx, settingStore)
	if err != nil {
		return err
	}

	registry := sections.NewRegistry()
	publicSections := sectionSource(cfg, sectionStore)
	resolver := sections.NewResolver(publicSections, registry)

	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	service := actions.New(actions.Deps{
		Posts:      postStore,
		Categories: categoryStore,
		Pages:      pageStore,
		Sections:   sectionStore,
		Settings:   settingStore,
		Site:       site,
		Registry:   registry,
		Signal:     revalidate.NewCache(pageCache, cacheLogStore),
	})

	slugChecker := slug.NewChecker(store.NewSlugStore(db), cfg.SlugCheckDelay)
	defer slugChecker.Close()

	// Login attempts are counted in Valkey so limits hold across instances.
	loginLimiter := middleware.NewRateLimiter(middleware.NewValkeyCounter(valkeyClient), "ratelimit:login:", 10, time.Minute)

	rd := reader.New(postStore, categoryStore, pageStore, publicSections, resolver, site)

	r := router.New(router.Deps{
		Sessions: sessionStore,
		Tokens:   tokens,
		Public:   handlers.NewPublic(rd, pageCache),
		Auth:     handlers.NewAuth(userStore, sessionStore, tokens),
		Admin: handlers.NewAdmin(handlers.AdminDeps{
			Writer:     service,
			Posts:      postStore,
			Categories: categoryStore,
			Pages:      pageStore,
			Sections:   sectionStore,
			Users:      userStore,
			CacheLog:   cacheLogStore,
			Slugs:      slugChecker,
			Settings:   site,
		}),
		LoginLimiter:  loginLimiter,
		SecureCookies: secureCookies,
	})

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown: wait for the signal context, then drain connections.
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// publicSectionSource serves both keyed lookups and per-page listings.
type publicSectionSource interface {
	sections.Fetcher
	reader.SectionSource
}

// sectionSource picks where the public site reads sections from. Admin
// writes always go to the database.
func sectionSource(cfg *config.Config, db *store.SectionStore) publicSectionSource {
	if cfg.SectionSource != "cms" {
		return db
	}
	client := cms.NewClient(cms.Config{
		ProjectID:  cfg.CMSProjectID,
		Dataset:    cfg.CMSDataset,
		APIVersion: cfg.CMSAPIVersion,
		Token:      cfg.CMSToken,
	})
	slog.Info("sections served from headless cms", "project", cfg.CMSProjectID, "dataset", cfg.CMSDataset)
	return cms.NewSectionSource(client)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livebait-directory/cache"
	"livebait-directory/database"
	"livebait-directory/handlers"
	"livebait-directory/importer"
	"livebait-directory/regions"
	"livebait-directory/routes"
	"livebait-directory/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the directory API and admin import endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe()
		},
	}
}

func (a *app) runServe() error {
	db, err := a.connect(true)
	if err != nil {
		return err
	}
	defer closeDB(db, a.log)

	if err := a.migrate(db); err != nil {
		return err
	}
	resolver := regions.Default()
	if _, err := database.SeedRegions(db, resolver, a.log); err != nil {
		return withCode(exitDB, err)
	}

	issuer, err := utils.NewTokenIssuer(a.cfg.JWTSecret)
	if err != nil {
		return withCode(exitConfig, err)
	}

	responseCache := cache.New(cache.Config{
		Address:  a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	}, a.log)

	imports := &handlers.ImportHandler{
		Importer:  importer.New(database.NewGormStore(db), resolver, importer.DefaultOptions(), a.log),
		Jobs:      utils.NewJobStore(),
		Delimiter: a.cfg.Delimiter,
		Log:       a.log,
	}
	imports.OnComplete = func(id uuid.UUID, res importer.Result) {
		if job, ok := imports.Jobs.GetJob(id); ok {
			a.notifyImport(job.FileName, res, time.Since(job.StartedAt))
		}
	}

	r := gin.Default()

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	origins := a.cfg.FrontendURLs
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
		a.log.Warn("No CORS origins configured, defaulting to http://localhost:3000")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	stopLimiters := routes.SetupRoutes(r, routes.Handlers{
		Directory: &handlers.DirectoryHandler{DB: db, Cache: responseCache, SiteURL: a.cfg.SiteURL, Log: a.log},
		Auth: &handlers.AuthHandler{
			AdminEmail:        a.cfg.AdminEmail,
			AdminPasswordHash: a.cfg.AdminPasswordHash,
			Issuer:            issuer,
			Log:               a.log,
		},
		Imports: imports,
	}, issuer, a.log)
	defer stopLimiters()

	srv := &http.Server{
		Addr:    ":" + a.cfg.Port,
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.WithField("port", a.cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return errors.Wrap(err, "start server")
	}
	a.log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}

	// A running batch finishes before the database closes.
	imports.Wait()
	a.log.Info("Server exited gracefully")
	return nil
}

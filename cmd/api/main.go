package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/ai"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/auth"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/cache"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/config"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/database"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/handlers"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/middleware"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/observability"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/registration"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/repository"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/session"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/storage"
	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/storefront"
)

// tenantWriter junta os dois repositórios que o cadastro escreve.
type tenantWriter struct {
	*repository.CompanyRepository
	*repository.ProfileRepository
}

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	dbManager := database.NewManager(cfg, logger)
	if err := dbManager.InitPool(ctx); err != nil {
		logger.Fatal("failed to initialize database pool", zap.Error(err))
	}
	if err := dbManager.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}
	pool := dbManager.Pool()

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to initialize redis client", zap.Error(err))
	}

	driver, err := storage.NewDriver(&cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize storage driver", zap.Error(err))
	}
	media := storage.NewMediaStore(driver)

	// Repositórios
	companyRepo := repository.NewCompanyRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	// Colaboradores
	authSvc := auth.NewService(pool, redisClient, &cfg.Auth, logger)
	resolver := &session.Resolver{Profiles: profileRepo, Companies: companyRepo, Logger: logger}
	analyzer := ai.NewGeminiClient(&cfg.AI, logger)
	storeResolver := storefront.NewResolver(companyRepo, productRepo, redisClient, logger)
	provisioner := registration.NewProvisioner(authSvc, companyRepo, &tenantWriter{companyRepo, profileRepo}, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc, resolver)
	regHandler := handlers.NewRegistrationHandler(provisioner)
	setupHandler := handlers.NewSetupHandler(authSvc, profileRepo, &cfg.Setup, logger)
	storeHandler := handlers.NewStorefrontHandler(storeResolver)
	productHandler := handlers.NewProductHandler(productRepo, media, analyzer, logger)
	companyHandler := handlers.NewCompanyHandler(companyRepo, profileRepo, media, redisClient, logger)
	appHandler := handlers.NewAppHandler(authSvc, resolver, pool, redisClient)

	engine := setupRouter(cfg, authSvc, resolver,
		authHandler, regHandler, setupHandler, storeHandler, productHandler, companyHandler, appHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	dbManager.Close()
	redisClient.Close()

	logger.Info("server exited")
}

func setupRouter(
	cfg *config.Config,
	authSvc *auth.Service,
	resolver *session.Resolver,
	authHandler *handlers.AuthHandler,
	regHandler *handlers.RegistrationHandler,
	setupHandler *handlers.SetupHandler,
	storeHandler *handlers.StorefrontHandler,
	productHandler *handlers.ProductHandler,
	companyHandler *handlers.CompanyHandler,
	appHandler *handlers.AppHandler,
) *gin.Engine {
	engine := gin.Default()

	engine.GET("/health", appHandler.Health)

	// Uploads locais servidos como estáticos em desenvolvimento.
	if cfg.Storage.Driver == "local" || cfg.Storage.Driver == "" {
		engine.Static("/uploads", cfg.Storage.UploadsPath)
	}

	// Rotas públicas
	public := engine.Group("/api")
	{
		public.POST("/auth/login", authHandler.Login)
		public.POST("/registration/check-subdomain", regHandler.CheckSubdomain)
		public.POST("/registration/signup", regHandler.Signup)
		public.POST("/setup/master", setupHandler.SetupMaster)
		public.GET("/loja/:subdomain", storeHandler.Show)
		public.GET("/resolve", appHandler.Resolve)
	}

	// Rotas autenticadas
	protected := engine.Group("/api")
	protected.Use(middleware.RequireAuth(authSvc, resolver))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		// Painel do tenant
		tenant := protected.Group("")
		tenant.Use(middleware.RequireTenant())
		{
			tenant.GET("/products", productHandler.List)
			tenant.POST("/products", productHandler.Create)
			tenant.POST("/products/analyze", productHandler.Analyze)
			tenant.PUT("/products/:id", productHandler.Update)
			tenant.DELETE("/products/:id", productHandler.Delete)
			tenant.POST("/products/:id/recycle", productHandler.Recycle)

			tenant.PUT("/company/settings", companyHandler.UpdateSettings)
			tenant.POST("/company/logo", companyHandler.UploadLogo)
			tenant.POST("/company/hero", companyHandler.UploadHero)
		}

		// Painel do super admin
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireSuperAdmin())
		{
			admin.GET("/companies", companyHandler.ListCompanies)
			admin.PUT("/companies/:id/status", companyHandler.UpdateStatus)
			admin.GET("/companies/:id/profiles", companyHandler.ListProfiles)
		}
	}

	return engine
}

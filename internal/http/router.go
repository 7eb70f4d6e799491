package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/movepost/movepost/internal/auth"
	"github.com/movepost/movepost/internal/config"
	"github.com/movepost/movepost/internal/http/handlers"
	"github.com/movepost/movepost/internal/http/middlewares"
	"github.com/movepost/movepost/internal/observability"
	"github.com/movepost/movepost/internal/onboarding"
	"github.com/movepost/movepost/internal/postgrid"
	"github.com/movepost/movepost/internal/profile"
	"github.com/movepost/movepost/internal/repo/postgres"
	"github.com/movepost/movepost/internal/session"
)

func NewRouter(cfg config.Config, pool *pgxpool.Pool, markers *session.Store) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("movepost-api"))

	// health + metrics

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up repositories

	usersRepo := postgres.NewUsersRepo(pool)
	profilesRepo := postgres.NewProfilesRepo(pool, prom)
	campaignsRepo := postgres.NewCampaignsRepo(pool, prom)
	recipientsRepo := postgres.NewRecipientsRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)

	// services

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	profileSvc := profile.NewService(profilesRepo)
	onboardingSvc := onboarding.NewService(profilesRepo)

	gateway := postgrid.NewClient(postgrid.Config{
		BaseURL: cfg.PostGridBaseURL,
		APIKey:  cfg.PostGridAPIKey,
	})
	gateway.SetObserver(prom.ObserveVendor)

	// handlers

	authHandler := handlers.NewAuthHandler(usersRepo, profilesRepo, markers, jwtManager, refreshRepo, cfg)
	profileHandler := handlers.NewProfileHandler(profileSvc)
	postcardsHandler := handlers.NewPostcardsHandler(gateway, campaignsRepo, recipientsRepo)
	oauthHandler := handlers.NewOAuthHandler(jwtManager, onboardingSvc)
	adminSessionHandler := handlers.NewAdminSessionHandler(markers)

	authMW := middlewares.NewAuthMiddleware(jwtManager)
	adminGuard := middlewares.NewAdminGuard(profilesRepo, refreshRepo, markers)

	authLimiter := middlewares.NewRateLimiter(20, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/oauth/complete", oauthHandler.Complete)
	}

	me := r.Group("/me")
	me.Use(authMW.RequireAuth())
	{
		me.GET("/profile", profileHandler.GetProfile)
		me.PATCH("/profile", profileHandler.UpdateProfile)
	}

	// admin console: role and blocked flag re-checked on every request
	admin := r.Group("/admin")
	admin.Use(authMW.RequireAuth(), adminGuard.RequireAdmin())
	{
		admin.GET("/session", adminSessionHandler.Get)
		admin.GET("/postcards", postcardsHandler.List)
		admin.POST("/postcards", postcardsHandler.Send)
		admin.GET("/postcards/:id", postcardsHandler.Get)
		admin.DELETE("/postcards/:id", postcardsHandler.Cancel)
		admin.POST("/postcards/:id/progressions", postcardsHandler.Progress)
		admin.GET("/postgrid/health", postcardsHandler.VendorHealth)
	}

	return r
}

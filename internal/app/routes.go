package app

import (
	"esiapp/internal/auth"
	"esiapp/internal/cache"
	"esiapp/internal/config"
	"esiapp/internal/handlers"
	"esiapp/internal/mail"
	"esiapp/internal/otp"
	"esiapp/internal/repo"
	"esiapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	_ "esiapp/docs"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, notifier mail.Notifier, log *zap.Logger) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api")

	tokens := auth.NewJWTManager([]byte(cfg.JWT.Secret), cfg.JWT.TTL.Duration())
	hasher := auth.NewBcryptHasher(0)
	otpIssuer := otp.NewIssuer(cfg.OTP.TTL.Duration())

	userRepo := repo.NewPGUserRepo(db)
	authSvc := service.NewAuthService(userRepo, hasher, otpIssuer, tokens, notifier, log)
	authHandler := handlers.NewAuthHandler(authSvc)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireAuth(tokens))

	userSvc := service.NewUserService(userRepo)
	userHandler := handlers.NewUserHandler(userSvc)
	registerUserRoutes(protected, userHandler)

	ledgerRepo := repo.NewPGLedgerRepo(db)
	ledgerCache := cache.NewLedgerCache(rdb, cfg.Redis.DefaultTTL.Duration())
	ledgerSvc := service.NewLedgerService(ledgerRepo, ledgerCache)
	dataHandler := handlers.NewDataHandler(ledgerSvc)
	registerDataRoutes(protected, dataHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "ESI Backend API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/verify-otp", h.VerifyOTP)
	api.POST("/auth/resend-otp", h.ResendOTP)
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler) {
	api.GET("/users/me", h.Me)
	api.PUT("/users/updatedetails", h.UpdateDetails)
}

func registerDataRoutes(api *gin.RouterGroup, h *handlers.DataHandler) {
	api.GET("/data", h.Get)
	api.POST("/data", h.Create)
	api.PUT("/data/edit", h.Edit)
	api.PUT("/data/reset/:numberKey", h.Reset)
	api.DELETE("/data/delete/:numberKey", h.DeleteKey)
	api.GET("/data/:id", h.GetByID)
	api.PUT("/data/:id", h.Update)
	api.DELETE("/data/:id", h.Delete)
}

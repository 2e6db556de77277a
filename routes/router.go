package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mediavault/mediavault/config"
	"github.com/mediavault/mediavault/controllers"
	"github.com/mediavault/mediavault/middleware"
	"github.com/mediavault/mediavault/models"
	"github.com/mediavault/mediavault/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, cfg config.AppConfig) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Access log goes to its own rolling file when configured, otherwise to
	// the application logger.
	accessLogger := utils.Logger
	if cfg.AccessLogPath != "" {
		if gl, err := utils.NewRollingFileLogger(cfg.AccessLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
			accessLogger = gl
		}
	}
	if accessLogger != nil {
		r.Use(utils.Ginzap(accessLogger, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(accessLogger, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	tokens := utils.NewJWTManager(cfg.JWTSecret)
	users := models.NewIdentityStore(db, utils.BcryptHasher{})
	files := models.NewFileStore(db)

	authController := controllers.NewAuthController(users, tokens, cfg)
	fileController := controllers.NewFileController(users, files, cfg)

	limited := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)
	r.POST("/signup", limited, authController.Signup)
	r.POST("/login", limited, authController.Login)

	protected := r.Group("")
	protected.Use(middleware.AuthRequired(tokens))
	protected.POST("/upload", fileController.Upload)
	protected.GET("/files", fileController.ListFiles)
	protected.GET("/files/:storageKey", fileController.Download)

	return r
}

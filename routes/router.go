package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/datacite/datafiles-service/config"
	"github.com/datacite/datafiles-service/controllers"
	"github.com/datacite/datafiles-service/middleware"
	"github.com/datacite/datafiles-service/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, codec *utils.TokenCodec, mailer utils.Mailer, links utils.LinkIssuer) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Request logging goes to its own rolling file so the access log does
	// not drown the application log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	r.LoadHTMLGlob("templates/*.html")

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	datafileController := controllers.NewDatafileController(db, codec, mailer, links, cfg)

	r.GET("/", datafileController.Index)
	r.GET("/datafiles", datafileController.Index)
	r.GET("/datafiles/:slug", datafileController.Show)
	r.POST("/datafiles/:slug", middleware.SubmissionRateLimit(), datafileController.RequestAccess)
	r.GET("/datafiles/:slug/download", datafileController.Download)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.HTML(http.StatusNotFound, "error.html", gin.H{
			"code":    http.StatusNotFound,
			"status":  "Page not found",
			"message": "The page you requested does not exist",
		})
	})

	return r
}

package server

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/saferoute-app/saferoute-server/internal/apis"
	"github.com/saferoute-app/saferoute-server/internal/config"
	"github.com/saferoute-app/saferoute-server/internal/db/models"
	"github.com/saferoute-app/saferoute-server/internal/metrics"
	websocketControllers "github.com/saferoute-app/saferoute-server/internal/server/websocket"
	"github.com/saferoute-app/saferoute-server/internal/storage"
	"github.com/saferoute-app/saferoute-server/internal/utils"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type middlewareDeps struct {
	config    *config.Config
	db        *gorm.DB
	redis     *redis.Client
	maps      *apis.MapsClient
	metrics   *metrics.Metrics
	storage   storage.Storage
	navSocket *websocketControllers.NavigationSocket
}

func applyMiddleware(r *gin.Engine, deps middlewareDeps, otelComponent string) {
	r.Use(gin.Recovery())

	r.TrustedPlatform = "X-Real-IP"

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "authorization")
	corsConfig.AllowCredentials = true
	corsConfig.AllowWildcard = true
	if len(deps.config.HTTP.CORSHosts) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowOrigins = deps.config.HTTP.CORSHosts
	r.Use(cors.New(corsConfig))

	err := r.SetTrustedProxies(deps.config.HTTP.TrustedProxies)
	if err != nil {
		slog.Error("Failed to set trusted proxies", "error", err.Error())
	}

	r.Use(func(c *gin.Context) {
		c.Set("config", deps.config)
		c.Set("db", deps.db)
		c.Set("redis", deps.redis)
		c.Set("maps", deps.maps)
		c.Set("metrics", deps.metrics)
		c.Set("storage", deps.storage)
		c.Set("navSocket", deps.navSocket)
		c.Next()
	})

	if deps.config.HTTP.Tracing.Enabled {
		r.Use(otelgin.Middleware(otelComponent))
		r.Use(tracingProvider(deps.config))
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	r.Use(sloggin.NewWithConfig(logger, sloggin.Config{
		WithSpanID:        deps.config.HTTP.Tracing.Enabled,
		WithTraceID:       deps.config.HTTP.Tracing.Enabled,
		DefaultLevel:      slog.LevelInfo,
		ClientErrorLevel:  slog.LevelWarn,
		ServerErrorLevel:  slog.LevelError,
		WithRequestHeader: false,
	}))
}

func tracingProvider(config *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.HTTP.Tracing.OTLPEndpoint != "" {
			ctx := c.Request.Context()
			span := trace.SpanFromContext(ctx)
			if span.IsRecording() {
				span.SetAttributes(
					attribute.String("http.method", c.Request.Method),
					attribute.String("http.path", c.Request.URL.Path),
				)
			}
		}
		c.Next()
	}
}

// requireAuth verifies the user JWT and puts the user in the context.
func requireAuth(config *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if c.Query("access_token") != "" {
				authHeader = "JWT " + c.Query("access_token")
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
		}

		if !strings.HasPrefix(authHeader, "JWT ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		jwtString := strings.TrimPrefix(authHeader, "JWT ")

		db, ok := c.MustGet("db").(*gorm.DB)
		if !ok {
			slog.Error("Failed to get db from context")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}

		uid, err := utils.VerifyJWT(config.JWT.Secret, jwtString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := models.FindUserByID(db, uid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("user", &user)

		c.Next()
	}
}

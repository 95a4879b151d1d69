package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/campushub/api/internal/auth"
	"github.com/campushub/api/internal/config"
	"github.com/campushub/api/internal/domain/user"
	"github.com/campushub/api/internal/http/handlers"
	"github.com/campushub/api/internal/http/middlewares"
	"github.com/campushub/api/internal/observability"
	"github.com/campushub/api/internal/repo/mongodb"
)

const serviceName = "campushub-api"

func NewRouter(log *slog.Logger, database *mongo.Database, cfg config.Config, counterStore middlewares.CounterStore, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(prom.GinHandleMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// health
	ping := func() error {
		if database == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return database.Client().Ping(ctx, readpref.Primary())
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up the user surface
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	usersRepo := mongodb.NewUsersRepo(database, prom)
	usersHandler := handlers.NewUsersHandler(usersRepo, jwtManager, log)

	limiter := middlewares.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow(), counterStore, prom)

	users := r.Group("/users", limiter.Middleware(middlewares.KeyByIP))
	users.POST("", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin), usersHandler.CreateUser)
	users.POST("/login", usersHandler.Login)
	users.GET("/:userId", authMW.RequireAuth(), usersHandler.GetUserByID)

	return r
}

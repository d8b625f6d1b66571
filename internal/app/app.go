package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eventadmin/internal/cache"
	"eventadmin/internal/config"
	"eventadmin/internal/database"
	"eventadmin/internal/domain/event"
	"eventadmin/internal/domain/media"
	"eventadmin/internal/metrics"
	"eventadmin/internal/middleware"
	"eventadmin/internal/modules/events"
	"eventadmin/internal/modules/uploads"
	"eventadmin/internal/pkg/response"
)

// App owns the long-lived handles of the API process. Close releases them.
type App struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	db       *gorm.DB
	redis    *redis.Client
	listing  cache.Listing
	registry *media.Registry
	store    event.Store
}

// New connects to the database, optional Redis and the image host.
func New(cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, &event.Event{}); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	a := &App{cfg: cfg, log: log, db: db, listing: cache.Nop{}}

	if cfg.Redis.Enabled() {
		a.redis = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.redis.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable at startup, listing cache will retry per request")
		}
		a.listing = cache.NewRedisListing(a.redis, cfg.Redis.Prefix, cfg.Redis.CacheTTL)
	} else {
		log.Info("redis not configured, listing cache disabled")
	}

	var host media.Host = media.DisabledHost{}
	if cfg.Cloudinary.Enabled() {
		host, err = media.NewCloudinaryHost(media.CloudinaryOptions{
			CloudName:    cfg.Cloudinary.CloudName,
			UploadPreset: cfg.Cloudinary.UploadPreset,
			APIKey:       cfg.Cloudinary.APIKey,
			APISecret:    cfg.Cloudinary.APISecret,
			UploadPrefix: cfg.Cloudinary.UploadPrefix,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
	} else {
		log.Warn("cloudinary not configured, uploads will be rejected")
	}

	a.registry = media.NewRegistry(host, cfg.Upload.BatchTTL, log)
	a.store = event.NewRepository(db, a.listing, log)
	return a, nil
}

// Run starts the background workers. It returns when ctx is done.
func (a *App) Run(ctx context.Context) {
	go a.registry.Start(ctx, a.cfg.Upload.SweepInterval)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := metrics.UpdateDatabaseConnections(a.db); err != nil {
				a.log.WithError(err).Warn("updating connection gauge failed")
			}
		}
	}
}

// Router builds the gin engine with every route mounted.
func (a *App) Router() *gin.Engine {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestLogger(a.log),
		middleware.Metrics(),
		middleware.CORS(a.cfg.CORSAllowedOrigins),
	)

	r.GET("/healthz", a.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		svc := events.NewService(a.store, a.registry, a.log)
		events.NewHandler(svc, a.listing, a.log).RegisterRoutes(v1)
		uploads.NewHandler(a.registry, a.log).RegisterRoutes(v1)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	return r
}

func (a *App) health(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		a.log.WithError(err).Error("health check failed")
		response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", "Database unreachable")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("closing redis failed")
		}
	}
	if err := database.Close(a.db); err != nil {
		a.log.WithError(err).Warn("closing database failed")
	}
}

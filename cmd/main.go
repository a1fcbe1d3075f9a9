package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/devtrail/bootcamp-api/config"
	"github.com/devtrail/bootcamp-api/internal/container"
	"github.com/devtrail/bootcamp-api/internal/infrastructure/mongodb"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
	"github.com/devtrail/bootcamp-api/internal/router"
	"github.com/devtrail/bootcamp-api/pkg/geocoder"
	"github.com/devtrail/bootcamp-api/pkg/helpers"
	"github.com/devtrail/bootcamp-api/pkg/mailer"
	"github.com/devtrail/bootcamp-api/pkg/uploads"
	"github.com/devtrail/bootcamp-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB
	client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	// Redis (rate limiting)
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	// Upload store: local disk by default, GCS when configured
	var store uploads.Store
	switch cfg.UploadBackend {
	case "gcs":
		gcsClient, err := uploads.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
		store = uploads.NewGCSStore(gcsClient, cfg.GCSBucket)
	default:
		store = uploads.NewDiskStore(cfg.FileUploadPath)
	}

	// Elasticsearch is optional; without it search returns empty results
	if addrs := cfg.ElasticsearchAddrs; addrs != "" {
		es, err := helpers.NewESClient(splitCSV(addrs), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, search disabled")
		} else {
			container.SetES(es)
		}
	}

	// RabbitMQ email queue is optional; without it queued emails are skipped
	if pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue); err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable, queued emails disabled")
	} else {
		container.SetRabbitPub(pub)
		defer pub.Close()
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongo(client)
	container.SetMongoDB(db)
	container.SetRedis(rdb)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL))
	container.SetCookies(helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure))
	container.SetGeocoder(geocoder.New(cfg.GeocoderBaseURL))
	container.SetUploadStore(store)
	if cfg.MailgunAPIKey != "" {
		container.SetMailgun(mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender))
	} else {
		logger.Warn("mailgun not configured, password reset emails disabled")
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	// Uploaded photos are served as static files in the disk setup
	r.Static("/uploads", cfg.FileUploadPath)

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	recompute := router.InitModules(reg)
	reg.RegisterAll()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	recompute.Start(workerCtx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

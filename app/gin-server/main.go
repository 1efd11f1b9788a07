package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/cvstudio/config"
	"github.com/yoockh/cvstudio/internal/api/handlers"
	"github.com/yoockh/cvstudio/internal/api/middleware"
	"github.com/yoockh/cvstudio/internal/api/routes"
	"github.com/yoockh/cvstudio/internal/cache"
	"github.com/yoockh/cvstudio/internal/cvformat"
	"github.com/yoockh/cvstudio/internal/extract"
	"github.com/yoockh/cvstudio/internal/logger"
	"github.com/yoockh/cvstudio/internal/providers/llm"
	"github.com/yoockh/cvstudio/internal/render"
	"github.com/yoockh/cvstudio/internal/repositories"
	mongorepo "github.com/yoockh/cvstudio/internal/repositories/mongo"
	pgrepo "github.com/yoockh/cvstudio/internal/repositories/postgres"
	"github.com/yoockh/cvstudio/internal/services"
	"github.com/yoockh/cvstudio/internal/storage"
	"github.com/yoockh/cvstudio/internal/validator"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logrus.Fatalf("config load error: %v", err)
	}
	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	users, records, closeStore := initStore(ctx, cfg, log)
	defer closeStore()

	// Init Redis
	var c cache.Cache = cache.Noop{}
	rdb, err := config.InitRedis(ctx, cfg)
	switch {
	case err != nil:
		log.WithError(err).Warn("redis unavailable, caching disabled")
	case rdb != nil:
		defer rdb.Close()
		c = cache.NewRedisCache(rdb)
		log.Info("Redis connected")
	}

	provider, err := initProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("LLM provider init error: %v", err)
	}
	defer provider.Close()

	formatter, err := cvformat.NewLLMFormatter(provider, log)
	if err != nil {
		log.Fatalf("formatter init error: %v", err)
	}

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir error: %v", err)
	}

	var archive storage.Uploader
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcs.Close()
		archive = gcs
	}

	renderer := render.NewChrome(cfg.ChromePath, render.LoadAssets(cfg.AssetDir), log)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authSvc := services.NewAuthService(users, tokens, validator.New(), cfg.BcryptCost, log)
	uploadSvc := services.NewUploadService(extract.NewPDFExtractor(), formatter, records, files, archive, c, log)
	cvSvc := services.NewCVService(records, c, cfg.CacheTTL, renderer, log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.CORSOrigin))
	routes.RegisterRoutes(r, routes.Deps{
		Auth:   handlers.NewAuthHandler(authSvc),
		CV:     handlers.NewCVHandler(uploadSvc, cvSvc, files, cfg.MaxUploadMB, log),
		Tokens: tokens,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

func initStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (repositories.UserRepository, repositories.CVRecordRepository, func()) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := config.InitPostgres(cfg)
		if err != nil {
			log.Fatalf("PostgreSQL init error: %v", err)
		}
		if err := pgrepo.Migrate(db); err != nil {
			log.Fatalf("PostgreSQL migrate error: %v", err)
		}
		log.Info("PostgreSQL connected")
		return pgrepo.NewUserRepo(db), pgrepo.NewCVRecordRepo(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	default:
		client, err := config.InitMongo(ctx, cfg)
		if err != nil {
			log.Fatalf("MongoDB init error: %v", err)
		}
		db := client.Database(cfg.MongoDB)
		if err := config.EnsureMongoIndexes(ctx, db); err != nil {
			log.Fatalf("MongoDB index error: %v", err)
		}
		log.Info("MongoDB connected")
		return mongorepo.NewUserRepo(db), mongorepo.NewCVRecordRepo(db), func() {
			_ = client.Disconnect(context.Background())
		}
	}
}

func initProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	if cfg.LLMProvider == config.LLMVertex {
		return llm.NewVertexGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.LLMModel)
	}
	return llm.NewOpenAI(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout), nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ChlorophyllA/skin2/internal/adapter"
	"github.com/ChlorophyllA/skin2/internal/cache"
	"github.com/ChlorophyllA/skin2/internal/config"
	"github.com/ChlorophyllA/skin2/internal/db"
	"github.com/ChlorophyllA/skin2/internal/disease"
	"github.com/ChlorophyllA/skin2/internal/handler"
	"github.com/ChlorophyllA/skin2/internal/logging"
	"github.com/ChlorophyllA/skin2/internal/middleware"
	"github.com/ChlorophyllA/skin2/internal/model"
	"github.com/ChlorophyllA/skin2/internal/repository"
	"github.com/ChlorophyllA/skin2/internal/service"
)

func main() {
	// 1) Load .env early
	loaded := config.LoadDotEnv()
	cfg := config.Load()
	logger := logging.Init("skin2", cfg.Log)
	if loaded {
		logger.Info().Msg("loaded environment .env")
	} else {
		logger.Info().Msg("no .env file found; using injected environment")
	}
	if !config.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2) Create DB pool with retries (block until success or fatal)
	ctx := context.Background()
	pool := mustCreateDBPoolWithRetry(ctx, cfg.Database, logger)
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema setup failed")
	}

	var provider cache.Provider = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable; directory lookups will not be cached")
		} else {
			defer rdb.Close()
			provider = cache.NewRedisAdapter(rdb, "skin2:")
		}
	}

	catalog := disease.Default()
	if cfg.Server.CatalogPath != "" {
		c, err := disease.Load(cfg.Server.CatalogPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Server.CatalogPath).Msg("could not load disease catalog")
		}
		catalog = c
	}

	// 3) Wire repositories & services
	hospitalRepo := repository.NewHospitalRepo(pool)
	skinRepo := repository.NewSkinRepo(pool)
	operatorRepo := repository.NewOperatorRepo(pool)
	analyticsRepo := repository.NewAnalyticsRepo(pool)

	hospitalSvc := service.NewHospitalService(hospitalRepo, provider, cfg.Redis.TTL)
	skinSvc := service.NewSkinService(skinRepo)
	authSvc := service.NewAuthService(operatorRepo)

	var recognizer adapter.Recognizer
	recognizerClient, err := adapter.NewRecognizerAdapter(cfg.Recognizer.BaseURL, cfg.Recognizer.Timeout)
	if err != nil {
		logger.Warn().Err(err).Msg("could not create recognizer adapter; /recognize will fail")
		recognizer = unavailableRecognizer{err: errors.New("recognizer not available")}
	} else {
		recognizer = recognizerClient
	}
	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Server.UploadDir).Msg("could not create upload dir")
	}
	recognitionSvc := service.NewRecognitionService(recognizer, catalog, cfg.Server.UploadDir)

	var replier adapter.Replier
	gemini, err := adapter.NewGeminiReplier(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		logger.Warn().Err(err).Msg("could not create gemini client; /ask will fail")
		replier = unavailableReplier{err: errors.New("consultation model not available")}
	} else {
		defer gemini.Close()
		replier = gemini
	}
	chatSvc := service.NewChatService(replier)

	// 4) Setup Gin after all deps are ready
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS(cfg.Server.AllowedOrigins))

	r.GET("/health", healthHandler)
	r.Static("/static", cfg.Server.StaticDir)

	handler.RegisterHospitalRoutes(r, hospitalSvc, analyticsRepo, logger)
	handler.RegisterSkinRoutes(r, skinSvc)
	handler.RegisterRecognitionRoutes(r, recognitionSvc, logger)
	handler.RegisterChatRoutes(r, chatSvc, logger)
	handler.RegisterAuthRoutes(r, authSvc, cfg.Auth)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET is empty; admin routes will reject every request")
	}
	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))
	handler.RegisterAdminRoutes(authGroup, hospitalSvc, analyticsRepo, logger)

	// 5) Start server
	logger.Info().Str("port", cfg.Server.Port).Msg("listening")
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("failed to run server")
	}
}

// mustCreateDBPoolWithRetry blocks until DB is ready or exits fatally.
func mustCreateDBPoolWithRetry(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) *pgxpool.Pool {
	const maxAttempts = 5

	var (
		pool *pgxpool.Pool
		err  error
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		pool, err = db.NewPool(ctx, cfg)
		if err == nil {
			logger.Info().Int("attempt", attempt).Msg("database pool created")
			return pool
		}
		logger.Warn().Err(err).Int("attempt", attempt).Int("max", maxAttempts).Msg("database not ready")
		time.Sleep(2 * time.Second)
	}

	logger.Fatal().Err(err).Int("attempts", maxAttempts).Msg("could not create db pool")
	return nil // unreachable
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// unavailableRecognizer stands in when the inference service is misconfigured.
type unavailableRecognizer struct {
	err error
}

func (u unavailableRecognizer) Predict(context.Context, string, []byte) (*adapter.Prediction, error) {
	return nil, u.err
}

type unavailableReplier struct {
	err error
}

func (u unavailableReplier) Reply(context.Context, []model.ChatMessage, string) (string, error) {
	return "", u.err
}

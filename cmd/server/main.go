// @title         colorfit API
// @version       1.0
// @description   Signup with emailed one-time codes, login, analysis history, product search and stylist chat.
// @BasePath      /api
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token. Accepts "Bearer <JWT>" or "<JWT>".
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/artem13815/colorfit/docs"

	// internal imports
	apihttp "github.com/artem13815/colorfit/api/http"
	"github.com/artem13815/colorfit/api/http/handlers"
	"github.com/artem13815/colorfit/api/http/middleware"
	"github.com/artem13815/colorfit/pkg/auth"
	"github.com/artem13815/colorfit/pkg/config"
	"github.com/artem13815/colorfit/pkg/health"
	"github.com/artem13815/colorfit/pkg/health/checkers"
	"github.com/artem13815/colorfit/pkg/history"
	"github.com/artem13815/colorfit/pkg/llm/openrouter"
	"github.com/artem13815/colorfit/pkg/logging"
	"github.com/artem13815/colorfit/pkg/mailer"
	"github.com/artem13815/colorfit/pkg/metrics"
	"github.com/artem13815/colorfit/pkg/products"
	mongorepo "github.com/artem13815/colorfit/pkg/repository/mongo"
	pgrepo "github.com/artem13815/colorfit/pkg/repository/postgres"
	redisrepo "github.com/artem13815/colorfit/pkg/repository/redis"
	"github.com/artem13815/colorfit/pkg/security/jwt"
	"github.com/artem13815/colorfit/pkg/storage/local"
	mongostore "github.com/artem13815/colorfit/pkg/storage/mongo"
	"github.com/artem13815/colorfit/pkg/storage/postgres"
	redisstore "github.com/artem13815/colorfit/pkg/storage/redis"
	s3store "github.com/artem13815/colorfit/pkg/storage/s3"
	"github.com/artem13815/colorfit/pkg/stylist"
)

const (
	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration from env/.env
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and bring the schema up to date
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, 0)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	userRepo := pgrepo.NewUserRepository(pool)
	historyRepo := pgrepo.NewHistoryRepository(pool)
	readiness := []health.Checker{checkers.NewPostgresChecker(pool)}

	var pending auth.PendingRepository
	switch cfg.PendingStore {
	case config.PendingStoreRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		pending = redisrepo.NewPendingRepository(client, cfg.PendingRetention)
		readiness = append(readiness, checkers.NewRedisChecker(client))
	case config.PendingStoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		repo, err := mongorepo.NewPendingRepository(ctx, client.Database(cfg.MongoDB), "", cfg.PendingRetention)
		if err != nil {
			return err
		}
		pending = repo
		readiness = append(readiness, checkers.NewMongoChecker(client))
	default:
		repo := pgrepo.NewPendingRepository(pool)
		go repo.RunSweeper(ctx, cfg.PendingSweepInterval, cfg.PendingRetention, log)
		pending = repo
	}
	log.Info("pending verification store ready", "backend", cfg.PendingStore)

	var notifier auth.Notifier
	if cfg.MailUser == "" {
		log.Warn("MAIL_USER is empty, verification emails will only be logged")
		notifier = mailer.NewLogMailer(log)
	} else {
		m, err := mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Secure:   cfg.MailSecure,
			Username: cfg.MailUser,
			Password: cfg.MailPass,
			From:     cfg.MailFrom,
			Timeout:  cfg.MailTimeout,
		})
		if err != nil {
			return err
		}
		notifier = m
	}

	verifier, err := auth.NewVerificationService(userRepo, pending, notifier, auth.VerificationConfig{
		CodeDigits: cfg.OTPDigits,
		CodeTTL:    cfg.OTPTTL,
		Recorder:   metrics.AuthRecorder{},
	}, log)
	if err != nil {
		return err
	}
	jwtGen := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authUC, err := auth.NewAuthService(userRepo, verifier, jwtGen, auth.Options{
		HideUnknownUsers: cfg.HideUnknownUsers,
		Recorder:         metrics.AuthRecorder{},
	}, log)
	if err != nil {
		return err
	}

	var images history.ImageStore
	localImages := local.New(cfg.UploadDir, local.DefaultURLPrefix)
	if cfg.S3Bucket != "" {
		images, err = s3store.New(ctx, s3store.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return err
		}
	} else {
		images = localImages
	}
	historyUC := history.NewService(historyRepo, images, log)

	llmClient := openrouter.New(
		cfg.OpenRouterAPIKey,
		cfg.OpenRouterBase,
		cfg.OpenRouterModel,
		cfg.OpenRouterAppTitle,
		cfg.OpenRouterReferer,
	)
	stylistUC := stylist.NewService(llmClient, llmClient.Configured(), log)
	searcher := products.NewClient(cfg.RapidAPIKey, cfg.RapidAPIHost, cfg.RapidAPIBaseURL)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	app := fiber.New(serverConfig(cfg))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.Deadline(requestTimeout))

	apihttp.Register(app, apihttp.Routes{
		Auth:        handlers.NewAuthHandler(authUC),
		Health:      handlers.NewHealthHandler(health.NewService(readiness...)),
		History:     handlers.NewHistoryHandler(historyUC),
		Products:    handlers.NewProductsHandler(searcher),
		Chat:        handlers.NewChatHandler(stylistUC),
		RequireUser: jwt.NewAuthMiddleware(jwt.NewParser(cfg.JWTSecret, cfg.JWTIssuer)),
		AuthLimit:   limiter.Handler(),
	})

	if cfg.S3Bucket == "" {
		app.Static(local.DefaultURLPrefix, localImages.Dir())
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "port", cfg.Port)
		errCh <- app.Listen(":" + strings.TrimPrefix(cfg.Port, ":"))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serverConfig builds the Fiber settings. With PROXY_HEADER set, c.IP() (and
// so the auth rate limit) keys on the forwarded client address; TRUSTED_PROXIES
// restricts that to requests arriving from the listed proxies.
func serverConfig(cfg config.Config) fiber.Config {
	return fiber.Config{
		AppName:                 "colorfit",
		BodyLimit:               history.MaxImageBytes + 1<<20,
		ReadTimeout:             30 * time.Second,
		WriteTimeout:            30 * time.Second,
		ProxyHeader:             cfg.ProxyHeader,
		EnableIPValidation:      cfg.ProxyHeader != "",
		EnableTrustedProxyCheck: len(cfg.TrustedProxies) > 0,
		TrustedProxies:          cfg.TrustedProxies,
	}
}

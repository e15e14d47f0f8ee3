package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nkoval/vitrine/internal/config"
	s3infra "github.com/nkoval/vitrine/internal/infra/s3"
	pgrepo "github.com/nkoval/vitrine/internal/repo/postgres"
	redrepo "github.com/nkoval/vitrine/internal/repo/redis"
	analyticsvc "github.com/nkoval/vitrine/internal/services/analytics"
	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	listingssvc "github.com/nkoval/vitrine/internal/services/listings"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
	membershipsvc "github.com/nkoval/vitrine/internal/services/membership"
	modsvc "github.com/nkoval/vitrine/internal/services/moderation"
	ratesvc "github.com/nkoval/vitrine/internal/services/rate"
	rolessvc "github.com/nkoval/vitrine/internal/services/roles"
	userssvc "github.com/nkoval/vitrine/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	roleRepo := redrepo.NewRoleRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	listingRepo := pgrepo.NewListingRepo(pool)
	mediaRepo := pgrepo.NewMediaRepo(pool)
	moderationRepo := pgrepo.NewModerationRepo(pool)
	eventRepo := pgrepo.NewEventRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, cfg.Auth.RefreshTTL)
	roleService := rolessvc.NewService(roleRepo, cfg.Policy.RoleFreshness)
	authService.AttachRoleStore(roleService)

	membershipService := membershipsvc.NewService(userRepo, membershipsvc.Config{})

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaRepo, mediaStorage, mediasvc.Config{
		MaxPhotos:  cfg.Policy.MaxOwnerPhotos,
		MaxVideos:  cfg.Policy.MaxOwnerVideos,
		PresignTTL: cfg.Policy.PresignTTL,
	})

	revealLimiter := ratesvc.NewLimiter(rateRepo, cfg.Policy.RevealPerMinute, cfg.Policy.RevealPer10Seconds)
	listingService := listingssvc.NewService(listingRepo, mediaService, membershipService, revealLimiter)

	moderationService := modsvc.NewService(moderationRepo, mediaService)
	userService := userssvc.NewService(userRepo, sessionRepo)
	analyticsService := analyticsvc.NewService(eventRepo, analyticsvc.Config{
		MaxBatchSize: cfg.Policy.MaxEventBatch,
	})

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		RoleService:       roleService,
		ListingService:    listingService,
		MediaService:      mediaService,
		MembershipService: membershipService,
		ModerationService: moderationService,
		UserService:       userService,
		AnalyticsService:  analyticsService,
		Logger:            log,
		Config:            cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Postgres() *pgxpool.Pool {
	return a.postgres
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

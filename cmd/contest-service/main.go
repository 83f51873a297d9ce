package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	challengeCtl "duothan/internal/challenge/controller"
	challengeRepo "duothan/internal/challenge/repository"
	challengeSvc "duothan/internal/challenge/service"
	"duothan/internal/common/cache"
	"duothan/internal/common/db"
	commonmw "duothan/internal/common/http/middleware"
	"duothan/internal/common/mq"
	"duothan/internal/common/storage"
	"duothan/internal/judge"
	judgeCtl "duothan/internal/judge/controller"
	submissionCtl "duothan/internal/submission/controller"
	submissionRepo "duothan/internal/submission/repository"
	submissionSvc "duothan/internal/submission/service"
	teamCtl "duothan/internal/team/controller"
	teamRepo "duothan/internal/team/repository"
	teamSvc "duothan/internal/team/service"
	"duothan/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/contest_service.yaml"

// teamAuthenticator adapts the team auth service to the middleware contract.
type teamAuthenticator struct {
	auth *teamSvc.AuthService
}

func (a *teamAuthenticator) Authenticate(ctx context.Context, raw string) (commonmw.TeamInfo, error) {
	team, err := a.auth.Authenticate(ctx, raw)
	if err != nil {
		return commonmw.TeamInfo{}, err
	}
	return commonmw.TeamInfo{ID: team.ID, Name: team.Name, Role: string(team.Role)}, nil
}

type controllers struct {
	auth       *teamCtl.AuthController
	challenge  *challengeCtl.ChallengeController
	submission *submissionCtl.SubmissionController
	judge      *judgeCtl.JudgeController
}

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	mysqlDB, err := db.NewMySQLWithConfig(&appCfg.Database)
	if err != nil {
		logger.Error(context.Background(), "init database failed", zap.Error(err))
		return
	}
	defer func() {
		_ = mysqlDB.Close()
	}()

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() {
		_ = redisCache.Close()
	}()

	var events submissionRepo.EventPublisher
	if len(appCfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewKafkaProducer(appCfg.Kafka)
		if err != nil {
			logger.Error(context.Background(), "init kafka failed", zap.Error(err))
			return
		}
		defer func() {
			_ = producer.Close()
		}()
		events = submissionRepo.NewMQEventPublisher(producer, appCfg.Submission.EventTopic)
	} else {
		logger.Warn(context.Background(), "kafka brokers not configured, graded events disabled")
	}

	var objStorage storage.ObjectStorage
	if appCfg.MinIO.Endpoint != "" {
		objStorage, err = storage.NewMinIOStorage(appCfg.MinIO)
		if err != nil {
			logger.Error(context.Background(), "init minio failed", zap.Error(err))
			return
		}
	} else {
		logger.Warn(context.Background(), "minio not configured, source archiving disabled")
	}

	judgeClient, err := judge.NewClient(appCfg.Judge)
	if err != nil {
		logger.Error(context.Background(), "init judge client failed", zap.Error(err))
		return
	}

	teams := teamRepo.NewTeamRepository(mysqlDB)
	challenges := challengeRepo.NewChallengeRepository(mysqlDB, redisCache)
	submissions := submissionRepo.NewSubmissionRepository(mysqlDB)
	statusCache := submissionRepo.NewStatusCache(redisCache, appCfg.Submission.StatusTTL)

	authService := teamSvc.NewAuthService(teams, teamSvc.AuthServiceConfig{
		JWTSecret: []byte(appCfg.Auth.JWTSecret),
		JWTIssuer: appCfg.Auth.JWTIssuer,
		TokenTTL:  appCfg.Auth.TokenTTL,
	})
	challengeService := challengeSvc.NewChallengeService(challenges)

	submissionService, err := submissionSvc.NewSubmissionService(submissionSvc.Config{
		SubmissionRepo:  submissions,
		ChallengeRepo:   challenges,
		Judge:           judgeClient,
		StatusCache:     statusCache,
		Events:          events,
		Storage:         objStorage,
		Cache:           redisCache,
		SourceBucket:    appCfg.Submission.SourceBucket,
		SourceKeyPrefix: appCfg.Submission.SourceKeyPrefix,
		MaxCodeBytes:    appCfg.Submission.MaxCodeBytes,
		PollMaxAttempts: appCfg.Submission.PollMaxAttempts,
		PollInterval:    appCfg.Submission.PollInterval,
		RateLimit:       appCfg.Submission.RateLimit,
		Timeouts:        appCfg.Submission.Timeouts,
	})
	if err != nil {
		logger.Error(context.Background(), "init submission service failed", zap.Error(err))
		return
	}

	reaper := submissionSvc.NewReaper(submissionService, appCfg.Submission.ReaperInterval, appCfg.Submission.StaleAfter)
	reaper.Start()
	defer reaper.Stop()

	ctls := controllers{
		auth:       teamCtl.NewAuthController(authService),
		challenge:  challengeCtl.NewChallengeController(challengeService),
		submission: submissionCtl.NewSubmissionController(submissionService),
		judge:      judgeCtl.NewJudgeController(judgeClient),
	}

	httpServer := buildHTTPServer(appCfg.Server, &teamAuthenticator{auth: authService}, ctls)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "contest http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(cfg ServerConfig, auth commonmw.Authenticator, ctls controllers) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.TraceContextMiddleware())
	router.Use(requestLogger())

	api := router.Group("/api/v1")

	public := api.Group("")
	public.POST("/teams/register", ctls.auth.Register)
	public.POST("/teams/login", ctls.auth.Login)
	public.GET("/judge/languages", ctls.judge.Languages)
	public.GET("/judge/statuses", ctls.judge.Statuses)
	public.GET("/judge/health", ctls.judge.Health)

	protected := api.Group("")
	protected.Use(commonmw.AuthMiddleware(auth, commonmw.AuthPolicy{}))
	protected.GET("/teams/me", ctls.auth.Me)
	protected.GET("/challenges", ctls.challenge.List)
	protected.GET("/challenges/:id", ctls.challenge.Get)
	protected.POST("/challenges/:id/flag", ctls.challenge.SubmitFlag)
	protected.POST("/submissions", ctls.submission.Create)
	protected.GET("/submissions", ctls.submission.List)
	protected.GET("/submissions/:id", ctls.submission.Get)
	protected.GET("/submissions/:id/status", ctls.submission.Status)
	protected.GET("/submissions/:id/source", ctls.submission.Source)

	admin := api.Group("/admin")
	admin.Use(commonmw.AuthMiddleware(auth, commonmw.AuthPolicy{Roles: []string{"admin"}}))
	admin.POST("/challenges", ctls.challenge.Create)
	admin.PUT("/challenges/:id", ctls.challenge.Update)
	admin.POST("/judge/submissions", ctls.judge.Submit)
	admin.GET("/judge/submissions/:token", ctls.judge.Result)
	admin.GET("/judge/submissions/:token/poll", ctls.judge.Poll)
	admin.GET("/judge/config_info", ctls.judge.ConfigInfo)
	admin.GET("/judge/system_info", ctls.judge.SystemInfo)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

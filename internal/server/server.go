package server

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/juju/clock"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/comment"
	"whiteboard-backend/internal/config"
	"whiteboard-backend/internal/database"
	"whiteboard-backend/internal/handler"
	"whiteboard-backend/internal/service"
)

const (
	janitorInterval = time.Minute
	sceneMaxIdle    = 30 * time.Minute
)

// Server Fiber 서버 래퍼
type Server struct {
	app           *fiber.App
	cfg           *config.Config
	db            *gorm.DB
	comments      *comment.Store // nil 이면 코멘트 통지 비활성화
	log           zerolog.Logger
	scenes        *service.SceneService
	hub           *handler.SceneHub
	authHandler   *handler.AuthHandler
	sceneHandler  *handler.SceneHandler
	healthHandler *handler.HealthHandler
	jwtManager    *auth.JWTManager
	grpcServer    *grpc.Server
	grpcHealth    *health.Server
}

// New 새 서버 인스턴스 생성
func New(cfg *config.Config, db *gorm.DB, comments *comment.Store, log zerolog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Whiteboard Scene Server",
		ServerHeader:          "Fiber",
		StrictRouting:         true,
		CaseSensitive:         true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		Prefork:               false, // WebSocket과 호환성 문제로 비활성화
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		BodyLimit:             10 * 1024 * 1024, // 10MB
		DisableStartupMessage: true,
	})

	// Auth 초기화
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry, clock.WallClock)
	googleAuth := auth.NewGoogleAuthenticator(cfg.Auth.GoogleClientID)
	repo := database.NewSceneRepository(db)

	hub := handler.NewSceneHub(cfg.WebSocket.SendBufferSize, cfg.WebSocket.WriteTimeout, log)
	serviceCfg := service.SceneServiceConfig{
		Store:        repo,
		Hub:          hub,
		Clock:        clock.WallClock,
		Logger:       log,
		HistoryLimit: cfg.History.Limit,
	}
	var redisPinger handler.Pinger
	if comments != nil {
		serviceCfg.Comments = comments
		redisPinger = handler.PingFunc(comments.Health)
	}
	scenes := service.NewSceneService(serviceCfg)
	members := service.NewMemberService(db)

	dbPinger := handler.PingFunc(func(ctx context.Context) error {
		return database.Ping(db)
	})

	s := &Server{
		app:           app,
		cfg:           cfg,
		db:            db,
		comments:      comments,
		log:           log.With().Str("component", "server").Logger(),
		scenes:        scenes,
		hub:           hub,
		authHandler:   handler.NewAuthHandler(repo, jwtManager, googleAuth, cfg.Auth.AccessTokenExpiry),
		sceneHandler:  handler.NewSceneHandler(scenes, members, log),
		healthHandler: handler.NewHealthHandler(dbPinger, redisPinger),
		jwtManager:    jwtManager,
	}

	if cfg.GRPC.Enabled {
		s.grpcServer = grpc.NewServer()
		s.grpcHealth = health.NewServer()
		healthpb.RegisterHealthServer(s.grpcServer, s.grpcHealth)
	}
	return s
}

// App 내부 Fiber 앱 (테스트용)
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware 미들웨어 설정
func (s *Server) SetupMiddleware() {
	// 패닉 복구
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// 로깅
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Seoul",
	}))

	// CORS
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowOrigins,
		AllowHeaders:     s.cfg.CORS.AllowHeaders,
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: s.cfg.CORS.AllowOrigins != "*",
	}))
}

// SetupRoutes 라우트 설정
func (s *Server) SetupRoutes() {
	// 헬스체크 엔드포인트
	s.app.Get("/health", s.healthHandler.Check)
	s.app.Get("/health/live", s.healthHandler.Liveness)
	s.app.Get("/health/ready", s.healthHandler.Readiness)

	// Rate Limiter 설정 (인증 엔드포인트용 - Brute Force 방지)
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})
	apiLimiter := limiter.New(limiter.Config{
		Max:        s.cfg.Server.RateLimit,
		Expiration: 1 * time.Minute,
	})

	requireAuth := auth.AuthMiddleware(s.jwtManager)

	// Auth 라우트 그룹
	authGroup := s.app.Group("/auth")
	authGroup.Post("/google", authLimiter, s.authHandler.GoogleLogin)
	authGroup.Get("/me", requireAuth, s.authHandler.Me)

	// Scene 라우트 그룹 (인증 필요)
	h := s.sceneHandler
	sceneGroup := s.app.Group("/api/scenes", apiLimiter, requireAuth)
	sceneGroup.Post("/", h.CreateScene)
	sceneGroup.Get("/:id", h.RequireScenePermission(auth.PermissionSceneView), h.GetScene)
	sceneGroup.Put("/:id", h.RequireScenePermission(auth.PermissionSceneEdit), h.CommitScene)
	sceneGroup.Post("/:id/actions", h.RequireScenePermission(auth.PermissionSceneEdit), h.PerformAction)
	sceneGroup.Post("/:id/comments/force-delete", h.RequireScenePermission(auth.PermissionCommentDelete), h.ForceDeleteComments)

	// WebSocket 씬 구독 엔드포인트 (토큰은 쿼리/쿠키로 전달)
	s.app.Get("/ws/scenes/:id", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}, requireAuth, h.RequireScenePermission(auth.PermissionSceneView), websocket.New(s.hub.HandleWebSocket, websocket.Config{
		ReadBufferSize:  s.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: s.cfg.WebSocket.WriteBufferSize,
	}))
}

// Start 서버 시작 (Graceful Shutdown 지원)
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 유휴 씬 정리
	go s.scenes.RunJanitor(ctx, janitorInterval, sceneMaxIdle)

	// 다른 인스턴스의 코멘트 삭제 전달
	if s.comments != nil {
		events, err := s.comments.Subscribe(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("comment deletion relay disabled")
		} else {
			go s.hub.RelayCommentDeletions(ctx, events)
		}
	}

	if s.grpcServer != nil {
		lis, err := net.Listen("tcp", s.cfg.GRPC.Addr)
		if err != nil {
			return err
		}
		s.grpcHealth.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		go func() {
			if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				s.log.Error().Err(err).Msg("grpc health server stopped")
			}
		}()
		s.log.Info().Str("addr", s.cfg.GRPC.Addr).Msg("grpc health server listening")
	}

	// Graceful Shutdown 설정
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		s.log.Info().Msg("shutting down server")
		cancel()
		if err := s.Shutdown(); err != nil {
			s.log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	s.log.Info().Str("port", s.cfg.Server.Port).Msg("whiteboard scene server starting")
	return s.app.Listen(s.cfg.Server.Port)
}

// Shutdown 서버 종료
func (s *Server) Shutdown() error {
	if s.grpcServer != nil {
		s.grpcHealth.Shutdown()
		s.grpcServer.GracefulStop()
	}
	return s.app.ShutdownWithTimeout(s.cfg.Server.ShutdownTimeout)
}

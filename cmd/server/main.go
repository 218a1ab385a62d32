package main

import (
	"fmt"
	"os"

	"github.com/juju/clock"

	"whiteboard-backend/internal/comment"
	"whiteboard-backend/internal/config"
	"whiteboard-backend/internal/database"
	"whiteboard-backend/internal/logging"
	"whiteboard-backend/internal/server"
)

func main() {
	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New().
		FromPath(cfg.Log.Path).
		Level(cfg.Log.Level).
		Console(cfg.Log.Console).
		Make()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	log := logger.Component("main")

	// 데이터베이스 연결
	db, err := database.ConnectDB(cfg.Database, logger.Component("database"))
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close(db)

	if err := database.Ping(db); err != nil {
		log.Fatal().Err(err).Msg("database ping failed")
	}
	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("database connected")

	// Redis 연결 (선택적, 실패 시 코멘트 통지 비활성화)
	var comments *comment.Store
	if client, err := comment.NewRedisClient(cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, comment thread notifications disabled")
	} else {
		comments = comment.NewStore(client, clock.WallClock, logger.Component("comment"))
		defer comments.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	// 서버 생성 및 설정
	srv := server.New(cfg, db, comments, logger.Logger)
	srv.SetupMiddleware()
	srv.SetupRoutes()

	// 서버 시작
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

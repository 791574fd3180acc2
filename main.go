package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"linetrack-backend/internal/assistance"
	"linetrack-backend/internal/attendance"
	"linetrack-backend/internal/platform/config"
	"linetrack-backend/internal/platform/db"
	"linetrack-backend/internal/platform/logger"
	"linetrack-backend/internal/platform/metrics"
	"linetrack-backend/internal/platform/middleware"
	"linetrack-backend/internal/platform/throttle"
	"linetrack-backend/internal/preferences"
	"linetrack-backend/internal/shiftest"
	"linetrack-backend/internal/upstream"
)

func main() {
	path := config.DefaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// .env は任意（なければ環境変数のみ）
	_ = godotenv.Load()

	// 設定読み込み
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Println("Usage: linetrack-backend [config.yaml]  (mode: dev|release)")
		os.Exit(2)
	}

	log, err := logger.New(cfg.Mode)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("load timezone", zap.Error(err))
	}
	log.Info("starting", zap.String("mode", cfg.Mode), zap.String("timezone", loc.String()))

	var conn *sql.DB
	if cfg.DB.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		conn, err = db.Connect(ctx, cfg.DB)
		cancel()
		if err != nil {
			log.Fatal("connect db", zap.Error(err))
		}
		defer conn.Close()
		log.Info("connected to DB", zap.String("dbname", cfg.DB.DBName))
	} else {
		log.Warn("database not configured; preferences disabled")
	}

	r, err := newRouter(cfg, loc, conn, metrics.New(), log)
	if err != nil {
		log.Fatal("build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.Server.Certificate.Cert != "" && cfg.Server.Certificate.Key != "" {
			// TLS設定（config/tls/<mode>/ 配下）
			certFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Server.Certificate.Cert)
			keyFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Server.Certificate.Key)
			log.Info("listening", zap.String("addr", "https://"+cfg.Server.Addr))
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Info("listening", zap.String("addr", "http://"+cfg.Server.Addr))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve", zap.Error(err))
		}
	}()

	// グレースフルシャットダウン
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, loc *time.Location, conn *sql.DB, m *metrics.Metrics, log *zap.Logger) (*gin.Engine, error) {
	h, mi, err := config.ParseClock(cfg.Shift.Start)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.RequestID(middleware.NewULIDGen()),
		middleware.AccessLog(log),
		middleware.Recovery(log),
		m.Middleware(),
	)
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == config.ModeDev {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	up := upstream.New(cfg.Upstream, log.Named("upstream"), m)
	sched := throttle.New(cfg.Upstream.RequestDelay, throttle.WithWaitObserver(m.ThrottleWait))
	rules := shiftest.Rules{StartHour: h, StartMinute: mi, ExitOffset: cfg.Shift.ExitOffset}

	// /api/v1
	api := r.Group("/api/v1")
	attendance.RegisterRoutes(api, attendance.NewService(loc))
	assistance.RegisterRoutes(api, assistance.NewService(up, loc, assistance.Options{
		DefaultDays:   cfg.Assistance.DefaultDays,
		ActivityLimit: cfg.Upstream.ActivityLimit,
	}, log.Named("assistance")))
	shiftest.RegisterRoutes(api, shiftest.NewService(up, sched, loc, rules, cfg.Upstream.RecentWindowDays, log.Named("shiftest")))
	if conn != nil {
		preferences.RegisterRoutes(api, preferences.NewService(preferences.NewStore(conn), log.Named("preferences")))
	}

	return r, nil
}
